// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package online

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *BadgerStore {
	t.Helper()
	store, err := OpenBadgerStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBadgerStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	put := record("[1992] HCA 23", true, ReasonVerified)
	put.URL = "https://caselaw.example/1992/hca/23"
	require.NoError(t, store.Put(ctx, put))

	got, ok, err := store.Get(ctx, "[1992] HCA 23")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Exists)
	assert.Equal(t, ReasonVerified, got.Reason)
	assert.Equal(t, put.URL, got.URL)
	assert.False(t, got.CheckedAt.IsZero(), "Put must stamp CheckedAt")
}

func TestBadgerStoreMiss(t *testing.T) {
	store := newTestStore(t)

	_, ok, err := store.Get(context.Background(), "[1999] FCA 1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBadgerStoreLastWriteWins(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, record("[2011] HCA 32", false, ReasonNotFound)))
	require.NoError(t, store.Put(ctx, record("[2011] HCA 32", true, ReasonVerified)))

	got, ok, err := store.Get(ctx, "[2011] HCA 32")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Exists)
	assert.Equal(t, ReasonVerified, got.Reason)
	assert.Equal(t, 1, store.Len())
}

func TestBadgerStoreLen(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assert.Equal(t, 0, store.Len())
	require.NoError(t, store.Put(ctx, record("[1992] HCA 23", true, ReasonVerified)))
	require.NoError(t, store.Put(ctx, record("[2011] HCA 32", false, ReasonNotFound)))
	assert.Equal(t, 2, store.Len())
}
