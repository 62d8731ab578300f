// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package online

import (
	"context"
	"sync"
	"time"

	"github.com/veritaslaw/citegate/services/verifier/datatypes"
)

// Cache stores verification records keyed by normalized citation.
//
// # Description
//
// The cache is the only shared mutable state in the verification engine.
// Records never expire within a process lifetime; a repeated Put for the
// same key overwrites the whole record (last-write-wins). The cache makes
// no ordering guarantee across keys.
//
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the record for the normalized citation, if present.
	Get(ctx context.Context, normalized string) (datatypes.VerificationRecord, bool, error)

	// Put stores the record under record.NormalizedText, overwriting any
	// existing record for that key.
	Put(ctx context.Context, record datatypes.VerificationRecord) error

	// Len returns the number of cached records.
	Len() int

	// Close releases any resources held by the cache.
	Close() error
}

// MemoryCache is the default in-process Cache.
//
// # Thread Safety
//
// A single mutex guards every read and write. The critical sections are
// brief map operations, so concurrent verifications of distinct citations
// are never blocked for longer than a map access.
type MemoryCache struct {
	mu      sync.Mutex
	records map[string]datatypes.VerificationRecord
	now     func() time.Time
}

// NewMemoryCache builds an empty cache using the wall clock.
func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithClock(time.Now)
}

// NewMemoryCacheWithClock is NewMemoryCache with an injectable clock, so
// tests can assert on CheckedAt stamps deterministically.
func NewMemoryCacheWithClock(now func() time.Time) *MemoryCache {
	return &MemoryCache{
		records: make(map[string]datatypes.VerificationRecord),
		now:     now,
	}
}

// Get returns the cached record for the key, if any. Never returns an error.
func (c *MemoryCache) Get(_ context.Context, normalized string) (datatypes.VerificationRecord, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.records[normalized]
	return rec, ok, nil
}

// Put stores the record, stamping CheckedAt from the cache clock when the
// caller left it zero. Never returns an error.
func (c *MemoryCache) Put(_ context.Context, record datatypes.VerificationRecord) error {
	if record.CheckedAt.IsZero() {
		record.CheckedAt = c.now().UTC()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[record.NormalizedText] = record
	return nil
}

// Len returns the number of cached records.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// Close is a no-op for the in-memory cache.
func (c *MemoryCache) Close() error {
	return nil
}

var _ Cache = (*MemoryCache)(nil)
