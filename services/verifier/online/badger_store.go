// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package online

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/veritaslaw/citegate/services/verifier/datatypes"
)

// recordKeyPrefix namespaces verification records inside the store so other
// data can share the same database later.
const recordKeyPrefix = "citation/"

// BadgerStore is a persistent Cache backed by an embedded Badger database.
//
// # Description
//
// Verification results outlive the process: a citation confirmed yesterday
// does not cost a search call today. Records are stored as JSON under
// "citation/<normalized>". Badger serializes writes internally, which gives
// the same last-write-wins behavior as MemoryCache.
//
// # Thread Safety
//
// Safe for concurrent use; Badger handles its own locking.
type BadgerStore struct {
	db  *badger.DB
	now func() time.Time
}

// OpenBadgerStore opens (or creates) the store at the given directory.
func OpenBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open verification store at %s: %w", dir, err)
	}
	return &BadgerStore{db: db, now: time.Now}, nil
}

// Get returns the stored record for the key, if any. A corrupt record is
// treated as a miss so a bad entry can be overwritten by a fresh lookup.
func (s *BadgerStore) Get(_ context.Context, normalized string) (datatypes.VerificationRecord, bool, error) {
	var rec datatypes.VerificationRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(recordKeyPrefix + normalized))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return datatypes.VerificationRecord{}, false, nil
	case err != nil:
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			slog.Warn("Discarding corrupt verification record", "citation", normalized)
			return datatypes.VerificationRecord{}, false, nil
		}
		return datatypes.VerificationRecord{}, false, fmt.Errorf("failed to read verification record: %w", err)
	}
	return rec, true, nil
}

// Put stores the record, stamping CheckedAt when the caller left it zero.
func (s *BadgerStore) Put(_ context.Context, record datatypes.VerificationRecord) error {
	if record.CheckedAt.IsZero() {
		record.CheckedAt = s.now().UTC()
	}
	val, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode verification record: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(recordKeyPrefix+record.NormalizedText), val)
	})
	if err != nil {
		return fmt.Errorf("failed to write verification record: %w", err)
	}
	return nil
}

// Len counts the stored records by key iteration.
func (s *BadgerStore) Len() int {
	count := 0
	_ = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		prefix := []byte(recordKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count
}

// Close flushes and closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

var _ Cache = (*BadgerStore)(nil)
