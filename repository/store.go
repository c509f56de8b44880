// Package repository provides the key/value persistence store backing
// player records. Keys are composed as table + "/" + key. The server
// must keep running without a backing store, so a disabled
// implementation that fails every operation is part of the package.
package repository

import (
	"context"
	"errors"
)

var (
	// ErrNotFound reports a missing record.
	ErrNotFound = errors.New("repository: record not found")
	// ErrNoDatabase reports that the server runs without a store.
	ErrNoDatabase = errors.New("repository: running without a database")
)

type Store interface {
	Get(ctx context.Context, table, key string, out interface{}) error
	Set(ctx context.Context, table, key string, value interface{}) error
	Close() error
}

func composeKey(table, key string) string {
	return table + "/" + key
}

// DisabledStore is the degraded no-persistence mode: every operation
// fails with ErrNoDatabase and gameplay proceeds with defaults.
type DisabledStore struct{}

func NewDisabledStore() DisabledStore {
	return DisabledStore{}
}

func (DisabledStore) Get(ctx context.Context, table, key string, out interface{}) error {
	return ErrNoDatabase
}

func (DisabledStore) Set(ctx context.Context, table, key string, value interface{}) error {
	return ErrNoDatabase
}

func (DisabledStore) Close() error {
	return nil
}
