// Package store persists session-scoped state in Badger.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
	path   string
}

// New opens (or creates) the database at path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup
	return open(opts, path, logger)
}

// NewInMemory opens a database that lives only as long as the process.
func NewInMemory(logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts, ":memory:", logger)
}

// OpenReadOnly opens an existing database without taking the write lock.
// Used by inspection tools while the server is stopped.
func OpenReadOnly(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path).WithReadOnly(true)
	opts.Logger = nil
	return open(opts, path, logger)
}

func open(opts badger.Options, path string, logger *slog.Logger) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return &Store{db: db, logger: logger, path: path}, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// Ping checks that the database is open and readable.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return ErrClosed
	}
	return s.db.View(func(*badger.Txn) error { return nil })
}

// RunGC reclaims space in the value log. Expired handoffs are only dropped from disk
// during compaction and value-log GC.
func (s *Store) RunGC() error {
	err := s.db.RunValueLogGC(0.5)
	if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
		return nil
	}
	return err
}
