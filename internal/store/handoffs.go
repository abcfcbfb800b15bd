package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// PutHandoff stores the raw selection payload for a session, replacing any previous one.
// The entry expires after ttl; zero keeps it until deleted.
func (s *Store) PutHandoff(ctx context.Context, sessionID string, payload []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if sessionID == "" {
		return ErrInvalidSession
	}

	key := buildKey(handoffPrefix, sessionID)
	defer releaseKey(key)

	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(key, payload)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// GetHandoff returns the stored payload, or ErrHandoffNotFound when absent or expired.
func (s *Store) GetHandoff(ctx context.Context, sessionID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	key := buildKey(handoffPrefix, sessionID)
	defer releaseKey(key)

	var payload []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		payload, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrHandoffNotFound
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// TakeHandoff reads and deletes the payload in one transaction, for read-once delivery.
func (s *Store) TakeHandoff(ctx context.Context, sessionID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	key := buildKey(handoffPrefix, sessionID)
	defer releaseKey(key)

	var payload []byte
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		if payload, err = item.ValueCopy(nil); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrHandoffNotFound
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// DeleteHandoff removes the session's payload. Deleting a missing key is not an error.
func (s *Store) DeleteHandoff(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := buildKey(handoffPrefix, sessionID)
	defer releaseKey(key)

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// HandoffRecord is a stored payload as seen by inspection tools.
type HandoffRecord struct {
	SessionID string
	Payload   []byte
	ExpiresAt time.Time // zero when the entry never expires
}

// ListHandoffs calls fn for every live handoff. Iteration stops at the first error.
func (s *Store) ListHandoffs(ctx context.Context, fn func(HandoffRecord) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(handoffPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			payload, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			rec := HandoffRecord{
				SessionID: strings.TrimPrefix(string(item.Key()), handoffPrefix),
				Payload:   payload,
			}
			if exp := item.ExpiresAt(); exp > 0 {
				rec.ExpiresAt = time.Unix(int64(exp), 0) //nolint:gosec // badger stores unix seconds
			}
			if err := fn(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// CountHandoffs returns the number of live handoffs.
func (s *Store) CountHandoffs(ctx context.Context) (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(handoffPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	return count, err
}
