// ReelMatch - Conversational Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package taste

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// tasteKeyPrefix namespaces taste state within the shared BadgerDB.
const tasteKeyPrefix = "taste:"

// BadgerStore is a durable Store backed by BadgerDB, suitable for
// deployments where taste profiles must survive restarts.
type BadgerStore struct {
	cfg     Config
	db      *badger.DB
	stripes stripedMutex
}

var _ Store = (*BadgerStore)(nil)

// NewBadgerStore creates a taste store on an already-open BadgerDB.
// The caller owns the database lifecycle.
func NewBadgerStore(db *badger.DB, cfg Config) (*BadgerStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &BadgerStore{cfg: cfg, db: db}, nil
}

// OpenBadger opens (or creates) a BadgerDB at path with the options this
// service uses. Badger's own logger is silenced; state changes are logged
// at the store level instead.
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open taste database: %w", err)
	}
	return db, nil
}

// Get returns the user's current state, or a fresh zero-turn state for an
// unseen user.
func (s *BadgerStore) Get(_ context.Context, userID string) (State, error) {
	st := State{UserID: userID}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(tasteKeyPrefix + userID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get taste state: %w", err)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &st)
		})
	})
	if err != nil {
		return State{}, err
	}

	return st, nil
}

// Update folds vector into the user's stored profile. The read-modify-write
// is serialized per user on a lock stripe so concurrent turns for the same
// user never lose an update.
func (s *BadgerStore) Update(ctx context.Context, userID string, vector []float32, input string) (State, error) {
	lock := s.stripes.forKey(userID)
	lock.Lock()
	defer lock.Unlock()

	cur, err := s.Get(ctx, userID)
	if err != nil {
		return State{}, err
	}
	var prev *State
	if cur.TurnCount > 0 {
		prev = &cur
	}

	next, err := advance(s.cfg, prev, userID, vector, input)
	if err != nil {
		return State{}, err
	}

	data, err := json.Marshal(next)
	if err != nil {
		return State{}, fmt.Errorf("marshal taste state: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(tasteKeyPrefix+userID), data)
	})
	if err != nil {
		return State{}, fmt.Errorf("store taste state: %w", err)
	}

	return next, nil
}

// Reset removes the user's stored state. Unknown users are a no-op.
func (s *BadgerStore) Reset(_ context.Context, userID string) error {
	lock := s.stripes.forKey(userID)
	lock.Lock()
	defer lock.Unlock()

	err := s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(tasteKeyPrefix + userID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("reset taste state: %w", err)
	}

	return nil
}
