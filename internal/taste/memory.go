// ReelMatch - Conversational Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package taste

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for tests and single-node deployments
// that do not need taste profiles to survive a restart.
type MemoryStore struct {
	cfg     Config
	stripes stripedMutex

	mu    sync.RWMutex
	users map[string]State
}

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory taste store.
func NewMemoryStore(cfg Config) (*MemoryStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &MemoryStore{
		cfg:   cfg,
		users: make(map[string]State),
	}, nil
}

// Get returns the user's current state, or a fresh zero-turn state for an
// unseen user.
func (s *MemoryStore) Get(_ context.Context, userID string) (State, error) {
	s.mu.RLock()
	st, ok := s.users[userID]
	s.mu.RUnlock()

	if !ok {
		return State{UserID: userID}, nil
	}
	return cloneState(st), nil
}

// Update folds vector into the user's profile. Updates for the same user
// serialize on a lock stripe; a fusion failure leaves the stored state
// unchanged.
func (s *MemoryStore) Update(_ context.Context, userID string, vector []float32, input string) (State, error) {
	lock := s.stripes.forKey(userID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	cur, ok := s.users[userID]
	s.mu.RUnlock()

	var prev *State
	if ok {
		prev = &cur
	}

	next, err := advance(s.cfg, prev, userID, vector, input)
	if err != nil {
		return State{}, err
	}

	s.mu.Lock()
	s.users[userID] = next
	s.mu.Unlock()

	return cloneState(next), nil
}

// Reset removes the user's state.
func (s *MemoryStore) Reset(_ context.Context, userID string) error {
	lock := s.stripes.forKey(userID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	delete(s.users, userID)
	s.mu.Unlock()

	return nil
}

// Size returns the number of users with stored state.
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}
