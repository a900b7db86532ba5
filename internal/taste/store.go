// ReelMatch - Conversational Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package taste

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/tomtom215/reelmatch/internal/vecmath"
)

// State is a user's accumulated taste profile. Vector is always unit length
// once a turn has been recorded; an unseen user has a nil vector and a zero
// turn count.
type State struct {
	UserID    string    `json:"user_id"`
	Vector    []float32 `json:"vector"`
	TurnCount int       `json:"turn_count"`
	History   []string  `json:"history,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists per-user taste state. Implementations must make Update
// atomic per user: concurrent updates for the same user serialize, and a
// failed update leaves the previous state untouched.
type Store interface {
	// Get returns the user's current state. An unseen user yields a fresh
	// zero-turn state, not an error, and nothing is stored.
	Get(ctx context.Context, userID string) (State, error)

	// Update folds a new preference vector into the user's taste profile
	// and records the raw input text, returning the resulting state.
	Update(ctx context.Context, userID string, vector []float32, input string) (State, error)

	// Reset removes the user's taste state. Resetting an unknown user is
	// not an error.
	Reset(ctx context.Context, userID string) error
}

// Config controls how taste vectors evolve across turns.
type Config struct {
	// Alpha is the exponential-fusion weight on the existing vector:
	// fused = normalize(alpha*old + (1-alpha)*new). Higher values make the
	// profile more stable; lower values track the latest request more.
	Alpha float64 `koanf:"alpha"`

	// HistoryLimit caps how many recent input texts are kept per user.
	HistoryLimit int `koanf:"history_limit"`
}

// DefaultConfig returns the production fusion parameters.
func DefaultConfig() Config {
	return Config{
		Alpha:        0.8,
		HistoryLimit: 10,
	}
}

// Validate checks the fusion parameters.
func (c Config) Validate() error {
	if c.Alpha < 0 || c.Alpha > 1 {
		return fmt.Errorf("taste: alpha %v outside [0, 1]", c.Alpha)
	}
	if c.HistoryLimit < 1 {
		return fmt.Errorf("taste: history limit %d must be at least 1", c.HistoryLimit)
	}
	return nil
}

// advance computes the next state from prev (nil on the first turn) and the
// incoming preference vector. The first turn assigns the normalized vector
// directly; later turns fuse it with the existing profile.
func advance(cfg Config, prev *State, userID string, vector []float32, input string) (State, error) {
	var (
		fused []float32
		err   error
	)

	if prev == nil {
		fused, err = vecmath.Normalize(vector)
	} else {
		fused, err = vecmath.Fuse(prev.Vector, vector, cfg.Alpha)
	}
	if err != nil {
		return State{}, err
	}

	next := State{
		UserID:    userID,
		Vector:    fused,
		TurnCount: 1,
		History:   []string{input},
		UpdatedAt: time.Now(),
	}
	if prev != nil {
		next.TurnCount = prev.TurnCount + 1
		next.History = append(append([]string(nil), prev.History...), input)
		if len(next.History) > cfg.HistoryLimit {
			next.History = next.History[len(next.History)-cfg.HistoryLimit:]
		}
	}

	return next, nil
}

// stripeCount is the number of per-user lock stripes. Power of two so the
// hash can be masked instead of modded.
const stripeCount = 256

// stripedMutex serializes operations per user without a lock per user ID.
type stripedMutex struct {
	mus [stripeCount]sync.Mutex
}

func (s *stripedMutex) forKey(key string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &s.mus[h.Sum32()&(stripeCount-1)]
}

// cloneState deep-copies mutable fields so callers cannot alias stored data.
func cloneState(st State) State {
	out := st
	out.Vector = append([]float32(nil), st.Vector...)
	out.History = append([]string(nil), st.History...)
	return out
}
