// Package session provides lattice session management for the fiberlat
// service.
//
// A session owns one lattice configuration plus the latest complete snapshot.
// Renderers and API consumers only ever observe the snapshot stored in the
// session. A recompute replaces it wholesale, so a half-built frame is never
// visible.
//
// This package defines the storage interface with implementations for
// different backends:
//   - memory: In-memory storage for development/testing
//   - file: File-based storage for CLI applications
//   - mongo: MongoDB-backed storage for service deployments
//
// # Usage
//
// Create a session store:
//
//	// Development
//	store := session.NewMemoryStore()
//
//	// CLI
//	store, err := session.NewFileStore("")  // Uses ~/.config/fiberlat/sessions/
//
//	// Service
//	store, err := session.NewMongoStore(ctx, session.MongoConfig{
//	    URI: "mongodb://localhost:27017",
//	})
//
// Manage sessions:
//
//	sess, err := session.New(cfg, lattice.ModeDecay, tuning, session.DefaultTTL)
//	if err != nil {
//	    return err
//	}
//	store.Set(ctx, sess)
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/poissonlab/fiberlat/pkg/lattice"
	"github.com/poissonlab/fiberlat/pkg/solver"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("expired")
)

// DefaultTTL is the default session duration.
const DefaultTTL = 24 * time.Hour

// Session stores one lattice visualization session.
type Session struct {
	ID     string         `json:"id" bson:"_id"`
	Config lattice.Config `json:"config" bson:"config"`
	Mode   string         `json:"mode" bson:"mode"`
	Tuning solver.Tuning  `json:"tuning" bson:"tuning"`

	// Snapshot is the latest fully computed frame, nil before the first
	// recompute. Replaced wholesale, never mutated in place.
	Snapshot *lattice.Snapshot `json:"snapshot,omitempty" bson:"snapshot,omitempty"`

	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// New creates a session with a fresh UUID for the given lattice setup.
func New(cfg lattice.Config, mode string, tuning solver.Tuning, ttl time.Duration) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := lattice.ValidateMode(mode); err != nil {
		return nil, err
	}
	tuning.SetDefaults()

	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		Config:    cfg,
		Mode:      mode,
		Tuning:    tuning,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, ErrNotFound if the session doesn't exist.
	// Returns nil, ErrExpired if the session exists but has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions (optional, may be no-op).
	Cleanup(ctx context.Context) error
}

// =============================================================================
// MemoryStore - Development/Testing Backend
// =============================================================================

// MemoryStore is an in-memory session store for development and tests.
//
// Like the file and mongo backends, Get and Set exchange copies rather than
// aliasing the stored value: a caller updating its session between Set calls
// never races a concurrent reader of the same ID. Snapshots are immutable
// once built, so sharing the snapshot pointer across copies is safe.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if sess.IsExpired() {
		return nil, ErrExpired
	}
	return &sess, nil
}

func (s *MemoryStore) Set(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = *sess
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func (s *MemoryStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.IsExpired() {
			delete(s.sessions, id)
		}
	}
	return nil
}

var _ Store = (*MemoryStore)(nil)
