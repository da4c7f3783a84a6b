package internal

import (
	"context"
	"fmt"
	"sync"
)

// FallbackSessionID is recorded when the backend does not expose a session id
const FallbackSessionID = "Fallback Session ID"

// Availability is the readiness reported by a model backend
type Availability string

const (
	AvailabilityReadily       Availability = "readily"
	AvailabilityAfterDownload Availability = "after-download"
	AvailabilityNo            Availability = "no"
)

// Capabilities describes whether a backend can serve prompts right now
type Capabilities struct {
	Available Availability
}

// ModelBackend is the on-device language model service
type ModelBackend interface {
	Capabilities(ctx context.Context) (Capabilities, error)
	CreateSession(ctx context.Context) (ModelSession, error)
}

// ModelSession is a handle to one conversation context on the backend. A
// session whose Prompt fails must not be reused.
type ModelSession interface {
	ID() string
	Prompt(ctx context.Context, text string) (string, error)
}

// SessionManager owns the single cached model session
type SessionManager struct {
	backend ModelBackend
	store   KeyValueStore

	mu        sync.Mutex
	session   ModelSession
	sessionID string
}

// NewSessionManager creates a manager. store may be nil, in which case the
// session id is not persisted.
func NewSessionManager(backend ModelBackend, store KeyValueStore) *SessionManager {
	return &SessionManager{backend: backend, store: store}
}

// EnsureSession returns the cached session, creating one when none is cached.
// A cached session is returned without consulting the backend's capabilities.
func (m *SessionManager) EnsureSession(ctx context.Context) (ModelSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		return m.session, nil
	}

	LogWarn("Model session unavailable. Initializing...")
	caps, err := m.backend.Capabilities(ctx)
	if err != nil {
		LogError("Error checking model availability: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	if caps.Available != AvailabilityReadily {
		LogError("Model is not readily available (%s)", caps.Available)
		return nil, fmt.Errorf("%w: availability %q", ErrModelUnavailable, caps.Available)
	}

	session, err := m.backend.CreateSession(ctx)
	if err != nil {
		LogError("Error initializing model session: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	id := session.ID()
	if id == "" {
		id = FallbackSessionID
	}
	m.session = session
	m.sessionID = id
	LogInfo("Model session initialized. Session ID: %s", id)

	m.persistSessionID(ctx, id)
	return session, nil
}

// Invalidate drops the cached session so the next EnsureSession creates a new one
func (m *SessionManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil {
		LogDebug("Discarding model session %s", m.sessionID)
	}
	m.session = nil
	m.sessionID = ""
}

// SessionID returns the id of the cached session, or "" when none is cached
func (m *SessionManager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

func (m *SessionManager) persistSessionID(ctx context.Context, id string) {
	if m.store == nil {
		return
	}
	if err := m.store.Set(ctx, map[string]interface{}{KeySessionID: id}); err != nil {
		LogError("Error storing session ID: %v", err)
		return
	}
	LogDebug("Session ID successfully stored: %s", id)
}
