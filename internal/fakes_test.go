package internal

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"
)

// memStore is an in-memory KeyValueStore
type memStore struct {
	mu      sync.Mutex
	values  map[string]json.RawMessage
	failSet error
	history []string
}

func newMemStore() *memStore {
	return &memStore{values: make(map[string]json.RawMessage)}
}

func (s *memStore) Get(ctx context.Context, keys ...string) (map[string]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]json.RawMessage)
	for _, k := range keys {
		if v, ok := s.values[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (s *memStore) Set(ctx context.Context, values map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSet != nil {
		return &StorageError{Key: "test", Op: "set", Err: s.failSet}
	}
	for k, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		s.values[k] = data
	}
	return nil
}

func (s *memStore) AppendInsight(ctx context.Context, req InsightsRequest, response string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, response)
	return int64(len(s.history)), nil
}

func (s *memStore) raw(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.values[key])
}

var errPromptRejected = errors.New("prompt rejected")

// fakeBackend counts calls and fails according to its fields
type fakeBackend struct {
	mu          sync.Mutex
	available   Availability
	capsErr     error
	sessionID   string
	reply       func(prompt string, call int) (string, error)
	capsCalls   int
	createCalls int
	promptCalls int
	promptDelay time.Duration
}

func newFakeBackend(reply func(prompt string, call int) (string, error)) *fakeBackend {
	return &fakeBackend{available: AvailabilityReadily, sessionID: "session", reply: reply}
}

func (b *fakeBackend) Capabilities(ctx context.Context) (Capabilities, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.capsCalls++
	return Capabilities{Available: b.available}, b.capsErr
}

func (b *fakeBackend) CreateSession(ctx context.Context) (ModelSession, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.createCalls++
	return &fakeSession{backend: b, id: b.sessionID, n: b.createCalls}, nil
}

func (b *fakeBackend) counts() (caps, create, prompt int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.capsCalls, b.createCalls, b.promptCalls
}

func (b *fakeBackend) setAvailable(a Availability) {
	b.mu.Lock()
	b.available = a
	b.mu.Unlock()
}

type fakeSession struct {
	backend *fakeBackend
	id      string
	n       int
}

func (s *fakeSession) ID() string { return s.id }

func (s *fakeSession) Prompt(ctx context.Context, text string) (string, error) {
	s.backend.mu.Lock()
	s.backend.promptCalls++
	call := s.backend.promptCalls
	delay := s.backend.promptDelay
	reply := s.backend.reply
	s.backend.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	return reply(text, call)
}

// recordingTimer is a backoff.Timer that records each wait and fires at once
type recordingTimer struct {
	mu      sync.Mutex
	delays  *[]time.Duration
	onStart func(n int)
	c       chan time.Time
}

func newRecordingTimer(delays *[]time.Duration) *recordingTimer {
	return &recordingTimer{delays: delays, c: make(chan time.Time, 1)}
}

func (t *recordingTimer) Start(d time.Duration) {
	t.mu.Lock()
	*t.delays = append(*t.delays, d)
	n := len(*t.delays)
	onStart := t.onStart
	t.mu.Unlock()

	if onStart != nil {
		onStart(n)
	}
	select {
	case t.c <- time.Now():
	default:
	}
}

func (t *recordingTimer) Stop() {}

func (t *recordingTimer) C() <-chan time.Time { return t.c }

func alwaysReply(text string) func(string, int) (string, error) {
	return func(string, int) (string, error) { return text, nil }
}

func alwaysFail() func(string, int) (string, error) {
	return func(string, int) (string, error) { return "", errPromptRejected }
}
