package internal

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/iksnae/shopsavvy/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOllamaBackend_Defaults(t *testing.T) {
	b, err := NewOllamaBackend("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultOllamaModel, b.Model())

	_, err = NewOllamaBackend("http://[::1", "x")
	assert.Error(t, err)
}

func TestOllamaBackend_Capabilities(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		models []string
		model  string
		want   Availability
	}{
		{"pulled", []string{"gemma3:1b", "llama3:latest"}, "gemma3:1b", AvailabilityReadily},
		{"implicit latest", []string{"llama3:latest"}, "llama3", AvailabilityReadily},
		{"missing", []string{"llama3:latest"}, "gemma3:1b", AvailabilityAfterDownload},
		{"no models", nil, "gemma3:1b", AvailabilityAfterDownload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testutil.NewOllamaServer(t, tt.models, nil)
			b, err := NewOllamaBackend(srv.URL, tt.model)
			require.NoError(t, err)

			caps, err := b.Capabilities(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, caps.Available)
		})
	}
}

func TestOllamaBackend_CapabilitiesServerDown(t *testing.T) {
	srv := testutil.NewOllamaServer(t, nil, nil)
	url := srv.URL
	srv.Close()

	b, err := NewOllamaBackend(url, "gemma3:1b")
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	caps, err := b.Capabilities(ctx)
	assert.Error(t, err)
	assert.Equal(t, AvailabilityNo, caps.Available)
}

func TestOllamaSession_Prompt(t *testing.T) {
	ctx := context.Background()
	srv := testutil.NewOllamaServer(t, []string{"gemma3:1b"}, func(prompt string, call int) (string, int) {
		return "Product suggestions: USB cable, $10", http.StatusOK
	})
	b, err := NewOllamaBackend(srv.URL, "gemma3:1b")
	require.NoError(t, err)

	session, err := b.CreateSession(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID())

	other, err := b.CreateSession(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, session.ID(), other.ID())

	got, err := session.Prompt(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, "Product suggestions: USB cable, $10", got)

	_, err = session.Prompt(ctx, "second")
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, srv.Prompts())
	contexts := srv.Contexts()
	require.Len(t, contexts, 2)
	assert.Empty(t, contexts[0])
	assert.Equal(t, []int{1, 5}, contexts[1], "follow-up prompt continues the conversation")
}

func TestOllamaSession_PromptError(t *testing.T) {
	srv := testutil.NewOllamaServer(t, []string{"gemma3:1b"}, func(prompt string, call int) (string, int) {
		return "model crashed", http.StatusInternalServerError
	})
	b, err := NewOllamaBackend(srv.URL, "gemma3:1b")
	require.NoError(t, err)
	session, err := b.CreateSession(context.Background())
	require.NoError(t, err)

	_, err = session.Prompt(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model crashed")
}

func TestOllamaBackend_EndToEnd(t *testing.T) {
	srv := testutil.NewOllamaServer(t, []string{"gemma3:1b"}, func(prompt string, call int) (string, int) {
		if call == 1 {
			return "busy", http.StatusServiceUnavailable
		}
		return "Gift suggestions: Kindle case", http.StatusOK
	})
	b, err := NewOllamaBackend(srv.URL, "gemma3:1b")
	require.NoError(t, err)

	store := newMemStore()
	sessions := NewSessionManager(b, store)
	var delays []time.Duration
	r := NewRetrier(sessions, &PromptBuilder{}, RetryConfig{})
	r.Timer = newRecordingTimer(&delays)

	got, err := r.Invoke(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Equal(t, "Gift suggestions: Kindle case", got)
	assert.Len(t, delays, 1)
	assert.NotEmpty(t, sessions.SessionID())
	assert.JSONEq(t, `"`+sessions.SessionID()+`"`, store.raw(KeySessionID))
}
