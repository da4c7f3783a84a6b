package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iksnae/shopsavvy/internal"
	"github.com/spf13/viper"
)

// settings is the resolved configuration for one command run
type settings struct {
	StorePath   string
	OllamaHost  string
	OllamaModel string
	Retry       internal.RetryConfig
	IncludeCart bool
	Response    internal.ResponseMode
	Settle      time.Duration
}

func loadSettings() (settings, error) {
	storePath, err := internal.ResolveStorePath(viper.GetString("store"))
	if err != nil {
		return settings{}, fmt.Errorf("failed to resolve store path: %w", err)
	}

	mode, err := internal.ParseResponseMode(viper.GetString("mode.response"))
	if err != nil {
		return settings{}, err
	}

	return settings{
		StorePath:   storePath,
		OllamaHost:  viper.GetString("ollama.host"),
		OllamaModel: viper.GetString("ollama.model"),
		Retry: internal.RetryConfig{
			MaxAttempts: viper.GetInt("retry.max_attempts"),
			BaseDelay:   viper.GetDuration("retry.base_delay"),
		},
		IncludeCart: viper.GetBool("mode.include_cart"),
		Response:    mode,
		Settle:      viper.GetDuration("scrape.settle"),
	}, nil
}

// openStore opens the SQLite store named by the settings
func openStore(s settings) (*sql.DB, *internal.Storage, error) {
	internal.LogDebug("Opening store: %s", s.StorePath)
	db, err := internal.OpenDatabase(s.StorePath)
	if err != nil {
		return nil, nil, err
	}
	return db, internal.NewStorage(db), nil
}

// app is the wired insights pipeline: store, model backend, session manager,
// retrier, queue and service.
type app struct {
	settings settings
	db       *sql.DB
	store    *internal.Storage
	backend  *internal.OllamaBackend
	sessions *internal.SessionManager
	queue    *internal.RequestQueue
	service  *internal.Service
}

// newApp wires the pipeline. cart may be nil when no page source was given.
func newApp(ctx context.Context, cart internal.CartSource) (*app, error) {
	s, err := loadSettings()
	if err != nil {
		return nil, err
	}

	db, store, err := openStore(s)
	if err != nil {
		return nil, err
	}

	backend, err := internal.NewOllamaBackend(s.OllamaHost, s.OllamaModel)
	if err != nil {
		db.Close()
		return nil, err
	}
	internal.LogDebug("Using model %s at %s", backend.Model(), s.OllamaHost)

	sessions := internal.NewSessionManager(backend, store)
	prompts := &internal.PromptBuilder{IncludeCart: s.IncludeCart, Store: store}
	retrier := internal.NewRetrier(sessions, prompts, s.Retry)
	queue := internal.NewRequestQueue(ctx, retrier)

	return &app{
		settings: s,
		db:       db,
		store:    store,
		backend:  backend,
		sessions: sessions,
		queue:    queue,
		service:  internal.NewService(queue, store, s.Response, cart),
	}, nil
}

// Close waits for queued requests and closes the store
func (a *app) Close() {
	a.queue.Wait()
	if err := a.db.Close(); err != nil {
		internal.LogWarn("Failed to close store: %v", err)
	}
}
