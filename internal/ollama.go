package internal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ollama/ollama/api"
)

const (
	DefaultOllamaHost  = "http://localhost:11434"
	DefaultOllamaModel = "gemma3:1b"
)

// OllamaBackend serves prompts from a local Ollama server
type OllamaBackend struct {
	client *api.Client
	model  string
}

// NewOllamaBackend creates a backend for model on the server at host
func NewOllamaBackend(host, model string) (*OllamaBackend, error) {
	if host == "" {
		host = DefaultOllamaHost
	}
	if model == "" {
		model = DefaultOllamaModel
	}

	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}

	httpClient := &http.Client{
		Timeout: 5 * time.Minute, // local inference on small machines is slow
	}

	return &OllamaBackend{
		client: api.NewClient(base, httpClient),
		model:  model,
	}, nil
}

// Model returns the configured model name
func (b *OllamaBackend) Model() string {
	return b.model
}

// Capabilities reports readily when the server answers and has the model
// pulled, after-download when the server answers but lacks the model.
func (b *OllamaBackend) Capabilities(ctx context.Context) (Capabilities, error) {
	if err := b.client.Heartbeat(ctx); err != nil {
		return Capabilities{Available: AvailabilityNo}, err
	}

	list, err := b.client.List(ctx)
	if err != nil {
		return Capabilities{Available: AvailabilityNo}, err
	}

	want := normalizeModelName(b.model)
	for _, m := range list.Models {
		if normalizeModelName(m.Name) == want || normalizeModelName(m.Model) == want {
			return Capabilities{Available: AvailabilityReadily}, nil
		}
	}
	LogDebug("Model %s not found among %d local model(s)", b.model, len(list.Models))
	return Capabilities{Available: AvailabilityAfterDownload}, nil
}

// CreateSession starts a new conversation context
func (b *OllamaBackend) CreateSession(ctx context.Context) (ModelSession, error) {
	return &ollamaSession{
		id:     uuid.NewString(),
		client: b.client,
		model:  b.model,
	}, nil
}

// ollamaSession carries the generate context between prompts so follow-up
// prompts continue the same conversation.
type ollamaSession struct {
	id     string
	client *api.Client
	model  string

	mu      sync.Mutex
	history []int
}

func (s *ollamaSession) ID() string {
	return s.id
}

func (s *ollamaSession) Prompt(ctx context.Context, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stream := false
	req := &api.GenerateRequest{
		Model:   s.model,
		Prompt:  text,
		Context: s.history,
		Stream:  &stream,
	}

	var (
		out  strings.Builder
		next []int
	)
	err := s.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		out.WriteString(resp.Response)
		if resp.Done {
			next = resp.Context
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.history = next
	return out.String(), nil
}

// normalizeModelName adds the implicit ":latest" tag
func normalizeModelName(name string) string {
	if name == "" || strings.Contains(name, ":") {
		return name
	}
	return name + ":latest"
}
