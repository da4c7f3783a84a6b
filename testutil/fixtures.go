package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// CartPageHTML is a trimmed cart page with two items, one without a price,
// and a signed-in account header.
const CartPageHTML = `<!DOCTYPE html>
<html>
<body>
  <a id="nav-link-accountList"><span id="nav-link-accountList-nav-line-1">Hello, Dana</span></a>
  <div id="sc-active-cart">
    <div class="sc-list-item-content">
      <span class="sc-product-title">  USB-C Charging Cable  </span>
      <span class="sc-price">$9.99</span>
    </div>
    <div class="sc-list-item-content">
      <span class="sc-product-title">Wireless Mouse</span>
      <span class="a-price-whole">24.</span>
    </div>
    <div class="sc-list-item-content">
      <span class="sc-product-title">Notebook</span>
    </div>
    <div class="sc-list-item-content">
      <span class="sc-price">$1.00</span>
    </div>
  </div>
</body>
</html>`

// OrderHistoryHTML is a trimmed order history page
const OrderHistoryHTML = `<html><body>
  <span id="nav-link-accountList-nav-line-1">Hello, sign in</span>
  <div class="order-item-selector"><span class="title-selector">Desk Lamp</span><span class="price-selector">$19.99</span></div>
  <div class="order-item-selector"><span class="title-selector">No Price Item</span></div>
</body></html>`

// OllamaServer is a fake Ollama HTTP API
type OllamaServer struct {
	*httptest.Server

	mu       sync.Mutex
	models   []string
	reply    func(prompt string, call int) (string, int)
	prompts  []string
	contexts [][]int
}

// NewOllamaServer serves /api/tags with models and answers /api/generate with
// reply. reply returns the response text and an HTTP status; call counts
// from 1. The server is closed when the test ends.
func NewOllamaServer(t *testing.T, models []string, reply func(prompt string, call int) (string, int)) *OllamaServer {
	t.Helper()
	s := &OllamaServer{models: models, reply: reply}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Ollama is running"))
	})
	mux.HandleFunc("/api/tags", s.handleTags)
	mux.HandleFunc("/api/generate", s.handleGenerate)

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// Prompts returns every prompt received so far
func (s *OllamaServer) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

// Contexts returns the conversation context sent with each prompt
func (s *OllamaServer) Contexts() [][]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]int(nil), s.contexts...)
}

func (s *OllamaServer) handleTags(w http.ResponseWriter, r *http.Request) {
	type model struct {
		Name  string `json:"name"`
		Model string `json:"model"`
	}
	resp := struct {
		Models []model `json:"models"`
	}{}
	for _, m := range s.models {
		resp.Models = append(resp.Models, model{Name: m, Model: m})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *OllamaServer) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Model   string `json:"model"`
		Prompt  string `json:"prompt"`
		Context []int  `json:"context"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad request"}`, http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.prompts = append(s.prompts, req.Prompt)
	s.contexts = append(s.contexts, req.Context)
	call := len(s.prompts)
	s.mu.Unlock()

	text, status := s.reply(req.Prompt, call)
	w.Header().Set("Content-Type", "application/json")
	if status != http.StatusOK {
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": text})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"model":    req.Model,
		"response": text,
		"done":     true,
		"context":  []int{call, len(strings.Fields(text))},
	})
}
