package cmd

import (
	"net/http"
	"testing"

	"github.com/iksnae/shopsavvy/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthcheckCommand(t *testing.T) {
	t.Run("model ready", func(t *testing.T) {
		srv := newModelServer(t, "unused")
		out, err := execute(t, "", "healthcheck", "-v", "--store", t.TempDir(), "--ollama-host", srv.URL)
		require.NoError(t, err)
		assert.Contains(t, out, "Store readable: 0 insight(s), 0 cart item(s)")
		assert.Contains(t, out, "Health check passed!")
		assert.Contains(t, out, "Store: ")
	})

	t.Run("model not pulled", func(t *testing.T) {
		srv := testutil.NewOllamaServer(t, []string{"llama3:latest"}, func(string, int) (string, int) {
			return "", http.StatusOK
		})
		out, err := execute(t, "", "healthcheck", "--store", t.TempDir(), "--ollama-host", srv.URL)
		require.NoError(t, err)
		assert.Contains(t, out, "ollama pull gemma3:1b")
	})

	t.Run("ollama unreachable", func(t *testing.T) {
		out, err := execute(t, "", "healthcheck", "--store", t.TempDir(), "--ollama-host", "http://127.0.0.1:1")
		require.Error(t, err)
		assert.Contains(t, out, "Ollama is not reachable")
		assert.Contains(t, err.Error(), "model unavailable")
	})
}
