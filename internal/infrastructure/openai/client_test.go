package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matchroute-service/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(url string) *client {
	return NewCommentaryClient(&config.CommentaryConfig{
		APIKey:  "sk-test",
		BaseURL: url + "/",
		Model:   "gpt-4o-mini",
		Timeout: time.Second,
	}, zap.NewNop()).(*client)
}

func TestClient_Summarize(t *testing.T) {
	t.Run("successful request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

			var req chatRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "gpt-4o-mini", req.Model)
			require.Len(t, req.Messages, 2)
			assert.Contains(t, req.Messages[1].Content, "4 von 5")
			assert.Contains(t, req.Messages[1].Content, "Regen")
			assert.Contains(t, req.Messages[1].Content, "Parkhaus Westfalenhallen")

			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Gute Fahrt zum Stadion!  "}}]}`))
		}))
		defer server.Close()

		text, err := newTestClient(server.URL).Summarize(context.Background(), 4, 3, "Regen", "Parkhaus Westfalenhallen")
		require.NoError(t, err)
		assert.Equal(t, "Gute Fahrt zum Stadion!", text)
	})

	t.Run("error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate limited"}`))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).Summarize(context.Background(), 4, 3, "", "P1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("no choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).Summarize(context.Background(), 4, 3, "", "P1")
		assert.Error(t, err)
	})
}

func TestBuildPrompt_OmitsEmptyWeather(t *testing.T) {
	prompt := buildPrompt(2, 12, "", "P1")
	assert.NotContains(t, prompt, "Wetter")
	assert.Contains(t, prompt, "12 Minuten")
}
