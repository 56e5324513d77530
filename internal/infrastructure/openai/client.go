package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/matchroute-service/internal/config"
	"github.com/matchroute-service/internal/domain/repository"
	"go.uber.org/zap"
)

const systemPrompt = "Du bist ein Verkehrsexperte für Fußballfans in Dortmund. " +
	"Antworte mit genau einem kurzen, freundlichen Satz auf Deutsch."

type client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	logger     *zap.Logger
}

// NewCommentaryClient создает клиент OpenAI chat completions для комментария к маршруту
func NewCommentaryClient(cfg *config.CommentaryConfig, logger *zap.Logger) repository.CommentaryRepository {
	return &client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		logger:     logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Summarize генерирует одну фразу о дорожной ситуации
func (c *client) Summarize(ctx context.Context, score, delayMinutes int, weather, place string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(score, delayMinutes, weather, place)},
		},
		MaxTokens:   80,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("commentary API error: status %d, body: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("commentary API returned no choices")
	}

	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("commentary API returned empty text")
	}

	c.logger.Debug("Commentary generated", zap.Int("score", score), zap.Int("delay_minutes", delayMinutes))
	return text, nil
}

func buildPrompt(score, delayMinutes int, weather, place string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Verkehrsbewertung: %d von 5. ", score)
	fmt.Fprintf(&b, "Verzögerung durch Verkehr: %d Minuten. ", delayMinutes)
	if weather != "" {
		fmt.Fprintf(&b, "Wetter: %s. ", weather)
	}
	fmt.Fprintf(&b, "Empfohlener Parkplatz: %s. ", place)
	b.WriteString("Formuliere einen Hinweis für die Anreise zum Stadion.")
	return b.String()
}
