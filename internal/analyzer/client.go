package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/BerylCAtieno/document-analyzer-api/internal/utils"
)

// Client is the LLM gateway: one prompt in, one completion out. It must be
// safe for concurrent use.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const openRouterURL = "https://openrouter.ai/api/v1/chat/completions"

type openRouterClient struct {
	apiKey  string
	model   string
	timeout time.Duration
	logger  *utils.Logger
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[string]
}

type openRouterRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openRouterResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// NewOpenRouterClient builds the production LLM gateway. Each call is bounded
// by timeout; repeated failures open the circuit so a dead upstream fails
// fast instead of tying up workers.
func NewOpenRouterClient(apiKey, model string, timeout time.Duration, logger *utils.Logger) Client {
	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:    "openrouter",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &openRouterClient{
		apiKey:  apiKey,
		model:   model,
		timeout: timeout,
		logger:  logger,
		client: &http.Client{
			Timeout: timeout,
		},
		breaker: breaker,
	}
}

func (c *openRouterClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.breaker.Execute(func() (string, error) {
		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		return c.complete(ctx, prompt)
	})
}

func (c *openRouterClient) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := openRouterRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openRouterURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("OpenRouter API error", "status", resp.StatusCode, "body", string(body))
		return "", fmt.Errorf("OpenRouter API returned status %d", resp.StatusCode)
	}

	var openRouterResp openRouterResponse
	if err := json.Unmarshal(body, &openRouterResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if openRouterResp.Error != nil {
		return "", fmt.Errorf("OpenRouter API error: %s", openRouterResp.Error.Message)
	}

	if len(openRouterResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return openRouterResp.Choices[0].Message.Content, nil
}
