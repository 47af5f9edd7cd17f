// Package genai is a small client for an OpenAI-style responses endpoint.
// It backs the travel-time estimator and the trip assistant chat.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("genai not configured")

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client calls the responses API.
type Client struct {
	url        string
	apiKey     string
	model      string
	httpClient *http.Client
}

// New returns a Client posting to url with the given key and model.
func New(url, apiKey, model string) *Client {
	return &Client{
		url:    url,
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: 45 * time.Second,
		},
	}
}

type responsesAPIResponse struct {
	OutputText []string              `json:"output_text"`
	Output     []responsesAPIMessage `json:"output"`
}

type responsesAPIMessage struct {
	Role    string                     `json:"role"`
	Content []responsesAPIContentBlock `json:"content"`
}

type responsesAPIContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type inputBlock struct {
	Role    string         `json:"role"`
	Content []inputContent `json:"content"`
}

type inputContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func textBlock(role, text string) inputBlock {
	return inputBlock{Role: role, Content: []inputContent{{Type: "input_text", Text: text}}}
}

// complete sends input and returns the trimmed output text.
func (c *Client) complete(ctx context.Context, input []inputBlock) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"input": input,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", parseAPIError(resp)
	}

	var out responsesAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	text := strings.TrimSpace(strings.Join(out.OutputText, "\n"))
	if text == "" {
		text = fallbackOutput(out)
	}
	if text == "" {
		return "", errors.New("genai returned an empty message")
	}
	return text, nil
}

// parseAPIError prefers the provider's error message over the bare status.
func parseAPIError(resp *http.Response) error {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(data) == 0 {
		return fmt.Errorf("genai api error: %s", resp.Status)
	}

	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.Error.Message == "" {
		return fmt.Errorf("genai api error: %s", resp.Status)
	}
	return fmt.Errorf("genai api error: %s", payload.Error.Message)
}

func fallbackOutput(r responsesAPIResponse) string {
	for _, msg := range r.Output {
		for _, block := range msg.Content {
			if block.Type == "output_text" && strings.TrimSpace(block.Text) != "" {
				return strings.TrimSpace(block.Text)
			}
		}
	}
	return ""
}
