// Package anthropic implements the query interpreter on the Anthropic
// messages API. The model returns raw filter maps as strict JSON; code fences
// and surrounding prose are stripped before decoding.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/infrastructure/resilience"
)

const (
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 1024
	apiVersion       = "2023-06-01"
)

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, apiKey, model string, executor *resilience.Executor) *Client {
	if model == "" {
		model = defaultModel
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		maxTokens:  defaultMaxTokens,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		executor:   executor,
	}
}

// Parse extracts a single raw filter map from a natural-language query.
func (c *Client) Parse(ctx context.Context, query string) (map[string]any, error) {
	respText, err := c.complete(ctx, "parse_query", buildParsePrompt(query))
	if err != nil {
		return nil, err
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(extractJSONObject(respText)), &result); err != nil {
		return nil, fmt.Errorf("parse filter json: %w", err)
	}
	return result, nil
}

// ParseConditions extracts the multi-condition form: one raw filter map per
// independent group named in the query. A response that is not a non-empty
// JSON array is a structural failure; callers fall back to Parse.
func (c *Client) ParseConditions(ctx context.Context, query string) ([]map[string]any, error) {
	respText, err := c.complete(ctx, "parse_conditions", buildConditionsPrompt(query))
	if err != nil {
		return nil, err
	}

	var result []map[string]any
	if err := json.Unmarshal([]byte(extractJSONArray(respText)), &result); err != nil {
		return nil, fmt.Errorf("parse conditions json: %w", err)
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("conditions response is empty")
	}
	return result, nil
}

func (c *Client) complete(ctx context.Context, operation, prompt string) (string, error) {
	request := messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    interpreterSystemPrompt,
		Messages: []message{
			{Role: "user", Content: prompt},
		},
	}

	var response messagesResponse
	call := func(ctx context.Context) error {
		return c.postJSON(ctx, "/v1/messages", request, &response, operation)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, operation, call, classifyAnthropicError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded(operation, err)
	}

	text := response.text()
	if text == "" {
		return "", fmt.Errorf("%s: empty model response", operation)
	}
	return text, nil
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (r *messagesResponse) text() string {
	var sb strings.Builder
	for _, block := range r.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}

func extractJSONObject(raw string) string {
	raw = stripCodeFence(raw)
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}

func extractJSONArray(raw string) string {
	raw = stripCodeFence(raw)
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}

func stripCodeFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
	return strings.TrimSpace(raw)
}
