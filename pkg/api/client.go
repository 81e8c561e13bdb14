// Package api talks to the two supported text-generation backends: the
// native Ollama API and any OpenAI-compatible server (LM Studio and
// friends). Callers get exactly one text result or one error per call.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

// Type selects the wire format of the configured endpoint.
type Type string

const (
	TypeOllama Type = "ollama"
	TypeOpenAI Type = "openai"
)

// ParseType maps a configured string onto a supported API type.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ollama":
		return TypeOllama, nil
	case "openai", "openai-compatible":
		return TypeOpenAI, nil
	default:
		return "", fmt.Errorf("unsupported API type: %q", s)
	}
}

var (
	ErrNoEndpoint = errors.New("API endpoint is not configured")
	ErrNoModel    = errors.New("no model selected")
)

const (
	fetchModelsTimeout = 15 * time.Second
	generateTimeout    = 5 * time.Minute
)

// Client issues requests against one configured endpoint. The zero value
// is not usable; construct with NewClient.
type Client struct {
	endpoint string
	apiType  Type
	apiKey   string
	http     *http.Client
}

func NewClient(endpoint string, apiType Type, apiKey string) *Client {
	return &Client{
		endpoint: strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		apiType:  apiType,
		apiKey:   apiKey,
		http:     &http.Client{},
	}
}

// GenerateRequest carries the three text inputs the request builder
// combines, plus the model to run them against.
type GenerateRequest struct {
	Model          string
	SystemTemplate string
	ExampleText    string
	UserGoal       string
}

// FetchModels lists the model identifiers the endpoint serves, sorted.
func (c *Client) FetchModels(ctx context.Context) ([]string, error) {
	if c.endpoint == "" {
		return nil, ErrNoEndpoint
	}

	ctx, cancel := context.WithTimeout(ctx, fetchModelsTimeout)
	defer cancel()

	switch c.apiType {
	case TypeOllama:
		return c.fetchOllamaModels(ctx)
	case TypeOpenAI:
		return c.fetchOpenAIModels(ctx)
	default:
		return nil, fmt.Errorf("unsupported API type: %q", c.apiType)
	}
}

// Generate runs one generation request and returns the model's text.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if c.endpoint == "" {
		return "", ErrNoEndpoint
	}
	if req.Model == "" {
		return "", ErrNoModel
	}

	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	switch c.apiType {
	case TypeOllama:
		return c.generateOllama(ctx, req)
	case TypeOpenAI:
		return c.generateOpenAI(ctx, req)
	default:
		return "", fmt.Errorf("unsupported API type: %q", c.apiType)
	}
}

func (c *Client) fetchOllamaModels(ctx context.Context) ([]string, error) {
	var parsed struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := c.getJSON(ctx, c.endpoint+"/api/tags", &parsed); err != nil {
		return nil, err
	}

	models := make([]string, 0, len(parsed.Models))
	for _, m := range parsed.Models {
		if m.Name != "" {
			models = append(models, m.Name)
		}
	}
	sort.Strings(models)
	return models, nil
}

func (c *Client) fetchOpenAIModels(ctx context.Context) ([]string, error) {
	var parsed struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, c.endpoint+"/v1/models", &parsed); err != nil {
		return nil, err
	}

	models := make([]string, 0, len(parsed.Data))
	for _, m := range parsed.Data {
		if m.ID != "" {
			models = append(models, m.ID)
		}
	}
	sort.Strings(models)
	return models, nil
}

func (c *Client) generateOllama(ctx context.Context, req GenerateRequest) (string, error) {
	prompt, err := BuildPrompt(req.SystemTemplate, req.ExampleText, req.UserGoal)
	if err != nil {
		return "", err
	}

	payload := map[string]any{
		"model":  req.Model,
		"prompt": prompt,
		"stream": false,
	}

	var parsed struct {
		Response string `json:"response"`
	}
	if err := c.postJSON(ctx, c.endpoint+"/api/generate", payload, &parsed); err != nil {
		return "", err
	}
	return parsed.Response, nil
}

func (c *Client) generateOpenAI(ctx context.Context, req GenerateRequest) (string, error) {
	type message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	var messages []message
	if system := SystemMessage(req.SystemTemplate); system != "" {
		messages = append(messages, message{Role: "system", Content: system})
	}
	messages = append(messages, message{Role: "user", Content: UserMessage(req.ExampleText, req.UserGoal)})

	payload := map[string]any{
		"model":       req.Model,
		"messages":    messages,
		"temperature": 0.7,
		"stream":      false,
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := c.postJSON(ctx, c.endpoint+"/v1/chat/completions", payload, &parsed); err != nil {
		return "", err
	}

	if len(parsed.Choices) == 0 {
		return "", errors.New("API response did not contain any choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, url string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("request timed out connecting to %s", req.URL)
		}
		return fmt.Errorf("request to %s failed: %w", req.URL, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", req.URL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, req.URL, compact(string(payload), 200))
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("invalid JSON response from %s: %w", req.URL, err)
	}
	return nil
}

func compact(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
