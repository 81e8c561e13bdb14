package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		input   string
		want    Type
		wantErr bool
	}{
		{"ollama", TypeOllama, false},
		{"Ollama", TypeOllama, false},
		{"openai", TypeOpenAI, false},
		{"openai-compatible", TypeOpenAI, false},
		{" OpenAI ", TypeOpenAI, false},
		{"anthropic", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseType(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseType(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFetchModelsOllama(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]any{
				{"name": "mistral:7b"},
				{"name": "llama3:8b"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, TypeOllama, "")
	models, err := c.FetchModels(context.Background())
	if err != nil {
		t.Fatalf("FetchModels failed: %v", err)
	}
	if !reflect.DeepEqual(models, []string{"llama3:8b", "mistral:7b"}) {
		t.Errorf("Expected sorted model names, got %v", models)
	}
}

func TestFetchModelsOpenAI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Expected bearer auth header, got %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"id": "gpt-x"},
				{"id": "gemma"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, TypeOpenAI, "sk-test")
	models, err := c.FetchModels(context.Background())
	if err != nil {
		t.Fatalf("FetchModels failed: %v", err)
	}
	if !reflect.DeepEqual(models, []string{"gemma", "gpt-x"}) {
		t.Errorf("Expected sorted model ids, got %v", models)
	}
}

func TestFetchModelsNoEndpoint(t *testing.T) {
	c := NewClient("", TypeOllama, "")
	if _, err := c.FetchModels(context.Background()); !errors.Is(err, ErrNoEndpoint) {
		t.Errorf("Expected ErrNoEndpoint, got %v", err)
	}
}

func TestFetchModelsUnsupportedType(t *testing.T) {
	c := NewClient("http://localhost:1", Type("gopher"), "")
	_, err := c.FetchModels(context.Background())
	if err == nil || !strings.Contains(err.Error(), "unsupported API type") {
		t.Errorf("Expected unsupported type error, got %v", err)
	}
}

func TestGenerateOllama(t *testing.T) {
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotPayload)
		json.NewEncoder(w).Encode(map[string]any{"response": "a shiny new prompt"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, TypeOllama, "")
	text, err := c.Generate(context.Background(), GenerateRequest{
		Model:          "llama3:8b",
		SystemTemplate: sampleTemplate,
		ExampleText:    "example body",
		UserGoal:       "make it rhyme",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if text != "a shiny new prompt" {
		t.Errorf("Unexpected text %q", text)
	}

	prompt, _ := gotPayload["prompt"].(string)
	if !strings.Contains(prompt, "example body") || !strings.Contains(prompt, "make it rhyme") {
		t.Errorf("Prompt not built from inputs: %q", prompt)
	}
	if stream, ok := gotPayload["stream"].(bool); !ok || stream {
		t.Error("Expected stream: false in payload")
	}
}

func TestGenerateOpenAI(t *testing.T) {
	var gotPayload struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotPayload)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "  generated text  "}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, TypeOpenAI, "")
	text, err := c.Generate(context.Background(), GenerateRequest{
		Model:          "gpt-x",
		SystemTemplate: sampleTemplate,
		ExampleText:    "examples",
		UserGoal:       "goal",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if text != "generated text" {
		t.Errorf("Expected trimmed content, got %q", text)
	}

	if len(gotPayload.Messages) != 2 {
		t.Fatalf("Expected system and user messages, got %+v", gotPayload.Messages)
	}
	if gotPayload.Messages[0].Role != "system" || strings.Contains(gotPayload.Messages[0].Content, PlaceholderExamples) {
		t.Errorf("Bad system message: %+v", gotPayload.Messages[0])
	}
	if gotPayload.Messages[1].Role != "user" || !strings.Contains(gotPayload.Messages[1].Content, "examples") {
		t.Errorf("Bad user message: %+v", gotPayload.Messages[1])
	}
}

func TestGenerateOpenAIEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, TypeOpenAI, "")
	_, err := c.Generate(context.Background(), GenerateRequest{Model: "m", SystemTemplate: sampleTemplate})
	if err == nil || !strings.Contains(err.Error(), "choices") {
		t.Errorf("Expected missing-choices error, got %v", err)
	}
}

func TestGenerateHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, TypeOllama, "")
	_, err := c.Generate(context.Background(), GenerateRequest{Model: "m", SystemTemplate: sampleTemplate})
	if err == nil || !strings.Contains(err.Error(), "HTTP 404") {
		t.Errorf("Expected HTTP status error, got %v", err)
	}
}

func TestGenerateMalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, TypeOllama, "")
	_, err := c.Generate(context.Background(), GenerateRequest{Model: "m", SystemTemplate: sampleTemplate})
	if err == nil || !strings.Contains(err.Error(), "invalid JSON") {
		t.Errorf("Expected malformed payload error, got %v", err)
	}
}

func TestGenerateMissingModel(t *testing.T) {
	c := NewClient("http://localhost:1", TypeOllama, "")
	if _, err := c.Generate(context.Background(), GenerateRequest{}); !errors.Is(err, ErrNoModel) {
		t.Errorf("Expected ErrNoModel, got %v", err)
	}
}

func TestGenerateConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := NewClient(srv.URL, TypeOllama, "")
	_, err := c.Generate(context.Background(), GenerateRequest{Model: "m", SystemTemplate: sampleTemplate})
	if err == nil {
		t.Error("Expected a connection failure")
	}
}

func TestEndpointTrailingSlashTrimmed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "//") {
			t.Errorf("Double slash in path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{"models": []any{}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", TypeOllama, "")
	if _, err := c.FetchModels(context.Background()); err != nil {
		t.Fatalf("FetchModels failed: %v", err)
	}
}
