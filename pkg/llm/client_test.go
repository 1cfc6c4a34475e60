package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ganliai/insight/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.LLMConfig{
		BaseURL:        server.URL,
		APIKey:         "test-key",
		Model:          "gpt-4o-mini",
		RequestTimeout: 5 * time.Second,
	}
	return NewClient(cfg, zap.NewNop())
}

func completionResponse(content string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return string(body)
}

func TestCompleteReturnsContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		fmt.Fprint(w, completionResponse("线索1：表达细腻"))
	})

	text, err := client.Complete(context.Background(), Prompt{System: "sys", User: "user"})
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if text != "线索1：表达细腻" {
		t.Fatalf("unexpected content %q", text)
	}
}

func TestCompleteRejectsEmptyPrompt(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the provider")
	})

	_, err := client.Complete(context.Background(), Prompt{System: "", User: "user"})
	if !errors.Is(err, ErrAnalysisUnavailable) {
		t.Fatalf("expected ErrAnalysisUnavailable, got %v", err)
	}
}

func TestCompleteJSONSendsSchemaAndValidates(t *testing.T) {
	var gotBody map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &gotBody); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}
		fmt.Fprint(w, completionResponse(`{"type":"感理型","confidence":80}`))
	})

	schema := ObjectSchema("personality_type", map[string]interface{}{
		"type":       map[string]interface{}{"type": "string"},
		"confidence": map[string]interface{}{"type": "number"},
	})

	payload, err := client.CompleteJSON(context.Background(), Prompt{System: "sys", User: "user"}, schema)
	if err != nil {
		t.Fatalf("CompleteJSON() error: %v", err)
	}

	var decoded struct {
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("payload does not parse: %v", err)
	}
	if decoded.Confidence != 80 {
		t.Fatalf("expected confidence 80, got %v", decoded.Confidence)
	}

	if _, ok := gotBody["response_format"]; !ok {
		t.Fatal("expected response_format in provider request")
	}
}

func TestCompleteJSONMissingRequiredField(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, completionResponse(`{"type":"感理型"}`))
	})

	schema := ObjectSchema("personality_type", map[string]interface{}{
		"type":       map[string]interface{}{"type": "string"},
		"confidence": map[string]interface{}{"type": "number"},
	})

	_, err := client.CompleteJSON(context.Background(), Prompt{System: "sys", User: "user"}, schema)
	if !errors.Is(err, ErrAnalysisUnavailable) {
		t.Fatalf("expected ErrAnalysisUnavailable, got %v", err)
	}
}

func TestProviderErrorSurfacesAsUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream overloaded", http.StatusBadGateway)
	})

	_, err := client.Complete(context.Background(), Prompt{System: "sys", User: "user"})
	if !errors.Is(err, ErrAnalysisUnavailable) {
		t.Fatalf("expected ErrAnalysisUnavailable, got %v", err)
	}
}

func TestEmptyCompletionSurfacesAsUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, completionResponse(""))
	})

	_, err := client.Complete(context.Background(), Prompt{System: "sys", User: "user"})
	if !errors.Is(err, ErrAnalysisUnavailable) {
		t.Fatalf("expected ErrAnalysisUnavailable, got %v", err)
	}
}
