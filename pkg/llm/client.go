package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/ganliai/insight/pkg/config"
)

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	http   *resty.Client
	model  string
	logger *zap.Logger
}

func NewClient(cfg *config.LLMConfig, logger *zap.Logger) *Client {
	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.RequestTimeout)

	return &Client{http: http, model: cfg.Model, logger: logger}
}

func (c *Client) Complete(ctx context.Context, prompt Prompt) (string, error) {
	return c.call(ctx, prompt, nil)
}

func (c *Client) CompleteJSON(ctx context.Context, prompt Prompt, schema Schema) (json.RawMessage, error) {
	content, err := c.call(ctx, prompt, &schema)
	if err != nil {
		return nil, err
	}

	if !gjson.Valid(content) {
		c.logger.Warn("model returned invalid JSON", zap.String("schema", schema.Name))
		return nil, fmt.Errorf("%w: response is not valid JSON", ErrAnalysisUnavailable)
	}
	parsed := gjson.Parse(content)
	for _, key := range schema.Required {
		if !parsed.Get(key).Exists() {
			c.logger.Warn("model response missing required field",
				zap.String("schema", schema.Name), zap.String("field", key))
			return nil, fmt.Errorf("%w: response missing field %q", ErrAnalysisUnavailable, key)
		}
	}

	return json.RawMessage(content), nil
}

func (c *Client) call(ctx context.Context, prompt Prompt, schema *Schema) (string, error) {
	if strings.TrimSpace(prompt.System) == "" || strings.TrimSpace(prompt.User) == "" {
		return "", fmt.Errorf("%w: empty prompt", ErrAnalysisUnavailable)
	}

	body := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": prompt.System},
			{"role": "user", "content": prompt.User},
		},
	}
	if schema != nil {
		body["response_format"] = map[string]interface{}{
			"type": "json_schema",
			"json_schema": map[string]interface{}{
				"name":   schema.Name,
				"strict": true,
				"schema": schema.Schema,
			},
		}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAnalysisUnavailable, err)
	}
	if resp.IsError() {
		c.logger.Warn("llm provider error",
			zap.Int("status", resp.StatusCode()),
			zap.String("body", truncate(resp.String(), 512)))
		return "", fmt.Errorf("%w: provider returned status %d", ErrAnalysisUnavailable, resp.StatusCode())
	}

	content := gjson.Get(resp.String(), "choices.0.message.content").String()
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: empty completion", ErrAnalysisUnavailable)
	}

	return content, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
