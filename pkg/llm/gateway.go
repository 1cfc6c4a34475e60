// Package llm is the single narrow interface to the remote language model.
// Callers hand it a system/user prompt and, optionally, a strict JSON schema;
// they get back free text or a payload guaranteed to carry the schema's
// required keys. Every failure class - transport, provider, malformed body,
// missing fields - collapses into ErrAnalysisUnavailable.
package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrAnalysisUnavailable is the one error the gateway surfaces. There is no
// retry policy here: callers treat the remote model as fail-fast.
var ErrAnalysisUnavailable = errors.New("analysis unavailable")

// Prompt is a system instruction plus the user content it applies to. Both
// must be non-empty.
type Prompt struct {
	System string
	User   string
}

// Schema names a strict JSON-schema object contract for the response. All
// required keys must be enumerated; the gateway verifies them before
// returning.
type Schema struct {
	Name     string
	Required []string
	Schema   map[string]interface{}
}

// Gateway invokes the remote model. Implementations must be safe for
// concurrent use.
type Gateway interface {
	// Complete returns the model's free-form text for the prompt.
	Complete(ctx context.Context, prompt Prompt) (string, error)
	// CompleteJSON constrains the response to the given schema and returns
	// the raw JSON payload. When it returns nil error, the payload parses
	// and contains every required key.
	CompleteJSON(ctx context.Context, prompt Prompt, schema Schema) (json.RawMessage, error)
}

// ObjectSchema builds a strict object schema from property definitions,
// marking every property required, which is what strict providers demand.
func ObjectSchema(name string, properties map[string]interface{}) Schema {
	required := make([]string, 0, len(properties))
	for key := range properties {
		required = append(required, key)
	}
	return Schema{
		Name:     name,
		Required: required,
		Schema: map[string]interface{}{
			"type":                 "object",
			"properties":           properties,
			"required":             required,
			"additionalProperties": false,
		},
	}
}
