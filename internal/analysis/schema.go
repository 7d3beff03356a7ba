package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"legal-lens/internal/models"
)

const recordSchema = `{
  "type": "object",
  "required": ["summary", "riskLevel", "risks", "disclaimer"],
  "properties": {
    "summary": {
      "type": "array",
      "minItems": 1,
      "maxItems": 5,
      "items": {"type": "string"}
    },
    "riskLevel": {"enum": ["Safe", "Moderate Risk", "High Risk", "Unknown"]},
    "risks": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["label", "excerpt", "reason"],
        "properties": {
          "label": {"type": "string"},
          "excerpt": {"type": ["string", "null"]},
          "reason": {"type": "string"}
        }
      }
    },
    "disclaimer": {"type": "string"},
    "rawModelText": {"type": "string"}
  }
}`

// Validator checks records against the canonical shape before they are cached.
type Validator struct {
	schema *jsonschema.Schema
}

func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("analysis.json", strings.NewReader(recordSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("analysis.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

func (v *Validator) Validate(rec *models.AnalysisRecord) error {
	if rec == nil {
		return fmt.Errorf("nil analysis record")
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return fmt.Errorf("analysis record does not match schema: %w", err)
	}
	return nil
}
