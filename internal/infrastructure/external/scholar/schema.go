package scholar

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// profilePayloadSchema is the contract the discovery endpoint enforces on the
// flattened profile. Validating locally before the request turns a backend
// validation rejection into a fast local failure with field names attached.
const profilePayloadSchema = `{
	"type": "object",
	"required": ["name", "academic_status"],
	"properties": {
		"name":            {"type": "string", "minLength": 1},
		"academic_status": {"type": "string", "enum": ["high-school", "undergraduate", "graduate", "other"]},
		"year":            {"type": "string"},
		"school":          {"type": "string"},
		"gpa":             {"type": "number", "minimum": 0.0, "maximum": 4.0},
		"major":           {"type": "string"},
		"graduation_year": {"type": "integer", "minimum": 1950, "maximum": 2100},
		"background":      {"type": "array", "items": {"type": "string"}},
		"financial_need":  {"type": "boolean"},
		"interests":       {"type": "array", "items": {"type": "string"}}
	},
	"additionalProperties": false
}`

var compiledProfileSchema = gojsonschema.NewStringLoader(profilePayloadSchema)

// ValidatePayload checks the flattened profile against the discovery
// contract. It returns a single error naming every violated field.
func ValidatePayload(payload ProfilePayload) error {
	result, err := gojsonschema.Validate(compiledProfileSchema, gojsonschema.NewGoLoader(payload))
	if err != nil {
		return fmt.Errorf("scholar: schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}

	parts := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		parts = append(parts, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return fmt.Errorf("scholar: profile payload invalid: %s", strings.Join(parts, "; "))
}
