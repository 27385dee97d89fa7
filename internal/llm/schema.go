package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildCandidateJSONSchema returns the record schema (draft 2020-12 subset) as a generic map.
func BuildCandidateJSONSchema() map[string]any {
	str := map[string]any{"type": "string"}
	strList := map[string]any{"type": "array", "items": str}
	object := func(fields ...string) map[string]any {
		props := make(map[string]any, len(fields))
		for _, f := range fields {
			props[f] = str
		}
		return map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties":           props,
		}
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"contactInformation": object("name", "phone", "email", "city", "country"),
			"education": map[string]any{
				"type":  "array",
				"items": object("degree", "university", "faculty", "startYear", "endYear", "grade"),
			},
			"workExperience": map[string]any{
				"type":  "array",
				"items": object("title", "description", "company", "startDate", "endDate"),
			},
			"skills":          strList,
			"spokenLanguages": strList,
		},
		"required": []string{"contactInformation", "skills"},
	}
}

var (
	candidateSchemaOnce sync.Once
	candidateSchema     *jsonschema.Schema
	candidateSchemaErr  error
)

func compiledCandidateSchema() (*jsonschema.Schema, error) {
	candidateSchemaOnce.Do(func() {
		b, err := json.Marshal(BuildCandidateJSONSchema())
		if err != nil {
			candidateSchemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("candidate.json", bytes.NewReader(b)); err != nil {
			candidateSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		candidateSchema, candidateSchemaErr = compiler.Compile("candidate.json")
	})
	return candidateSchema, candidateSchemaErr
}

// ValidateCandidateJSON reports where data departs from the record schema.
func ValidateCandidateJSON(data []byte) error {
	schema, err := compiledCandidateSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
