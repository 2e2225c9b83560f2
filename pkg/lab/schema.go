package lab

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SchemaID identifies the generated lab configuration schema.
const SchemaID = "https://github.com/ormasoftchile/labcheck/schemas/lab-v1.json"

// GenerateJSONSchema reflects a JSON Schema document from Config.
func GenerateJSONSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	s := r.Reflect(&Config{})
	s.ID = SchemaID
	s.Title = "labcheck lab configuration v1"
	s.Description = "Schema for labcheck lab.yaml documents"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return data, nil
}
