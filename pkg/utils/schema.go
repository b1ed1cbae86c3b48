package utils

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// JSONSchema renders the JSON schema of v with every definition inlined, so
// the output can be served or saved as a standalone document.
func JSONSchema(v any) (string, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true

	schemaBytes, err := json.MarshalIndent(r.Reflect(v), "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}
