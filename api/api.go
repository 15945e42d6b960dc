// Package api embeds the OpenAPI description of the HTTP interface.
package api

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPIYAML []byte

// OpenAPIYAML returns the raw embedded document.
func OpenAPIYAML() []byte {
	return openAPIYAML
}

// OpenAPIJSON decodes the embedded YAML document and re-encodes it as JSON.
func OpenAPIJSON() ([]byte, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(openAPIYAML, &doc); err != nil {
		return nil, fmt.Errorf("decode openapi document: %w", err)
	}
	return json.Marshal(doc)
}
