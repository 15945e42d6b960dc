package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAPIJSON_DescribesEveryRoute(t *testing.T) {
	raw, err := OpenAPIJSON()
	require.NoError(t, err)

	var doc struct {
		OpenAPI string                            `json:"openapi"`
		Paths   map[string]map[string]interface{} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Equal(t, "3.0.3", doc.OpenAPI)
	assert.Contains(t, doc.Paths["/register"], "post")
	assert.Contains(t, doc.Paths["/devices"], "get")
	assert.Contains(t, doc.Paths["/devices/{serial_number}"], "get")
	assert.Contains(t, doc.Paths["/devices/{serial_number}"], "delete")
	assert.Contains(t, doc.Paths["/take"], "post")
	assert.Contains(t, doc.Paths["/release/{serial_number}"], "delete")
}
