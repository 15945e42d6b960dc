package handler

import (
	"net/http"

	"devtrack/api"
)

const swaggerUIPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>devtrack API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script src="/docs/swagger-init.js"></script>
</body>
</html>
`

const swaggerInitScript = `window.ui = SwaggerUIBundle({ url: "/docs/openapi.json", dom_id: "#swagger-ui" });
`

// docsCSP relaxes the default policy just enough for the Swagger UI assets.
const docsCSP = "default-src 'none'; script-src 'self' https://unpkg.com; style-src https://unpkg.com; img-src 'self' data: https://unpkg.com; connect-src 'self'; frame-ancestors 'none'"

// DocsHandler serves the interactive API documentation.
type DocsHandler struct {
	specJSON []byte
}

// NewDocsHandler renders the embedded OpenAPI document once at startup.
func NewDocsHandler() (*DocsHandler, error) {
	specJSON, err := api.OpenAPIJSON()
	if err != nil {
		return nil, err
	}
	return &DocsHandler{specJSON: specJSON}, nil
}

// UI handles GET /docs.
func (h *DocsHandler) UI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Security-Policy", docsCSP)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(swaggerUIPage))
}

// InitScript handles GET /docs/swagger-init.js.
func (h *DocsHandler) InitScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(swaggerInitScript))
}

// JSON handles GET /docs/openapi.json.
func (h *DocsHandler) JSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(h.specJSON)
}

// YAML handles GET /docs/openapi.yaml.
func (h *DocsHandler) YAML(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(api.OpenAPIYAML())
}
