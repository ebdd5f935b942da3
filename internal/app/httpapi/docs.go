package httpapi

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"github.com/aiza-ai/platform/internal/config"
)

const (
	docsPath    = "/docs"
	redocPath   = "/redoc"
	openAPIPath = "/openapi.json"
)

//go:embed static/openapi.json
var openAPITemplate []byte

var docsPage = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html>
<head>
<title>{{.Title}} - Swagger UI</title>
<link type="text/css" rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
<script>
SwaggerUIBundle({url: "{{.SpecURL}}", dom_id: "#swagger-ui"})
</script>
</body>
</html>
`))

var redocPage = template.Must(template.New("redoc").Parse(`<!DOCTYPE html>
<html>
<head>
<title>{{.Title}} - ReDoc</title>
<meta charset="utf-8"/>
</head>
<body>
<redoc spec-url="{{.SpecURL}}"></redoc>
<script src="https://cdn.jsdelivr.net/npm/redoc@2/bundles/redoc.standalone.js"></script>
</body>
</html>
`))

type docsData struct {
	Title   string
	SpecURL string
}

// buildOpenAPI stamps the service name, description and version from
// settings into the embedded document.
func buildOpenAPI(s *config.Settings) ([]byte, error) {
	var doc map[string]any
	if err := json.Unmarshal(openAPITemplate, &doc); err != nil {
		return nil, fmt.Errorf("parse openapi document: %w", err)
	}
	info, ok := doc["info"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("openapi document has no info object")
	}
	info["title"] = s.AppName
	info["description"] = s.Description
	info["version"] = s.Version
	return json.Marshal(doc)
}

func (h *handler) openAPI(w http.ResponseWriter, _ *http.Request) error {
	doc, err := buildOpenAPI(h.settings)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(doc)
	return err
}

func (h *handler) swaggerUI(w http.ResponseWriter, _ *http.Request) error {
	return renderPage(w, docsPage, docsData{Title: h.settings.AppName, SpecURL: openAPIPath})
}

func (h *handler) redoc(w http.ResponseWriter, _ *http.Request) error {
	return renderPage(w, redocPage, docsData{Title: h.settings.AppName, SpecURL: openAPIPath})
}

func renderPage(w http.ResponseWriter, page *template.Template, data docsData) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return page.Execute(w, data)
}
