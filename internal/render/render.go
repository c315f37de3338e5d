// Package render turns named HTML views into markup for server-rendered pages.
package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/template/html/v2"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

// View names.
const (
	AppView      = "frontend/app"
	NotFoundView = "errors/not_found"
)

//go:embed templates
var templates embed.FS

// Renderer renders views from the embedded templates directory. View names
// are paths relative to it without the .html extension.
type Renderer struct {
	engine *html.Engine
}

// New loads and parses every embedded template.
func New() (*Renderer, error) {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		return nil, fmt.Errorf("opening templates: %w", err)
	}

	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFuncMap(Funcs())
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	return &Renderer{engine: engine}, nil
}

// Make renders the named view with data.
func (r *Renderer) Make(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.engine.Render(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}

	return template.HTML(buf.String()), nil
}

// Engine exposes the template engine for use as fiber Views.
func (r *Renderer) Engine() *html.Engine {
	return r.engine
}

// Funcs returns the helpers available to every view.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"json":       toJSON,
		"markdown":   Markdown,
		"formatDate": formatDate,
		"add":        func(a, b int) int { return a + b },
	}
}

// toJSON encodes v for embedding inside a script element. encoding/json
// escapes <, > and & so the result cannot close the element.
func toJSON(v any) (template.JS, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	return template.JS(b), nil
}

var ugcPolicy = bluemonday.UGCPolicy()

// Markdown converts user-written markdown to sanitized HTML.
func Markdown(source string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank,
	})
	out := markdown.ToHTML([]byte(source), p, renderer)

	return template.HTML(ugcPolicy.SanitizeBytes(out))
}

func formatDate(v any) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format("Jan 2, 2006")
	case *time.Time:
		if t == nil {
			return ""
		}
		return formatDate(*t)
	default:
		return ""
	}
}
