// Package templating renders the server's HTML pages from embedded
// templates. Every page is parsed together with layout.html and executed
// through it.
package templating

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// layoutName is the template every page is executed through.
const layoutName = "layout.html"

// Engine holds one parsed template set per page.
type Engine struct {
	cache map[string]*template.Template
}

// NewEngine parses the embedded pages.
func NewEngine() (*Engine, error) {
	return newEngine(templateFS)
}

func newEngine(fsys fs.FS) (*Engine, error) {
	// 1. Find the page templates
	pages, err := fs.Glob(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	// 2. Parse each page with the layout into its own set
	cache := make(map[string]*template.Template)
	for _, page := range pages {
		name := path.Base(page)
		if name == layoutName {
			continue
		}
		ts, err := template.New(name).Funcs(funcs).ParseFS(fsys, "templates/"+layoutName, page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		cache[name] = ts
	}
	if len(cache) == 0 {
		return nil, fmt.Errorf("no page templates found")
	}
	return &Engine{cache: cache}, nil
}

// Pages lists the cached page names.
func (e *Engine) Pages() []string {
	names := make([]string, 0, len(e.cache))
	for name := range e.cache {
		names = append(names, name)
	}
	return names
}

// Render executes page through the layout into w. Output is buffered so a
// failed execution writes nothing.
func (e *Engine) Render(w io.Writer, page string, data any) error {
	ts, ok := e.cache[page]
	if !ok {
		return fmt.Errorf("template %s does not exist", page)
	}

	var buf bytes.Buffer
	if err := ts.ExecuteTemplate(&buf, layoutName, data); err != nil {
		if strings.Contains(err.Error(), `"content" is undefined`) || strings.Contains(err.Error(), `no such template "content"`) {
			return fmt.Errorf("failed to render %s: the page must define a \"content\" template", page)
		}
		return fmt.Errorf("failed to render %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

var funcs = template.FuncMap{
	"humanDate": humanDate,
	"byteSize":  byteSize,
}

func humanDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("02 Jan 2006 at 15:04 UTC")
}

func byteSize(content string) string {
	n := len(content)
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
