package generator

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"go-forge/internal/model"
	"go-forge/pkg/fsutils"
)

// ErrUnknownTemplate is returned when no template is registered under a name.
var ErrUnknownTemplate = errors.New("unknown template")

// Placeholder tokens substituted into template content.
const (
	PlaceholderProjectName = "{{ .ProjectName }}"
	PlaceholderSlug        = "{{ .Slug }}"
	PlaceholderPascalName  = "{{ .PascalName }}"
	PlaceholderAbbrev      = "{{ .Abbrev }}"
)

// FileContent is one file of a template, before substitution.
type FileContent struct {
	Path    string `yaml:"path"`
	Content string `yaml:"content"`
}

// Template is a named starter file set. Files keep declaration order.
type Template struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Files       []FileContent `yaml:"files"`
}

// Registry holds the templates available to new projects.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]Template
}

var templateName = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]Template)}
}

// DefaultRegistry returns a registry preloaded with the built-in templates.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, t := range builtinTemplates() {
		if err := r.Register(t); err != nil {
			// Built-ins are static; a failure here is a programming error.
			panic(fmt.Sprintf("built-in template %q: %v", t.Name, err))
		}
	}
	return r
}

// Register adds or replaces a template after validating its name and paths.
func (r *Registry) Register(t Template) error {
	if !templateName.MatchString(t.Name) {
		return fmt.Errorf("invalid template name %q", t.Name)
	}
	if len(t.Files) == 0 {
		return fmt.Errorf("template %q has no files", t.Name)
	}

	seen := make(map[fsutils.RelPath]bool, len(t.Files))
	files := make([]FileContent, 0, len(t.Files))
	for _, f := range t.Files {
		p, err := fsutils.ParseRelPath(f.Path)
		if err != nil {
			return fmt.Errorf("template %q: %w", t.Name, err)
		}
		if seen[p] {
			return fmt.Errorf("template %q: duplicate file %s", t.Name, p)
		}
		seen[p] = true
		files = append(files, FileContent{Path: p.String(), Content: f.Content})
	}
	t.Files = files

	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[t.Name] = t
	return nil
}

// Names returns the registered template names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns the template registered under name.
func (r *Registry) Describe(name string) (Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[name]
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	return t, nil
}

// Instantiate renders the named template for projectName.
// The result depends only on its inputs.
func (r *Registry) Instantiate(name, projectName string) ([]model.FileEntry, error) {
	t, err := r.Describe(name)
	if err != nil {
		return nil, err
	}

	replacer := NewPlaceholders(projectName).Replacer()
	entries := make([]model.FileEntry, 0, len(t.Files))
	for _, f := range t.Files {
		entries = append(entries, model.FileEntry{
			Path:    fsutils.RelPath(f.Path), // validated by Register
			Content: replacer.Replace(f.Content),
		})
	}
	return entries, nil
}

// Placeholders are the values substituted into template content.
type Placeholders struct {
	ProjectName string
	Slug        string
	PascalName  string
	Abbrev      string
}

// NewPlaceholders derives every placeholder value from a project name.
func NewPlaceholders(projectName string) Placeholders {
	return Placeholders{
		ProjectName: projectName,
		Slug:        GenerateSlug(projectName),
		PascalName:  PascalName(projectName),
		Abbrev:      Abbrev(projectName),
	}
}

// Replacer substitutes all four tokens in a single pass, so a project name
// containing a token is never expanded twice.
func (p Placeholders) Replacer() *strings.Replacer {
	return strings.NewReplacer(
		PlaceholderProjectName, p.ProjectName,
		PlaceholderSlug, p.Slug,
		PlaceholderPascalName, p.PascalName,
		PlaceholderAbbrev, p.Abbrev,
	)
}
