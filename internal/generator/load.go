package generator

import (
	"fmt"
	"path/filepath"
	"strings"

	"go-forge/pkg/fsutils"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML template definition and registers it.
//
//	name: notes
//	description: Plain notes page
//	files:
//	  - path: index.html
//	    content: |
//	      <html>...</html>
func (r *Registry) LoadFile(path string) (Template, error) {
	data, err := fsutils.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("failed to read template file %s: %w", path, err)
	}

	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Template{}, fmt.Errorf("failed to parse template file %s: %w", path, err)
	}
	if t.Name == "" {
		// Fall back to the file name without extension
		t.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	if err := r.Register(t); err != nil {
		return Template{}, fmt.Errorf("failed to register template from %s: %w", path, err)
	}
	return t, nil
}

// LoadDir registers every *.yaml / *.yml file directly under dir and returns
// the names loaded. The first failing file aborts the scan.
func (r *Registry) LoadDir(dir string) ([]string, error) {
	entries, err := fsutils.ScanDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan template directory %s: %w", dir, err)
	}

	var loaded []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		t, err := r.LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return loaded, err
		}
		loaded = append(loaded, t.Name)
	}
	return loaded, nil
}
