package forge

import (
	"net/url"
	"strings"

	"go-forge/internal/model"
	"go-forge/pkg/fsutils"

	"golang.org/x/net/html"
)

// EntryPath is the file every project is expected to start from.
const EntryPath = fsutils.RelPath("index.html")

type smokeCheck struct {
	id   string
	name string
	run  func(files *model.FileSet) (bool, string)
}

// smokeChecks run in declaration order; each one is independent.
var smokeChecks = []smokeCheck{
	{"entry-file", "Has an entry file (index.html)", checkEntryFile},
	{"manifest", "Has a manifest file", checkManifest},
	{"non-empty", "No file is empty", checkNonEmpty},
	{"root-element", "Entry file has opening and closing <html> tags", checkRootElement},
	{"local-refs", "Local src/href references resolve", checkLocalRefs},
}

// RunSmokeTests evaluates the fixed checklist against the current files.
// It never mutates the store.
func (s *Store) RunSmokeTests() []model.SmokeResult {
	s.mu.Lock()
	files := s.files.Clone()
	s.mu.Unlock()

	results := make([]model.SmokeResult, 0, len(smokeChecks))
	for _, c := range smokeChecks {
		passed, detail := c.run(files)
		results = append(results, model.SmokeResult{ID: c.id, Name: c.name, Passed: passed, Detail: detail})
	}
	return results
}

// Passed reports whether every result passed.
func Passed(results []model.SmokeResult) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

func checkEntryFile(files *model.FileSet) (bool, string) {
	if files.Has(EntryPath) {
		return true, ""
	}
	return false, "index.html is missing"
}

func checkManifest(files *model.FileSet) (bool, string) {
	if files.Has(ManifestPath) {
		return true, ""
	}
	return false, "manifest.json is missing; build the manifest first"
}

func checkNonEmpty(files *model.FileSet) (bool, string) {
	var empty []string
	for _, f := range files.Entries() {
		if f.Content == "" {
			empty = append(empty, f.Path.String())
		}
	}
	if len(empty) > 0 {
		return false, "empty: " + strings.Join(empty, ", ")
	}
	return true, ""
}

func checkRootElement(files *model.FileSet) (bool, string) {
	content, ok := files.Get(EntryPath)
	if !ok {
		return false, "index.html is missing"
	}
	lower := strings.ToLower(content)
	switch {
	case !strings.Contains(lower, "<html"):
		return false, "no opening <html> tag"
	case !strings.Contains(lower, "</html>"):
		return false, "no closing </html> tag"
	}
	return true, ""
}

func checkLocalRefs(files *model.FileSet) (bool, string) {
	content, ok := files.Get(EntryPath)
	if !ok {
		return false, "index.html is missing"
	}
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return false, "could not parse index.html: " + err.Error()
	}

	var missing []string
	for _, ref := range collectRefs(doc) {
		p, local := localRef(ref)
		if !local {
			continue
		}
		if p == "" || !files.Has(p) {
			missing = append(missing, ref)
		}
	}
	if len(missing) > 0 {
		return false, "unresolved: " + strings.Join(missing, ", ")
	}
	return true, ""
}

// collectRefs returns every src and href attribute value in document order.
func collectRefs(n *html.Node) []string {
	var refs []string
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, attr := range n.Attr {
				if attr.Key == "src" || attr.Key == "href" {
					refs = append(refs, attr.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(n)
	return refs
}

// localRef classifies a reference. Absolute paths, anchors, external URLs
// and empty values are not local. A local reference that cannot be a valid
// project path comes back with an empty RelPath.
func localRef(ref string) (fsutils.RelPath, bool) {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return "", false
	case strings.HasPrefix(ref, "/"): // absolute, and protocol-relative "//host"
		return "", false
	case strings.HasPrefix(ref, "#"):
		return "", false
	}
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" {
		return "", false
	}

	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	if ref == "" {
		return "", false
	}
	if unescaped, err := url.PathUnescape(ref); err == nil {
		ref = unescaped
	}
	p, err := fsutils.ParseRelPath(ref)
	if err != nil {
		return "", true
	}
	return p, true
}
