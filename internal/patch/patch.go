// Package patch splices replacement text into regions delimited by markers.
//
// A region looks like this in any comment syntax:
//
//	/* FORGE-PATCH-START:styles */
//	...replaceable lines...
//	/* FORGE-PATCH-END:styles */
//
// Markers may also share a line, as in
// <!-- FORGE-PATCH-START:title -->Home<!-- FORGE-PATCH-END:title -->.
// Both markers are kept; only the text between them changes.
package patch

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMarkersNotFound means the start or end marker for a patch id is absent.
var ErrMarkersNotFound = errors.New("patch markers not found")

const (
	startPrefix = "FORGE-PATCH-START:"
	endPrefix   = "FORGE-PATCH-END:"
)

var validID = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// StartMarker returns the start token for id.
func StartMarker(id string) string { return startPrefix + id }

// EndMarker returns the end token for id.
func EndMarker(id string) string { return endPrefix + id }

// ValidID reports whether id can be embedded in a marker.
func ValidID(id string) bool {
	return validID.MatchString(id)
}

// Apply replaces the region named id inside content.
func Apply(content, id, replacement string) (string, error) {
	if !ValidID(id) {
		return "", fmt.Errorf("%w: invalid patch id %q", ErrMarkersNotFound, id)
	}
	return Splice(content, StartMarker(id), EndMarker(id), replacement)
}

// Splice replaces the region between the first startMarker and the first
// later endMarker. It never guesses: if either marker is missing the content
// is returned unchanged with ErrMarkersNotFound.
func Splice(content, startMarker, endMarker, replacement string) (string, error) {
	from, to, inline, err := locate(content, startMarker, endMarker)
	if err != nil {
		return content, err
	}

	if !inline && replacement != "" && !strings.HasSuffix(replacement, "\n") {
		replacement += "\n"
	}

	var b strings.Builder
	b.Grow(len(content) - (to - from) + len(replacement))
	b.WriteString(content[:from])
	b.WriteString(replacement)
	b.WriteString(content[to:])
	return b.String(), nil
}

// Region returns the current text between the markers for id.
func Region(content, id string) (string, error) {
	from, to, _, err := locate(content, StartMarker(id), EndMarker(id))
	if err != nil {
		return "", err
	}
	return content[from:to], nil
}

var (
	commentCloser = regexp.MustCompile(`^[ \t]*(?:-->|\*/)?[ \t]*`)
	commentOpener = regexp.MustCompile(`[ \t]*(?:<!--|/\*|//)?[ \t]*$`)
)

// locate returns the byte range of the region between the markers.
//
// When each marker sits on its own line the region is the whole lines
// between them. Otherwise it is the text between the comment that closes
// the start marker and the comment that opens the end marker, so
// "<!-- START:x -->old<!-- END:x -->" yields "old".
func locate(content, startMarker, endMarker string) (from, to int, inline bool, err error) {
	start := indexToken(content, startMarker, 0)
	if start < 0 {
		return 0, 0, false, fmt.Errorf("%w: %q", ErrMarkersNotFound, startMarker)
	}
	afterStart := start + len(startMarker)
	end := indexToken(content, endMarker, afterStart)
	if end < 0 {
		return 0, 0, false, fmt.Errorf("%w: %q", ErrMarkersNotFound, endMarker)
	}

	from = afterStart + len(commentCloser.FindString(content[afterStart:end]))
	to = end - len(commentOpener.FindString(content[from:end]))
	if to < from {
		to = from
	}

	ownLines := from < end && content[from] == '\n' &&
		to > from && content[to-1] == '\n'
	if ownLines {
		return from + 1, to, false, nil
	}
	return from, to, true, nil
}

var startTokenPattern = regexp.MustCompile(regexp.QuoteMeta(startPrefix) + `([A-Za-z0-9_.-]+)`)

// Regions lists the patch ids that have both markers in content, in order of appearance.
func Regions(content string) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, m := range startTokenPattern.FindAllStringSubmatch(content, -1) {
		id := m[1]
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := Region(content, id); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// indexToken finds token at or after from, skipping hits that are only a
// prefix of a longer id ("init" must not match "initAll").
func indexToken(content, token string, from int) int {
	for from <= len(content) {
		i := strings.Index(content[from:], token)
		if i < 0 {
			return -1
		}
		i += from
		after := i + len(token)
		if after >= len(content) || !isIDByte(content[after]) {
			return i
		}
		from = after
	}
	return -1
}

func isIDByte(c byte) bool {
	return c == '_' || c == '.' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
