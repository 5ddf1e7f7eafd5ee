package generator

import (
	"regexp"
	"strings"
	"unicode"
)

// --- Slug Generation ---
var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`) // For slugs, allow only lowercase alphanum and hyphen
var multiHyphen = regexp.MustCompile(`-+`)             // To collapse multiple hyphens

// GenerateSlug creates a URL-friendly slug from a project name.
func GenerateSlug(name string) string {
	slug := strings.ToLower(name)
	slug = nonAlphanumeric.ReplaceAllString(slug, "-") // Replace non-alphanum with hyphens
	slug = multiHyphen.ReplaceAllString(slug, "-")     // Collapse multiple hyphens
	slug = strings.Trim(slug, "-")                     // Trim leading/trailing hyphens
	if slug == "" {
		return "project"
	}
	return slug
}

// --- Identifier helpers ---
var wordPattern = regexp.MustCompile(`[A-Za-z0-9]+`)

// PascalName joins the alphanumeric words of name with each word capitalized.
// "task tracker" becomes "TaskTracker".
func PascalName(name string) string {
	words := wordPattern.FindAllString(name, -1)
	if len(words) == 0 {
		return "Project"
	}
	var b strings.Builder
	for _, w := range words {
		b.WriteString(strings.ToUpper(w[:1]))
		b.WriteString(w[1:])
	}
	out := b.String()
	if unicode.IsDigit(rune(out[0])) {
		out = "P" + out
	}
	return out
}

// Abbrev returns a two-letter upper-case abbreviation: initials of the first
// two words, or the first two letters of a single word.
func Abbrev(name string) string {
	words := wordPattern.FindAllString(name, -1)
	switch {
	case len(words) >= 2:
		return strings.ToUpper(words[0][:1] + words[1][:1])
	case len(words) == 1 && len(words[0]) >= 2:
		return strings.ToUpper(words[0][:2])
	case len(words) == 1:
		return strings.ToUpper(words[0] + "X")
	}
	return "PR"
}
