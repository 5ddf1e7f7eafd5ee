package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go-forge/pkg/fsutils"
)

// FileSet is an insertion-ordered map from path to content.
// Its JSON form is an object whose keys keep that order.
type FileSet struct {
	order   []fsutils.RelPath
	content map[fsutils.RelPath]string
}

// NewFileSet builds a FileSet from entries, later duplicates replacing earlier ones.
func NewFileSet(entries ...FileEntry) *FileSet {
	fs := &FileSet{}
	for _, e := range entries {
		fs.Set(e.Path, e.Content)
	}
	return fs
}

// Len returns the number of files.
func (fs *FileSet) Len() int {
	return len(fs.order)
}

// Get returns the content stored at p.
func (fs *FileSet) Get(p fsutils.RelPath) (string, bool) {
	c, ok := fs.content[p]
	return c, ok
}

// Has reports whether p is tracked.
func (fs *FileSet) Has(p fsutils.RelPath) bool {
	_, ok := fs.content[p]
	return ok
}

// Set stores content at p, keeping p's position if it already exists.
func (fs *FileSet) Set(p fsutils.RelPath, content string) {
	if fs.content == nil {
		fs.content = make(map[fsutils.RelPath]string)
	}
	if _, ok := fs.content[p]; !ok {
		fs.order = append(fs.order, p)
	}
	fs.content[p] = content
}

// Delete removes p and reports whether it was present.
func (fs *FileSet) Delete(p fsutils.RelPath) bool {
	if _, ok := fs.content[p]; !ok {
		return false
	}
	delete(fs.content, p)
	for i, existing := range fs.order {
		if existing == p {
			fs.order = append(fs.order[:i], fs.order[i+1:]...)
			break
		}
	}
	return true
}

// Rename moves the entry at from to to in place. The caller checks that
// from exists and to does not.
func (fs *FileSet) Rename(from, to fsutils.RelPath) {
	c := fs.content[from]
	delete(fs.content, from)
	fs.content[to] = c
	for i, existing := range fs.order {
		if existing == from {
			fs.order[i] = to
			break
		}
	}
}

// Paths returns the tracked paths in order.
func (fs *FileSet) Paths() []fsutils.RelPath {
	out := make([]fsutils.RelPath, len(fs.order))
	copy(out, fs.order)
	return out
}

// Entries returns copies of every file in order.
func (fs *FileSet) Entries() []FileEntry {
	out := make([]FileEntry, 0, len(fs.order))
	for _, p := range fs.order {
		out = append(out, FileEntry{Path: p, Content: fs.content[p]})
	}
	return out
}

// Clone returns an independent copy.
func (fs *FileSet) Clone() *FileSet {
	return NewFileSet(fs.Entries()...)
}

// MarshalJSON writes the set as a JSON object in insertion order.
func (fs FileSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range fs.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(p))
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(fs.content[p])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object of path -> content in document order.
// Every key must be a valid relative path.
func (fs *FileSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to read file set: %w", err)
	}
	if tok == nil {
		*fs = FileSet{}
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("file set must be a JSON object")
	}

	out := FileSet{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to read file set key: %w", err)
		}
		key, _ := keyTok.(string)
		p, err := fsutils.ParseRelPath(key)
		if err != nil {
			return err
		}
		var content string
		if err := dec.Decode(&content); err != nil {
			return fmt.Errorf("failed to read content for %s: %w", key, err)
		}
		out.Set(p, content)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("failed to close file set: %w", err)
	}
	*fs = out
	return nil
}
