// Package manifest edits the package.json of a generated project.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nullslate/nullslate/pkg/utils/fileutils"
)

// FileName is the manifest's path relative to a project root.
const FileName = "package.json"

var ErrSectionType = errors.New("manifest section is not an object")

// ParseError reports a manifest that is not a well-formed JSON object.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing manifest %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Document is a decoded manifest. Sections such as "dependencies" map entry
// names to values; every other top-level key is carried through untouched.
type Document struct {
	root map[string]any
}

// Load reads and decodes the manifest at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return doc, nil
}

// Parse decodes a manifest. Numbers are kept as written.
func Parse(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var root map[string]any
	if err := dec.Decode(&root); err != nil {
		return nil, err
	}
	if root == nil {
		return nil, errors.New("manifest root must be an object")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, errors.New("unexpected extra content after JSON document")
		}
		return nil, err
	}

	return &Document{root: root}, nil
}

// Section returns the named section. ok is false when the section is absent;
// err is set when it exists but is not an object.
func (d *Document) Section(name string) (section map[string]any, ok bool, err error) {
	raw, exists := d.root[name]
	if !exists {
		return nil, false, nil
	}
	section, isMap := raw.(map[string]any)
	if !isMap {
		return nil, true, fmt.Errorf("%w: %s", ErrSectionType, name)
	}
	return section, true, nil
}

// Has reports whether section contains key.
func (d *Document) Has(section, key string) bool {
	s, ok, err := d.Section(section)
	if !ok || err != nil {
		return false
	}
	_, found := s[key]
	return found
}

// Get returns the value of key in section.
func (d *Document) Get(section, key string) (any, bool) {
	s, ok, err := d.Section(section)
	if !ok || err != nil {
		return nil, false
	}
	v, found := s[key]
	return v, found
}

// Remove deletes keys from section and returns how many were present. An
// absent section, or one that is not an object, has nothing to remove.
func (d *Document) Remove(section string, keys ...string) int {
	s, ok, err := d.Section(section)
	if !ok || err != nil {
		return 0
	}

	removed := 0
	for _, key := range keys {
		if _, found := s[key]; found {
			delete(s, key)
			removed++
		}
	}
	return removed
}

// Set stores value under key, creating section when it is absent.
func (d *Document) Set(section, key string, value any) error {
	s, ok, err := d.Section(section)
	if err != nil {
		return err
	}
	if !ok {
		s = make(map[string]any)
		d.root[section] = s
	}
	s[key] = value
	return nil
}

// Encode writes the document as two-space indented JSON. Object keys are
// sorted, so identical documents always encode identically.
func (d *Document) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(d.root)
}

// Save replaces the file at path with the encoded document.
func (d *Document) Save(path string) error {
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	if err := fileutils.AtomicWrite(path, perm, d.Encode); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}
