package manifest

import (
	"fmt"
	"maps"
	"slices"
)

// Edits describes changes to a manifest. Remove maps a section to the keys
// deleted from it; Add maps a section to entries inserted into it.
type Edits struct {
	Remove map[string][]string
	Add    map[string]map[string]string
}

// RemoveAll merges removals into e.
func (e *Edits) RemoveAll(removals map[string][]string) {
	if len(removals) == 0 {
		return
	}
	if e.Remove == nil {
		e.Remove = make(map[string][]string)
	}
	for section, keys := range removals {
		e.Remove[section] = append(e.Remove[section], keys...)
	}
}

// AddAll merges additions into e. Later entries win on conflict.
func (e *Edits) AddAll(additions map[string]map[string]string) {
	if len(additions) == 0 {
		return
	}
	if e.Add == nil {
		e.Add = make(map[string]map[string]string)
	}
	for section, entries := range additions {
		if e.Add[section] == nil {
			e.Add[section] = make(map[string]string, len(entries))
		}
		maps.Copy(e.Add[section], entries)
	}
}

func (e Edits) Empty() bool {
	return len(e.Remove) == 0 && len(e.Add) == 0
}

// Apply performs removals, then insertions. Removing from an absent section
// is a no-op; inserting into one creates it.
func Apply(doc *Document, e Edits) error {
	for _, section := range slices.Sorted(maps.Keys(e.Remove)) {
		doc.Remove(section, e.Remove[section]...)
	}

	for _, section := range slices.Sorted(maps.Keys(e.Add)) {
		entries := e.Add[section]
		for _, key := range slices.Sorted(maps.Keys(entries)) {
			if err := doc.Set(section, key, entries[key]); err != nil {
				return fmt.Errorf("adding %s to %s: %w", key, section, err)
			}
		}
	}

	return nil
}

// EditFile loads the manifest at path, applies e and writes it back.
func EditFile(path string, e Edits) error {
	doc, err := Load(path)
	if err != nil {
		return err
	}
	if err := Apply(doc, e); err != nil {
		return err
	}
	return doc.Save(path)
}
