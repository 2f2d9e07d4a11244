package options

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry is one value of a codelist.
type Entry struct {
	ID          string `json:"id" yaml:"id"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Table maps codelist names to their ordered entries. A Table is read-only
// after construction and safe to share.
type Table struct {
	lists map[string][]Entry
}

// NewTable copies lists into a Table.
func NewTable(lists map[string][]Entry) Table {
	out := make(map[string][]Entry, len(lists))
	for name, entries := range lists {
		out[strings.TrimSpace(name)] = append([]Entry(nil), entries...)
	}
	return Table{lists: out}
}

// Lookup returns a copy of the entries registered under name.
func (t Table) Lookup(name string) ([]Entry, bool) {
	entries, ok := t.lists[name]
	if !ok {
		return nil, false
	}
	return append([]Entry(nil), entries...), true
}

// Merge returns a table holding the lists of t and other. Lists present in
// both are taken from other.
func (t Table) Merge(other Table) Table {
	merged := make(map[string][]Entry, len(t.lists)+len(other.lists))
	for name, entries := range t.lists {
		merged[name] = entries
	}
	for name, entries := range other.lists {
		merged[name] = entries
	}
	return NewTable(merged)
}

// Names returns the codelist names in sorted order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t.lists))
	for name := range t.lists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len reports how many codelists the table holds.
func (t Table) Len() int {
	return len(t.lists)
}

// ParseTable decodes a YAML (or JSON) mapping of codelist name to entries.
func ParseTable(raw []byte) (Table, error) {
	lists, err := parseLists(raw, "table")
	if err != nil {
		return Table{}, err
	}
	return NewTable(lists), nil
}

// LoadTable walks fsys and merges every JSON/YAML codelist file it finds. A
// codelist defined in two files is an error.
func LoadTable(fsys fs.FS) (Table, error) {
	merged := make(map[string][]Entry)
	if fsys == nil {
		return NewTable(merged), nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isTableFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("options: read %s: %w", path, err)
		}
		lists, err := parseLists(data, path)
		if err != nil {
			return err
		}
		for name, entries := range lists {
			if _, exists := merged[name]; exists {
				return fmt.Errorf("options: duplicate codelist %q (file %s)", name, path)
			}
			merged[name] = entries
		}
		return nil
	})
	if err != nil {
		return Table{}, err
	}
	return NewTable(merged), nil
}

func parseLists(raw []byte, source string) (map[string][]Entry, error) {
	if strings.TrimSpace(string(raw)) == "" {
		return nil, fmt.Errorf("options: codelist %s is empty", source)
	}
	var lists map[string][]Entry
	if err := yaml.Unmarshal(raw, &lists); err != nil {
		return nil, fmt.Errorf("options: parse %s: %w", source, err)
	}
	for name, entries := range lists {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("options: codelist %s defines an empty name", source)
		}
		for i, entry := range entries {
			if strings.TrimSpace(entry.ID) == "" {
				return nil, fmt.Errorf("options: codelist %q entry %d in %s has no id", name, i, source)
			}
		}
	}
	return lists, nil
}

func isTableFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// CodelistKey derives the table key from a value IRI: the text after the
// fragment separator, or the last path segment when the IRI has no fragment.
func CodelistKey(valueIRI string) string {
	iri := strings.TrimSpace(valueIRI)
	if idx := strings.LastIndex(iri, "#"); idx >= 0 {
		return iri[idx+1:]
	}
	if idx := strings.LastIndex(iri, "/"); idx >= 0 {
		return iri[idx+1:]
	}
	return iri
}
