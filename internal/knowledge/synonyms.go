package knowledge

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// Synonym maps one canonical symptom to the phrases that indicate it.
type Synonym struct {
	Canonical string   `json:"canonical"`
	Variants  []string `json:"variants"`
}

// SynonymTable is an ordered mapping from canonical symptom to phrase
// variants. Iteration follows insertion order, which fixes the order in which
// extracted symptoms are reported.
type SynonymTable struct {
	entries []Synonym
	index   map[string]int
	dups    []string
}

// NewSynonymTable builds a table from entries in the given order. Repeated
// canonical keys are kept aside and rejected when the table is validated.
func NewSynonymTable(entries ...Synonym) SynonymTable {
	var t SynonymTable
	for _, e := range entries {
		t.add(e.Canonical, e.Variants)
	}
	return t
}

func (t *SynonymTable) add(canonical string, variants []string) {
	if t.index == nil {
		t.index = make(map[string]int)
	}
	if _, ok := t.index[canonical]; ok {
		t.dups = append(t.dups, canonical)
		return
	}
	t.index[canonical] = len(t.entries)
	t.entries = append(t.entries, Synonym{Canonical: canonical, Variants: slices.Clone(variants)})
}

// UnmarshalYAML decodes a mapping node without losing key order.
func (t *SynonymTable) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("synonyms: line %d: expected a mapping", value.Line)
	}
	*t = SynonymTable{}
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		var variants []string
		if err := val.Decode(&variants); err != nil {
			return fmt.Errorf("synonyms: %q: %w", key.Value, err)
		}
		t.add(key.Value, variants)
	}
	return nil
}

func (t SynonymTable) Len() int { return len(t.entries) }

// Entries returns the table in order. The result must not be modified.
func (t SynonymTable) Entries() []Synonym { return t.entries }

func (t SynonymTable) Has(canonical string) bool {
	_, ok := t.index[canonical]
	return ok
}

func (t SynonymTable) Variants(canonical string) ([]string, bool) {
	i, ok := t.index[canonical]
	if !ok {
		return nil, false
	}
	return t.entries[i].Variants, true
}

func (t SynonymTable) clone() SynonymTable {
	out := SynonymTable{
		entries: make([]Synonym, len(t.entries)),
		index:   make(map[string]int, len(t.index)),
	}
	for i, e := range t.entries {
		out.entries[i] = Synonym{Canonical: e.Canonical, Variants: slices.Clone(e.Variants)}
		out.index[e.Canonical] = i
	}
	return out
}
