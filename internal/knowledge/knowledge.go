// Package knowledge holds the static medical catalog the analyzer scores against:
// conditions, symptom synonyms, emergency trigger phrases and stop-words.
//
// A Base is built once, validated, and never mutated afterwards, so a single
// instance may be shared by any number of goroutines.
package knowledge

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed knowledge.yaml
var embedded []byte

// DefaultWeight applies to a profile symptom that has no weight entry.
const DefaultWeight = 5

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityModerate, SeverityHigh, SeverityCritical:
		return true
	default:
		return false
	}
}

type Condition struct {
	ID              string         `yaml:"id" json:"id"`
	Name            string         `yaml:"name" json:"name"`
	Symptoms        []string       `yaml:"symptoms" json:"symptoms"`
	Weights         map[string]int `yaml:"weights" json:"weights"`
	RiskFactors     []string       `yaml:"risk_factors" json:"riskFactors"`
	Emergency       bool           `yaml:"emergency" json:"emergency"`
	Severity        Severity       `yaml:"severity" json:"severity"`
	Prevention      []string       `yaml:"prevention" json:"prevention"`
	Recommendations []string       `yaml:"recommendations" json:"recommendations"`
}

// Weight returns the clinical weight of symptom for c, or DefaultWeight when
// the condition has no entry for it.
func (c Condition) Weight(symptom string) int {
	if w, ok := c.Weights[symptom]; ok {
		return w
	}
	return DefaultWeight
}

func (c Condition) clone() Condition {
	out := c
	out.Symptoms = slices.Clone(c.Symptoms)
	out.RiskFactors = slices.Clone(c.RiskFactors)
	out.Prevention = slices.Clone(c.Prevention)
	out.Recommendations = slices.Clone(c.Recommendations)
	if c.Weights != nil {
		out.Weights = make(map[string]int, len(c.Weights))
		for k, v := range c.Weights {
			out.Weights[k] = v
		}
	}
	return out
}

// EmergencyKeywords are literal trigger phrases. Critical is scanned before Urgent.
type EmergencyKeywords struct {
	Critical []string `yaml:"critical" json:"critical"`
	Urgent   []string `yaml:"urgent" json:"urgent"`
}

type document struct {
	Version    string            `yaml:"version"`
	Conditions []Condition       `yaml:"conditions"`
	Synonyms   SynonymTable      `yaml:"synonyms"`
	Emergency  EmergencyKeywords `yaml:"emergency"`
	StopWords  []string          `yaml:"stop_words"`
}

// Base is a validated, read-only knowledge base. Slices returned by its
// accessors are shared with the Base and must not be modified.
type Base struct {
	version    string
	conditions []Condition
	byID       map[string]int
	synonyms   SynonymTable
	emergency  EmergencyKeywords
	stopWords  map[string]struct{}
}

// Data is the raw material for New.
type Data struct {
	Version    string
	Conditions []Condition
	Synonyms   SynonymTable
	Emergency  EmergencyKeywords
	StopWords  []string
}

// New validates data and returns a Base holding private copies of its data.
func New(data Data) (*Base, error) {
	if err := validate(data); err != nil {
		return nil, err
	}

	b := &Base{
		version:    data.Version,
		conditions: make([]Condition, 0, len(data.Conditions)),
		byID:       make(map[string]int, len(data.Conditions)),
		synonyms:   data.Synonyms.clone(),
		emergency: EmergencyKeywords{
			Critical: slices.Clone(data.Emergency.Critical),
			Urgent:   slices.Clone(data.Emergency.Urgent),
		},
		stopWords: make(map[string]struct{}, len(data.StopWords)),
	}
	for i, c := range data.Conditions {
		b.conditions = append(b.conditions, c.clone())
		b.byID[c.ID] = i
	}
	for _, w := range data.StopWords {
		b.stopWords[w] = struct{}{}
	}
	return b, nil
}

// Parse decodes and validates a YAML knowledge base artifact.
func Parse(data []byte) (*Base, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode knowledge base: %w", err)
	}
	return New(Data(doc))
}

func Load(r io.Reader) (*Base, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read knowledge base: %w", err)
	}
	return Parse(data)
}

func LoadFile(path string) (*Base, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open knowledge base: %w", err)
	}
	defer f.Close()
	return Load(f)
}

var (
	defaultOnce sync.Once
	defaultBase *Base
	defaultErr  error
)

// Default returns the embedded knowledge base. It is parsed on first use.
func Default() (*Base, error) {
	defaultOnce.Do(func() {
		defaultBase, defaultErr = Parse(embedded)
	})
	return defaultBase, defaultErr
}

func (b *Base) Version() string { return b.version }

// Conditions returns the catalog in its configured order.
func (b *Base) Conditions() []Condition { return b.conditions }

func (b *Base) Condition(id string) (Condition, bool) {
	i, ok := b.byID[id]
	if !ok {
		return Condition{}, false
	}
	return b.conditions[i], true
}

func (b *Base) Synonyms() SynonymTable { return b.synonyms }

func (b *Base) Emergency() EmergencyKeywords { return b.emergency }

func (b *Base) IsStopWord(token string) bool {
	_, ok := b.stopWords[token]
	return ok
}
