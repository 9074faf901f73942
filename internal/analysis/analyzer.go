// Package analysis turns free-text symptom descriptions into ranked condition
// scores and guidance. It is pure computation over a read-only knowledge base
// and is safe for concurrent use.
package analysis

import (
	"time"

	"github.com/Skufu/MedIntel/internal/knowledge"
)

// MaxResults caps the ranked conditions returned per analysis.
const MaxResults = 5

const Disclaimer = "This analysis is for educational purposes only and does not constitute medical advice. Always consult a qualified healthcare professional."

type Analyzer struct {
	kb  *knowledge.Base
	now func() time.Time
}

type Option func(*Analyzer)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		a.now = now
	}
}

func New(kb *knowledge.Base, opts ...Option) *Analyzer {
	a := &Analyzer{kb: kb, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Analyzer) Knowledge() *knowledge.Base { return a.kb }

// Analyze runs the full pipeline on text. Any string, including an empty
// one, produces a well-formed result.
func (a *Analyzer) Analyze(text string) Result {
	lower, tokens := Normalize(text, a.kb.IsStopWord)
	level := DetectEmergency(lower, a.kb.Emergency())
	extracted := ExtractSymptoms(lower, a.kb.Synonyms())

	ranked := Rank(ScoreAll(extracted, a.kb.Conditions()))
	if len(ranked) > MaxResults {
		ranked = ranked[:MaxResults]
	}

	return Result{
		Success:   true,
		Timestamp: a.now().UTC(),
		InputAnalysis: InputAnalysis{
			ExtractedSymptoms: extracted,
			SymptomCount:      len(extracted),
			EmergencyDetected: level != EmergencyNone,
			EmergencyLevel:    level,
			ProcessedTokens:   tokens,
		},
		RiskAssessment: ranked,
		Insight:        GenerateInsight(ranked, level),
		Disclaimer:     Disclaimer,
	}
}
