package analysis

import (
	"reflect"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/Skufu/MedIntel/internal/knowledge"
)

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	kb, err := knowledge.Default()
	if err != nil {
		t.Fatalf("load knowledge base: %v", err)
	}
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return New(kb, WithClock(func() time.Time { return fixed }))
}

func scoreIDs(scores []ConditionScore) []string {
	ids := make([]string, 0, len(scores))
	for _, s := range scores {
		ids = append(ids, s.ConditionID)
	}
	return ids
}

func sameSet(a, b []string) bool {
	x, y := slices.Clone(a), slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}

func TestAnalyze_HeartAttack(t *testing.T) {
	a := newTestAnalyzer(t)
	res := a.Analyze("I have chest pain and sweating and shortness of breath")

	want := []string{"chest pain", "sweating", "shortness of breath"}
	if !sameSet(res.InputAnalysis.ExtractedSymptoms, want) {
		t.Fatalf("expected symptoms %v, got %v", want, res.InputAnalysis.ExtractedSymptoms)
	}
	if res.InputAnalysis.SymptomCount != 3 {
		t.Fatalf("expected symptom count 3, got %d", res.InputAnalysis.SymptomCount)
	}
	if res.InputAnalysis.EmergencyLevel != EmergencyCritical || !res.InputAnalysis.EmergencyDetected {
		t.Fatalf("expected critical emergency, got %+v", res.InputAnalysis)
	}

	top, ok := res.Top()
	if !ok || top.ConditionName != "Heart Attack" || top.MatchCount != 3 {
		t.Fatalf("expected Heart Attack with 3 matches on top, got %+v", top)
	}
	if top.Score != 47 || top.Severity != knowledge.SeverityModerate {
		t.Fatalf("expected score 47 (moderate), got %d (%s)", top.Score, top.Severity)
	}

	wantRank := []string{"heart_attack", "pneumonia", "hypertension", "asthma_attack", "anxiety_attack"}
	if got := scoreIDs(res.RiskAssessment); !slices.Equal(got, wantRank) {
		t.Fatalf("unexpected ranking: %v", got)
	}

	if res.Insight.Summary != summaryCritical {
		t.Fatalf("expected critical summary, got %q", res.Insight.Summary)
	}
	if !slices.Equal(res.Insight.NextSteps, emergencySteps) {
		t.Fatalf("expected emergency steps, got %v", res.Insight.NextSteps)
	}
	if len(res.Insight.SafetyNote) != 4 || !strings.HasPrefix(res.Insight.SafetyNote[0], "WARNING") {
		t.Fatalf("expected warning-led safety note, got %v", res.Insight.SafetyNote)
	}
	if got := len(res.Insight.AdditionalConsiderations); got != 3 {
		t.Fatalf("expected 3 additional considerations, got %d", got)
	}
	if res.Insight.AdditionalConsiderations[0].Name != "Pneumonia" || res.Insight.AdditionalConsiderations[0].Score != 39 {
		t.Fatalf("unexpected first consideration: %+v", res.Insight.AdditionalConsiderations[0])
	}
	if res.Disclaimer != Disclaimer {
		t.Fatalf("missing disclaimer")
	}
}

func TestAnalyze_CommonCold(t *testing.T) {
	a := newTestAnalyzer(t)
	res := a.Analyze("runny nose and sneezing")

	if !sameSet(res.InputAnalysis.ExtractedSymptoms, []string{"runny nose", "sneezing"}) {
		t.Fatalf("unexpected symptoms: %v", res.InputAnalysis.ExtractedSymptoms)
	}
	if res.InputAnalysis.EmergencyLevel != EmergencyNone || res.InputAnalysis.EmergencyDetected {
		t.Fatalf("expected no emergency, got %+v", res.InputAnalysis)
	}
	top, _ := res.Top()
	if top.ConditionName != "Common Cold" || top.Score != 35 {
		t.Fatalf("expected Common Cold at 35, got %+v", top)
	}
	if res.Insight.Summary != summaryMild {
		t.Fatalf("expected mild summary for score 35, got %q", res.Insight.Summary)
	}
	if !slices.Equal(res.Insight.NextSteps, selfCareSteps) {
		t.Fatalf("expected self-care steps, got %v", res.Insight.NextSteps)
	}
	if res.Insight.PreventiveGuidance == nil || res.Insight.PreventiveGuidance.Title != "Prevention Tips for Common Cold" {
		t.Fatalf("unexpected preventive guidance: %+v", res.Insight.PreventiveGuidance)
	}
}

func TestAnalyze_InfluenzaStrongMatch(t *testing.T) {
	a := newTestAnalyzer(t)
	res := a.Analyze("fever, chills, body aches, fatigue and a cough")

	wantRank := []string{"influenza", "pneumonia", "common_cold", "diabetes_type2", "appendicitis"}
	if got := scoreIDs(res.RiskAssessment); !slices.Equal(got, wantRank) {
		t.Fatalf("unexpected ranking: %v", got)
	}
	top, _ := res.Top()
	if top.Score != 80 || top.Severity != knowledge.SeverityCritical {
		t.Fatalf("expected influenza at 80 (critical), got %d (%s)", top.Score, top.Severity)
	}
	if res.Insight.Summary != "Your symptoms show a strong match with Influenza (Flu). Medical evaluation is recommended." {
		t.Fatalf("unexpected summary: %q", res.Insight.Summary)
	}

	want := append(slices.Clone(escalatedSteps), "Rest and hydrate", "Take antiviral medication if prescribed")
	if !slices.Equal(res.Insight.NextSteps, want) {
		t.Fatalf("unexpected next steps: %v", res.Insight.NextSteps)
	}
}

func TestAnalyze_EmptyInput(t *testing.T) {
	a := newTestAnalyzer(t)
	for _, input := range []string{"", "   \t\n", "xyz abc"} {
		res := a.Analyze(input)
		if len(res.InputAnalysis.ExtractedSymptoms) != 0 || res.InputAnalysis.SymptomCount != 0 {
			t.Fatalf("%q: expected no symptoms, got %v", input, res.InputAnalysis.ExtractedSymptoms)
		}
		if res.InputAnalysis.EmergencyLevel != EmergencyNone {
			t.Fatalf("%q: expected no emergency, got %s", input, res.InputAnalysis.EmergencyLevel)
		}
		if len(res.RiskAssessment) != 0 {
			t.Fatalf("%q: expected empty ranking, got %v", input, scoreIDs(res.RiskAssessment))
		}
		if res.Insight.Summary != summaryNoMatch || res.Insight.PreventiveGuidance != nil {
			t.Fatalf("%q: expected the no-match insight, got %+v", input, res.Insight)
		}
		if !res.Success {
			t.Fatalf("%q: expected success", input)
		}
	}
}

func TestAnalyze_CriticalPhraseWithoutSymptoms(t *testing.T) {
	a := newTestAnalyzer(t)
	res := a.Analyze("I think he is choking")
	if res.InputAnalysis.EmergencyLevel != EmergencyCritical {
		t.Fatalf("expected critical, got %s", res.InputAnalysis.EmergencyLevel)
	}
	if len(res.RiskAssessment) != 0 {
		t.Fatalf("expected no condition, got %v", scoreIDs(res.RiskAssessment))
	}
	if res.Insight.Summary != summaryNoMatch {
		t.Fatalf("no-match takes precedence over emergency summary, got %q", res.Insight.Summary)
	}
}

func TestAnalyze_ApostrophePhraseIsCritical(t *testing.T) {
	a := newTestAnalyzer(t)
	res := a.Analyze("I can't breathe")
	if res.InputAnalysis.EmergencyLevel != EmergencyCritical {
		t.Fatalf("expected critical, got %s", res.InputAnalysis.EmergencyLevel)
	}
	if !slices.Contains(res.InputAnalysis.ExtractedSymptoms, "shortness of breath") {
		t.Fatalf("expected shortness of breath, got %v", res.InputAnalysis.ExtractedSymptoms)
	}
}

func TestAnalyze_UrgentSummary(t *testing.T) {
	a := newTestAnalyzer(t)
	res := a.Analyze("high fever and chills")
	if res.InputAnalysis.EmergencyLevel != EmergencyUrgent {
		t.Fatalf("expected urgent, got %s", res.InputAnalysis.EmergencyLevel)
	}
	if res.Insight.Summary != summaryUrgent {
		t.Fatalf("expected urgent summary, got %q", res.Insight.Summary)
	}
	if len(res.Insight.SafetyNote) != 3 {
		t.Fatalf("expected 3 safety lines without a warning, got %v", res.Insight.SafetyNote)
	}
}

func TestAnalyze_TiesKeepCatalogOrder(t *testing.T) {
	a := newTestAnalyzer(t)
	res := a.Analyze("nausea")
	got := scoreIDs(res.RiskAssessment)
	if len(got) < 2 || got[0] != "food_poisoning" || got[1] != "gastroenteritis" {
		t.Fatalf("expected food_poisoning before gastroenteritis at equal score, got %v", got)
	}
	if res.RiskAssessment[0].Score != res.RiskAssessment[1].Score {
		t.Fatalf("expected a tie, got %d and %d", res.RiskAssessment[0].Score, res.RiskAssessment[1].Score)
	}
}

func TestAnalyze_TruncatesToFive(t *testing.T) {
	a := newTestAnalyzer(t)
	res := a.Analyze("fever")
	if len(res.RiskAssessment) != MaxResults {
		t.Fatalf("expected %d results, got %d", MaxResults, len(res.RiskAssessment))
	}
	if len(res.Insight.AdditionalConsiderations) != 3 {
		t.Fatalf("expected 3 considerations, got %d", len(res.Insight.AdditionalConsiderations))
	}
}

func TestAnalyze_Idempotent(t *testing.T) {
	kb, err := knowledge.Default()
	if err != nil {
		t.Fatal(err)
	}
	a := New(kb)
	input := "Migraine with sensitivity to light, aura and nausea"

	first := a.Analyze(input)
	second := a.Analyze(input)
	first.Timestamp, second.Timestamp = time.Time{}, time.Time{}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("analysis is not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestAnalyze_MonotonicInSymptoms(t *testing.T) {
	a := newTestAnalyzer(t)
	for _, c := range a.Knowledge().Conditions() {
		text := ""
		prevScore, prevMatches := 0, 0
		for _, symptom := range c.Symptoms {
			text += " and " + symptom
			res := ScoreCondition(a.Analyze(text).InputAnalysis.ExtractedSymptoms, c)
			if res.Score < prevScore || res.MatchCount < prevMatches {
				t.Fatalf("%s: adding %q lowered score %d->%d or matches %d->%d",
					c.ID, symptom, prevScore, res.Score, prevMatches, res.MatchCount)
			}
			prevScore, prevMatches = res.Score, res.MatchCount
		}
		if prevMatches != len(c.Symptoms) {
			t.Fatalf("%s: expected all %d symptoms matched, got %d", c.ID, len(c.Symptoms), prevMatches)
		}
	}
}

func TestAnalyze_Timestamp(t *testing.T) {
	a := newTestAnalyzer(t)
	res := a.Analyze("cough")
	if !res.Timestamp.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected injected clock, got %v", res.Timestamp)
	}
}

func TestAnalyze_Concurrent(t *testing.T) {
	a := newTestAnalyzer(t)
	want := a.Analyze("runny nose and sneezing")

	done := make(chan Result, 8)
	for i := 0; i < 8; i++ {
		go func() { done <- a.Analyze("runny nose and sneezing") }()
	}
	for i := 0; i < 8; i++ {
		got := <-done
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("concurrent result differs")
		}
	}
}
