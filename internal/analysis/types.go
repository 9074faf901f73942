package analysis

import (
	"time"

	"github.com/Skufu/MedIntel/internal/knowledge"
)

// EmergencyLevel is the text-wide urgency signal from trigger-phrase scanning.
type EmergencyLevel string

const (
	EmergencyNone     EmergencyLevel = "none"
	EmergencyUrgent   EmergencyLevel = "urgent"
	EmergencyCritical EmergencyLevel = "critical"
)

// ConditionScore is the per-query match of one catalog condition.
// Severity is the tier computed from Score; ConditionSeverity is the
// condition's own baseline.
type ConditionScore struct {
	ConditionID       string             `json:"conditionId"`
	ConditionName     string             `json:"conditionName"`
	Score             int                `json:"score"`
	Severity          knowledge.Severity `json:"severity"`
	MatchCount        int                `json:"matchCount"`
	TotalSymptoms     int                `json:"totalSymptoms"`
	MatchedSymptoms   []string           `json:"matchedSymptoms"`
	UnmatchedSymptoms []string           `json:"unmatchedSymptoms"`
	IsEmergency       bool               `json:"isEmergency"`
	ConditionSeverity knowledge.Severity `json:"conditionSeverity"`
	Prevention        []string           `json:"prevention"`
	Recommendations   []string           `json:"recommendations"`
}

type PreventiveGuidance struct {
	Title string   `json:"title"`
	Tips  []string `json:"tips"`
}

// Consideration is a lower-ranked candidate reduced to its headline numbers.
type Consideration struct {
	Name     string             `json:"name"`
	Score    int                `json:"score"`
	Severity knowledge.Severity `json:"severity"`
}

type Insight struct {
	Summary                  string              `json:"summary"`
	RiskExplanation          string              `json:"riskExplanation"`
	PreventiveGuidance       *PreventiveGuidance `json:"preventiveGuidance"`
	NextSteps                []string            `json:"nextSteps"`
	SafetyNote               []string            `json:"safetyNote"`
	AdditionalConsiderations []Consideration     `json:"additionalConsiderations"`
}

type InputAnalysis struct {
	ExtractedSymptoms []string       `json:"extractedSymptoms"`
	SymptomCount      int            `json:"symptomCount"`
	EmergencyDetected bool           `json:"emergencyDetected"`
	EmergencyLevel    EmergencyLevel `json:"emergencyLevel"`
	ProcessedTokens   []string       `json:"processedTokens"`
}

// Result is everything one Analyze call produces. The caller owns it.
type Result struct {
	Success        bool             `json:"success"`
	Timestamp      time.Time        `json:"timestamp"`
	InputAnalysis  InputAnalysis    `json:"inputAnalysis"`
	RiskAssessment []ConditionScore `json:"riskAssessment"`
	Insight        Insight          `json:"insight"`
	Disclaimer     string           `json:"disclaimer"`
}

// Top returns the highest-ranked condition, if any.
func (r Result) Top() (ConditionScore, bool) {
	if len(r.RiskAssessment) == 0 {
		return ConditionScore{}, false
	}
	return r.RiskAssessment[0], true
}
