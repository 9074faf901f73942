package analysis

import (
	"fmt"
	"strings"
)

const (
	strongMatchScore    = 70
	moderateMatchScore  = 40
	escalatedCareScore  = 60
	maxConsiderations   = 3
	recommendationsKept = 2
)

const (
	summaryNoMatch   = "We couldn't find a strong match for your symptoms in our database."
	summaryCritical  = "Your symptoms indicate a potentially life-threatening condition that requires immediate medical attention."
	summaryUrgent    = "Your symptoms suggest a serious condition that should be evaluated by a medical professional as soon as possible."
	summaryStrong    = "Your symptoms show a strong match with %s. Medical evaluation is recommended."
	summaryModerate  = "Your symptoms show a moderate match with %s. Consider consulting a healthcare provider."
	summaryMild      = "Your symptoms show a mild match with several conditions. Monitor your symptoms and consult a doctor if they persist or worsen."
	explanationNone  = "Your symptoms may be non-specific or could indicate a condition not covered in our knowledge base."
	criticalWarning  = "WARNING: Your symptoms may indicate a life-threatening emergency."
	preventionFormat = "Prevention Tips for %s"
)

var (
	noMatchSteps = []string{
		"Monitor your symptoms",
		"Stay hydrated and get rest",
		"Consult a healthcare professional if symptoms persist",
		"Consider keeping a symptom diary",
	}
	noMatchSafety = []string{
		"This tool provides educational information only.",
		"When in doubt, always consult a medical professional.",
	}
	emergencySteps = []string{
		"Call emergency services (911) immediately",
		"Do not drive yourself to the hospital",
		"Have someone stay with you",
		"Follow any emergency instructions given",
	}
	escalatedSteps = []string{
		"Schedule an appointment with your doctor within 24-48 hours",
		"Monitor your symptoms closely",
		"Rest and avoid strenuous activities",
		"Keep a symptom diary",
	}
	selfCareSteps = []string{
		"Monitor your symptoms for the next few days",
		"Get plenty of rest and stay hydrated",
		"Consider over-the-counter remedies if appropriate",
		"Consult a doctor if symptoms worsen or persist",
	}
	safetyNotes = []string{
		"This analysis is for educational purposes only and does not constitute medical advice.",
		"Always consult with a qualified healthcare professional for proper diagnosis and treatment.",
		"If you are experiencing severe symptoms or believe you have a medical emergency, call 911 immediately.",
	}
)

// GenerateInsight turns ranked scores into guidance. ranked must already be
// sorted; its first entry is treated as the top condition.
func GenerateInsight(ranked []ConditionScore, level EmergencyLevel) Insight {
	if len(ranked) == 0 {
		return Insight{
			Summary:                  summaryNoMatch,
			RiskExplanation:          explanationNone,
			NextSteps:                clone(noMatchSteps),
			SafetyNote:               clone(noMatchSafety),
			AdditionalConsiderations: []Consideration{},
		}
	}

	top := ranked[0]
	return Insight{
		Summary:                  summarize(top, level),
		RiskExplanation:          explain(top),
		PreventiveGuidance:       prevention(top),
		NextSteps:                nextSteps(top, level),
		SafetyNote:               safetyNote(level),
		AdditionalConsiderations: considerations(ranked),
	}
}

func summarize(top ConditionScore, level EmergencyLevel) string {
	switch {
	case level == EmergencyCritical:
		return summaryCritical
	case level == EmergencyUrgent:
		return summaryUrgent
	case top.Score >= strongMatchScore:
		return fmt.Sprintf(summaryStrong, top.ConditionName)
	case top.Score >= moderateMatchScore:
		return fmt.Sprintf(summaryModerate, top.ConditionName)
	default:
		return summaryMild
	}
}

func explain(top ConditionScore) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on your reported symptoms, our analysis found %d out of %d typical symptoms for %s. ",
		len(top.MatchedSymptoms), top.TotalSymptoms, top.ConditionName)
	fmt.Fprintf(&b, "The risk score of %d%% indicates a %s level of concern.", top.Score, top.Severity)
	if len(top.MatchedSymptoms) > 0 {
		fmt.Fprintf(&b, " Matching symptoms include: %s.", strings.Join(top.MatchedSymptoms, ", "))
	}
	return b.String()
}

func prevention(top ConditionScore) *PreventiveGuidance {
	if len(top.Prevention) == 0 {
		return nil
	}
	return &PreventiveGuidance{
		Title: fmt.Sprintf(preventionFormat, top.ConditionName),
		Tips:  clone(top.Prevention),
	}
}

func nextSteps(top ConditionScore, level EmergencyLevel) []string {
	switch {
	case level == EmergencyCritical || top.IsEmergency:
		return clone(emergencySteps)
	case top.Score >= escalatedCareScore:
		recs := top.Recommendations
		if len(recs) > recommendationsKept {
			recs = recs[:recommendationsKept]
		}
		return append(clone(escalatedSteps), recs...)
	default:
		return clone(selfCareSteps)
	}
}

func safetyNote(level EmergencyLevel) []string {
	if level == EmergencyCritical {
		return append([]string{criticalWarning}, safetyNotes...)
	}
	return clone(safetyNotes)
}

// considerations reduces ranks two through four to their headline numbers.
func considerations(ranked []ConditionScore) []Consideration {
	out := []Consideration{}
	for i := 1; i < len(ranked) && len(out) < maxConsiderations; i++ {
		c := ranked[i]
		out = append(out, Consideration{Name: c.ConditionName, Score: c.Score, Severity: c.Severity})
	}
	return out
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}
