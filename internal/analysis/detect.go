package analysis

import (
	"strings"

	"github.com/Skufu/MedIntel/internal/knowledge"
)

// DetectEmergency reports the first tier whose trigger phrase occurs in
// lower. Critical phrases are checked before urgent ones.
func DetectEmergency(lower string, keywords knowledge.EmergencyKeywords) EmergencyLevel {
	for _, phrase := range keywords.Critical {
		if strings.Contains(lower, phrase) {
			return EmergencyCritical
		}
	}
	for _, phrase := range keywords.Urgent {
		if strings.Contains(lower, phrase) {
			return EmergencyUrgent
		}
	}
	return EmergencyNone
}

// ExtractSymptoms returns the canonical symptoms with at least one variant
// present in lower, in synonym-table order. Each symptom appears once.
func ExtractSymptoms(lower string, table knowledge.SynonymTable) []string {
	extracted := []string{}
	for _, entry := range table.Entries() {
		for _, variant := range entry.Variants {
			if strings.Contains(lower, variant) {
				extracted = append(extracted, entry.Canonical)
				break
			}
		}
	}
	return extracted
}
