// ABOUTME: Clinical relevance, extraction quality, and completeness heuristics
// ABOUTME: Keyword-overlap scoring between query and candidate transcripts
package selector

import (
	"strings"

	"github.com/notewell/engine/internal/models"
)

// clinicalKeywords groups domain terms; each category contributes equally
var clinicalKeywords = map[string][]string{
	"medication": {"prescribe", "medication", "drug", "dosage", "frequency", "duration"},
	"follow_up":  {"schedule", "follow-up", "appointment", "return", "monitor"},
	"tests":      {"blood work", "lab test", "x-ray", "mri", "ct scan", "ultrasound"},
	"symptoms":   {"pain", "symptom", "condition", "diagnosis", "treatment"},
	"vitals":     {"blood pressure", "heart rate", "temperature", "weight", "height"},
}

var actionTerms = []string{
	"medication", "prescribe", "dosage", "schedule", "test",
	"appointment", "monitor", "symptom", "diagnosis", "treatment",
}

// clinicalRelevance scores shared clinical vocabulary between the query
// and a candidate transcript, in [0,1].
func clinicalRelevance(queryText, contextText string) float64 {
	queryLower := strings.ToLower(queryText)
	contextLower := strings.ToLower(contextText)

	score := 0.0
	for _, keywords := range clinicalKeywords {
		matched := 0
		for _, kw := range keywords {
			if strings.Contains(queryLower, kw) && strings.Contains(contextLower, kw) {
				matched++
			}
		}
		// Each category worth 0.2 at full overlap
		score += float64(matched) / float64(len(keywords)) * 0.2
	}

	// Jaccard overlap of core action terms adds up to 0.3
	queryTerms := termSet(queryLower)
	contextTerms := termSet(contextLower)
	if len(queryTerms) > 0 && len(contextTerms) > 0 {
		intersect, union := 0, 0
		for term := range queryTerms {
			if contextTerms[term] {
				intersect++
			}
		}
		union = len(queryTerms) + len(contextTerms) - intersect
		if union > 0 {
			score += float64(intersect) / float64(union) * 0.3
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

func termSet(lower string) map[string]bool {
	set := make(map[string]bool)
	for _, term := range actionTerms {
		if strings.Contains(lower, term) {
			set[term] = true
		}
	}
	return set
}

var actionableWords = []string{"schedule", "order", "prescribe", "monitor", "test", "refer"}

// extractionQuality scores how specific and actionable a prior extraction
// is, in [0,1]. A missing extraction scores zero.
func extractionQuality(e *models.Extraction) float64 {
	if e == nil || e.IsEmpty() {
		return 0.0
	}

	score := 0.0
	score += categoryQuality(followUpDescriptions(e), followUpHasDates(e))
	score += categoryQuality(medicationDescriptions(e), medicationHasDetail(e))
	score += categoryQuality(reminderDescriptions(e), reminderHasDates(e))
	score += categoryQuality(todoDescriptions(e), todoHasDates(e))

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// categoryQuality gives each category up to 0.25: actionable descriptions
// and concrete detail (dates, dosage) both count.
func categoryQuality(descriptions []string, detailed []bool) float64 {
	if len(descriptions) == 0 {
		return 0.0
	}

	total := 0.0
	for i, desc := range descriptions {
		itemScore := 0.0
		lower := strings.ToLower(desc)
		if len(desc) > 10 {
			for _, word := range actionableWords {
				if strings.Contains(lower, word) {
					itemScore += 1.0
					break
				}
			}
		}
		if i < len(detailed) && detailed[i] {
			itemScore += 0.5
		}
		total += itemScore
	}

	avg := total / float64(len(descriptions))
	if avg > 1.5 {
		avg = 1.5
	}
	return avg / 1.5 * 0.25
}

func followUpDescriptions(e *models.Extraction) []string {
	out := make([]string, len(e.FollowUpTasks))
	for i, t := range e.FollowUpTasks {
		out[i] = t.Description
	}
	return out
}

func followUpHasDates(e *models.Extraction) []bool {
	out := make([]bool, len(e.FollowUpTasks))
	for i, t := range e.FollowUpTasks {
		out[i] = t.DueDate != ""
	}
	return out
}

func medicationDescriptions(e *models.Extraction) []string {
	out := make([]string, len(e.MedicationInstructions))
	for i, m := range e.MedicationInstructions {
		out[i] = m.MedicationName + " " + m.SpecialInstructions
	}
	return out
}

func medicationHasDetail(e *models.Extraction) []bool {
	out := make([]bool, len(e.MedicationInstructions))
	for i, m := range e.MedicationInstructions {
		out[i] = m.Dosage != "" && m.Frequency != ""
	}
	return out
}

func reminderDescriptions(e *models.Extraction) []string {
	out := make([]string, len(e.ClientReminders))
	for i, r := range e.ClientReminders {
		out[i] = r.Description
	}
	return out
}

func reminderHasDates(e *models.Extraction) []bool {
	out := make([]bool, len(e.ClientReminders))
	for i, r := range e.ClientReminders {
		out[i] = r.DueDate != ""
	}
	return out
}

func todoDescriptions(e *models.Extraction) []string {
	out := make([]string, len(e.ClinicianTodos))
	for i, t := range e.ClinicianTodos {
		out[i] = t.Description
	}
	return out
}

func todoHasDates(e *models.Extraction) []bool {
	out := make([]bool, len(e.ClinicianTodos))
	for i, t := range e.ClinicianTodos {
		out[i] = t.DueDate != ""
	}
	return out
}

// completeness scores how informative a candidate transcript is, in [0,1]
func completeness(text string) float64 {
	if text == "" {
		return 0.0
	}

	score := 0.0

	// Length factor: substantial but not bloated
	n := len(text)
	switch {
	case n >= 100 && n <= 2000:
		score += 0.3
	case n > 2000:
		score += 0.2
	}

	// Clinical vocabulary density, capped
	lower := strings.ToLower(text)
	terms := 0
	for _, term := range actionTerms {
		terms += strings.Count(lower, term)
	}
	clinical := float64(terms) * 0.1
	if clinical > 0.4 {
		clinical = 0.4
	}
	score += clinical

	// Structure markers
	if strings.ContainsAny(text, ":-*") {
		score += 0.2
	}

	// Actionable language
	for _, word := range actionableWords {
		if strings.Contains(lower, word) {
			score += 0.1
			break
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
