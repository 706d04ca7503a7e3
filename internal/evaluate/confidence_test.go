// ABOUTME: Tests for the confidence engine
// ABOUTME: Covers judge-primary precedence, the F1 cross-check, and review flagging
package evaluate

import (
	"strings"
	"testing"

	"github.com/notewell/engine/internal/models"
)

func extractionWithItems() *models.Extraction {
	return &models.Extraction{
		FollowUpTasks: []models.FollowUpTask{
			{Description: "Schedule follow-up in two weeks"},
			{Description: "Repeat blood pressure check"},
		},
		MedicationInstructions: []models.MedicationInstruction{
			{MedicationName: "lisinopril", Dosage: "10mg", Frequency: "daily"},
		},
	}
}

func aggWithItemAssessments(levels map[string][]models.ConfidenceLevel, categoryF1 map[string]float64) *models.AggregatedResult {
	assessments := make(map[string][]models.ItemConfidence)
	for cat, ls := range levels {
		for _, l := range ls {
			assessments[cat] = append(assessments[cat], models.ItemConfidence{Confidence: l})
		}
	}
	scores := make(map[string]models.CategoryScore)
	for cat, f1 := range categoryF1 {
		scores[cat] = models.CategoryScore{Score: f1, F1: f1}
	}
	return &models.AggregatedResult{
		OverallScore:    0.85,
		ConfidenceLevel: models.ConfidenceHigh,
		CategoryScores:  scores,
		Judgments: []models.JudgmentResult{
			{StandardID: "gold-1", ConfidenceLevel: models.ConfidenceHigh, ItemAssessments: assessments},
		},
	}
}

func TestAssess_JudgeConfidenceIsPrimary(t *testing.T) {
	eng := NewConfidenceEngine(nil)
	agg := aggWithItemAssessments(
		map[string][]models.ConfidenceLevel{
			models.CategoryFollowUpTasks:          {models.ConfidenceHigh, models.ConfidenceMedium},
			models.CategoryMedicationInstructions: {models.ConfidenceHigh},
		},
		map[string]float64{
			models.CategoryFollowUpTasks:          0.9,
			models.CategoryMedicationInstructions: 0.9,
		},
	)

	details := eng.Assess(extractionWithItems(), agg)

	fu := details.ItemConfidence[models.CategoryFollowUpTasks]
	if len(fu) != 2 {
		t.Fatalf("follow-up assessments = %d, want 2", len(fu))
	}
	if fu[0].Confidence != models.ConfidenceHigh {
		t.Errorf("item 0 = %v, want high (judge said high, F1 agrees)", fu[0].Confidence)
	}
	if fu[1].Confidence != models.ConfidenceMedium {
		t.Errorf("item 1 = %v, want medium (judge verdict carried through)", fu[1].Confidence)
	}
}

func TestAssess_LowF1CapsConfidence(t *testing.T) {
	eng := NewConfidenceEngine(nil)
	agg := aggWithItemAssessments(
		map[string][]models.ConfidenceLevel{
			models.CategoryFollowUpTasks:          {models.ConfidenceHigh, models.ConfidenceHigh},
			models.CategoryMedicationInstructions: {models.ConfidenceHigh},
		},
		map[string]float64{
			models.CategoryFollowUpTasks:          0.3, // sharply disagrees with the judge
			models.CategoryMedicationInstructions: 0.9,
		},
	)

	details := eng.Assess(extractionWithItems(), agg)

	for i, item := range details.ItemConfidence[models.CategoryFollowUpTasks] {
		if item.Confidence != models.ConfidenceLow {
			t.Errorf("follow-up item %d = %v, want low (F1 cross-check wins downward)", i, item.Confidence)
		}
		if len(item.Issues) == 0 {
			t.Errorf("follow-up item %d should carry a cross-check issue", i)
		}
	}
	med := details.ItemConfidence[models.CategoryMedicationInstructions]
	if med[0].Confidence != models.ConfidenceHigh {
		t.Errorf("medication item = %v, want high (its category F1 is fine)", med[0].Confidence)
	}
}

func TestAssess_NeverUpgrades(t *testing.T) {
	eng := NewConfidenceEngine(nil)
	// Judge says low, numbers look great: low must survive
	agg := aggWithItemAssessments(
		map[string][]models.ConfidenceLevel{
			models.CategoryFollowUpTasks:          {models.ConfidenceLow, models.ConfidenceLow},
			models.CategoryMedicationInstructions: {models.ConfidenceLow},
		},
		map[string]float64{
			models.CategoryFollowUpTasks:          0.99,
			models.CategoryMedicationInstructions: 0.99,
		},
	)

	details := eng.Assess(extractionWithItems(), agg)
	for cat, items := range details.ItemConfidence {
		for i, item := range items {
			if item.Confidence != models.ConfidenceLow {
				t.Errorf("%s item %d = %v, want low (never silently upgraded)", cat, i, item.Confidence)
			}
		}
	}
}

func TestAssess_FlaggingRules(t *testing.T) {
	eng := NewConfidenceEngine(nil)
	agg := aggWithItemAssessments(
		map[string][]models.ConfidenceLevel{
			models.CategoryFollowUpTasks:          {models.ConfidenceHigh, models.ConfidenceMedium},
			models.CategoryMedicationInstructions: {models.ConfidenceLow},
		},
		map[string]float64{
			models.CategoryFollowUpTasks:          0.9,
			models.CategoryMedicationInstructions: 0.9,
		},
	)

	details := eng.Assess(extractionWithItems(), agg)

	fuFlags := details.FlaggedSections[models.CategoryFollowUpTasks]
	if len(fuFlags) != 1 || fuFlags[0] != 1 {
		t.Errorf("follow-up flags = %v, want [1] (only the medium item)", fuFlags)
	}
	medFlags := details.FlaggedSections[models.CategoryMedicationInstructions]
	if len(medFlags) != 1 {
		t.Errorf("medication flags = %v, want the low item flagged", medFlags)
	}
	if details.FlaggedSections.Total() != 2 {
		t.Errorf("total flags = %d, want 2", details.FlaggedSections.Total())
	}
	if details.OverallConfidence != models.ConfidenceLow {
		t.Errorf("OverallConfidence = %v, want low (most conservative item)", details.OverallConfidence)
	}
}

func TestAssess_HighWithIssuesIsFlagged(t *testing.T) {
	eng := NewConfidenceEngine(nil)
	agg := &models.AggregatedResult{
		OverallScore:    0.9,
		ConfidenceLevel: models.ConfidenceHigh,
		CategoryScores: map[string]models.CategoryScore{
			models.CategoryMedicationInstructions: {F1: 0.95},
		},
		Judgments: []models.JudgmentResult{{
			StandardID:      "gold-1",
			ConfidenceLevel: models.ConfidenceHigh,
			ItemAssessments: map[string][]models.ItemConfidence{
				models.CategoryMedicationInstructions: {
					{Confidence: models.ConfidenceHigh, Issues: []string{"dosage unit ambiguous"}},
				},
			},
		}},
	}
	extraction := &models.Extraction{
		MedicationInstructions: []models.MedicationInstruction{{MedicationName: "lisinopril"}},
	}

	details := eng.Assess(extraction, agg)
	flags := details.FlaggedSections[models.CategoryMedicationInstructions]
	if len(flags) != 1 {
		t.Errorf("high-confidence item with explicit issues must still be flagged, got %v", flags)
	}
}

func TestAssess_NoEvaluationAvailable(t *testing.T) {
	eng := NewConfidenceEngine(nil)
	details := eng.Assess(extractionWithItems(), nil)

	if details.OverallConfidence != models.ConfidenceLow {
		t.Errorf("OverallConfidence = %v, want low with no evaluation", details.OverallConfidence)
	}
	if details.FlaggedSections.Total() != 3 {
		t.Errorf("all %d items should be flagged when never judged, got %d flags",
			extractionWithItems().TotalItems(), details.FlaggedSections.Total())
	}
}

func TestAssess_EmptyExtraction(t *testing.T) {
	eng := NewConfidenceEngine(nil)
	details := eng.Assess(&models.Extraction{}, nil)

	if details.OverallConfidence != models.ConfidenceLow {
		t.Errorf("OverallConfidence = %v, want low", details.OverallConfidence)
	}
	if details.FlaggedSections.Total() != 0 {
		t.Error("no items means nothing to flag")
	}
}

func TestAssess_ItemsWithoutJudgeAssessmentInheritAggregate(t *testing.T) {
	eng := NewConfidenceEngine(nil)
	agg := &models.AggregatedResult{
		OverallScore:    0.7,
		ConfidenceLevel: models.ConfidenceMedium,
		CategoryScores: map[string]models.CategoryScore{
			models.CategoryFollowUpTasks:          {F1: 0.8},
			models.CategoryMedicationInstructions: {F1: 0.8},
		},
		Judgments: []models.JudgmentResult{{StandardID: "gold-1", ConfidenceLevel: models.ConfidenceMedium}},
	}

	details := eng.Assess(extractionWithItems(), agg)
	for cat, items := range details.ItemConfidence {
		for i, item := range items {
			if item.Confidence != models.ConfidenceMedium {
				t.Errorf("%s item %d = %v, want medium (inherited from aggregate)", cat, i, item.Confidence)
			}
		}
	}
}

func TestAssess_SummaryMentionsReview(t *testing.T) {
	eng := NewConfidenceEngine(nil)
	agg := aggWithItemAssessments(
		map[string][]models.ConfidenceLevel{
			models.CategoryFollowUpTasks:          {models.ConfidenceHigh, models.ConfidenceHigh},
			models.CategoryMedicationInstructions: {models.ConfidenceHigh},
		},
		map[string]float64{
			models.CategoryFollowUpTasks:          0.9,
			models.CategoryMedicationInstructions: 0.9,
		},
	)

	details := eng.Assess(extractionWithItems(), agg)
	if !strings.Contains(details.ConfidenceSummary, "human review") {
		t.Errorf("summary must state the human-review requirement even at high confidence: %q", details.ConfidenceSummary)
	}
}
