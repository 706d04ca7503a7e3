// ABOUTME: Tests for the strategy step function
// ABOUTME: Exercises exact band boundaries and reduced-confidence degradation
package evaluate

import (
	"testing"

	"github.com/notewell/engine/internal/models"
)

func TestSelectStrategy_Bands(t *testing.T) {
	tests := []struct {
		name       string
		score      float64
		wantKind   models.StrategyKind
		wantCount  int
		wantMethod models.AggregationMethod
	}{
		{"strong match", 0.95, models.StrategySingle, 1, models.AggregationDirect},
		{"exact single boundary", 0.8, models.StrategySingle, 1, models.AggregationDirect},
		{"just under single", 0.7999, models.StrategyFew, 3, models.AggregationWeighted},
		{"exact few boundary", 0.6, models.StrategyFew, 3, models.AggregationWeighted},
		{"moderate match", 0.5, models.StrategyMultiple, 5, models.AggregationAverage},
		{"exact multiple boundary", 0.4, models.StrategyMultiple, 5, models.AggregationAverage},
		{"just under multiple", 0.39, models.StrategyComprehensive, 6, models.AggregationRobust},
		{"no match", 0.0, models.StrategyComprehensive, 6, models.AggregationRobust},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := SelectStrategy(tt.score, 10)
			if s.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", s.Kind, tt.wantKind)
			}
			if s.NumStandards != tt.wantCount {
				t.Errorf("NumStandards = %d, want %d", s.NumStandards, tt.wantCount)
			}
			if s.Aggregation != tt.wantMethod {
				t.Errorf("Aggregation = %v, want %v", s.Aggregation, tt.wantMethod)
			}
			if s.ReducedConfidence {
				t.Error("ReducedConfidence should be false with 10 standards available")
			}
			if s.Reasoning == "" {
				t.Error("Reasoning should explain the choice")
			}
		})
	}
}

func TestSelectStrategy_FewerStandardsThanRequired(t *testing.T) {
	s := SelectStrategy(0.3, 2)
	if s.Kind != models.StrategyComprehensive {
		t.Errorf("Kind = %v, want comprehensive", s.Kind)
	}
	if s.NumStandards != 2 {
		t.Errorf("NumStandards = %d, want 2 (all available)", s.NumStandards)
	}
	if !s.ReducedConfidence {
		t.Error("comprehensive with 2 standards must flag reduced confidence")
	}
}

func TestSelectStrategy_FewAcceptsTwo(t *testing.T) {
	s := SelectStrategy(0.7, 2)
	if s.NumStandards != 2 {
		t.Errorf("NumStandards = %d, want 2", s.NumStandards)
	}
	if s.ReducedConfidence {
		t.Error("few with 2 standards is within band, not reduced confidence")
	}
}

func TestSelectStrategy_SingleWithOneAvailable(t *testing.T) {
	s := SelectStrategy(0.9, 1)
	if s.ReducedConfidence {
		t.Error("single with 1 standard is fully satisfied")
	}
}

func TestSelectStrategy_Deterministic(t *testing.T) {
	first := SelectStrategy(0.65, 5)
	for i := 0; i < 10; i++ {
		if got := SelectStrategy(0.65, 5); got != first {
			t.Fatalf("strategy selection is not deterministic: %+v vs %+v", got, first)
		}
	}
}
