package hint

import (
	"reflect"
	"testing"

	"github.com/kailas-cloud/mpapi/internal/domain"
)

func TestSummary(t *testing.T) {
	s := Summary()
	tests := []struct {
		name     string
		criteria domain.Criteria
		want     domain.Hint
	}{
		{"empty criteria scans by id", domain.Criteria{}, domain.Hint{"_id": 1}},
		{"nil criteria scans by id", nil, domain.Hint{"_id": 1}},
		{"element count", domain.Criteria{"nelements": 3}, domain.Hint{"nelements": 1}},
		{"has props", domain.Criteria{"has_props": map[string]any{"$all": []string{"dos"}}}, domain.Hint{"has_props": 1}},
		{
			"composition wins over nelements",
			domain.Criteria{"nelements": 2, "composition_reduced.Fe": 2.0},
			domain.Hint{"composition_reduced.$**": 1},
		},
		{
			"nelements wins over has_props",
			domain.Criteria{"has_props": "dos", "nelements": 2},
			domain.Hint{"nelements": 1},
		},
		{"unrecognized key", domain.Criteria{"band_gap": 1.0}, domain.Hint{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Hint(tt.criteria)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Hint(%v) = %v, want %v", tt.criteria, got, tt.want)
			}
		})
	}
}

func TestTasks(t *testing.T) {
	s := Tasks()
	if got := s.Hint(domain.Criteria{"has_props": "dos"}); !got.IsEmpty() {
		t.Errorf("tasks scheme must ignore has_props, got %v", got)
	}
	if got := s.Hint(domain.Criteria{"nelements": 2}); !reflect.DeepEqual(got, domain.Hint{"nelements": 1}) {
		t.Errorf("unexpected hint %v", got)
	}
	if got := s.Hint(domain.Criteria{}); !reflect.DeepEqual(got, FullScan) {
		t.Errorf("unexpected hint %v", got)
	}
}

func TestHint_ReturnsCopy(t *testing.T) {
	s := Summary()
	h := s.Hint(domain.Criteria{})
	h["mutated"] = 1
	if _, ok := FullScan["mutated"]; ok {
		t.Fatal("Hint must not expose the shared FullScan map")
	}
}

func TestRuleScheme_Indexes(t *testing.T) {
	got := Summary().Indexes()
	want := []domain.Index{{Key: "composition_reduced.$**"}, {Key: "nelements"}, {Key: "has_props"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected indexes %v", got)
	}
	if n := len(Tasks().Indexes()); n != 2 {
		t.Errorf("expected 2 tasks indexes, got %d", n)
	}
}
