package query

import (
	"errors"
	"math"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/kailas-cloud/mpapi/internal/domain"
	"github.com/kailas-cloud/mpapi/pkg/schema"
)

func TestNumeric(t *testing.T) {
	n := NewNumeric("band_gap").WithAlias("k_vrh", "bulk_modulus.vrh")
	got, err := n.Query(values("band_gap_min", "0.5", "k_vrh_max", "200"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.Criteria{
		"band_gap":         map[string]any{"$gte": 0.5},
		"bulk_modulus.vrh": map[string]any{"$lte": 200.0},
	}
	if !reflect.DeepEqual(got.Criteria, want) {
		t.Errorf("expected %v, got %v", want, got.Criteria)
	}

	if _, err := n.Query(values("band_gap_min", "wide")); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestNumericFor(t *testing.T) {
	params := NumericFor[schema.ThermoDoc]().Params()
	for _, p := range []string{"energy_above_hull_min", "energy_above_hull_max", "nsites_min"} {
		found := false
		for _, q := range params {
			if q == p {
				found = true
			}
		}
		if !found {
			t.Errorf("expected parameter %s in %v", p, params)
		}
	}
}

func TestNumericUnder(t *testing.T) {
	got, err := NumericUnder[schema.ElasticityData]("elasticity").Query(values("k_vrh_min", "100"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.Criteria{"elasticity.k_vrh": map[string]any{"$gte": 100.0}}
	if !reflect.DeepEqual(got.Criteria, want) {
		t.Errorf("expected %v, got %v", want, got.Criteria)
	}
}

func TestBool(t *testing.T) {
	b := NewBool("is_stable", "")
	got, err := b.Query(values("is_stable", "True"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Criteria["is_stable"] != true {
		t.Errorf("expected is_stable=true, got %v", got.Criteria)
	}
	if _, err := b.Query(values("is_stable", "maybe")); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestStringOperators(t *testing.T) {
	got, err := HasProps().Query(values("has_props", "dos,bandstructure"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.Criteria{"has_props": map[string]any{"$all": []string{"dos", "bandstructure"}}}
	if !reflect.DeepEqual(got.Criteria, want) {
		t.Errorf("expected %v, got %v", want, got.Criteria)
	}

	if _, err := HasProps().Query(values("has_props", "telepathy")); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}
	if _, err := Magnetic().Query(values("ordering", "FM")); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := GeneralStoreGet().Query(url.Values{}); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected required kind error, got %v", err)
	}
}

func TestBSData(t *testing.T) {
	got, err := BSData{}.Query(values("path_type", "hinuma", "band_gap_min", "1", "is_metal", "false"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.Criteria{
		"bandstructure.hinuma.band_gap": map[string]any{"$gte": 1.0},
		"bandstructure.hinuma.is_metal": false,
	}
	if !reflect.DeepEqual(got.Criteria, want) {
		t.Errorf("expected %v, got %v", want, got.Criteria)
	}

	got, _ = BSData{}.Query(values("band_gap_min", "1"))
	if len(got.Criteria) != 0 {
		t.Errorf("expected no criteria without path_type, got %v", got.Criteria)
	}
}

func TestDOSData(t *testing.T) {
	tests := []struct {
		name   string
		params url.Values
		key    string
		errMsg string
	}{
		{"total", values("projection_type", "total", "spin", "1", "efermi_max", "2"), "dos.total.1.efermi", ""},
		{"orbital", values("projection_type", "orbital", "spin", "-1", "orbital", "d", "efermi_max", "2"),
			"dos.orbital.d.-1.efermi", ""},
		{"elemental", values("projection_type", "elemental", "spin", "1", "element", "Fe", "efermi_max", "2"),
			"dos.elemental.Fe.total.1.efermi", ""},
		{"no spin", values("projection_type", "total"), "", "Must specify a spin channel"},
		{"no orbital", values("projection_type", "orbital", "spin", "1"), "", "Must specify an orbital type"},
		{"no element", values("projection_type", "elemental", "spin", "1"), "", "Must specify an element type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DOSData{}.Query(tt.params)
			if tt.errMsg != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
					t.Fatalf("expected error containing %q, got %v", tt.errMsg, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if _, ok := got.Criteria[tt.key]; !ok {
				t.Errorf("expected key %s, got %v", tt.key, got.Criteria)
			}
		})
	}
}

func TestTrajectory_PostProcess(t *testing.T) {
	docs := []domain.Document{{
		"task_id": "mp-1",
		"calcs_reversed": []any{
			map[string]any{"output": map[string]any{"ionic_steps": []any{
				map[string]any{"structure": "s1", "e_fr_energy": -1.0, "e_wo_entrp": -1.1},
				map[string]any{"structure": "s2", "e_fr_energy": -2.0, "e_wo_entrp": -2.1},
			}}},
		},
	}}
	out, _, err := Trajectory{}.PostProcess(docs, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	trajs := out[0]["trajectories"].([]any)
	if len(trajs) != 1 {
		t.Fatalf("expected 1 trajectory, got %d", len(trajs))
	}
	traj := trajs[0].(map[string]any)
	if n := len(traj["structures"].([]any)); n != 2 {
		t.Errorf("expected 2 frames, got %d", n)
	}
}

func TestTaskDeprecation(t *testing.T) {
	if _, err := (TaskDeprecation{}).Query(url.Values{}); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Fatalf("expected required task_ids error, got %v", err)
	}

	params := values("task_ids", "mp-1,mp-2,mp-1")
	docs := []domain.Document{{"material_id": "mp-9", "deprecated_tasks": []any{"mp-2"}}}
	out, meta, err := TaskDeprecation{}.PostProcess(docs, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 || out[0]["deprecated"] != false || out[1]["deprecated"] != true {
		t.Errorf("unexpected deprecation entries %v", out)
	}
	if meta["total_doc"] != 2 {
		t.Errorf("expected total_doc 2, got %v", meta)
	}
}

func TestSynthesisSearch_Pipeline(t *testing.T) {
	got, err := SynthesisSearch{}.Query(values(
		"keywords", "silicon, anneal",
		"target_formula", "Si2O4",
		"condition_heating_temperature_min", "500",
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := got.Pipeline[0]["$search"]; !ok {
		t.Fatalf("expected $search first, got %v", got.Pipeline[0])
	}
	match := got.Pipeline[1]["$match"].(map[string]any)
	if match["targets_formula_s"] != "SiO2" {
		t.Errorf("expected reduced target formula, got %v", match["targets_formula_s"])
	}
	elem := match["operations.conditions.heating_temperature.values"].(map[string]any)["$elemMatch"]
	if !reflect.DeepEqual(elem, map[string]any{"$gte": 500.0}) {
		t.Errorf("unexpected $elemMatch %v", elem)
	}
	last := got.Pipeline[len(got.Pipeline)-1]
	if last["$limit"] != SynthesisMaxLimit {
		t.Errorf("expected trailing limit, got %v", last)
	}

	if _, err := (SynthesisSearch{}).Query(values("limit", "11")); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected limit error, got %v", err)
	}
	if _, err := (SynthesisSearch{}).Query(values("synthesis_type", "alchemy")); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected synthesis_type error, got %v", err)
	}
}

func TestEllipsis(t *testing.T) {
	if got := ellipsis("short", 100, true); got != "short" {
		t.Errorf("expected unchanged text, got %q", got)
	}
	if got := ellipsis("This is an incomplete sentence", 27, true); got != "This is an incomplete ..." {
		t.Errorf("unexpected trailing cut %q", got)
	}
	if got := ellipsis("incomplete start of text", 17, false); got != "... start of text" {
		t.Errorf("unexpected leading cut %q", got)
	}
}

func TestSynthesisSearch_PostProcess(t *testing.T) {
	docs := []domain.Document{{
		"total_doc":        int32(42),
		"paragraph_string": strings.Repeat("word ", 40),
	}}
	out, meta, err := SynthesisSearch{}.PostProcess(docs, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta["total_doc"] != 42 {
		t.Errorf("expected total_doc 42, got %v", meta)
	}
	p := out[0]["paragraph_string"].(string)
	if len(p) > 103 || !strings.HasSuffix(p, "...") {
		t.Errorf("expected masked paragraph, got %q", p)
	}
	if _, ok := out[0]["total_doc"]; ok {
		t.Error("expected total_doc removed from documents")
	}
}

func TestSearchStats(t *testing.T) {
	s := NewSearchStats([]string{"volume", "band_gap"})
	got, err := s.Query(values("min_val", "0", "num_samples", "10"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	match := got.Pipeline[0]["$match"].(map[string]any)
	if _, ok := match["band_gap"]; !ok {
		t.Errorf("expected default field band_gap, got %v", match)
	}

	docs := []domain.Document{{"band_gap": 1.0}, {"band_gap": 2.0}, {"band_gap": 3.0}, {}}
	params := values("num_points", "4")
	out, _, err := s.PostProcess(docs, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc := out[0]
	if doc["mean"] != 2.0 || doc["median"] != 2.0 {
		t.Errorf("unexpected mean/median %v %v", doc["mean"], doc["median"])
	}
	if doc["min"] != 1.0 || doc["max"] != 3.0 {
		t.Errorf("unexpected bounds %v %v", doc["min"], doc["max"])
	}
	dist := doc["distribution"].([]float64)
	if len(dist) != 4 {
		t.Fatalf("expected 4 points, got %d", len(dist))
	}
	for _, d := range dist {
		if d <= 0 || math.IsNaN(d) {
			t.Errorf("expected positive density, got %v", d)
		}
	}
	if len(doc["warnings"].([]string)) != 2 {
		t.Errorf("expected missing-field warnings, got %v", doc["warnings"])
	}

	if _, err := s.Query(values("field", "formula_pretty")); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestSubmitters(t *testing.T) {
	id := "123e4567-e89b-12d3-a456-426614174000"
	doc, err := UserSettingsPost{}.Document(values("consumer_id", id), []byte(`{"theme":"dark"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc["consumer_id"] != id || doc["settings"].(map[string]any)["theme"] != "dark" {
		t.Errorf("unexpected settings document %v", doc)
	}
	if _, err := (UserSettingsPost{}).Document(values("consumer_id", "nope"), []byte(`{}`)); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected uuid error, got %v", err)
	}

	doc, err = GeneralStorePost{}.Document(values("kind", "news"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc["kind"] != "news" || doc["markdown"] != nil {
		t.Errorf("unexpected general store document %v", doc)
	}

	structure := `{"lattice":{"matrix":[[1,0,0],[0,1,0],[0,0,1]]},"sites":[{"species":[{"element":"Si","occu":1}],"abc":[0,0,0]}]}`
	doc, err = MPCompletePost{}.Document(values("public_name", "Ada", "public_email", "ada@example.com"), []byte(structure))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc["public_name"] != "Ada" || doc["structure"] == nil {
		t.Errorf("unexpected mpcomplete document %v", doc)
	}
	if _, err := (MPCompletePost{}).Document(values("public_name", "Ada"), []byte(structure)); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected public_email error, got %v", err)
	}
}
