package endpoint

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/kailas-cloud/mpapi/internal/domain"
	"github.com/kailas-cloud/mpapi/internal/domain/composition"
	"github.com/kailas-cloud/mpapi/internal/domain/hint"
)

// --- Mocks ---

type mockStore struct {
	collections []string
}

func (m *mockStore) Query(_ context.Context, c string, _ domain.StoreParams) ([]domain.Document, error) {
	m.collections = append(m.collections, c)
	return []domain.Document{{"material_id": "mp-1"}}, nil
}

func (m *mockStore) Count(_ context.Context, _ string, _ domain.Criteria, _ domain.Hint) (int, error) {
	return 1, nil
}

func (m *mockStore) Aggregate(_ context.Context, c string, _ []domain.Stage) ([]domain.Document, error) {
	m.collections = append(m.collections, c)
	return nil, nil
}

func (m *mockStore) Upsert(_ context.Context, _, _ string, _ domain.Document) error { return nil }

// --- Tests ---

func routeMap(t *testing.T, d Deps) map[string]Route {
	t.Helper()
	out := map[string]Route{}
	for _, r := range Routes(d) {
		if _, dup := out[r.Path]; dup {
			t.Fatalf("duplicate route %s", r.Path)
		}
		if strings.HasPrefix(r.Path, "/") || strings.HasSuffix(r.Path, "/") {
			t.Errorf("route %q must not carry slashes at the ends", r.Path)
		}
		out[r.Path] = r
	}
	return out
}

func TestRoutes_Table(t *testing.T) {
	routes := routeMap(t, Deps{Store: &mockStore{}})

	keys := map[string]string{
		"materials":            "material_id",
		"summary":              "material_id",
		"thermo":               "material_id",
		"thermo/phase_diagram": "chemsys",
		"tasks":                "task_id",
		"oxidation_states":     "material_id",
		"similarity":           "material_id",
		"phonon":               "material_id",
		"electronic_structure": "material_id",
		"doi":                  "material_id",
		"robocrys":             "material_id",
		"magnetism":            "material_id",
		"elasticity":           "task_id",
		"dielectric":           "material_id",
		"piezoelectric":        "material_id",
		"eos":                  "task_id",
		"xas":                  "xas_id",
		"grain_boundary":       "task_id",
		"fermi":                "task_id",
		"substrates":           "film_id",
		"surface_properties":   "task_id",
		"insertion_electrodes": "battery_id",
		"bonds":                "material_id",
		"molecules":            "task_id",
		"provenance":           "material_id",
		"_user_settings":       "consumer_id",
		"_general_store":       "submission_id",
		"mpcomplete":           "submission_id",
	}
	for path, key := range keys {
		r, ok := routes[path]
		if !ok {
			t.Errorf("missing route %s", path)
			continue
		}
		if r.Resource.Key() != key {
			t.Errorf("route %s: expected key %s, got %s", path, key, r.Resource.Key())
		}
	}

	for _, path := range []string{
		"materials/formula_autocomplete", "summary/stats", "tasks/deprecation", "tasks/trajectory",
		"electronic_structure/bandstructure", "electronic_structure/dos",
		"electronic_structure/bandstructure/object", "electronic_structure/dos/object",
		"synthesis", "robocrys/text_search", "charge_density",
	} {
		if _, ok := routes[path]; !ok {
			t.Errorf("missing route %s", path)
		}
	}
}

func TestRoutes_SearchDisabled(t *testing.T) {
	routes := routeMap(t, Deps{Store: &mockStore{}})
	for _, path := range []string{"similarity", "phonon", "_user_settings", "thermo/phase_diagram"} {
		if routes[path].Resource.SearchEnabled() {
			t.Errorf("expected search disabled on %s", path)
		}
	}
	for _, path := range []string{"charge_density", "synthesis", "summary/stats"} {
		if routes[path].Resource.GetByKeyEnabled() {
			t.Errorf("expected get-by-key disabled on %s", path)
		}
	}
}

func TestRoutes_Posters(t *testing.T) {
	routes := routeMap(t, Deps{Store: &mockStore{}})
	for path, r := range routes {
		_, ok := r.Resource.(Poster)
		want := path == "_user_settings" || path == "_general_store" || path == "mpcomplete"
		if ok != want {
			t.Errorf("route %s: poster=%v, want %v", path, ok, want)
		}
	}
}

func TestRoutes_CollectionOverride(t *testing.T) {
	store := &mockStore{}
	d := Deps{
		Store: store,
		Collection: func(route, def string) string {
			if route == "materials" {
				return "materials.core"
			}
			return def
		},
	}
	routes := routeMap(t, d)
	if got := routes["materials"].Resource.Collection(); got != "materials.core" {
		t.Errorf("expected overridden collection, got %s", got)
	}
	if got := routes["tasks/deprecation"].Resource.Collection(); got != "materials.core" {
		t.Errorf("expected deprecation lookups on the materials collection, got %s", got)
	}
	if got := routes["thermo"].Resource.Collection(); got != "thermo" {
		t.Errorf("expected default collection, got %s", got)
	}
}

func TestRoutes_SummarySearch(t *testing.T) {
	store := &mockStore{}
	routes := routeMap(t, Deps{Store: store, DefaultLimit: 10, MaxLimit: 100})

	resp, err := routes["summary"].Resource.Search(context.Background(), url.Values{
		"formula":          {"Fe2O3"},
		"band_gap_min":     {"1"},
		"is_stable":        {"true"},
		"has_props":        {"dielectric"},
		"material_ids":     {"mp-1,mp-2"},
		"possible_species": {"Fe3+"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Data) != 1 || store.collections[0] != "summary" {
		t.Errorf("unexpected response %v from %v", resp.Data, store.collections)
	}
}

func TestCollections_MergesIndexes(t *testing.T) {
	routes := Routes(Deps{Store: &mockStore{}})
	colls := Collections(routes)

	es := colls["electronic_structure"]
	seen := map[string]int{}
	for _, ix := range es {
		seen[ix.Key]++
	}
	if seen["material_id"] != 1 {
		t.Errorf("expected material_id indexed once, got %d", seen["material_id"])
	}
	if seen["bandstructure"] == 0 && len(es) < 3 {
		t.Errorf("expected indexes from sub-routes, got %v", es)
	}
}

func TestRoutes_HintsAreIndexed(t *testing.T) {
	routes := routeMap(t, Deps{Store: &mockStore{}})
	schemes := map[string]hint.Scheme{"summary": hint.Summary(), "tasks": hint.Tasks()}
	formulas := []string{"Cr2*3", "Si-*", "Si-O", "Fe2O3", "A2B3"}

	for path, scheme := range schemes {
		indexed := map[string]bool{}
		for _, ix := range routes[path].Resource.Indexes() {
			indexed[ix.Key] = true
		}
		var criteria []domain.Criteria
		for _, f := range formulas {
			c, err := composition.FormulaToCriteria(f)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			criteria = append(criteria, c)
		}
		criteria = append(criteria, domain.Criteria{"has_props": map[string]any{"$all": []string{"dos"}}})

		for _, c := range criteria {
			for key := range scheme.Hint(c) {
				if key != "_id" && !indexed[key] {
					t.Errorf("%s: hint %s for %v has no index", path, key, c)
				}
			}
		}
	}
}
