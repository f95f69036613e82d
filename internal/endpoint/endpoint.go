// Package endpoint declares the served routes: one constructor per route
// binding a collection to its operators, key field, fields and hint scheme.
package endpoint

import (
	"context"
	"net/url"

	"github.com/kailas-cloud/mpapi/internal/domain"
	"github.com/kailas-cloud/mpapi/internal/usecase/resource"
)

// Resource is a mounted route target.
type Resource interface {
	Collection() string
	Key() string
	SearchEnabled() bool
	GetByKeyEnabled() bool
	Indexes() []domain.Index
	Search(ctx context.Context, params url.Values) (resource.Response, error)
	GetByKey(ctx context.Context, key string, params url.Values) (resource.Response, error)
}

// Poster is implemented by resources that accept submissions.
type Poster interface {
	Submit(ctx context.Context, params url.Values, body []byte) (resource.Response, error)
}

// Route binds a path prefix, without slashes at either end, to a resource.
type Route struct {
	Path     string
	Resource Resource
}

// Deps carries what route constructors need.
type Deps struct {
	Store resource.Store
	// Objects may be nil; object routes then answer with ErrObjectStoreUnavailable.
	Objects resource.ObjectStore
	// Collection resolves the collection of a route from its default name.
	Collection func(route, def string) string
	// Bucket resolves the object bucket of a route from its default name.
	Bucket func(route, def string) string

	DefaultLimit int
	MaxLimit     int
}

func (d Deps) collection(route, def string) string {
	if d.Collection == nil {
		return def
	}
	return d.Collection(route, def)
}

func (d Deps) bucket(route, def string) string {
	if d.Bucket == nil {
		return def
	}
	return d.Bucket(route, def)
}

// Routes returns every served route. Sub-paths are listed before their parents.
func Routes(d Deps) []Route {
	var routes []Route
	for _, build := range []func(Deps) []Route{
		materials,
		summary,
		thermo,
		tasks,
		oxidationStates,
		similarity,
		phonon,
		electronicStructure,
		synthesis,
		doi,
		robocrys,
		magnetism,
		elasticity,
		dielectric,
		piezoelectric,
		eos,
		xas,
		grainBoundary,
		fermi,
		substrates,
		surfaceProperties,
		insertionElectrodes,
		bonds,
		molecules,
		chargeDensity,
		provenance,
		userSettings,
		generalStore,
		mpcomplete,
	} {
		routes = append(routes, build(d)...)
	}
	return routes
}

// Collections returns the distinct collections behind routes with their indexes merged.
func Collections(routes []Route) map[string][]domain.Index {
	out := map[string][]domain.Index{}
	for _, r := range routes {
		c := r.Resource.Collection()
		have := out[c]
		for _, ix := range r.Resource.Indexes() {
			if !containsIndex(have, ix) {
				have = append(have, ix)
			}
		}
		out[c] = have
	}
	return out
}

func containsIndex(list []domain.Index, ix domain.Index) bool {
	for _, i := range list {
		if i.Key == ix.Key {
			return true
		}
	}
	return false
}
