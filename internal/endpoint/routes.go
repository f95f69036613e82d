package endpoint

import (
	"github.com/kailas-cloud/mpapi/internal/domain/hint"
	"github.com/kailas-cloud/mpapi/internal/query"
	"github.com/kailas-cloud/mpapi/internal/usecase/resource"
	"github.com/kailas-cloud/mpapi/pkg/schema"
)

func (d Deps) page() *query.Pagination { return query.NewPagination(d.DefaultLimit, d.MaxLimit) }

func fields[T any](defaults ...string) *query.SparseFields {
	return query.NewSparseFields(schema.Fields[T](), defaults)
}

// simple is the route shape shared by most property collections:
// a keyed collection with pagination and sparse fields after ops.
func simple[T any](d Deps, path, def string, ops []query.Operator, defaults ...string) Route {
	return Route{Path: path, Resource: resource.NewReadOnly(d.Store, resource.Config{
		Collection: d.collection(path, def),
		Key:        schema.PrimaryKey[T](),
		Operators:  append(ops, d.page()),
		Fields:     fields[T](defaults...),
	})}
}

func materials(d Deps) []Route {
	coll := d.collection("materials", "materials")
	return []Route{
		{Path: "materials/formula_autocomplete", Resource: resource.NewAggregation(d.Store,
			d.collection("formula_autocomplete", "formula_autocomplete"), query.NewFormulaAutocomplete())},
		{Path: "materials", Resource: resource.NewReadOnly(d.Store, resource.Config{
			Collection: coll,
			Key:        "material_id",
			Operators: []query.Operator{
				query.Formula{},
				query.Chemsys{},
				query.NewElements("elements"),
				query.TaskIDs(),
				query.Symmetry{},
				query.Deprecation{},
				query.NewNumeric("nsites", "volume", "density", "nelements"),
				query.NewSort(),
				d.page(),
			},
			Fields: fields[schema.MaterialsDoc]("material_id", "formula_pretty"),
		})},
	}
}

func summary(d Deps) []Route {
	coll := d.collection("summary", "summary")
	numeric := schema.MustDescribe[schema.SummaryDoc]().FieldsOfKind(schema.KindNumeric)
	return []Route{
		{Path: "summary/stats", Resource: resource.NewAggregation(d.Store, coll, query.NewSearchStats(numeric))},
		{Path: "summary", Resource: resource.NewReadOnly(d.Store, resource.Config{
			Collection: coll,
			Key:        "material_id",
			Operators: []query.Operator{
				query.MultiMaterialID(),
				query.Formula{},
				query.Chemsys{},
				query.NewElements("elements"),
				query.PossibleOxiState{},
				query.Symmetry{},
				query.NewBool("is_stable", "is_stable"),
				query.NewBool("theoretical", "theoretical"),
				query.Magnetic(),
				query.ESSummary{},
				query.NumericFor[schema.SummaryDoc](),
				query.NewBool("has_reconstructed", "has_reconstructed"),
				query.HasProps(),
				query.Deprecation{},
				query.NewSort(),
				d.page(),
			},
			Fields: fields[schema.SummaryDoc]("material_id"),
			Hint:   hint.Summary(),
		})},
	}
}

func thermo(d Deps) []Route {
	return []Route{
		{Path: "thermo/phase_diagram", Resource: resource.NewReadOnly(d.Store, resource.Config{
			Collection:    d.collection("phase_diagram", "phase_diagram"),
			Key:           "chemsys",
			Fields:        fields[schema.PhaseDiagramDoc](),
			DisableSearch: true,
		})},
		simple[schema.ThermoDoc](d, "thermo", "thermo", []query.Operator{
			query.MultiMaterialID(),
			query.Formula{},
			query.Chemsys{},
			query.NewBool("is_stable", "is_stable"),
			query.NumericFor[schema.ThermoDoc](),
			query.NewSort(),
		}, "material_id", "last_updated"),
	}
}

func tasks(d Deps) []Route {
	coll := d.collection("tasks", "tasks")
	return []Route{
		{Path: "tasks/deprecation", Resource: resource.NewAggregation(d.Store,
			d.collection("materials", "materials"), query.TaskDeprecation{})},
		{Path: "tasks/trajectory", Resource: resource.NewAggregation(d.Store, coll, query.Trajectory{})},
		{Path: "tasks", Resource: resource.NewReadOnly(d.Store, resource.Config{
			Collection: coll,
			Key:        "task_id",
			Operators: []query.Operator{
				query.Formula{},
				query.NewElements("elements"),
				query.MultiTaskID(),
				query.NewSort(),
				d.page(),
			},
			Fields: fields[schema.TaskDoc]("task_id", "formula_pretty", "last_updated"),
			Hint:   hint.Tasks(),
		})},
	}
}

func oxidationStates(d Deps) []Route {
	return []Route{simple[schema.OxidationStateDoc](d, "oxidation_states", "oxidation_states", []query.Operator{
		query.Formula{},
		query.PossibleOxiState{},
		query.NewSort(),
	}, "material_id", "last_updated")}
}

func similarity(d Deps) []Route {
	return []Route{{Path: "similarity", Resource: resource.NewReadOnly(d.Store, resource.Config{
		Collection:    d.collection("similarity", "similarity"),
		Key:           "material_id",
		Operators:     []query.Operator{d.page()},
		Fields:        fields[schema.SimilarityDoc]("material_id"),
		DisableSearch: true,
	})}}
}

func phonon(d Deps) []Route {
	return []Route{{Path: "phonon", Resource: resource.NewReadOnly(d.Store, resource.Config{
		Collection:    d.collection("phonon", "phonon"),
		Key:           "material_id",
		Operators:     []query.Operator{d.page()},
		Fields:        fields[schema.PhononBSDOSDoc]("material_id", "last_updated"),
		DisableSearch: true,
	})}}
}

func electronicStructure(d Deps) []Route {
	coll := d.collection("electronic_structure", "electronic_structure")
	esFields := fields[schema.ElectronicStructureDoc]("material_id", "last_updated")
	objectFields := func() *query.SparseFields {
		return query.NewSparseFields(append(schema.Fields[schema.ObjectIndexDoc](), "data"), nil)
	}
	return []Route{
		{Path: "electronic_structure/bandstructure/object", Resource: resource.NewObject(d.Store, d.Objects, resource.ObjectConfig{
			Config: resource.Config{
				Collection:      d.collection("bandstructure_object", "electronic_structure_bandstructures"),
				Key:             "task_id",
				Operators:       []query.Operator{query.Object{}},
				Fields:          objectFields(),
				DisableGetByKey: true,
			},
			Bucket: d.bucket("bandstructure", "mp-bandstructures"),
		})},
		{Path: "electronic_structure/dos/object", Resource: resource.NewObject(d.Store, d.Objects, resource.ObjectConfig{
			Config: resource.Config{
				Collection:      d.collection("dos_object", "electronic_structure_dos"),
				Key:             "task_id",
				Operators:       []query.Operator{query.Object{}},
				Fields:          objectFields(),
				DisableGetByKey: true,
			},
			Bucket: d.bucket("dos", "mp-dos"),
		})},
		{Path: "electronic_structure/bandstructure", Resource: resource.NewReadOnly(d.Store, resource.Config{
			Collection: coll,
			Key:        "material_id",
			Operators:  []query.Operator{query.BSData{}, query.NewSort(), d.page()},
			Fields:     esFields,
		})},
		{Path: "electronic_structure/dos", Resource: resource.NewReadOnly(d.Store, resource.Config{
			Collection: coll,
			Key:        "material_id",
			Operators:  []query.Operator{query.DOSData{}, query.NewSort(), d.page()},
			Fields:     esFields,
		})},
		{Path: "electronic_structure", Resource: resource.NewReadOnly(d.Store, resource.Config{
			Collection: coll,
			Key:        "material_id",
			Operators: []query.Operator{
				query.Formula{},
				query.Chemsys{},
				query.NewElements("elements"),
				query.ESSummary{},
				query.NumericFor[schema.ElectronicStructureDoc](),
				query.NewSort(),
				d.page(),
			},
			Fields: esFields,
		})},
	}
}

func synthesis(d Deps) []Route {
	return []Route{{Path: "synthesis", Resource: resource.NewAggregation(d.Store,
		d.collection("synthesis", "synth_descriptions"), query.SynthesisSearch{})}}
}

func doi(d Deps) []Route {
	return []Route{simple[schema.DOIDoc](d, "doi", "doi", nil, "material_id")}
}

func robocrys(d Deps) []Route {
	coll := d.collection("robocrys", "robocrys")
	return []Route{
		{Path: "robocrys/text_search", Resource: resource.NewAggregation(d.Store, coll, query.Keywords{})},
		simple[schema.RobocrysDoc](d, "robocrys", coll, nil, "material_id"),
	}
}

func magnetism(d Deps) []Route {
	return []Route{simple[schema.MagnetismDoc](d, "magnetism", "magnetism", []query.Operator{
		query.Enum[schema.Ordering](query.NewEqual("ordering", "magnetism.ordering")),
		query.NumericUnder[schema.MagnetismData]("magnetism"),
		query.NewSort(),
	}, "material_id")}
}

func elasticity(d Deps) []Route {
	return []Route{simple[schema.ElasticityDoc](d, "elasticity", "elasticity", []query.Operator{
		query.NumericUnder[schema.ElasticityData]("elasticity"),
		query.NewElements("elements"),
		query.Formula{},
		query.Chemsys{},
		query.NewSort(),
	}, "task_id", "pretty_formula")}
}

func dielectric(d Deps) []Route {
	return []Route{simple[schema.DielectricDoc](d, "dielectric", "dielectric", []query.Operator{
		query.NumericUnder[schema.DielectricData]("dielectric"),
		query.NewSort(),
	}, "material_id")}
}

func piezoelectric(d Deps) []Route {
	return []Route{simple[schema.PiezoDoc](d, "piezoelectric", "piezoelectric", []query.Operator{
		query.NumericUnder[schema.PiezoData]("piezo"),
		query.NewSort(),
	}, "material_id")}
}

func eos(d Deps) []Route {
	return []Route{simple[schema.EOSDoc](d, "eos", "eos", []query.Operator{
		query.NumericFor[schema.EOSDoc](),
		query.NewSort(),
	}, "task_id")}
}

func xas(d Deps) []Route {
	return []Route{simple[schema.XASDoc](d, "xas", "xas", []query.Operator{
		query.Formula{},
		query.Chemsys{},
		query.NewElements("elements"),
		query.Enum[schema.Edge](query.NewEqual("edge", "edge")),
		query.Enum[schema.XASType](query.NewEqual("spectrum_type", "spectrum_type")),
		query.NewEqual("absorbing_element", "absorbing_element"),
		query.MultiMaterialID(),
	}, "xas_id", "material_id", "edge", "absorbing_element")}
}

func grainBoundary(d Deps) []Route {
	return []Route{simple[schema.GrainBoundaryDoc](d, "grain_boundary", "grain_boundary", []query.Operator{
		query.NumericFor[schema.GrainBoundaryDoc](),
		query.Enum[schema.GBType](query.NewEqual("type", "type")),
		query.NewEqual("chemsys", "chemsys"),
	}, "task_id", "last_updated")}
}

func fermi(d Deps) []Route {
	return []Route{simple[schema.FermiDoc](d, "fermi", "fermi", nil, "task_id", "last_updated")}
}

func substrates(d Deps) []Route {
	return []Route{simple[schema.SubstratesDoc](d, "substrates", "substrates", []query.Operator{
		query.NewEqual("film_id", "film_id"),
		query.NewEqual("sub_id", "sub_id"),
		query.NewEqual("sub_form", "sub_form"),
		query.NewEqual("film_orient", "film_orient"),
		query.NewEqual("orient", "orient"),
		query.NumericFor[schema.SubstratesDoc](),
		query.NewSort(),
	}, "film_id", "sub_id", "sub_form")}
}

func surfaceProperties(d Deps) []Route {
	return []Route{simple[schema.SurfacePropDoc](d, "surface_properties", "surface_properties", []query.Operator{
		query.NumericFor[schema.SurfacePropDoc](),
		query.NewBool("has_reconstructed", "has_reconstructed"),
		query.NewSort(),
	}, "task_id")}
}

func insertionElectrodes(d Deps) []Route {
	return []Route{simple[schema.InsertionElectrodeDoc](d, "insertion_electrodes", "insertion_electrodes", []query.Operator{
		query.Formula{},
		query.NewElements("elements"),
		query.NewEqual("working_ion", "working_ion"),
		query.NumericFor[schema.InsertionElectrodeDoc](),
		query.NewSort(),
	}, "battery_id", "last_updated")}
}

func bonds(d Deps) []Route {
	return []Route{simple[schema.BondingDoc](d, "bonds", "bonds", []query.Operator{
		query.NumericFor[schema.BondingDoc](),
		query.NewAll("coordination_envs", "coordination_envs"),
		query.NewAll("coordination_envs_anonymous", "coordination_envs_anonymous"),
	}, "material_id")}
}

func molecules(d Deps) []Route {
	return []Route{simple[schema.MoleculesDoc](d, "molecules", "molecules", []query.Operator{
		query.NewEqual("formula", "formula_pretty"),
		query.NewElements("elements"),
		query.NewEqual("pointgroup", "pointgroup"),
		query.NewEqual("smiles", "smiles"),
		query.NumericFor[schema.MoleculesDoc](),
	}, "task_id", "formula_pretty")}
}

func chargeDensity(d Deps) []Route {
	return []Route{{Path: "charge_density", Resource: resource.NewObject(d.Store, d.Objects, resource.ObjectConfig{
		Config: resource.Config{
			Collection:      d.collection("charge_density", "atomate_chgcar_fs"),
			Key:             "task_id",
			Operators:       []query.Operator{query.MultiTaskID(), query.NewPagination(5, 10)},
			Fields:          query.NewSparseFields(schema.Fields[schema.ChgcarDataDoc](), []string{"last_updated", "task_id", "fs_id"}),
			DisableGetByKey: true,
		},
		Bucket: d.bucket("charge_density", "mp-volumetric"),
	})}}
}

func provenance(d Deps) []Route {
	return []Route{simple[schema.ProvenanceDoc](d, "provenance", "provenance", nil, "material_id")}
}

func userSettings(d Deps) []Route {
	return []Route{{Path: "_user_settings", Resource: resource.NewSubmission(d.Store, resource.SubmissionConfig{
		Config: resource.Config{
			Collection:    d.collection("user_settings", "user_settings"),
			Key:           "consumer_id",
			Operators:     []query.Operator{query.UserSettingsGet{}},
			Fields:        fields[schema.UserSettingsDoc](),
			DisableSearch: true,
		},
		Post: query.UserSettingsPost{},
	})}}
}

func generalStore(d Deps) []Route {
	return []Route{{Path: "_general_store", Resource: resource.NewSubmission(d.Store, resource.SubmissionConfig{
		Config: resource.Config{
			Collection: d.collection("general_store", "general_store"),
			Key:        "submission_id",
			Operators:  []query.Operator{query.GeneralStoreGet(), d.page()},
			Fields:     fields[schema.GeneralStoreDoc](),
		},
		Post:        query.GeneralStorePost{},
		CalculateID: true,
	})}}
}

func mpcomplete(d Deps) []Route {
	return []Route{{Path: "mpcomplete", Resource: resource.NewSubmission(d.Store, resource.SubmissionConfig{
		Config: resource.Config{
			Collection: d.collection("mpcomplete", "mpcomplete"),
			Key:        "submission_id",
			Operators:  append(query.MPCompleteGet(), d.page()),
			Fields:     fields[schema.MPCompleteDoc](),
		},
		Post:         query.MPCompletePost{},
		CalculateID:  true,
		DefaultState: string(schema.StateSubmitted),
	})}}
}
