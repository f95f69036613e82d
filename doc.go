// Package mpapi provides a Go client for the Materials Project API.
//
// A Client carries the shared HTTP machinery: API key, retries on rate
// limiting and transient failures, a requests-per-minute limiter and the
// parallelism used to split large queries. Settings are resolved from
// options, then MP_API_* environment variables, then ~/.pmgrc.yaml.
//
// # Typed route resters
//
//	mpr, _ := mpapi.NewMPRester(mpapi.WithAPIKey(key))
//	docs, _ := mpr.Summary.SearchSummaryDocs(ctx, mpapi.SummaryQuery{
//	    Elements: []string{"Si", "O"},
//	    Ranges:   map[string]mpapi.Range{"band_gap": mpapi.Between(0.5, 1.0)},
//	}, mpapi.Fields("material_id", "band_gap"))
//
// # Generic resters
//
//	client, _ := mpapi.New()
//	r := mpapi.NewRester[schema.ThermoDoc](client, "thermo")
//	doc, _ := r.GetDataByID(ctx, "mp-149")
//	n, _ := r.Count(ctx, mpapi.Query{"formula": "SiO2"})
//
// Large searches are split on their longest comma-separated parameter and
// paginated in parallel. Documents are validated against their schema type
// unless WithoutValidation is given.
package mpapi
