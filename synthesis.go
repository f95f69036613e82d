package mpapi

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/mpapi/pkg/schema"
)

const (
	synthesisChunkSize = 10
	robocrysChunkSize  = 100
)

// SynthesisQuery filters text-mined synthesis recipes.
type SynthesisQuery struct {
	Keywords         []string
	SynthesisType    []schema.SynthesisType
	TargetFormula    string
	PrecursorFormula string
	Operations       []schema.OperationType

	HeatingTemperature Range
	HeatingTime        Range
	HeatingAtmosphere  []string
	MixingDevice       []string
	MixingMedia        []string
}

// Query renders the filters as API parameters.
func (s SynthesisQuery) Query() Query {
	q := Query{
		"keywords":                     s.Keywords,
		"synthesis_type":               s.SynthesisType,
		"target_formula":               s.TargetFormula,
		"precursor_formula":            s.PrecursorFormula,
		"operations":                   s.Operations,
		"condition_heating_atmosphere": s.HeatingAtmosphere,
		"condition_mixing_device":      s.MixingDevice,
		"condition_mixing_media":       s.MixingMedia,
	}
	q.SetRange("condition_heating_temperature", s.HeatingTemperature)
	q.SetRange("condition_heating_time", s.HeatingTime)
	return q
}

// SynthesisRester searches text-mined synthesis recipes.
type SynthesisRester struct {
	*Rester[schema.SynthesisSearchResult]
}

func newSynthesisRester(c *Client) *SynthesisRester {
	return &SynthesisRester{
		Rester: NewRester[schema.SynthesisSearchResult](c, "synthesis").withChunkSize(synthesisChunkSize),
	}
}

// SearchSynthesisText returns the recipes matching sq. Keyword matches are
// ordered by search score. Pages hold at most 10 recipes.
func (r *SynthesisRester) SearchSynthesisText(ctx context.Context, sq SynthesisQuery, opts ...SearchOption) ([]schema.SynthesisSearchResult, error) {
	opts = append(opts, AllFields(false), Fields())
	return r.Search(ctx, sq.Query(), opts...)
}

// RobocrysRester queries robocrystallographer descriptions.
type RobocrysRester struct {
	*Rester[schema.RobocrysDoc]
	textSearch *Rester[schema.RobocrysDoc]
}

func newRobocrysRester(c *Client) *RobocrysRester {
	return &RobocrysRester{
		Rester:     NewRester[schema.RobocrysDoc](c, "robocrys"),
		textSearch: NewRester[schema.RobocrysDoc](c, "robocrys/text_search").withChunkSize(robocrysChunkSize),
	}
}

// SearchRobocrys returns the descriptions matching any of keywords, ordered
// by search score. It fails with ErrNoResult when nothing matches.
func (r *RobocrysRester) SearchRobocrys(ctx context.Context, keywords []string, opts ...SearchOption) ([]schema.RobocrysDoc, error) {
	if len(keywords) == 0 {
		return nil, fmt.Errorf("mpapi: must provide search keywords")
	}
	opts = append(opts, AllFields(false), Fields())
	docs, err := r.textSearch.Search(ctx, Query{"keywords": keywords}, opts...)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: cannot find any matches", ErrNoResult)
	}
	return docs, nil
}
