package resource

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/kailas-cloud/mpapi/internal/domain"
	"github.com/kailas-cloud/mpapi/internal/query"
)

// SubmissionConfig declares a writable resource.
type SubmissionConfig struct {
	Config

	Post query.Submitter
	// CalculateID stores a generated UUID under Key on every submission.
	CalculateID bool
	// DefaultState is stamped as "state" when set.
	DefaultState string
}

// Submission accepts POSTed documents and serves them back through the
// embedded read-only resource.
type Submission struct {
	*ReadOnly
	post         query.Submitter
	calculateID  bool
	defaultState string
	newID        func() string
}

// NewSubmission creates a submission resource.
func NewSubmission(store Store, cfg SubmissionConfig) *Submission {
	return &Submission{
		ReadOnly:     NewReadOnly(store, cfg.Config),
		post:         cfg.Post,
		calculateID:  cfg.CalculateID,
		defaultState: cfg.DefaultState,
		newID:        uuid.NewString,
	}
}

// Submit builds the document from params and body, stamps it and upserts
// it by key.
func (s *Submission) Submit(ctx context.Context, params url.Values, body []byte) (Response, error) {
	if err := s.checkParams(params, []query.Operator{submitterParams{s.post}}); err != nil {
		return Response{}, err
	}
	doc, err := s.post.Document(params, body)
	if err != nil {
		return Response{}, err
	}

	key := s.cfg.Key
	if s.calculateID {
		doc[key] = s.newID()
	}
	id, _ := doc[key].(string)
	if id == "" {
		return Response{}, fmt.Errorf("%w: missing %s", domain.ErrValidation, key)
	}
	if s.defaultState != "" {
		if _, ok := doc["state"]; !ok {
			doc["state"] = s.defaultState
		}
	}
	doc["last_updated"] = s.now().UTC()

	if err := s.store.Upsert(ctx, s.cfg.Collection, key, doc); err != nil {
		return Response{}, fmt.Errorf("upsert %s: %w", s.cfg.Collection, err)
	}
	return Response{Data: []domain.Document{doc}, Meta: s.meta(1)}, nil
}

// submitterParams exposes a Submitter's parameters to the unknown-parameter check.
type submitterParams struct{ query.Submitter }

func (submitterParams) Query(url.Values) (domain.StoreParams, error) {
	return domain.StoreParams{}, nil
}
