package query

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/kailas-cloud/mpapi/internal/domain"
	"github.com/kailas-cloud/mpapi/pkg/schema"
)

// UserSettingsPost stores the settings object of a consumer.
type UserSettingsPost struct{}

// Params implements Submitter.
func (UserSettingsPost) Params() []string { return []string{"consumer_id"} }

// Document implements Submitter.
func (UserSettingsPost) Document(params url.Values, body []byte) (domain.Document, error) {
	id, err := consumerID(params)
	if err != nil {
		return nil, err
	}
	settings, err := bodyObject(body, true)
	if err != nil {
		return nil, domain.NewQueryError("settings", "%v", err)
	}
	return domain.Document{"consumer_id": id, "settings": settings}, nil
}

// UserSettingsGet selects the settings of one consumer.
type UserSettingsGet struct{}

// Params implements Operator.
func (UserSettingsGet) Params() []string { return []string{"consumer_id"} }

// Query implements Operator.
func (UserSettingsGet) Query(params url.Values) (domain.StoreParams, error) {
	id, err := consumerID(params)
	if err != nil {
		return domain.StoreParams{}, err
	}
	return criteria(domain.Criteria{"consumer_id": id}), nil
}

func consumerID(params url.Values) (string, error) {
	raw, ok := stringParam(params, "consumer_id")
	if !ok {
		return "", domain.NewQueryError("consumer_id", "field required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", domain.NewQueryError("consumer_id", "value is not a valid uuid")
	}
	return id.String(), nil
}

// GeneralStorePost stores a kind, optional markdown and a meta object.
type GeneralStorePost struct{}

// Params implements Submitter.
func (GeneralStorePost) Params() []string { return []string{"kind", "markdown"} }

// Document implements Submitter.
func (GeneralStorePost) Document(params url.Values, body []byte) (domain.Document, error) {
	kind, ok := stringParam(params, "kind")
	if !ok {
		return nil, domain.NewQueryError("kind", "field required")
	}
	meta, err := bodyObject(body, false)
	if err != nil {
		return nil, domain.NewQueryError("meta", "%v", err)
	}
	doc := domain.Document{"kind": kind, "markdown": nil, "meta": meta}
	if md, ok := stringParam(params, "markdown"); ok {
		doc["markdown"] = md
	}
	return doc, nil
}

// GeneralStoreGet selects stored items of one kind.
func GeneralStoreGet() *String { return NewEqual("kind", "kind").Required() }

// MPCompletePost stores a structure submitted for calculation.
type MPCompletePost struct{}

// Params implements Submitter.
func (MPCompletePost) Params() []string { return []string{"public_name", "public_email"} }

// Document implements Submitter.
func (MPCompletePost) Document(params url.Values, body []byte) (domain.Document, error) {
	name, ok := stringParam(params, "public_name")
	if !ok {
		return nil, domain.NewQueryError("public_name", "field required")
	}
	email, ok := stringParam(params, "public_email")
	if !ok {
		return nil, domain.NewQueryError("public_email", "field required")
	}
	var s schema.Structure
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, domain.NewQueryError("structure", "body is not a valid structure: %v", err)
	}
	if len(s.Sites) == 0 {
		return nil, domain.NewQueryError("structure", "structure has no sites")
	}
	structure, err := bodyObject(body, true)
	if err != nil {
		return nil, domain.NewQueryError("structure", "%v", err)
	}
	return domain.Document{
		"structure":    structure,
		"public_name":  name,
		"public_email": email,
	}, nil
}

// MPCompleteGet filters submissions by submitter.
func MPCompleteGet() []Operator {
	return []Operator{NewEqual("public_name", ""), NewEqual("public_email", "")}
}

func bodyObject(body []byte, required bool) (map[string]any, error) {
	if len(body) == 0 {
		if required {
			return nil, fmt.Errorf("body required")
		}
		return nil, nil
	}
	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("body is not a JSON object: %w", err)
	}
	return out, nil
}
