package schema

import "time"

// UserSettingsDoc holds the stored settings of an API consumer.
type UserSettingsDoc struct {
	ConsumerID string         `mpapi:"key" json:"consumer_id" bson:"consumer_id" validate:"required"`
	Settings   map[string]any `json:"settings" bson:"settings"`
}

// GeneralStoreDoc is a free-form submission to the general store.
type GeneralStoreDoc struct {
	SubmissionID string         `mpapi:"key" json:"submission_id,omitempty" bson:"submission_id,omitempty"`
	Kind         string         `json:"kind" bson:"kind" validate:"required"`
	Markdown     string         `json:"markdown,omitempty" bson:"markdown,omitempty"`
	Meta         map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
	LastUpdated  *time.Time     `json:"last_updated,omitempty" bson:"last_updated,omitempty"`
}

// MPCompleteDoc is a structure submitted for calculation.
type MPCompleteDoc struct {
	SubmissionID string           `mpapi:"key" json:"submission_id,omitempty" bson:"submission_id,omitempty"`
	Structure    *Structure       `json:"structure" bson:"structure" validate:"required"`
	PublicName   string           `json:"public_name" bson:"public_name" validate:"required"`
	PublicEmail  string           `json:"public_email" bson:"public_email" validate:"required"`
	State        MPCompleteStatus `json:"state,omitempty" bson:"state,omitempty"`
	LastUpdated  *time.Time       `json:"last_updated,omitempty" bson:"last_updated,omitempty"`
}
