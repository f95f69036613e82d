package mpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/mpapi/pkg/schema"
)

// Sentinel errors. Use errors.Is() to check.
var (
	// ErrRest is wrapped by every RestError.
	ErrRest = errors.New("mpapi: REST query failed")
	// ErrNoResult signals a lookup by id that matched nothing.
	ErrNoResult = errors.New("mpapi: no result")
	// ErrInvalidChunk signals a non-positive chunk size or chunk count.
	ErrInvalidChunk = errors.New("mpapi: invalid chunking")
	// ErrValidation signals a received document that does not match its schema.
	ErrValidation = schema.ErrValidation
	// ErrNoAPIKey signals that no API key could be resolved.
	ErrNoAPIKey = errors.New("mpapi: no API key found; pass WithAPIKey, set MP_API_KEY or " +
		SettingAPIKey + " in ~/.pmgrc.yaml")
	// ErrInvalidID signals a malformed material or task id.
	ErrInvalidID = errors.New("mpapi: invalid id")
)

// RestError is a non-200 response of the API.
type RestError struct {
	StatusCode int
	URL        string
	Message    string
}

func (e *RestError) Error() string {
	return fmt.Sprintf("REST query returned with error status code %d on URL %s with message:\n%s",
		e.StatusCode, e.URL, e.Message)
}

func (e *RestError) Unwrap() error { return ErrRest }

// NoResultError reports the record a lookup failed to find.
type NoResultError struct {
	ID string
}

func (e *NoResultError) Error() string { return fmt.Sprintf("No result for record %s.", e.ID) }

func (e *NoResultError) Unwrap() error { return ErrNoResult }

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type detailItem struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// errorMessage extracts the message of an error response. detail may be a
// string or a list of {loc, msg} validation items.
func errorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return strings.TrimSpace(string(body))
	}
	var s string
	if err := json.Unmarshal(eb.Detail, &s); err == nil {
		return s
	}
	var items []detailItem
	if err := json.Unmarshal(eb.Detail, &items); err == nil {
		lines := make([]string, 0, len(items))
		for _, it := range items {
			loc := ""
			if len(it.Loc) > 1 {
				loc = fmt.Sprint(it.Loc[1])
			} else if len(it.Loc) == 1 {
				loc = fmt.Sprint(it.Loc[0])
			}
			lines = append(lines, fmt.Sprintf("%s - %s", loc, it.Msg))
		}
		return strings.Join(lines, "\n")
	}
	return string(eb.Detail)
}

func isNoResult(err error) bool { return errors.Is(err, ErrNoResult) }
