package types

import "errors"

// Error kinds. Callers wrap them with context and match with errors.Is.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrUpstreamEmptyResponse = errors.New("upstream returned no content")
	ErrSchemaParse           = errors.New("upstream response did not match schema")
	ErrNotFound              = errors.New("campaign not found")
	ErrUpstreamCall          = errors.New("upstream call failed")
	ErrStorage               = errors.New("storage failure")
)

// ErrorKind returns a short machine-readable name for err.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrUpstreamEmptyResponse):
		return "upstream_empty_response"
	case errors.Is(err, ErrSchemaParse):
		return "schema_parse_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUpstreamCall):
		return "upstream_call_failure"
	case errors.Is(err, ErrStorage):
		return "storage_error"
	default:
		return "internal_error"
	}
}
