package jsonapi

import (
	"net/http"
	"strconv"
)

// ErrorObject represents a single JSON:API error object.
type ErrorObject struct {
	Status string `json:"status,omitempty"`
	Code   string `json:"code,omitempty"`
	Title  string `json:"title,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// ErrorDocument is the top-level envelope for error responses. A document
// carries either data or errors, never both.
type ErrorDocument struct {
	Errors  []*ErrorObject `json:"errors"`
	JSONAPI VersionObject  `json:"jsonapi"`
}

// NewErrorDocument wraps error objects into an error document envelope.
func NewErrorDocument(errs ...*ErrorObject) *ErrorDocument {
	if errs == nil {
		errs = []*ErrorObject{}
	}
	return &ErrorDocument{
		Errors:  errs,
		JSONAPI: VersionObject{Version: Version},
	}
}

// NewError builds one error object from a status code and a human-readable
// detail string.
func NewError(status int, detail string) *ErrorObject {
	return &ErrorObject{
		Status: strconv.Itoa(status),
		Code:   ErrorCodeFromStatus(status),
		Title:  http.StatusText(status),
		Detail: detail,
	}
}

// ErrorCodeFromStatus maps HTTP status codes to error codes
func ErrorCodeFromStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusNotAcceptable:
		return "not_acceptable"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnsupportedMediaType:
		return "unsupported_media_type"
	case http.StatusUnprocessableEntity:
		return "unprocessable_entity"
	case http.StatusTooManyRequests:
		return "too_many_requests"
	case http.StatusInternalServerError:
		return "internal_error"
	case http.StatusNotImplemented:
		return "not_implemented"
	case http.StatusServiceUnavailable:
		return "service_unavailable"
	default:
		return "error"
	}
}
