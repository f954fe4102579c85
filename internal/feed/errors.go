package feed

import (
	"errors"
	"fmt"
)

// TransportError means the request could not complete.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ResponseError means the request completed but the response was unusable:
// a non-2xx status, or a 2xx body that is not a JSON array of records.
type ResponseError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to decode response (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

func (e *ResponseError) Unwrap() error { return e.Err }

const (
	KindTransport = "transport"
	KindResponse  = "response"
	KindOther     = "other"
)

// Kind classifies a fetch error for logs and metrics.
func Kind(err error) string {
	var te *TransportError
	if errors.As(err, &te) {
		return KindTransport
	}
	var re *ResponseError
	if errors.As(err, &re) {
		return KindResponse
	}
	return KindOther
}
