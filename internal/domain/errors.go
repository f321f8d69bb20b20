package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for status fetching
var (
	// ErrServerOffline indicates the status server could not be reached
	ErrServerOffline = errors.New("indexing status server is unreachable")

	// ErrUnexpectedStatus indicates the server answered with a non-2xx code
	ErrUnexpectedStatus = errors.New("unexpected response status")

	// ErrAuthFailed indicates the server rejected our credentials
	ErrAuthFailed = errors.New("authentication required or rejected")

	// ErrResponseTooLarge indicates the body exceeded the read limit
	ErrResponseTooLarge = errors.New("response too large")

	// ErrInvalidJSON indicates the response body is not valid JSON
	ErrInvalidJSON = errors.New("response is not valid JSON")

	// ErrMalformedPayload indicates valid JSON without the expected shape
	ErrMalformedPayload = errors.New("malformed status payload")
)

// FailureKind groups fetch failures for display
type FailureKind int

const (
	FailureUnknown FailureKind = iota
	FailureNetwork
	FailureParse
	FailureMalformed
)

func (k FailureKind) String() string {
	switch k {
	case FailureNetwork:
		return "network failure"
	case FailureParse:
		return "parse failure"
	case FailureMalformed:
		return "malformed payload"
	default:
		return "failure"
	}
}

// FetchError describes why loading the status failed
type FetchError struct {
	Kind       FailureKind
	Source     string // URL or file path
	StatusCode int    // HTTP status, 0 when not applicable
	Err        error
}

func (e *FetchError) Error() string {
	msg := e.Err.Error()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.StatusCode)
	}
	if e.Source != "" {
		return e.Source + ": " + msg
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// FailureKindOf classifies err into one of the failure kinds
func FailureKindOf(err error) FailureKind {
	if err == nil {
		return FailureUnknown
	}
	var fe *FetchError
	if errors.As(err, &fe) && fe.Kind != FailureUnknown {
		return fe.Kind
	}
	switch {
	case errors.Is(err, ErrMalformedPayload):
		return FailureMalformed
	case errors.Is(err, ErrInvalidJSON):
		return FailureParse
	case errors.Is(err, ErrServerOffline), errors.Is(err, ErrUnexpectedStatus), errors.Is(err, ErrAuthFailed),
		errors.Is(err, ErrResponseTooLarge):
		return FailureNetwork
	default:
		return FailureUnknown
	}
}
