package indexstatus

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/addonindex/idxstat/internal/domain"
)

// DecodeStatus parses and validates a status payload. Syntax errors map to
// domain.ErrInvalidJSON, valid JSON of the wrong shape to
// domain.ErrMalformedPayload.
func DecodeStatus(body []byte) (*domain.StatusResponse, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: empty body", domain.ErrInvalidJSON)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidJSON, syntaxError(body))
	}

	var resp domain.StatusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	if err := resp.Validate(); err != nil {
		return nil, err
	}
	return &resp, nil
}

// syntaxError re-runs the decoder to recover a useful position for the log
func syntaxError(body []byte) error {
	var v any
	err := json.Unmarshal(body, &v)
	var se *json.SyntaxError
	if errors.As(err, &se) {
		return fmt.Errorf("%s at offset %d", se.Error(), se.Offset)
	}
	if err == nil {
		return io.ErrUnexpectedEOF
	}
	return err
}

// failureFor wraps err in a FetchError with the kind derived from it
func failureFor(source string, statusCode int, err error) error {
	return &domain.FetchError{
		Kind:       domain.FailureKindOf(err),
		Source:     source,
		StatusCode: statusCode,
		Err:        err,
	}
}
