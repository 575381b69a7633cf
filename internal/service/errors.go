package service

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/yourusername/bbl-multi-builder/internal/models"
)

// API error kinds
const (
	KindNotFound   = "not_found"
	KindValidation = "validation"
	KindInternal   = "internal"
)

// APIError is the client-facing form of every facade failure
type APIError struct {
	Kind       string `json:"kind"`
	Identifier string `json:"identifier,omitempty"`
	Message    string `json:"error"`
	Status     int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *APIError) Error() string {
	if e.Identifier != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Identifier, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// Translate maps internal errors to an APIError. NotFound becomes 404,
// validation failures 400 and anything else a 500 with a generic message.
func Translate(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var nf *models.NotFoundError
	if errors.As(err, &nf) {
		return &APIError{
			Kind:       KindNotFound,
			Identifier: nf.Identifier,
			Message:    nf.Error(),
			Status:     http.StatusNotFound,
			Err:        err,
		}
	}

	var verr *models.ValidationError
	if errors.As(err, &verr) {
		identifier := verr.Identifier
		if identifier == "" {
			identifier = verr.Field
		}
		return &APIError{
			Kind:       KindValidation,
			Identifier: identifier,
			Message:    verr.Error(),
			Status:     http.StatusBadRequest,
			Err:        err,
		}
	}

	return &APIError{
		Kind:    KindInternal,
		Message: "internal error",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}
