package models

import (
	"errors"
	"fmt"
)

// Error kinds
var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation failed")
	ErrDataIntegrity = errors.New("data integrity violation")
)

// NotFoundError reports a reference to an unknown team, player or market.
// Field and Reason locate the failing entry of a multi-part request such as a leg.
type NotFoundError struct {
	Kind       string // "team", "market", "player" or "leg"
	Identifier string
	Field      string
	Reason     string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s not found: %s", e.Kind, e.Identifier)
	switch {
	case e.Field != "" && e.Reason != "":
		msg += fmt.Sprintf(" (%s: %s)", e.Field, e.Reason)
	case e.Field != "":
		msg += fmt.Sprintf(" (%s)", e.Field)
	}
	return msg
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ValidationError reports a malformed request
type ValidationError struct {
	Field      string
	Identifier string
	Reason     string
}

func (e *ValidationError) Error() string {
	if e.Identifier != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Identifier, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// DataIntegrityError reports a malformed source row. It is fatal at startup.
type DataIntegrityError struct {
	Table  string
	Line   int
	Column string
	Value  string
	Reason string
}

func (e *DataIntegrityError) Error() string {
	msg := fmt.Sprintf("%s line %d", e.Table, e.Line)
	if e.Column != "" {
		msg += fmt.Sprintf(" column %q", e.Column)
	}
	if e.Value != "" {
		msg += fmt.Sprintf(" value %q", e.Value)
	}
	return msg + ": " + e.Reason
}

func (e *DataIntegrityError) Unwrap() error { return ErrDataIntegrity }

// NewTeamNotFound returns a NotFoundError for a team
func NewTeamNotFound(team string) error {
	return &NotFoundError{Kind: "team", Identifier: team}
}

// NewMarketNotFound returns a NotFoundError for a market identifier
func NewMarketNotFound(market string) error {
	return &NotFoundError{Kind: "market", Identifier: market}
}
