package service

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/bbl-multi-builder/internal/models"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		status     int
		kind       string
		identifier string
	}{
		{
			name:       "not found",
			err:        models.NewTeamNotFound("Melbourne Stars"),
			status:     http.StatusNotFound,
			kind:       KindNotFound,
			identifier: "Melbourne Stars",
		},
		{
			name:       "wrapped not found",
			err:        fmt.Errorf("lookup: %w", models.NewMarketNotFound("50+ Runs")),
			status:     http.StatusNotFound,
			kind:       KindNotFound,
			identifier: "50+ Runs",
		},
		{
			name:       "validation with identifier",
			err:        &models.ValidationError{Field: "winner_team", Identifier: "Nowhere", Reason: "unknown team"},
			status:     http.StatusBadRequest,
			kind:       KindValidation,
			identifier: "Nowhere",
		},
		{
			name:       "validation falls back to field",
			err:        &models.ValidationError{Field: "legs", Reason: "at least one leg is required"},
			status:     http.StatusBadRequest,
			kind:       KindValidation,
			identifier: "legs",
		},
		{
			name:   "anything else",
			err:    errors.New("disk on fire"),
			status: http.StatusInternalServerError,
			kind:   KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := Translate(tt.err)
			require.NotNil(t, apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, tt.identifier, apiErr.Identifier)
			assert.ErrorIs(t, apiErr, tt.err)
		})
	}
}

func TestTranslate_InternalHidesDetail(t *testing.T) {
	apiErr := Translate(errors.New("secret path /var/data"))
	assert.Equal(t, "internal error", apiErr.Message)
}

func TestTranslate_Idempotent(t *testing.T) {
	first := Translate(models.NewTeamNotFound("X"))
	assert.Same(t, first, Translate(first))
	assert.Nil(t, Translate(nil))
}
