package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"taskboard/internal/apperr"
	"taskboard/internal/repository"
)

func TestFrom(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    apperr.Kind
		message string
	}{
		{"task missing", fmt.Errorf("lookup: %w", repository.ErrTaskNotFound), apperr.KindNotFound, repository.ErrTaskNotFound.Error()},
		{"duplicate", repository.ErrDuplicate, apperr.KindConflict, "already exists"},
		{"dangling reference", repository.ErrInvalidReference, apperr.KindNotFound, "referenced entity not found"},
		{"already classified", apperr.Conflict("column already exists on board"), apperr.KindConflict, "column already exists on board"},
		{"unknown", errors.New("connection reset"), apperr.KindInternal, "failed to move task"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := apperr.From(tt.err, "failed to move task")

			var ae *apperr.Error
			assert.ErrorAs(t, err, &ae)
			assert.Equal(t, tt.kind, ae.Kind)
			assert.Equal(t, tt.message, ae.Message)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestFrom_Nil(t *testing.T) {
	assert.NoError(t, apperr.From(nil, "unused"))
}

func TestKindStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, apperr.KindValidation.Status())
	assert.Equal(t, http.StatusNotFound, apperr.KindNotFound.Status())
	assert.Equal(t, http.StatusConflict, apperr.KindConflict.Status())
	assert.Equal(t, http.StatusUnauthorized, apperr.KindUnauthorized.Status())
	assert.Equal(t, http.StatusInternalServerError, apperr.KindInternal.Status())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(fmt.Errorf("wrap: %w", apperr.Validation("bad"))))
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(errors.New("plain")))
}
