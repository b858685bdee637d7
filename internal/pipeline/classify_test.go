package pipeline

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/corpdir/api/internal/pkg/errors"
)

func TestClassifier_Classify(t *testing.T) {
	validation := apperrors.Validation(
		apperrors.FieldViolation{Path: []string{"payload", "name"}, Message: `"name" is required`},
		apperrors.FieldViolation{Path: []string{"payload", "address", "city"}, Message: `"city" must be a string`},
		apperrors.FieldViolation{Path: []string{"id"}, Message: `"id" must be a number`},
	)

	tests := []struct {
		name   string
		err    error
		status int
		want   ErrorEnvelope
	}{
		{
			name:   "validation",
			err:    validation,
			status: http.StatusBadRequest,
			want: ErrorEnvelope{
				Message: `"name" is required, "city" must be a string, "id" must be a number`,
				Fields:  "name, address.city, id",
			},
		},
		{
			name:   "wrapped validation",
			err:    fmt.Errorf("create: %w", validation),
			status: http.StatusBadRequest,
			want: ErrorEnvelope{
				Message: `"name" is required, "city" must be a string, "id" must be a number`,
				Fields:  "name, address.city, id",
			},
		},
		{
			name: "unique constraint",
			err: apperrors.NewUniqueConstraintError(errors.New("23505"),
				apperrors.ConstraintViolation{Field: "name", Message: "name must be unique"},
				apperrors.ConstraintViolation{Field: "url", Message: "url must be unique"},
			),
			status: http.StatusConflict,
			want:   ErrorEnvelope{Message: "name must be unique"},
		},
		{
			name:   "unique constraint without details",
			err:    apperrors.NewUniqueConstraintError(errors.New("23505")),
			status: http.StatusConflict,
			want:   ErrorEnvelope{Message: ConflictMessage},
		},
		{name: "bad request", err: apperrors.BadRequest("Company not found"), status: 400, want: ErrorEnvelope{Message: "Company not found"}},
		{name: "unauthorized", err: apperrors.Unauthorized("Wrong username or password"), status: 401, want: ErrorEnvelope{Message: "Wrong username or password"}},
		{name: "forbidden", err: apperrors.Forbidden("nope"), status: 403, want: ErrorEnvelope{Message: "nope"}},
		{name: "not found", err: apperrors.NotFound("Company"), status: 404, want: ErrorEnvelope{Message: "Company not found"}},
		{name: "conflict", err: apperrors.Conflict("User already exists"), status: 409, want: ErrorEnvelope{Message: "User already exists"}},
		{name: "rate limited", err: apperrors.RateLimited(), status: 429, want: ErrorEnvelope{Message: apperrors.RateLimited().Message}},
		{name: "internal hides message", err: apperrors.Internal("disk full"), status: 500, want: ErrorEnvelope{Message: InternalErrorMessage}},
		{name: "foreign error", err: errors.New("disk full"), status: 500, want: ErrorEnvelope{Message: InternalErrorMessage}},
		{name: "nil", err: nil, status: 500, want: ErrorEnvelope{Message: InternalErrorMessage}},
	}

	c := NewClassifier(1)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, envelope := c.Classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.want, envelope)
		})
	}
}

func TestClassifier_StripDepth(t *testing.T) {
	err := apperrors.Validation(
		apperrors.FieldViolation{Path: []string{"payload", "address", "city"}, Message: "a"},
		apperrors.FieldViolation{Path: []string{"id"}, Message: "b"},
	)

	tests := []struct {
		depth  int
		fields string
	}{
		{depth: -1, fields: "payload.address.city, id"},
		{depth: 0, fields: "payload.address.city, id"},
		{depth: 1, fields: "address.city, id"},
		{depth: 2, fields: "city, id"},
		{depth: 5, fields: "city, id"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("depth %d", tt.depth), func(t *testing.T) {
			_, envelope := NewClassifier(tt.depth).Classify(err)
			assert.Equal(t, tt.fields, envelope.Fields)
		})
	}
}

type panickyError struct{}

func (panickyError) Error() string { panic("broken error") }

func TestClassifier_NeverPanics(t *testing.T) {
	var c Classifier
	assert.NotPanics(t, func() {
		status, envelope := c.Classify(panickyError{})
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, InternalErrorMessage, envelope.Message)
	})
}
