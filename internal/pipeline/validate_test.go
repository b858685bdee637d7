package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/corpdir/api/internal/pkg/errors"
	"github.com/corpdir/api/internal/validator"
)

func searchOperation(calls *[]Args) *Operation {
	return &Operation{
		Name:   "search",
		Params: []string{"criteria", "scope"},
		Schema: validator.Schema{
			"criteria": validator.Object(
				validator.Field("page", validator.Integer().Min(0).Default(0)),
				validator.Field("pageSize", validator.Integer().Min(1).Default(20)),
				validator.Field("query", validator.String()),
			),
			"scope": validator.Enum("all", "mine").Default("all"),
		},
		Fn: func(ctx context.Context, await Await, args Args) (any, error) {
			*calls = append(*calls, args)
			return len(*calls), nil
		},
	}
}

func TestValidate_PassesNormalizedArgumentsInOrder(t *testing.T) {
	var calls []Args
	op := Validate(searchOperation(&calls))

	_, err := op.Invoke(context.Background(), Block, map[string]any{"pageSize": "5", "extra": 1})
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, Args{
		map[string]any{"page": 0, "pageSize": 5, "extra": 1},
		"all",
	}, calls[0])
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	var calls []Args
	op := Validate(searchOperation(&calls))

	_, err := op.Invoke(context.Background(), Block,
		map[string]any{"page": -1, "pageSize": 0, "query": 3},
		"theirs",
	)
	require.Error(t, err)
	assert.Empty(t, calls, "operation must not run on invalid input")

	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)
	require.Len(t, appErr.Violations, 4)
	assert.Equal(t, []string{"criteria", "page"}, appErr.Violations[0].Path)
	assert.Equal(t, []string{"criteria", "pageSize"}, appErr.Violations[1].Path)
	assert.Equal(t, []string{"criteria", "query"}, appErr.Violations[2].Path)
	assert.Equal(t, []string{"scope"}, appErr.Violations[3].Path)
}

func TestValidate_LoginScenario(t *testing.T) {
	invoked := false
	op := Validate(&Operation{
		Name:   "login",
		Params: []string{"payload"},
		Schema: validator.Schema{
			"payload": validator.Object(
				validator.Field("username", validator.String().Required()),
				validator.Field("password", validator.String().Required()),
			),
		},
		Fn: func(ctx context.Context, await Await, args Args) (any, error) {
			invoked = true
			return nil, nil
		},
	})

	_, err := op.Invoke(context.Background(), Block, map[string]any{"username": "a"})
	require.Error(t, err)
	assert.False(t, invoked)

	status, envelope := NewClassifier(1).Classify(err)
	assert.Equal(t, 400, status)
	assert.Equal(t, "password", envelope.Fields)
	assert.Equal(t, `"password" is required`, envelope.Message)
}

func TestValidate_WithoutSchemaOrNames(t *testing.T) {
	plain := &Operation{Name: "plain", Params: []string{"id"}, Fn: noop}
	assert.Same(t, plain, Validate(plain))

	variadic := &Operation{
		Name:   "variadic",
		Schema: validator.Schema{"id": validator.Integer().Required()},
		Fn:     noop,
	}
	assert.Same(t, variadic, Validate(variadic))
}
