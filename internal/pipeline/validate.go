package pipeline

import (
	"context"

	apperrors "github.com/corpdir/api/internal/pkg/errors"
)

// Validate wraps op so every call is checked against op.Schema before the
// body runs. The body receives the normalized values in parameter order. On
// failure it is not invoked and a Validation error listing every violated
// field is returned.
//
// Operations without a schema or without declared parameters are returned
// unchanged.
func Validate(op *Operation) *Operation {
	names := Names(op)
	if op.Schema == nil || len(names) == 0 {
		return op
	}

	next := op.Fn
	schema := op.Schema
	return &Operation{
		Name:   op.Name,
		Params: op.Params,
		Schema: op.Schema,
		Fn: func(ctx context.Context, await Await, args Args) (any, error) {
			normalized, violations := schema.Validate(Record(names, args), names...)
			if len(violations) > 0 {
				return nil, apperrors.Validation(violations...)
			}
			return next(ctx, await, Project(names, normalized))
		},
	}
}
