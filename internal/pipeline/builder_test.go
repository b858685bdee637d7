package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/corpdir/api/internal/pkg/errors"
	"github.com/corpdir/api/internal/validator"
)

func TestBuilder_ValidatesBeforeTracing(t *testing.T) {
	tracer, logs := newObservedTracer(VerbosityDebug)
	builder := NewBuilder(tracer, nil)

	svc := builder.Build(Service{
		"get": {
			Params: []string{"id"},
			Schema: validator.Schema{"id": validator.Integer().Required()},
			Fn: func(ctx context.Context, await Await, args Args) (any, error) {
				return args[0], nil
			},
		},
	})

	require.Contains(t, svc, "get")
	assert.Equal(t, "get", svc["get"].Name)

	v, err := svc.Call(context.Background(), Block, "get", "12")
	require.NoError(t, err)
	assert.Equal(t, 12, v)

	enter := logs.FilterField(zap.String("direction", DirectionEnter)).All()
	require.Len(t, enter, 1)
	// json numbers decode as float64
	assert.Equal(t, map[string]any{"id": float64(12)}, enter[0].ContextMap()["payload"])

	_, err = svc.Call(context.Background(), Block, "get")
	assert.True(t, apperrors.IsValidation(err))
	assert.Len(t, logs.FilterField(zap.String("direction", DirectionEnter)).All(), 1,
		"invalid calls are rejected before they are traced")
}

func TestBuilder_KeepsUntracedOperations(t *testing.T) {
	op := &Operation{Name: "plain", Fn: noop}
	svc := NewBuilder(nil, nil).Build(Service{"plain": op})
	assert.Same(t, op, svc["plain"])
}

func TestBuilder_Observer(t *testing.T) {
	type observation struct {
		op  string
		err error
	}
	var seen []observation
	boom := errors.New("boom")

	svc := NewBuilder(nil, func(operation string, d time.Duration, err error) {
		assert.GreaterOrEqual(t, d, time.Duration(0))
		seen = append(seen, observation{operation, err})
	}).Build(Service{
		"ok":   {Name: "ok", Fn: noop},
		"fail": {Name: "fail", Fn: func(ctx context.Context, await Await, args Args) (any, error) { return nil, boom }},
	})

	_, _ = svc.Call(context.Background(), Block, "ok")
	_, _ = svc.Call(context.Background(), Block, "fail")
	assert.Equal(t, []observation{{"ok", nil}, {"fail", boom}}, seen)
}

func TestService_CallUnknown(t *testing.T) {
	_, err := Service{}.Call(context.Background(), Block, "missing")
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeInternal, appErr.Code)
}

func TestBuilder_FailedAwaitUnderTrampoline(t *testing.T) {
	tracer, logs := newObservedTracer(VerbosityDebug)
	var observed []error
	conflict := apperrors.NewUniqueConstraintError(nil)

	svc := NewBuilder(tracer, func(operation string, d time.Duration, err error) {
		observed = append(observed, err)
	}).Build(Service{
		"create": {
			Fn: func(ctx context.Context, await Await, args Args) (any, error) {
				if _, err := await(Rejected(conflict)); err != nil {
					return nil, err
				}
				return "unreachable", nil
			},
		},
	})

	controller := ToAsync(func(ctx context.Context, await Await, args Args) (any, error) {
		return svc.Call(ctx, await, "create")
	})

	_, err := controller(context.Background()).Wait()
	require.ErrorIs(t, err, conflict)

	assert.Len(t, logs.FilterField(zap.String("direction", DirectionEnter)).All(), 1)
	fail := logs.FilterField(zap.String("direction", DirectionFail)).All()
	require.Len(t, fail, 1)
	assert.Equal(t, "unique_constraint", fail[0].ContextMap()["kind"])
	assert.Empty(t, logs.FilterField(zap.String("direction", DirectionExit)).All())
	assert.Equal(t, []error{conflict}, observed)
}

func TestBuilder_PanicIsTracedAndObserved(t *testing.T) {
	tracer, logs := newObservedTracer(VerbosityDebug)
	var observed []error

	svc := NewBuilder(tracer, func(operation string, d time.Duration, err error) {
		observed = append(observed, err)
	}).Build(Service{
		"get": {
			Fn: func(ctx context.Context, await Await, args Args) (any, error) {
				panic("kaboom")
			},
		},
	})

	controller := ToAsync(func(ctx context.Context, await Await, args Args) (any, error) {
		return svc.Call(ctx, await, "get")
	})

	_, err := controller(context.Background()).Wait()
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeInternal, appErr.Code)

	assert.Len(t, logs.FilterField(zap.String("direction", DirectionFail)).All(), 1)
	require.Len(t, observed, 1)
	assert.Equal(t, apperrors.CodeInternal, apperrors.GetAppError(observed[0]).Code)
}

func TestBuilder_LeavesInputUntouched(t *testing.T) {
	op := &Operation{Fn: noop}
	svc := NewBuilder(nil, nil).Build(Service{"get": op})

	assert.Empty(t, op.Name)
	assert.Equal(t, "get", svc["get"].Name)
	assert.NotSame(t, op, svc["get"])
}
