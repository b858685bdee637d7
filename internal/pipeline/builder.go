package pipeline

import (
	"context"
	"time"

	apperrors "github.com/corpdir/api/internal/pkg/errors"
)

// Service maps export names to operations.
type Service map[string]*Operation

// Call invokes the operation exported as name.
func (s Service) Call(ctx context.Context, await Await, name string, args ...any) (any, error) {
	op, ok := s[name]
	if !ok || op == nil {
		return nil, apperrors.Internal("unknown operation " + name)
	}
	return op.Invoke(ctx, await, args...)
}

// Observer is notified after every operation call.
type Observer func(operation string, duration time.Duration, err error)

// Builder decorates services. Tracer may be nil, in which case no tracing is
// applied.
type Builder struct {
	Tracer   *Tracer
	Observer Observer
}

// NewBuilder creates a Builder.
func NewBuilder(tracer *Tracer, observer Observer) *Builder {
	return &Builder{Tracer: tracer, Observer: observer}
}

// Build returns a new Service in which every operation is traced and then
// wrapped with validation (when it has a schema), so traces show normalized
// arguments and rejected calls are never traced.
func (b *Builder) Build(svc Service) Service {
	out := make(Service, len(svc))
	for name, op := range svc {
		if op == nil {
			continue
		}
		if op.Name == "" {
			named := *op
			named.Name = name
			op = &named
		}
		decorated := b.Tracer.Decorate(op)
		decorated = Validate(decorated)
		decorated = b.observe(decorated)
		out[name] = decorated
	}
	return out
}

func (b *Builder) observe(op *Operation) *Operation {
	if b.Observer == nil {
		return op
	}
	next := op.Fn
	observer := b.Observer
	return &Operation{
		Name:   op.Name,
		Params: op.Params,
		Schema: op.Schema,
		Fn: func(ctx context.Context, await Await, args Args) (any, error) {
			start := time.Now()
			return settle(await, func(await Await) (any, error) {
				return next(ctx, await, args)
			}, func(_ any, err error) {
				observer(op.Name, time.Since(start), err)
			})
		},
	}
}
