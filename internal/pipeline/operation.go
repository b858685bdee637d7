package pipeline

import (
	"context"

	"github.com/corpdir/api/internal/validator"
)

// Args is the positional argument list of one call.
type Args []any

// ArgumentRecord is the named view of Args, keyed by parameter name.
type ArgumentRecord map[string]any

// Suspendable is an operation body. It may suspend any number of times by
// calling await; each call returns once the awaited sub-result is available.
type Suspendable func(ctx context.Context, await Await, args Args) (any, error)

// Operation is a named service operation with a fixed parameter list.
type Operation struct {
	// Name is the export name of the operation within its service.
	Name string
	// Params are the formal parameter names in declaration order. Leave
	// empty for operations taking an arbitrary argument list.
	Params []string
	// Schema describes the accepted ArgumentRecord. Optional.
	Schema validator.Schema
	Fn     Suspendable
}

// Invoke runs the operation body.
func (op *Operation) Invoke(ctx context.Context, await Await, args ...any) (any, error) {
	return op.Fn(ctx, await, Args(args))
}

// Names returns the declared parameter names of op in order. An empty result
// means no ArgumentRecord can be reconstructed for op.
func Names(op *Operation) []string {
	if op == nil || len(op.Params) == 0 {
		return nil
	}
	return append([]string(nil), op.Params...)
}

// Record builds the named view of args. Arguments beyond the name list are
// dropped; names without a positional argument are left out.
func Record(names []string, args Args) ArgumentRecord {
	record := make(ArgumentRecord, len(names))
	for i, name := range names {
		if i >= len(args) {
			break
		}
		record[name] = args[i]
	}
	return record
}

// Project re-projects record into the positional order given by names.
func Project(names []string, record map[string]any) Args {
	args := make(Args, len(names))
	for i, name := range names {
		args[i] = record[name]
	}
	return args
}
