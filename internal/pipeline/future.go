package pipeline

import (
	"context"
	"fmt"
	"sync"

	apperrors "github.com/corpdir/api/internal/pkg/errors"
)

// Future is a single-shot result: it completes exactly once with either a
// value or an error.
type Future struct {
	done  chan struct{}
	once  sync.Once
	mu    sync.Mutex
	value any
	err   error
	cbs   []func(any, error)
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Go runs fn on its own goroutine and returns a Future for its result. A
// panic inside fn rejects the future with an Internal error.
func Go(ctx context.Context, fn func(ctx context.Context) (any, error)) *Future {
	f := newFuture()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				f.complete(nil, panicError(r))
			}
		}()
		f.complete(fn(ctx))
	}()
	return f
}

// Resolved returns a future already completed with v.
func Resolved(v any) *Future {
	f := newFuture()
	f.complete(v, nil)
	return f
}

// Rejected returns a future already completed with err.
func Rejected(err error) *Future {
	f := newFuture()
	f.complete(nil, err)
	return f
}

// complete settles the future. Later calls are ignored and report false.
func (f *Future) complete(v any, err error) bool {
	settled := false
	f.once.Do(func() {
		f.mu.Lock()
		f.value, f.err = v, err
		cbs := f.cbs
		f.cbs = nil
		close(f.done)
		f.mu.Unlock()

		for _, cb := range cbs {
			cb(v, err)
		}
		settled = true
	})
	return settled
}

// Done is closed once the future has completed.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future completes and returns its outcome.
func (f *Future) Wait() (any, error) {
	<-f.done
	return f.value, f.err
}

// Then registers fn to be called with the outcome. If the future has already
// completed, fn runs immediately on the calling goroutine.
func (f *Future) Then(fn func(any, error)) {
	f.mu.Lock()
	select {
	case <-f.done:
		f.mu.Unlock()
		fn(f.value, f.err)
	default:
		f.cbs = append(f.cbs, fn)
		f.mu.Unlock()
	}
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return apperrors.Internal("panic: " + err.Error()).WithError(err)
	}
	return apperrors.Internal(fmt.Sprintf("panic: %v", r))
}
