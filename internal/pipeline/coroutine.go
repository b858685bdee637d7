package pipeline

import (
	"context"
	"fmt"
	"reflect"
	"runtime"

	apperrors "github.com/corpdir/api/internal/pkg/errors"
)

// Await suspends the calling operation until f completes and returns its
// outcome.
//
// Under ToAsync a failed sub-result never returns to the body: the failure is
// delivered to the caller and the body is unwound, running only its deferred
// functions. Bodies should still check the returned error so they behave the
// same when driven by Block. Await must not be called from a deferred
// function.
type Await func(f *Future) (any, error)

// Block is the Await used outside the trampoline. It waits on the calling
// goroutine and returns failures to the body.
func Block(f *Future) (any, error) {
	if f == nil {
		return nil, nil
	}
	return f.Wait()
}

// AwaitAs awaits f and asserts its value to T. A nil value yields the zero T.
func AwaitAs[T any](await Await, f *Future) (T, error) {
	var zero T
	v, err := await(f)
	if err != nil || v == nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, typeError[T](v)
	}
	return t, nil
}

func typeError[T any](v any) error {
	return apperrors.Internal(fmt.Sprintf("unexpected result type %T, want %s", v, reflect.TypeFor[T]()))
}

// AsyncOperation is the adapted form of a Suspendable.
type AsyncOperation func(ctx context.Context, args ...any) *Future

// suspension is what the body hands back to the driver: either a sub-result
// to wait for or its final outcome.
type suspension struct {
	future *Future
	final  bool
	value  any
	err    error
}

type resumption struct {
	value any
	err   error
}

// ToAsync adapts op so each call is driven step by step on a trampoline and
// its outcome is delivered once through the returned Future.
func ToAsync(op Suspendable) AsyncOperation {
	return func(ctx context.Context, args ...any) *Future {
		result := newFuture()
		go drive(ctx, op, Args(args), result)
		return result
	}
}

// drive runs the trampoline for one call. The body only executes between a
// send on resume and the next receive on yield, so steps never overlap.
func drive(ctx context.Context, op Suspendable, args Args, result *Future) {
	yield := make(chan suspension)
	resume := make(chan resumption)

	go coroutine(ctx, op, args, yield, resume)

	resume <- resumption{}
	for {
		s := <-yield
		if s.final {
			result.complete(s.value, s.err)
			return
		}

		v, err := Block(s.future)
		if err != nil {
			result.complete(nil, err)
			// hand control back once more so the body can unwind
			resume <- resumption{err: err}
			return
		}
		resume <- resumption{value: v}
	}
}

func coroutine(ctx context.Context, op Suspendable, args Args, yield chan<- suspension, resume <-chan resumption) {
	<-resume

	out := suspension{final: true}
	unwound := true
	defer func() {
		if r := recover(); r != nil {
			out = suspension{final: true, err: panicError(r)}
			unwound = false
		}
		if !unwound {
			yield <- out
		}
	}()

	await := func(f *Future) (any, error) {
		yield <- suspension{future: f}
		r := <-resume
		if r.err != nil {
			runtime.Goexit()
		}
		return r.value, nil
	}

	out.value, out.err = op(ctx, await, args)
	unwound = false
}

// Registration names one exported operation of a controller. Op is a
// Suspendable, an AsyncOperation, or any other value which is passed
// through untouched.
type Registration struct {
	Name string
	Op   any
}

// AutoAdapt replaces every Suspendable in regs with its ToAsync counterpart.
// Order is preserved and applying it twice is the same as applying it once.
func AutoAdapt(regs []Registration) []Registration {
	out := make([]Registration, len(regs))
	for i, reg := range regs {
		out[i] = reg
		switch op := reg.Op.(type) {
		case Suspendable:
			out[i].Op = ToAsync(op)
		case func(context.Context, Await, Args) (any, error):
			out[i].Op = ToAsync(op)
		}
	}
	return out
}

// settle runs body and hands its outcome to done. done also runs when body
// never returns: unwound by a failed await under ToAsync (done receives the
// awaited failure) or panicking (done receives the Internal error and the
// panic continues).
func settle(await Await, body func(Await) (any, error), done func(any, error)) (any, error) {
	var last *Future
	tracked := func(f *Future) (any, error) {
		last = f
		return await(f)
	}

	returned := false
	defer func() {
		if returned {
			return
		}
		if r := recover(); r != nil {
			done(nil, panicError(r))
			panic(r)
		}
		if last != nil {
			if _, err := last.Wait(); err != nil {
				done(nil, err)
			}
		}
	}()

	result, err := body(tracked)
	returned = true
	done(result, err)
	return result, err
}
