package actorutil

import (
	"errors"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/primetalk/goio/io"
)

// SafeBackgroundTask wraps a blocking call so its result can be piped back
// to an actor as a message. The device API is synchronous HTTP, so every
// roof call goes through one of these.
type SafeBackgroundTask[T any] struct {
	ctx       actor.Context
	fn        func() (*T, error)
	timeout   *time.Duration
	recover   func(error) T
	onSuccess func(T)
}

func NewBackgroundTask[T any](ctx actor.Context, fn func() (*T, error)) *SafeBackgroundTask[T] {
	return &SafeBackgroundTask[T]{
		ctx: ctx,
		fn:  fn,
	}
}

func (t *SafeBackgroundTask[T]) WithTimeout(timeout time.Duration) *SafeBackgroundTask[T] {
	t.timeout = &timeout
	return t
}

// Recover maps a task error to a fallback value, which is then delivered
// like a normal result.
func (t *SafeBackgroundTask[T]) Recover(fn func(error) T) *SafeBackgroundTask[T] {
	t.recover = fn
	return t
}

func (t *SafeBackgroundTask[T]) PipeTo(actor *actor.PID) {
	t.onSuccess = func(value T) {
		t.ctx.Send(actor, value)
	}
	t.Run()
}

func (t *SafeBackgroundTask[T]) Run() {
	bgFn := io.Eval(t.fn)
	bg := io.Map(bgFn, func(a *T) T {
		if a != nil {
			return *a
		}
		panic(errors.New("result is nil"))
	})
	if t.timeout != nil {
		bg = io.WithTimeout[T](*t.timeout)(bg)
	}
	result := io.RunSync(bg)
	finalValue := result.Value
	if result.Error != nil {
		if t.recover == nil {
			return
		}
		finalValue = t.recover(result.Error)
	}
	if t.onSuccess != nil {
		t.onSuccess(finalValue)
	}
}

// MapBackgroundTask rewraps a task so its result is transformed before
// delivery. Timeout and recovery apply to the returned task.
func MapBackgroundTask[T, T2 any](bgt *SafeBackgroundTask[T], mapFn func(*T) *T2) *SafeBackgroundTask[T2] {
	newFn := func() (*T2, error) {
		r, err := bgt.fn()
		if err != nil {
			return nil, err
		}
		return mapFn(r), nil
	}
	return &SafeBackgroundTask[T2]{
		ctx: bgt.ctx,
		fn:  newFn,
	}
}
