package tools

import (
	"context"

	"github.com/cockroachdb/errors"
)

// Result is the outcome of an asynchronous invocation.
type Result struct {
	Value any
	Err   error
}

// SyncFunc runs to completion on the caller's goroutine.
type SyncFunc func(ctx context.Context, args []byte) (any, error)

// AsyncFunc returns immediately, the Result is delivered on the channel.
type AsyncFunc func(ctx context.Context, args []byte) <-chan Result

// Invoker is the invocation target of a tool,
// holding exactly one of a SyncFunc or an AsyncFunc.
type Invoker struct {
	syncFn  SyncFunc
	asyncFn AsyncFunc
}

// Sync returns an Invoker for a synchronous function.
func Sync(fn SyncFunc) Invoker {
	return Invoker{syncFn: fn}
}

// Async returns an Invoker for an asynchronous function.
func Async(fn AsyncFunc) Invoker {
	return Invoker{asyncFn: fn}
}

// IsAsync returns true if the target is asynchronous.
func (i Invoker) IsAsync() bool {
	return i.asyncFn != nil
}

// IsValid returns true if the target is set.
func (i Invoker) IsValid() bool {
	return (i.syncFn != nil) != (i.asyncFn != nil)
}

// Invoke calls the target, awaiting the result of an asynchronous one.
func (i Invoker) Invoke(ctx context.Context, args []byte) (any, error) {
	switch {
	case i.asyncFn != nil:
		return Await(ctx, i.asyncFn(ctx, args))
	case i.syncFn != nil:
		return i.syncFn(ctx, args)
	}
	return nil, errors.New("tool has no invocation target")
}

// Await waits for the result of an asynchronous call, or for the context to be done.
func Await(ctx context.Context, ch <-chan Result) (any, error) {
	if ch == nil {
		return nil, errors.New("asynchronous call returned nil channel")
	}
	select {
	case res, ok := <-ch:
		if !ok {
			return nil, errors.New("asynchronous call completed without result")
		}
		return res.Value, res.Err
	case <-ctx.Done():
		return nil, errors.WithStack(ctx.Err())
	}
}

// Resolved returns a channel that already holds the result.
func Resolved(value any, err error) <-chan Result {
	ch := make(chan Result, 1)
	ch <- Result{Value: value, Err: err}
	close(ch)
	return ch
}
