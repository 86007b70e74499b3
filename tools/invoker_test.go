package tools_test

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbox/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoker(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("sync", func(t *testing.T) {
		inv := tools.Sync(func(_ context.Context, args []byte) (any, error) {
			return "sync:" + string(args), nil
		})
		assert.True(t, inv.IsValid())
		assert.False(t, inv.IsAsync())

		res, err := inv.Invoke(ctx, []byte(`{}`))
		require.NoError(t, err)
		assert.Equal(t, "sync:{}", res)
	})

	t.Run("async", func(t *testing.T) {
		inv := tools.Async(func(_ context.Context, args []byte) <-chan tools.Result {
			ch := make(chan tools.Result)
			go func() {
				defer close(ch)
				ch <- tools.Result{Value: "async:" + string(args)}
			}()
			return ch
		})
		assert.True(t, inv.IsValid())
		assert.True(t, inv.IsAsync())

		res, err := inv.Invoke(ctx, []byte(`{}`))
		require.NoError(t, err)
		assert.Equal(t, "async:{}", res)
	})

	t.Run("async_error", func(t *testing.T) {
		inv := tools.Async(func(_ context.Context, _ []byte) <-chan tools.Result {
			return tools.Resolved(nil, errors.New("boom"))
		})
		_, err := inv.Invoke(ctx, nil)
		assert.EqualError(t, err, "boom")
	})

	t.Run("empty", func(t *testing.T) {
		var inv tools.Invoker
		assert.False(t, inv.IsValid())
		_, err := inv.Invoke(ctx, nil)
		assert.EqualError(t, err, "tool has no invocation target")
	})
}

func TestAwait(t *testing.T) {
	t.Parallel()

	_, err := tools.Await(context.Background(), nil)
	assert.EqualError(t, err, "asynchronous call returned nil channel")

	closed := make(chan tools.Result)
	close(closed)
	_, err = tools.Await(context.Background(), closed)
	assert.EqualError(t, err, "asynchronous call completed without result")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = tools.Await(ctx, make(chan tools.Result))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	res, err := tools.Await(context.Background(), tools.Resolved(42, nil))
	require.NoError(t, err)
	assert.Equal(t, 42, res)
}
