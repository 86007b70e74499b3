package callbacks_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/effective-security/toolbox/callbacks"
	"github.com/effective-security/toolbox/toolkit"
	"github.com/effective-security/xlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTool struct {
	name string
}

func (t *fakeTool) Name() string                                      { return t.name }
func (t *fakeTool) Description() string                               { return "fake tool" }
func (t *fakeTool) Parameters() any                                   { return nil }
func (t *fakeTool) Call(_ context.Context, in string) (string, error) { return in, nil }

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	cb := callbacks.NewPrinter(&buf, callbacks.ModeVerbose)

	ctx := context.Background()
	tool := &fakeTool{name: "test_tool"}

	cb.OnToolStart(ctx, tool, "test input")
	cb.OnToolEnd(ctx, tool, "test input", "test output")
	cb.OnToolError(ctx, tool, "test input", errors.New("test error"))
	cb.OnToolNotFound(ctx, "unknown")

	res := buf.String()
	assert.Contains(t, res, "Tool Start: test_tool")
	assert.Contains(t, res, "Input: test input")
	assert.Contains(t, res, "Tool End: test_tool")
	assert.Contains(t, res, "Output: test output")
	assert.Contains(t, res, "Tool Error: test_tool: test error")
	assert.Contains(t, res, "Tool Not Found: unknown")

	buf.Reset()
	cb.Mode = callbacks.ModeDefault
	cb.OnToolEnd(ctx, tool, "test input", "test output")
	assert.Equal(t, "Tool End: test_tool\n", buf.String())
}

func TestFanout(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	cb := callbacks.NewFanout(
		callbacks.NewPrinter(&buf1, callbacks.ModeDefault),
		callbacks.NewNoop(),
		callbacks.NewPackageLogger(xlog.NewPackageLogger("github.com/effective-security/toolbox", "callbacks_test")),
	)
	cb.Add(callbacks.NewPrinter(&buf2, callbacks.ModeVerbose))

	ctx := context.Background()
	tool := &fakeTool{name: "test_tool"}
	cb.OnToolStart(ctx, tool, "in")
	cb.OnToolEnd(ctx, tool, "in", "out")
	cb.OnToolError(ctx, tool, "in", errors.New("failed"))
	cb.OnToolNotFound(ctx, "unknown")

	assert.Equal(t, "Tool Start: test_tool\nInput: in\nTool End: test_tool\nTool Error: test_tool: failed\nTool Not Found: unknown\n", buf1.String())
	assert.Contains(t, buf2.String(), "Output: out")
}

func TestToolkitCallback(t *testing.T) {
	tk, err := toolkit.New(nil, nil, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	tk.WithCallback(callbacks.NewPrinter(&buf, callbacks.ModeVerbose))

	ctx := context.Background()
	res, err := tk.Call(ctx, "calculator", `{"a": 2, "b": 3, "operation": "add"}`)
	require.NoError(t, err)
	assert.Equal(t, "5", res)

	_, err = tk.Call(ctx, "calculator", `{"a": 2, "b": 0, "operation": "divide"}`)
	require.Error(t, err)

	_, err = tk.Call(ctx, "unknown", `{}`)
	require.Error(t, err)

	exp := `Tool Start: calculator
Input: {"a": 2, "b": 3, "operation": "add"}
Tool End: calculator
Output: 5
Tool Start: calculator
Input: {"a": 2, "b": 0, "operation": "divide"}
Tool Error: calculator: division by zero
Tool Not Found: unknown
`
	assert.Equal(t, exp, buf.String())
}
