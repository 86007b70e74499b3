package tools

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbox/pkg/llmutils"
	"github.com/effective-security/toolbox/pkg/metricskey"
	"github.com/effective-security/xlog"
	"github.com/invopop/jsonschema"
)

// Descriptor is the normalized unit stored in the tools registry.
type Descriptor struct {
	name         string
	title        string
	description  string
	schema       *jsonschema.Schema
	target       Invoker
	returnDirect bool
}

var _ ITool = (*Descriptor)(nil)

// NewDescriptor returns a Descriptor for the invocation target,
// the schema is used to validate arguments before invocation.
func NewDescriptor(name string, schema *jsonschema.Schema, target Invoker) *Descriptor {
	return &Descriptor{
		name:   name,
		schema: schema,
		target: target,
	}
}

// WithTitle sets the human-readable title of the tool.
func (d *Descriptor) WithTitle(title string) *Descriptor {
	d.title = title
	return d
}

// WithDescription sets the description of the tool, to be used in the prompt.
func (d *Descriptor) WithDescription(description string) *Descriptor {
	d.description = description
	return d
}

// WithReturnDirect specifies that the agent should treat the tool output as the final answer.
func (d *Descriptor) WithReturnDirect(returnDirect bool) *Descriptor {
	d.returnDirect = returnDirect
	return d
}

func (d *Descriptor) Name() string {
	return d.name
}

func (d *Descriptor) Title() string {
	return d.title
}

func (d *Descriptor) Description() string {
	return d.description
}

// Parameters returns the input schema.
func (d *Descriptor) Parameters() any {
	return d.schema
}

// Schema returns the input schema.
func (d *Descriptor) Schema() *jsonschema.Schema {
	return d.schema
}

func (d *Descriptor) Target() Invoker {
	return d.target
}

func (d *Descriptor) ReturnDirect() bool {
	return d.returnDirect
}

// Invoke validates the arguments against the input schema and calls the target.
func (d *Descriptor) Invoke(ctx context.Context, args []byte) (any, error) {
	if err := ValidateArgs(d.schema, args); err != nil {
		return nil, errors.Wrapf(err, "tool %s", d.name)
	}
	return d.target.Invoke(ctx, args)
}

// Call invokes the tool with LLM provided input and returns the string view of the result.
func (d *Descriptor) Call(ctx context.Context, input string) (string, error) {
	started := time.Now()
	defer metricskey.PerfToolCall.MeasureSince(started, d.name)

	res, err := d.Invoke(ctx, llmutils.CleanJSON([]byte(input)))
	if err == nil {
		var str string
		str, err = llmutils.Render(res)
		if err == nil {
			metricskey.StatsToolCallsSucceeded.IncrCounter(1, d.name)
			return str, nil
		}
		err = errors.Wrap(err, "failed to render tool output")
	}

	metricskey.StatsToolCallsFailed.IncrCounter(1, d.name)
	logger.ContextKV(ctx, xlog.DEBUG,
		"tool", d.name,
		"status", "failed",
		"err", err.Error(),
	)
	return "", err
}
