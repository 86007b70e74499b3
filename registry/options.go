package registry

import "github.com/invopop/jsonschema"

type options struct {
	name         string
	title        string
	description  string
	returnDirect bool
	schema       *jsonschema.Schema
	inferSchema  bool
}

// Option configures a tool registration.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) { f(o) }

func newOptions(opts []Option) *options {
	o := &options{inferSchema: true}
	for _, opt := range opts {
		opt.apply(o)
	}
	return o
}

// WithName overrides the name derived from the function identifier.
func WithName(name string) Option {
	return optionFunc(func(o *options) {
		o.name = name
	})
}

// WithTitle sets the human-readable title,
// by default derived from the name.
func WithTitle(title string) Option {
	return optionFunc(func(o *options) {
		o.title = title
	})
}

// WithDescription sets the description,
// by default derived from the function documentation.
func WithDescription(description string) Option {
	return optionFunc(func(o *options) {
		o.description = description
	})
}

// WithReturnDirect specifies that the agent should treat the tool output as the final answer.
func WithReturnDirect(returnDirect bool) Option {
	return optionFunc(func(o *options) {
		o.returnDirect = returnDirect
	})
}

// WithInputSchema sets an explicit input schema.
func WithInputSchema(schema *jsonschema.Schema) Option {
	return optionFunc(func(o *options) {
		o.schema = schema
	})
}

// WithInferSchema controls whether the input schema is derived from the function argument type,
// when disabled an explicit schema must be provided.
func WithInferSchema(infer bool) Option {
	return optionFunc(func(o *options) {
		o.inferSchema = infer
	})
}
