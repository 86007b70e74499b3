// Package output provides a tool result that renders to a string for the LLM,
// while exposing the original structured value to other consumers.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Mode specifies how the data is rendered to string.
type Mode string

const (
	// ModeDefault renders the default string form of the data.
	ModeDefault Mode = ""
	// ModeJSON renders indented JSON, non-ASCII text is kept verbatim.
	ModeJSON Mode = "json"
	// ModeYAML renders YAML.
	ModeYAML Mode = "yaml"
	// ModeTOML renders TOML, the data must be a struct or a map.
	ModeTOML Mode = "toml"
	// ModeCustom renders with a custom Renderer.
	ModeCustom Mode = "custom"
)

// DataName is the name of the data attribute.
const DataName = "data"

// Renderer renders the output to string,
// it can inspect the data and the extras.
type Renderer func(o *Output) (string, error)

// Output wraps a tool result.
type Output struct {
	data     any
	mode     Mode
	renderer Renderer
	alias    string
	extras   map[string]any
}

// Option configures the Output.
type Option func(*Output)

// JSON renders the data as indented JSON.
func JSON() Option {
	return func(o *Output) {
		o.mode = ModeJSON
		o.renderer = nil
	}
}

// YAML renders the data as YAML.
func YAML() Option {
	return func(o *Output) {
		o.mode = ModeYAML
		o.renderer = nil
	}
}

// TOML renders the data as TOML.
func TOML() Option {
	return func(o *Output) {
		o.mode = ModeTOML
		o.renderer = nil
	}
}

// WithRenderer renders the output with a custom renderer.
func WithRenderer(renderer Renderer) Option {
	return func(o *Output) {
		o.mode = ModeCustom
		o.renderer = renderer
	}
}

// WithAlias makes the data accessible by the alias name.
func WithAlias(alias string) Option {
	return func(o *Output) {
		o.alias = alias
	}
}

// WithExtra attaches metadata to the output.
func WithExtra(key string, value any) Option {
	return func(o *Output) {
		if o.extras == nil {
			o.extras = make(map[string]any)
		}
		o.extras[key] = value
	}
}

// WithExtras attaches metadata to the output.
func WithExtras(extras map[string]any) Option {
	return func(o *Output) {
		if len(extras) == 0 {
			return
		}
		if o.extras == nil {
			o.extras = make(map[string]any, len(extras))
		}
		maps.Copy(o.extras, extras)
	}
}

// New returns Output for the data.
func New(data any, opts ...Option) *Output {
	o := &Output{data: data}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Data returns the original data.
func (o *Output) Data() any {
	return o.data
}

// Mode returns the render mode.
func (o *Output) Mode() Mode {
	return o.mode
}

// Alias returns the alias name of the data, if any.
func (o *Output) Alias() string {
	return o.alias
}

// Get returns the data by the `data` name or by the alias.
func (o *Output) Get(name string) (any, bool) {
	if name == DataName || (o.alias != "" && name == o.alias) {
		return o.data, true
	}
	return nil, false
}

// Extra returns the metadata value.
func (o *Output) Extra(key string) (any, bool) {
	v, ok := o.extras[key]
	return v, ok
}

// Extras returns a copy of the metadata.
func (o *Output) Extras() map[string]any {
	return maps.Clone(o.extras)
}

// Render returns the string view of the output,
// the renderer errors are returned to the caller.
func (o *Output) Render() (string, error) {
	switch o.mode {
	case ModeJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(o.data); err != nil {
			return "", errors.Wrap(err, "failed to render JSON")
		}
		return strings.TrimSuffix(buf.String(), "\n"), nil
	case ModeYAML:
		bs, err := yaml.Marshal(o.data)
		if err != nil {
			return "", errors.Wrap(err, "failed to render YAML")
		}
		return string(bs), nil
	case ModeTOML:
		if kind := tomlKind(o.data); kind != reflect.Struct && kind != reflect.Map {
			return "", errors.Newf("failed to render TOML: expected struct or map, got %s", kind)
		}
		bs, err := toml.Marshal(o.data)
		if err != nil {
			return "", errors.Wrap(err, "failed to render TOML")
		}
		return string(bs), nil
	case ModeCustom:
		if o.renderer == nil {
			return "", errors.New("renderer is not set")
		}
		return o.renderer(o)
	}
	return fmt.Sprint(o.data), nil
}

// String returns the string view of the output,
// or the error marker if it fails to render.
func (o *Output) String() string {
	s, err := o.Render()
	if err != nil {
		return "%!v(output error: " + err.Error() + ")"
	}
	return s
}

// GetContent returns the content for the chat history.
func (o *Output) GetContent() string {
	return o.String()
}

// MarshalJSON returns the structured data.
func (o *Output) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.data)
}

// tomlKind returns the kind of v with pointers dereferenced.
func tomlKind(v any) reflect.Kind {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Invalid
		}
		rv = rv.Elem()
	}
	return rv.Kind()
}
