package registry

import (
	"context"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbox/pkg/schema"
	"github.com/effective-security/toolbox/tools"
	"github.com/effective-security/xlog"
	"github.com/invopop/jsonschema"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/toolbox", "registry")

var (
	// some LLM providers reject tool names with other characters
	validName = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	newlines  = regexp.MustCompile(`[ \t\r]*\n\s*`)
)

// RegisterFunc registers the function with the options captured by Registry.Tool.
type RegisterFunc func(fn tools.Callable) (*tools.Descriptor, error)

// Registry is a map of tool name to Descriptor,
// safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*tools.Descriptor
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		tools: make(map[string]*tools.Descriptor),
	}
}

// Register derives a Descriptor from the function and inserts it into the registry.
func (r *Registry) Register(fn tools.Callable, opts ...Option) (*tools.Descriptor, error) {
	if fn == nil {
		return nil, errors.New("callable must not be nil")
	}
	o := newOptions(opts)

	name := o.name
	if name == "" {
		name = fn.Name()
	}
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	sc, err := inferSchema(name, o, func() (*jsonschema.Schema, error) {
		s, err := schema.New(fn.InputType())
		if err != nil {
			return nil, err
		}
		return s.Parameters, nil
	})
	if err != nil {
		return nil, err
	}

	d := tools.NewDescriptor(name, sc, fn.Invoker())
	if err = r.insert(d, fn.Doc(), o); err != nil {
		return nil, err
	}
	return d, nil
}

// Tool returns a registrar that applies the options to functions registered later.
func (r *Registry) Tool(opts ...Option) RegisterFunc {
	return func(fn tools.Callable) (*tools.Descriptor, error) {
		return r.Register(fn, opts...)
	}
}

// RegisterTool inserts a pre-built tool into the registry,
// the input schema is taken from the tool parameters.
func (r *Registry) RegisterTool(t tools.ITool, opts ...Option) (*tools.Descriptor, error) {
	if t == nil || reflect.ValueOf(t).Kind() == reflect.Pointer && reflect.ValueOf(t).IsNil() {
		return nil, errors.New("tool must not be nil")
	}
	o := newOptions(opts)

	name := o.name
	if name == "" {
		name = t.Name()
	}
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	sc, err := inferSchema(name, o, func() (*jsonschema.Schema, error) {
		return schema.FromAny(t.Parameters())
	})
	if err != nil {
		return nil, err
	}

	d := tools.NewDescriptor(name, sc, tools.Sync(func(ctx context.Context, args []byte) (any, error) {
		return t.Call(ctx, string(args))
	}))
	if err = r.insert(d, t.Description(), o); err != nil {
		return nil, err
	}
	return d, nil
}

// Add inserts a finished Descriptor into the registry.
func (r *Registry) Add(d *tools.Descriptor) error {
	if d == nil {
		return errors.New("descriptor must not be nil")
	}
	if err := ValidateName(d.Name()); err != nil {
		return err
	}
	if !d.Target().IsValid() {
		return errors.Newf("tool %s: invocation target is not set", d.Name())
	}
	r.set(d)
	return nil
}

// Get returns the Descriptor by name.
func (r *Registry) Get(name string) (*tools.Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.tools[name]
	return d, ok
}

// Snapshot returns a copy of the registry map,
// changes to the returned map do not affect the registry.
func (r *Registry) Snapshot() map[string]*tools.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make(map[string]*tools.Descriptor, len(r.tools))
	for name, d := range r.tools {
		res[name] = d
	}
	return res
}

// Names returns sorted names of the registered tools.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// List returns the registered tools sorted by name.
func (r *Registry) List() []tools.ITool {
	return Sorted(r.Snapshot())
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

func (r *Registry) insert(d *tools.Descriptor, doc string, o *options) error {
	if !d.Target().IsValid() {
		return errors.Newf("tool %s: invocation target is not set", d.Name())
	}

	description := o.description
	if description == "" {
		description = doc
	}
	title := o.title
	if title == "" {
		title = TitleFromName(d.Name())
	}

	d.WithTitle(title).
		WithDescription(NormalizeDescription(description)).
		WithReturnDirect(o.returnDirect)

	r.set(d)
	return nil
}

func (r *Registry) set(d *tools.Descriptor) {
	r.mu.Lock()
	_, replaced := r.tools[d.Name()]
	r.tools[d.Name()] = d
	r.mu.Unlock()

	logger.KV(xlog.DEBUG,
		"status", "registered",
		"tool", d.Name(),
		"replaced", replaced,
	)
}

func inferSchema(name string, o *options, infer func() (*jsonschema.Schema, error)) (*jsonschema.Schema, error) {
	if o.schema != nil {
		return o.schema, nil
	}
	if !o.inferSchema {
		return nil, errors.Wrapf(tools.ErrSchemaInference, "tool %s: input schema must be provided when inference is disabled", name)
	}
	sc, err := infer()
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "tool %s", name), tools.ErrSchemaInference)
	}
	return sc, nil
}

// ValidateName returns ErrInvalidName if the name is empty,
// or contains characters other than letters, digits and underscore.
func ValidateName(name string) error {
	if !validName.MatchString(name) {
		return errors.Wrapf(tools.ErrInvalidName, "%q", name)
	}
	return nil
}

// TitleFromName returns human-readable title from the snake case name,
// for example `query_knowledge_graph` is returned as `QueryKnowledgeGraph`.
func TitleFromName(name string) string {
	var b strings.Builder
	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(part)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(strings.ToLower(part[size:]))
	}
	return b.String()
}

// NormalizeDescription collapses line breaks with the surrounding indentation into single spaces.
func NormalizeDescription(description string) string {
	return strings.TrimSpace(newlines.ReplaceAllString(description, " "))
}

// Sorted returns the tools of the map sorted by name.
func Sorted(m map[string]*tools.Descriptor) []tools.ITool {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)

	list := make([]tools.ITool, 0, len(names))
	for _, name := range names {
		list = append(list, m[name])
	}
	return list
}
