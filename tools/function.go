package tools

import (
	"context"
	"reflect"
	"runtime"
	"strings"
	"unicode"
)

// Callable is a function that can be registered as a tool.
type Callable interface {
	// Name returns the function identifier.
	Name() string
	// Doc returns the documentation of the function.
	Doc() string
	// InputType returns the type of the function argument,
	// used to infer the input schema.
	InputType() reflect.Type
	// Invoker returns the invocation target.
	Invoker() Invoker
}

// Function is a typed Go function adapted to the Callable contract.
type Function struct {
	name    string
	doc     string
	input   reflect.Type
	invoker Invoker
}

var _ Callable = (*Function)(nil)

// NewFunc returns a Callable for a synchronous function.
// The name is derived from the function identifier in snake case,
// use WithName for closures or to override it.
func NewFunc[I any, O any](fn func(context.Context, *I) (O, error), doc string) *Function {
	return &Function{
		name:  FuncName(fn),
		doc:   doc,
		input: reflect.TypeOf((*I)(nil)).Elem(),
		invoker: Sync(func(ctx context.Context, args []byte) (any, error) {
			in, err := DecodeArgs[I](args)
			if err != nil {
				return nil, err
			}
			return fn(ctx, in)
		}),
	}
}

// NewAsyncFunc returns a Callable for an asynchronous function.
func NewAsyncFunc[I any](fn func(context.Context, *I) <-chan Result, doc string) *Function {
	return &Function{
		name:  FuncName(fn),
		doc:   doc,
		input: reflect.TypeOf((*I)(nil)).Elem(),
		invoker: Async(func(ctx context.Context, args []byte) <-chan Result {
			in, err := DecodeArgs[I](args)
			if err != nil {
				return Resolved(nil, err)
			}
			return fn(ctx, in)
		}),
	}
}

// WithName sets the name of the function.
func (f *Function) WithName(name string) *Function {
	f.name = name
	return f
}

// WithDoc sets the documentation of the function.
func (f *Function) WithDoc(doc string) *Function {
	f.doc = doc
	return f
}

func (f *Function) Name() string {
	return f.name
}

func (f *Function) Doc() string {
	return f.doc
}

func (f *Function) InputType() reflect.Type {
	return f.input
}

func (f *Function) Invoker() Invoker {
	return f.invoker
}

// FuncName returns the identifier of the function in snake case,
// for example `queryKnowledgeGraph` is returned as `query_knowledge_graph`.
// Anonymous functions are named by the runtime, like `func1`.
func FuncName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	rf := runtime.FuncForPC(v.Pointer())
	if rf == nil {
		return ""
	}
	// github.com/org/repo/pkg.(*Type).method-fm
	name := strings.TrimSuffix(rf.Name(), "-fm")
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return ToSnakeCase(name)
}

// ToSnakeCase converts camelCase identifier to snake_case.
func ToSnakeCase(s string) string {
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range rs {
		if unicode.IsUpper(r) {
			if i > 0 && rs[i-1] != '_' {
				prev := rs[i-1]
				nextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
