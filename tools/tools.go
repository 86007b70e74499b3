package tools

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbox/pkg/llmutils"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/toolbox", "tools")

var (
	// ErrFailedUnmarshalInput is returned when tool arguments are not a valid JSON object.
	ErrFailedUnmarshalInput = errors.New("failed to unmarshal input: check the schema and try again")
	// ErrInvalidInput is returned when tool arguments do not satisfy the input schema.
	ErrInvalidInput = errors.New("invalid input")
	// ErrSchemaInference is returned when an input schema can not be derived for a tool.
	ErrSchemaInference = errors.New("schema inference failed")
	// ErrInvalidName is returned when a tool name is empty or contains characters
	// other than letters, digits and underscore.
	ErrInvalidName = errors.New("invalid tool name")
)

// ITool is a tool for the llm agent to interact with different applications.
type ITool interface {
	// Name returns the name of the Tool.
	Name() string
	// Description returns the description of the tool, to be used in the prompt.
	// Should not exceed LLM model limit.
	Description() string
	// Parameters returns the parameters definition of the function, to be used in the prompt.
	Parameters() any

	// Call executes the tool with the given input and returns the result.
	// If the tool fails to parse the input, it should return ErrFailedUnmarshalInput error.
	Call(context.Context, string) (string, error)
}

// Callback receives the tool invocation events.
type Callback interface {
	OnToolStart(ctx context.Context, tool ITool, input string)
	OnToolEnd(ctx context.Context, tool ITool, input string, output string)
	OnToolError(ctx context.Context, tool ITool, input string, err error)
}

type Tool[I any, O any] interface {
	ITool
	Run(context.Context, *I) (*O, error)
}

type toolDescription struct {
	Name        string `json:"Name" yaml:"Name"`
	Title       string `json:"Title,omitempty" yaml:"Title,omitempty"`
	Description string `json:"Description" yaml:"Description"`
}

type toolsDescription struct {
	Tools []toolDescription `json:"Tools" yaml:"Tools"`
}

type titled interface {
	Title() string
}

// GetDescriptions returns the prompt-ready list of tool names and descriptions.
func GetDescriptions(list ...ITool) string {
	var d toolsDescription
	for _, tool := range list {
		td := toolDescription{
			Name:        tool.Name(),
			Description: tool.Description(),
		}
		if t, ok := tool.(titled); ok {
			td.Title = t.Title()
		}
		d.Tools = append(d.Tools, td)
	}
	return llmutils.BackticksJSON(llmutils.ToJSONIndent(d))
}
