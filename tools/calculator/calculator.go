// Package calculator provides the arithmetic tool.
package calculator

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbox/tools"
)

var (
	// ErrUnsupportedOperation is returned for operations other than
	// add, subtract, multiply and divide.
	ErrUnsupportedOperation = errors.New("unsupported operation")
	// ErrDivisionByZero is returned when dividing by zero.
	ErrDivisionByZero = errors.New("division by zero")
)

// Supported operations.
const (
	OpAdd      = "add"
	OpSubtract = "subtract"
	OpMultiply = "multiply"
	OpDivide   = "divide"
)

// Doc is the description of the calculator tool.
const Doc = `Calculate two numbers.
	operation: add, subtract, multiply, divide`

// Request is the input of the calculator tool.
type Request struct {
	A         float64 `json:"a" yaml:"a" jsonschema:"title=A,description=The first operand."`
	B         float64 `json:"b" yaml:"b" jsonschema:"title=B,description=The second operand."`
	Operation string  `json:"operation" yaml:"operation" jsonschema:"title=Operation,description=The arithmetic operation.,enum=add,enum=subtract,enum=multiply,enum=divide"`
}

// Calculate returns the result of the operation.
func Calculate(a, b float64, operation string) (float64, error) {
	switch operation {
	case OpAdd:
		return a + b, nil
	case OpSubtract:
		return a - b, nil
	case OpMultiply:
		return a * b, nil
	case OpDivide:
		if b == 0 {
			return 0, errors.WithStack(ErrDivisionByZero)
		}
		return a / b, nil
	}
	return 0, errors.Wrapf(ErrUnsupportedOperation, "%q", operation)
}

func calculator(_ context.Context, req *Request) (float64, error) {
	return Calculate(req.A, req.B, req.Operation)
}

// New returns the calculator function to be registered as a tool.
func New() *tools.Function {
	return tools.NewFunc(calculator, Doc)
}
