package tools

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"

	"github.com/bububa/ljson"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
)

var validate = validator.New()

var emptyArgs = []byte("{}")

func normalizeArgs(args []byte) []byte {
	args = bytes.TrimSpace(args)
	if len(args) == 0 {
		return emptyArgs
	}
	return args
}

// DecodeArgs decodes JSON arguments into the input type with the lenient ljson decoder,
// and validates the result with `validate` struct tags.
func DecodeArgs[I any](args []byte) (*I, error) {
	in := new(I)
	if err := ljson.Unmarshal(normalizeArgs(args), in); err != nil {
		return nil, errors.Wrap(ErrFailedUnmarshalInput, err.Error())
	}

	t := reflect.TypeOf(in).Elem()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() == reflect.Struct {
		if err := validate.Struct(in); err != nil {
			return nil, errors.Wrap(ErrInvalidInput, err.Error())
		}
	}
	return in, nil
}

// ValidateArgs checks that the arguments are a JSON object,
// provide every property required by the schema,
// and that the declared properties match their JSON type and enum.
func ValidateArgs(schema *jsonschema.Schema, args []byte) error {
	var values map[string]json.RawMessage
	if err := json.Unmarshal(normalizeArgs(args), &values); err != nil {
		return errors.WithStack(ErrFailedUnmarshalInput)
	}
	if schema == nil {
		return nil
	}
	for _, name := range schema.Required {
		val, ok := values[name]
		if !ok || isNull(val) {
			return errors.Wrapf(ErrInvalidInput, "missing required argument %q", name)
		}
	}
	if schema.Properties == nil {
		return nil
	}
	for name, raw := range values {
		prop, ok := schema.Properties.Get(name)
		if !ok || prop == nil || isNull(raw) {
			continue
		}
		var val any
		if err := json.Unmarshal(raw, &val); err != nil {
			return errors.Wrapf(ErrFailedUnmarshalInput, "argument %q", name)
		}
		if prop.Type != "" && !matchesType(prop.Type, val) {
			return errors.Wrapf(ErrInvalidInput, "argument %q must be %s", name, prop.Type)
		}
		if len(prop.Enum) > 0 && !inEnum(prop.Enum, val) {
			return errors.Wrapf(ErrInvalidInput, "argument %q is not one of the allowed values", name)
		}
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

func matchesType(typ string, val any) bool {
	switch typ {
	case "string":
		_, ok := val.(string)
		return ok
	case "number":
		_, ok := val.(float64)
		return ok
	case "integer":
		f, ok := val.(float64)
		return ok && f == math.Trunc(f)
	case "boolean":
		_, ok := val.(bool)
		return ok
	case "object":
		_, ok := val.(map[string]any)
		return ok
	case "array":
		_, ok := val.([]any)
		return ok
	case "null":
		return val == nil
	}
	return true
}

// inEnum compares values in their JSON form,
// enum entries may be declared with any Go type.
func inEnum(enum []any, val any) bool {
	for _, e := range enum {
		bs, err := json.Marshal(e)
		if err != nil {
			continue
		}
		var ev any
		if json.Unmarshal(bs, &ev) == nil && reflect.DeepEqual(ev, val) {
			return true
		}
	}
	return false
}
