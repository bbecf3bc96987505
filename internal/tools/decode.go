package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/localrivet/remindersmcp/internal/errortypes"
	"github.com/xeipuuv/gojsonschema"
)

// FieldError is one validation failure for a single argument.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every validation failure for one tool call.
type ValidationError struct {
	Tool     string
	Failures []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Field + ": " + f.Message
	}
	return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, strings.Join(parts, "; "))
}

var compiled = mustCompileSchemas()

func mustCompileSchemas() map[string]*gojsonschema.Schema {
	schemas := make(map[string]*gojsonschema.Schema)
	for _, d := range Descriptors() {
		s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(d.InputSchema))
		if err != nil {
			panic(fmt.Sprintf("tools: invalid schema for %s: %v", d.Name, err))
		}
		schemas[d.Name] = s
	}
	return schemas
}

// Decode validates raw against the schema of the named tool and decodes it
// into the matching Request variant.
//
// Unknown names fail with an unknown-operation error and invalid bags with
// an invalid-arguments error carrying every field failure. Nothing is run
// in either case. An empty or null bag is treated as {}.
func Decode(name string, raw json.RawMessage) (Request, error) {
	schema, ok := compiled[name]
	if !ok {
		return nil, errortypes.UnknownOperation(name)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = json.RawMessage("{}")
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, invalid(name, []FieldError{{Field: "(root)", Message: err.Error()}})
	}
	if !result.Valid() {
		return nil, invalid(name, fieldErrors(result.Errors()))
	}

	req, err := decodeVariant(name, raw)
	if err != nil {
		return nil, invalid(name, []FieldError{{Field: "(root)", Message: err.Error()}})
	}
	return req, nil
}

func decodeVariant(name string, raw json.RawMessage) (Request, error) {
	switch name {
	case ToolListReminders:
		var r ListRequest
		err := json.Unmarshal(raw, &r)
		return r, err
	case ToolCreateReminder:
		var r CreateRequest
		err := json.Unmarshal(raw, &r)
		return r, err
	case ToolEditReminder:
		var r EditRequest
		err := json.Unmarshal(raw, &r)
		return r, err
	case ToolCompleteReminder:
		var r CompleteRequest
		err := json.Unmarshal(raw, &r)
		return r, err
	case ToolDeleteReminder:
		var r DeleteRequest
		err := json.Unmarshal(raw, &r)
		return r, err
	}
	return nil, errortypes.UnknownOperation(name)
}

func fieldErrors(errs []gojsonschema.ResultError) []FieldError {
	out := make([]FieldError, 0, len(errs))
	for _, e := range errs {
		field := e.Field()
		// Missing properties are reported against the root object.
		if e.Type() == "required" {
			if p, ok := e.Details()["property"].(string); ok {
				field = p
			}
		}
		out = append(out, FieldError{Field: field, Message: e.Description()})
	}
	return out
}

func invalid(name string, failures []FieldError) error {
	verr := &ValidationError{Tool: name, Failures: failures}
	return errortypes.InvalidArguments(verr, "").
		WithField("tool", name).
		WithField("errors", failures)
}
