package inference

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrValidation = errors.New("inference: invalid configuration")
var ErrNoSuchKey = errors.New("inference: no such key")
var ErrTypeMismatch = errors.New("inference: type mismatch")
var ErrWeightsNotFound = errors.New("inference: weights file is not found")

type ProblemKind int

const (
	// required field is absent or null.
	Missing ProblemKind = iota

	// value has a wrong type.
	WrongType

	// value is out of range.
	OutOfRange
)

// FieldError is a problem found at a field.
type FieldError struct {
	Kind ProblemKind

	// Path is dotted path to the field, like "inference.flow.min_t".
	Path string

	// Constraint is what the field should satisfy, like "min_t < 1" or "int".
	Constraint string

	// Actual is the value found, formatted for messages. Empty for Missing.
	Actual string
}

func (fe *FieldError) Error() string {
	switch fe.Kind {
	case Missing:
		return fmt.Sprintf("%s: missing required field", fe.Path)
	case WrongType:
		return fmt.Sprintf("%s: should be %s, but got %s", fe.Path, fe.Constraint, fe.Actual)
	default:
		return fmt.Sprintf("%s: should satisfy %s, but got %s", fe.Path, fe.Constraint, fe.Actual)
	}
}

func (fe *FieldError) Is(target error) bool {
	return target == ErrValidation
}

// ValidationErrors is every problem found in a configuration.
type ValidationErrors []*FieldError

func (ve ValidationErrors) Error() string {
	msgs := make([]string, 0, len(ve)+1)
	msgs = append(msgs, fmt.Sprintf("%s (%d problem(s))", ErrValidation, len(ve)))
	for _, fe := range ve {
		msgs = append(msgs, "  - "+fe.Error())
	}
	return strings.Join(msgs, "\n")
}

func (ve ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

// Paths returns field paths having problems, in order.
func (ve ValidationErrors) Paths() []string {
	paths := make([]string, 0, len(ve))
	for _, fe := range ve {
		paths = append(paths, fe.Path)
	}
	return paths
}

// Find returns problems at the path.
func (ve ValidationErrors) Find(path string) []*FieldError {
	found := []*FieldError{}
	for _, fe := range ve {
		if fe.Path == path {
			found = append(found, fe)
		}
	}
	return found
}

func (ve ValidationErrors) sort() {
	sort.SliceStable(ve, func(i, j int) bool { return ve[i].Path < ve[j].Path })
}

// Notice is a remark on a configuration which is accepted.
type Notice struct {
	Path    string
	Message string
}

func (n Notice) String() string {
	return n.Path + ": " + n.Message
}

// show formats a value in messages.
func show(v any) string {
	if v == nil {
		return "null"
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "null"
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.String {
		return fmt.Sprintf("%q", rv.String())
	}
	return fmt.Sprint(rv.Interface())
}

// showNode formats a node in messages.
func showNode(node *yaml.Node) string {
	switch node.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			return "null"
		}
		return fmt.Sprintf("%s %q", strings.TrimPrefix(node.ShortTag(), "!!"), node.Value)
	}
	return "unknown"
}
