package meta

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrParse marks descriptions that are not well-formed JSON.
	ErrParse = errors.New("description parse error")
	// ErrSchema marks well-formed descriptions that violate a schema rule.
	ErrSchema = errors.New("description schema error")
)

// ParseError reports a malformed description document, preserving the raw
// decoder message.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse description: %v", e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// SchemaError reports one schema rule violation. Index is the position of the
// offending resource in the description's resource list, or -1 for
// header-level problems. Field names the offending field when one applies.
type SchemaError struct {
	Index  int
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	if e.Index >= 0 {
		fmt.Fprintf(&b, "resource %d", e.Index)
	} else {
		b.WriteString("header")
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ": field %q", e.Field)
	}
	fmt.Fprintf(&b, ": %s", e.Reason)
	return b.String()
}

func (e *SchemaError) Unwrap() error {
	return ErrSchema
}

// SchemaErrors aggregates every violation found in one validation pass.
type SchemaErrors []*SchemaError

func (e SchemaErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	parts := make([]string, 0, len(e)+1)
	parts = append(parts, fmt.Sprintf("%d schema violations:", len(e)))
	for _, err := range e {
		parts = append(parts, err.Error())
	}
	return strings.Join(parts, "\n  ")
}

func (e SchemaErrors) Unwrap() []error {
	unwrapped := make([]error, len(e))
	for i, err := range e {
		unwrapped[i] = err
	}
	return unwrapped
}
