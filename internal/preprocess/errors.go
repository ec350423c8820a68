// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

package preprocess

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mongodb/genny-sub000/internal/scope"
)

// Error kinds. Every error returned by Preprocess is an *Error whose Kind is
// one of these, so callers can match them with errors.Is.
var (
	// ErrUnboundReference reports a parameter, expression variable or client
	// name that is not defined where it is used.
	ErrUnboundReference = scope.ErrUnbound
	// ErrInvalidMacroArgument reports a macro payload of the wrong shape or type.
	ErrInvalidMacroArgument = errors.New("invalid macro argument")
	// ErrUnknownTemplate reports an ActorFromTemplate naming an unregistered template.
	ErrUnknownTemplate = errors.New("unknown template")
	// ErrMalformedExternalConfig reports a LoadConfig target that cannot be used.
	ErrMalformedExternalConfig = errors.New("malformed external config")
	// ErrCyclicInclude reports a LoadConfig chain that includes itself.
	ErrCyclicInclude = errors.New("cyclic include")
	// ErrInvalidDocument reports a root document that is not a mapping.
	ErrInvalidDocument = errors.New("invalid document")
)

// Error describes a failure while resolving a document, located by the path
// of the offending node.
type Error struct {
	Kind error
	Path string
	Msg  string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.Error())
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, p *Path, format string, args ...any) *Error {
	return &Error{Kind: kind, Path: p.String(), Msg: fmt.Sprintf(format, args...)}
}

func wrapError(kind error, p *Path, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Path: p.String(), Msg: fmt.Sprintf(format, args...), Err: err}
}

func invalidArgument(p *Path, format string, args ...any) *Error {
	return newError(ErrInvalidMacroArgument, p, format, args...)
}

func unbound(p *Path, format string, args ...any) *Error {
	return newError(ErrUnboundReference, p, format, args...)
}
