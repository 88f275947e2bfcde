package rterror

import (
	"fmt"
	"strings"

	"github.com/vela-lang/vela/internal/typelattice"
	"github.com/vela-lang/vela/internal/value"
)

// Exception is implemented by every concrete type in this file; all of them
// additionally satisfy error. Trace is attached by the VM when the
// exception is thrown (Throw unwinds and records frames as it goes), not by
// the constructor, so builtins can construct one without knowing the
// current call stack.
type Exception interface {
	error
	exceptionTag()
	StackTrace() StackTrace
	WithStackTrace(StackTrace) Exception
}

type base struct {
	trace StackTrace
}

func (b base) StackTrace() StackTrace { return b.trace }
func (b base) exceptionTag()          {}

// MethodError — no applicable method; carries function and argument types.
type MethodError struct {
	base
	Function string
	ArgTypes []typelattice.ID
	Lattice  *typelattice.Lattice
}

func (e *MethodError) Error() string {
	names := make([]string, len(e.ArgTypes))
	for i, t := range e.ArgTypes {
		names[i] = e.Lattice.Name(t)
	}
	return fmt.Sprintf("MethodError: no method matching %s(%s)", e.Function, strings.Join(names, ", "))
}

func (e *MethodError) WithStackTrace(t StackTrace) Exception {
	n := *e
	n.trace = t
	return &n
}

// AmbiguityError — multiple equally-specific methods apply.
type AmbiguityError struct {
	base
	Function   string
	Candidates []value.MethodIdentity
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("AmbiguityError: %d equally specific methods for %s", len(e.Candidates), e.Function)
}

func (e *AmbiguityError) WithStackTrace(t StackTrace) Exception {
	n := *e
	n.trace = t
	return &n
}

// TypeError — a runtime value failed a type assertion or return-type conversion.
type TypeError struct {
	base
	Context  string
	Expected string
	Got      value.Value
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("TypeError: in %s, expected %s, got %s", e.Context, e.Expected, value.Display(e.Got))
}

func (e *TypeError) WithStackTrace(t StackTrace) Exception {
	n := *e
	n.trace = t
	return &n
}

// ArgumentError — a builtin received an argument in an unsupported shape.
type ArgumentError struct {
	base
	Message string
}

func (e *ArgumentError) Error() string { return "ArgumentError: " + e.Message }

func (e *ArgumentError) WithStackTrace(t StackTrace) Exception {
	n := *e
	n.trace = t
	return &n
}

// DivideError — integer division by zero.
type DivideError struct{ base }

func (e *DivideError) Error() string { return "DivideError: integer division error" }

func (e *DivideError) WithStackTrace(t StackTrace) Exception {
	n := *e
	n.trace = t
	return &n
}

// DomainError — value outside a builtin's domain; carries the value and message.
type DomainError struct {
	base
	Value   value.Value
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("DomainError: %s is not in the domain (%s)", value.Display(e.Value), e.Message)
}

func (e *DomainError) WithStackTrace(t StackTrace) Exception {
	n := *e
	n.trace = t
	return &n
}

// InexactError — a conversion would lose information.
type InexactError struct {
	base
	Target string
	Value  value.Value
}

func (e *InexactError) Error() string {
	return fmt.Sprintf("InexactError: %s cannot be represented exactly as %s", value.Display(e.Value), e.Target)
}

func (e *InexactError) WithStackTrace(t StackTrace) Exception {
	n := *e
	n.trace = t
	return &n
}

// DimensionMismatch — container shapes don't align.
type DimensionMismatch struct {
	base
	Message string
}

func (e *DimensionMismatch) Error() string { return "DimensionMismatch: " + e.Message }

func (e *DimensionMismatch) WithStackTrace(t StackTrace) Exception {
	n := *e
	n.trace = t
	return &n
}

// KeyError — a collection lookup found no matching key.
type KeyError struct {
	base
	Key value.Value
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("KeyError: key %s not found", value.Display(e.Key))
}

func (e *KeyError) WithStackTrace(t StackTrace) Exception {
	n := *e
	n.trace = t
	return &n
}

// StringIndexError — a string index doesn't land on a codepoint boundary.
type StringIndexError struct {
	base
	Index int
}

func (e *StringIndexError) Error() string {
	return fmt.Sprintf("StringIndexError: invalid index %d", e.Index)
}

func (e *StringIndexError) WithStackTrace(t StackTrace) Exception {
	n := *e
	n.trace = t
	return &n
}

// AssertionError — an `@assert`-style check failed.
type AssertionError struct {
	base
	Message string
}

func (e *AssertionError) Error() string { return "AssertionError: " + e.Message }

func (e *AssertionError) WithStackTrace(t StackTrace) Exception {
	n := *e
	n.trace = t
	return &n
}

// EOFError — a stream read ran out of input.
type EOFError struct{ base }

func (e *EOFError) Error() string { return "EOFError: read past end of stream" }

func (e *EOFError) WithStackTrace(t StackTrace) Exception {
	n := *e
	n.trace = t
	return &n
}

// UndefKeywordError — a required keyword argument was not supplied.
type UndefKeywordError struct {
	base
	Keyword string
}

func (e *UndefKeywordError) Error() string {
	return fmt.Sprintf("UndefKeywordError: keyword argument %q not assigned", e.Keyword)
}

func (e *UndefKeywordError) WithStackTrace(t StackTrace) Exception {
	n := *e
	n.trace = t
	return &n
}

// OverflowError — a fixed-width arithmetic operation overflowed.
type OverflowError struct {
	base
	Message string
}

func (e *OverflowError) Error() string { return "OverflowError: " + e.Message }

func (e *OverflowError) WithStackTrace(t StackTrace) Exception {
	n := *e
	n.trace = t
	return &n
}

// ErrorException is the generic fallback raised by `error(msg)`.
type ErrorException struct {
	base
	Message string
}

func (e *ErrorException) Error() string { return e.Message }

func (e *ErrorException) WithStackTrace(t StackTrace) Exception {
	n := *e
	n.trace = t
	return &n
}

// TypeName returns each exception's lattice type name (RegisterTaxonomy
// registers them under the same names), letting typeof/isa report the
// concrete exception type instead of the abstract Exception node.
func (e *MethodError) TypeName() string       { return "MethodError" }
func (e *AmbiguityError) TypeName() string    { return "AmbiguityError" }
func (e *TypeError) TypeName() string         { return "TypeError" }
func (e *ArgumentError) TypeName() string     { return "ArgumentError" }
func (e *DivideError) TypeName() string       { return "DivideError" }
func (e *DomainError) TypeName() string       { return "DomainError" }
func (e *InexactError) TypeName() string      { return "InexactError" }
func (e *DimensionMismatch) TypeName() string { return "DimensionMismatch" }
func (e *KeyError) TypeName() string          { return "KeyError" }
func (e *StringIndexError) TypeName() string  { return "StringIndexError" }
func (e *AssertionError) TypeName() string    { return "AssertionError" }
func (e *EOFError) TypeName() string          { return "EOFError" }
func (e *UndefKeywordError) TypeName() string { return "UndefKeywordError" }
func (e *OverflowError) TypeName() string     { return "OverflowError" }
func (e *ErrorException) TypeName() string    { return "ErrorException" }
