package builtins

import (
	"github.com/vela-lang/vela/internal/dispatch"
	"github.com/vela-lang/vela/internal/rterror"
	"github.com/vela-lang/vela/internal/typelattice"
	"github.com/vela-lang/vela/internal/value"
)

// RegisterExceptionConstructors makes the §7 taxonomy constructible from
// program text, so `throw(ArgumentError("bad shape"))` builds the same
// typed exception value a builtin would raise natively and `catch e isa T`
// narrows on it.
func RegisterExceptionConstructors(mt *dispatch.MethodTable, r *typelattice.Registry) {
	s := r.String

	method(mt, "AssertionError", []typelattice.ID{s}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.ExceptionValue(&rterror.AssertionError{Message: value.AsString(a[0])}), nil
	})
	method(mt, "AssertionError", nil, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.ExceptionValue(&rterror.AssertionError{Message: "assertion failed"}), nil
	})
	method(mt, "ArgumentError", []typelattice.ID{s}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.ExceptionValue(&rterror.ArgumentError{Message: value.AsString(a[0])}), nil
	})
	method(mt, "DomainError", []typelattice.ID{r.Any, s}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.ExceptionValue(&rterror.DomainError{Value: a[0], Message: value.AsString(a[1])}), nil
	})
	method(mt, "DimensionMismatch", []typelattice.ID{s}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.ExceptionValue(&rterror.DimensionMismatch{Message: value.AsString(a[0])}), nil
	})
	method(mt, "KeyError", []typelattice.ID{r.Any}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.ExceptionValue(&rterror.KeyError{Key: a[0]}), nil
	})
	method(mt, "OverflowError", []typelattice.ID{s}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.ExceptionValue(&rterror.OverflowError{Message: value.AsString(a[0])}), nil
	})
	method(mt, "ErrorException", []typelattice.ID{s}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.ExceptionValue(&rterror.ErrorException{Message: value.AsString(a[0])}), nil
	})
	method(mt, "EOFError", nil, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.ExceptionValue(&rterror.EOFError{}), nil
	})
}
