package rterror

import (
	"testing"

	"github.com/vela-lang/vela/internal/typelattice"
)

func TestTaxonomyRegistersUnderException(t *testing.T) {
	r := typelattice.Bootstrap()
	tax := RegisterTaxonomy(r)

	if !r.Lattice.IsSubtype(tax.MethodError, r.Exception) {
		t.Error("MethodError should be <: Exception")
	}
	if r.Lattice.IsSubtype(tax.MethodError, tax.TypeError) {
		t.Error("MethodError should not be <: TypeError")
	}
}

func TestMethodErrorMessage(t *testing.T) {
	r := typelattice.Bootstrap()
	err := &MethodError{Function: "area", ArgTypes: []typelattice.ID{r.String}, Lattice: r.Lattice}
	want := "MethodError: no method matching area(String)"
	if err.Error() != want {
		t.Errorf("got %q want %q", err.Error(), want)
	}
}

func TestWithStackTraceIsImmutable(t *testing.T) {
	err := &DivideError{}
	trace := StackTrace{NewStackFrame("f", nil)}
	withTrace := err.WithStackTrace(trace)

	if err.StackTrace() != nil {
		t.Error("original error should be unmodified")
	}
	if withTrace.StackTrace().Depth() != 1 {
		t.Error("returned error should carry the new trace")
	}
}
