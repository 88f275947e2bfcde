// Package dispatch implements multiple dispatch over the type lattice
// (§4.2): applicable-method collection, most-specific selection, ambiguity
// detection, and a per-call-site method cache.
package dispatch

import (
	"github.com/vela-lang/vela/internal/bytecode"
	"github.com/vela-lang/vela/internal/typelattice"
	"github.com/vela-lang/vela/internal/value"
)

// BuiltinFunc is a native method body. It receives already-dispatched,
// already-bound arguments and the type-variable bindings the signature's
// `where` clause produced, so a builtin like `zero(::Type{T}) where T` can
// read T back out.
type BuiltinFunc func(args []value.Value, bindings map[string]typelattice.ID) (value.Value, error)

// Method is one (signature, body) pair registered under a generic
// function name. Exactly one of Chunk or Native is set: interpreted
// methods carry a Chunk the VM runs in a fresh Frame; builtins carry a Go
// closure the VM calls directly, so that — per spec §4.2 — "every builtin
// is registered in the method table as if user-defined" without the VM
// needing a second call path.
type Method struct {
	FunctionName string
	ParamTypes   []typelattice.ID
	Variadic     bool // last ParamTypes entry matches zero or more trailing args

	// VarSlots names, for each parameter index that is declared as a bare
	// `where`-bound type variable (e.g. `f(x::T, y::T) where T`) rather than
	// a fixed type, the variable's name; TypeVars gives that name's bound.
	// This sidesteps re-deriving per-call bindings from typelattice's
	// UnionAll machinery (which binds one variable at a time against a
	// single type) since dispatch needs the *same* binding enforced across
	// every parameter slot that names it.
	VarSlots map[int]string
	TypeVars map[string]typelattice.TypeVar

	Chunk  *bytecode.Chunk
	Native BuiltinFunc

	// Order is the registration sequence, used only to keep AmbiguityError's
	// reported candidate order stable and deterministic across runs.
	Order int
}

func (m *Method) Identity() value.MethodIdentity {
	return value.MethodIdentity{FunctionName: m.FunctionName, ParamTypes: m.ParamTypes}
}
