package dispatch

import (
	"sort"

	"github.com/vela-lang/vela/internal/rterror"
	"github.com/vela-lang/vela/internal/typelattice"
	"github.com/vela-lang/vela/internal/value"
)

// Resolution is the outcome of a successful dispatch: the selected method
// plus the concrete type each of its `where`-bound type variables resolved
// to, so the VM can push them into the callee frame (§3.3).
type Resolution struct {
	Method   *Method
	Bindings map[string]typelattice.ID
}

// Dispatch selects the most specific method of name applicable to argTypes,
// per §4.2: collect every applicable method, keep the ones no other
// applicable method strictly dominates, and require exactly one survivor.
func Dispatch(mt *MethodTable, lattice *typelattice.Lattice, name string, argTypes []typelattice.ID) (*Resolution, error) {
	candidates := mt.Methods(name)
	if len(candidates) == 0 {
		return nil, &rterror.MethodError{Function: name, ArgTypes: argTypes, Lattice: lattice}
	}

	type hit struct {
		m        *Method
		bindings map[string]typelattice.ID
	}
	var applicable []hit
	for _, m := range candidates {
		if bnd, ok := matchSignature(lattice, m, argTypes); ok {
			applicable = append(applicable, hit{m, bnd})
		}
	}
	if len(applicable) == 0 {
		return nil, &rterror.MethodError{Function: name, ArgTypes: argTypes, Lattice: lattice}
	}

	// Keep only maximally specific candidates: a candidate survives unless
	// some other applicable candidate dominates it.
	var maximal []hit
	for i, h := range applicable {
		dominated := false
		for j, other := range applicable {
			if i == j {
				continue
			}
			if dominates(lattice, other.m, h.m) && !dominates(lattice, h.m, other.m) {
				dominated = true
				break
			}
		}
		if !dominated {
			maximal = append(maximal, h)
		}
	}

	if len(maximal) == 1 {
		return &Resolution{Method: maximal[0].m, Bindings: maximal[0].bindings}, nil
	}

	// More than one maximal candidate that don't dominate each other: either
	// they're identical in specificity (true ambiguity) or duplicates of the
	// same method reached via different bindings. De-dup by method identity
	// first before declaring ambiguity.
	seen := map[*Method]bool{}
	var distinct []hit
	for _, h := range maximal {
		if !seen[h.m] {
			seen[h.m] = true
			distinct = append(distinct, h)
		}
	}
	if len(distinct) == 1 {
		return &Resolution{Method: distinct[0].m, Bindings: distinct[0].bindings}, nil
	}

	sort.Slice(distinct, func(i, j int) bool { return distinct[i].m.Order < distinct[j].m.Order })
	candidatesOut := make([]value.MethodIdentity, len(distinct))
	for i, h := range distinct {
		candidatesOut[i] = h.m.Identity()
	}
	return nil, &rterror.AmbiguityError{Function: name, Candidates: candidatesOut}
}

// matchSignature checks argTypes against m's parameter list, enforcing a
// consistent binding for any repeated type variable, and returns that
// binding on success.
func matchSignature(lattice *typelattice.Lattice, m *Method, argTypes []typelattice.ID) (map[string]typelattice.ID, bool) {
	minArgs := len(m.ParamTypes)
	if m.Variadic {
		minArgs--
	}
	if m.Variadic {
		if len(argTypes) < minArgs {
			return nil, false
		}
	} else if len(argTypes) != minArgs {
		return nil, false
	}

	bindings := make(map[string]typelattice.ID)
	for i := 0; i < minArgs; i++ {
		if !matchParam(lattice, m, i, argTypes[i], bindings) {
			return nil, false
		}
	}
	if m.Variadic {
		last := len(m.ParamTypes) - 1
		for i := minArgs; i < len(argTypes); i++ {
			if !matchParam(lattice, m, last, argTypes[i], bindings) {
				return nil, false
			}
		}
	}
	return bindings, true
}

func matchParam(lattice *typelattice.Lattice, m *Method, paramIdx int, argType typelattice.ID, bindings map[string]typelattice.ID) bool {
	if name, ok := m.VarSlots[paramIdx]; ok {
		tv := m.TypeVars[name]
		if bound, exists := bindings[name]; exists {
			return lattice.IsEqualType(bound, argType)
		}
		if !lattice.IsSubtype(argType, tv.Upper) {
			return false
		}
		if tv.Lower != lattice.Bottom() && !lattice.IsSubtype(tv.Lower, argType) {
			return false
		}
		bindings[name] = argType
		return true
	}
	return lattice.IsSubtype(argType, m.ParamTypes[paramIdx])
}

// dominates reports whether a is at least as specific as b in every
// parameter slot and strictly more specific in at least one — the
// condition under which a shadows b as a dispatch candidate.
func dominates(lattice *typelattice.Lattice, a, b *Method) bool {
	n := len(a.ParamTypes)
	if len(b.ParamTypes) < n {
		n = len(b.ParamTypes)
	}
	strictSomewhere := false
	for i := 0; i < n; i++ {
		at, bt := paramBound(a, i), paramBound(b, i)
		if !lattice.IsSubtype(at, bt) {
			return false
		}
		if !lattice.IsSubtype(bt, at) {
			strictSomewhere = true
		}
	}
	if a.Variadic != b.Variadic {
		// A fixed-arity method is more specific than a variadic one that
		// would also accept the call.
		return !a.Variadic
	}
	return strictSomewhere
}

func paramBound(m *Method, i int) typelattice.ID {
	if i >= len(m.ParamTypes) {
		i = len(m.ParamTypes) - 1
	}
	if name, ok := m.VarSlots[i]; ok {
		return m.TypeVars[name].Upper
	}
	return m.ParamTypes[i]
}
