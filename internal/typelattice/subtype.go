package typelattice

// binding tracks a UnionAll type variable resolved during a subtype check, so
// that a single query can share bindings across nested UnionAlls (e.g.
// `f(x::T, y::T) where T` needs the same T picked for both parameters).
type binding map[string]ID

// IsSubtype reports whether A <: B under the rules of §3.2:
//   - reflexive, transitive, antisymmetric w.r.t. identity
//   - concrete A: A<:B iff B is A, an abstract ancestor of A, a union
//     containing such a type, or a UnionAll whose body covers A for some
//     valid binding
//   - parametric invariance in element slots unless B is a UnionAll whose
//     bound is satisfied by A's concrete parameter
//   - Union: A<:Union{..} iff A<:some member; Union{..}<:B iff every member <:B
//   - UnionAll: A<:(X where T<:U) iff some T*<:U makes A<:X[T:=T*]
func (l *Lattice) IsSubtype(a, b ID) bool {
	return l.isSubtype(a, b, make(binding))
}

func (l *Lattice) isSubtype(a, b ID, bnd binding) bool {
	if a == b {
		return true
	}
	if a == l.bottom {
		return true
	}
	if b == l.any {
		return true
	}

	bn := l.Get(b)

	switch bn.Kind {
	case KindUnion:
		// A <: Union{..} iff A <: Ui for some member.
		for _, m := range bn.Members {
			if l.isSubtype(a, m, cloneBinding(bnd)) {
				return true
			}
		}
		return false

	case KindUnionAll:
		// A <: (X where T<:U) iff some T* <: U makes A <: X[T:=T*].
		return l.subtypeUnionAll(a, bn, bnd)
	}

	an := l.Get(a)

	switch an.Kind {
	case KindUnion:
		// Union{..} <: B iff every member <: B.
		for _, m := range an.Members {
			if !l.isSubtype(m, b, cloneBinding(bnd)) {
				return false
			}
		}
		return len(an.Members) > 0 || b == l.bottom

	case KindUnionAll:
		// A free UnionAll on the left is only <: B if its body is, for the
		// variable's own bound — used when matching a declared-but-unbound
		// signature parameter against a concrete target.
		return l.isSubtype(an.Body, b, bnd)
	}

	if bn.Kind == KindParametric {
		return l.subtypeParametric(an, bn, bnd)
	}

	// Concrete/abstract B: walk A's ancestor chain.
	return l.ancestorReaches(a, b)
}

// ancestorReaches walks concrete/abstract parent edges from a looking for b.
func (l *Lattice) ancestorReaches(a, b ID) bool {
	cur := a
	for {
		if cur == b {
			return true
		}
		n := l.Get(cur)
		if n.Kind == KindParametric && n.Parent == Invalid {
			return false
		}
		if cur == l.any {
			return false
		}
		if n.Parent == Invalid {
			return false
		}
		cur = n.Parent
	}
}

// subtypeParametric implements invariance in element slots: Array{Int}<:Array{Real}
// is false even though Int<:Real, because parameters must match exactly unless
// the target parameter is itself a bound type variable.
func (l *Lattice) subtypeParametric(an, bn *Type, bnd binding) bool {
	if an.Kind != KindParametric {
		// A is not parametric at all (e.g. Any on the left would already
		// have been handled above); not a match.
		return l.ancestorReaches(an.ID, bn.ID)
	}
	if len(an.Params) != len(bn.Params) {
		return false
	}
	for i := range an.Params {
		if an.Params[i] != bn.Params[i] {
			// Parameters are invariant: equality required, no subtype slack.
			return false
		}
	}
	return l.ancestorReaches(an.Parent, bn.Parent) || an.Parent == bn.Parent
}

func (l *Lattice) subtypeUnionAll(a ID, bn *Type, bnd binding) bool {
	v := bn.Variable
	// Try the binding already fixed for this variable name in this query,
	// if any (shared type variables across a signature).
	if fixed, ok := bnd[v.Name]; ok {
		return l.isSubtype(a, substitute(bn.Body, v.Name, fixed, l), cloneBindingWith(bnd, nil))
	}

	// Search candidate T* in {a itself, a's ancestors up to v.Upper} that
	// satisfies the bound and makes A <: body[T:=T*].
	for _, candidate := range l.candidatesUpTo(a, v.Upper) {
		if !l.isSubtype(candidate, v.Upper, cloneBinding(bnd)) {
			continue
		}
		if v.Lower != l.bottom && !l.isSubtype(v.Lower, candidate, cloneBinding(bnd)) {
			continue
		}
		next := cloneBinding(bnd)
		next[v.Name] = candidate
		body := substitute(bn.Body, v.Name, candidate, l)
		if l.isSubtype(a, body, next) {
			return true
		}
	}
	return false
}

// candidatesUpTo returns a, then each ancestor of a, up to and including
// upper (or Any if that's never reached). This bounds the search for a type
// variable binding to the chain that's actually relevant.
func (l *Lattice) candidatesUpTo(a, upper ID) []ID {
	var out []ID
	cur := a
	for {
		out = append(out, cur)
		if cur == upper || cur == l.any {
			break
		}
		n := l.Get(cur)
		if n.Parent == Invalid {
			break
		}
		cur = n.Parent
	}
	return out
}

// substitute is a structural placeholder: since this lattice represents a
// UnionAll body as a single node ID rather than an open term, substitution
// is only meaningful when the body itself names the type variable directly
// (the common case: `Vector{T} where T`, where body is the parametric node
// whose parameter IS the variable's placeholder ID). Bodies that don't
// reference the variable are returned unchanged.
func substitute(body ID, varName string, with ID, l *Lattice) ID {
	n := l.Get(body)
	if n.Variable != nil && n.Variable.Name == varName {
		return with
	}
	if n.Kind == KindParametric {
		changed := false
		params := make([]ID, len(n.Params))
		for i, p := range n.Params {
			pn := l.Get(p)
			if pn.Variable != nil && pn.Variable.Name == varName {
				params[i] = with
				changed = true
			} else {
				params[i] = p
			}
		}
		if changed {
			return l.RegisterParametric(ctorNameOf(n.Name), n.Parent, params...)
		}
	}
	return body
}

func ctorNameOf(fullName string) string {
	for i, c := range fullName {
		if c == '{' {
			return fullName[:i]
		}
	}
	return fullName
}

func cloneBinding(b binding) binding {
	out := make(binding, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

func cloneBindingWith(b binding, extra binding) binding {
	out := cloneBinding(b)
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// IsEqualType reports type identity (A<:B && B<:A), used where the spec
// calls for exact parameter equality (e.g. the dual-parity rule).
func (l *Lattice) IsEqualType(a, b ID) bool {
	return a == b || (l.IsSubtype(a, b) && l.IsSubtype(b, a))
}

// MostSpecific reports whether m is a strict subtype of other (m<:other but
// not other<:m), used by dispatch tie-breaking.
func (l *Lattice) MostSpecific(m, other ID) bool {
	return l.IsSubtype(m, other) && !l.IsSubtype(other, m)
}
