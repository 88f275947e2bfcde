package dispatch

import "github.com/vela-lang/vela/internal/typelattice"

// PromotionTable implements `promote_rule`/`promote_type` (§4.2): the
// numeric tower's pairwise widening table that arithmetic builtins consult
// before dispatch so that `1 + 1.0` resolves through Float64's method
// rather than failing to find an Int64/Float64 overload.
//
// Unlike the method table, promotion is explicitly registered per pair
// (symmetric; registering (A,B) also answers (B,A)) rather than derived
// from the lattice, since "which of two numeric types is the common type"
// isn't a subtype question — Int64 and Float64 share no subtype relation
// in either direction.
type PromotionTable struct {
	rules map[[2]typelattice.ID]typelattice.ID
}

func NewPromotionTable() *PromotionTable {
	return &PromotionTable{rules: make(map[[2]typelattice.ID]typelattice.ID)}
}

// Register records that promoting a and b together yields result.
func (p *PromotionTable) Register(a, b, result typelattice.ID) {
	p.rules[[2]typelattice.ID{a, b}] = result
	p.rules[[2]typelattice.ID{b, a}] = result
}

// Rule looks up the registered promotion for the pair, per promote_rule.
func (p *PromotionTable) Rule(a, b typelattice.ID) (typelattice.ID, bool) {
	if a == b {
		return a, true
	}
	r, ok := p.rules[[2]typelattice.ID{a, b}]
	return r, ok
}

// Type implements promote_type: the common type for a set of input types,
// folding Rule pairwise. Returns ok=false if any adjacent pair lacks a
// registered rule (the caller should report this as a MethodError on the
// arithmetic operator itself, not as a distinct conversion failure).
func (p *PromotionTable) Type(types ...typelattice.ID) (typelattice.ID, bool) {
	if len(types) == 0 {
		return typelattice.Invalid, false
	}
	acc := types[0]
	for _, t := range types[1:] {
		r, ok := p.Rule(acc, t)
		if !ok {
			return typelattice.Invalid, false
		}
		acc = r
	}
	return acc, true
}
