package dispatch

import (
	"testing"

	"github.com/vela-lang/vela/internal/rterror"
	"github.com/vela-lang/vela/internal/typelattice"
)

func TestDispatchSelectsMostSpecific(t *testing.T) {
	r := typelattice.Bootstrap()
	mt := NewMethodTable()

	general := &Method{FunctionName: "area", ParamTypes: []typelattice.ID{r.Any}}
	specific := &Method{FunctionName: "area", ParamTypes: []typelattice.ID{r.Int64}}
	mt.AddMethod(general)
	mt.AddMethod(specific)

	res, err := Dispatch(mt, r.Lattice, "area", []typelattice.ID{r.Int64})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Method != specific {
		t.Fatalf("expected the Int64-specific method to win")
	}
}

func TestDispatchNoMethodRaisesMethodError(t *testing.T) {
	r := typelattice.Bootstrap()
	mt := NewMethodTable()
	mt.AddMethod(&Method{FunctionName: "area", ParamTypes: []typelattice.ID{r.String}})

	_, err := Dispatch(mt, r.Lattice, "area", []typelattice.ID{r.Int64})
	if _, ok := err.(*rterror.MethodError); !ok {
		t.Fatalf("expected *rterror.MethodError, got %T", err)
	}
}

func TestDispatchAmbiguousRaisesAmbiguityError(t *testing.T) {
	r := typelattice.Bootstrap()
	mt := NewMethodTable()

	numA := r.Lattice.RegisterAbstract("NumA", r.Any)
	numB := r.Lattice.RegisterAbstract("NumB", r.Any)
	leaf := r.Lattice.RegisterConcrete("Leaf", r.Any)
	// Leaf isn't actually under numA/numB, so simulate ambiguity using two
	// unrelated parameter positions where neither method dominates the other.
	_ = numA
	_ = numB

	m1 := &Method{FunctionName: "combine", ParamTypes: []typelattice.ID{leaf, r.Any}}
	m2 := &Method{FunctionName: "combine", ParamTypes: []typelattice.ID{r.Any, leaf}}
	mt.AddMethod(m1)
	mt.AddMethod(m2)

	_, err := Dispatch(mt, r.Lattice, "combine", []typelattice.ID{leaf, leaf})
	if _, ok := err.(*rterror.AmbiguityError); !ok {
		t.Fatalf("expected *rterror.AmbiguityError, got %T (%v)", err, err)
	}
}

func TestDispatchVariadicMatchesExtraArgs(t *testing.T) {
	r := typelattice.Bootstrap()
	mt := NewMethodTable()
	mt.AddMethod(&Method{FunctionName: "sum", ParamTypes: []typelattice.ID{r.Int64}, Variadic: true})

	res, err := Dispatch(mt, r.Lattice, "sum", []typelattice.ID{r.Int64, r.Int64, r.Int64})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Method.FunctionName != "sum" {
		t.Fatalf("unexpected resolution")
	}
}

func TestDispatchWhereClauseBindsSharedTypeVar(t *testing.T) {
	r := typelattice.Bootstrap()
	mt := NewMethodTable()

	m := &Method{
		FunctionName: "same",
		ParamTypes:   []typelattice.ID{typelattice.Invalid, typelattice.Invalid},
		VarSlots:     map[int]string{0: "T", 1: "T"},
		TypeVars:     map[string]typelattice.TypeVar{"T": {Name: "T", Upper: r.Any, Lower: r.Lattice.Bottom()}},
	}
	mt.AddMethod(m)

	if _, err := Dispatch(mt, r.Lattice, "same", []typelattice.ID{r.Int64, r.Int64}); err != nil {
		t.Fatalf("matching T on both sides should succeed: %v", err)
	}
	if _, err := Dispatch(mt, r.Lattice, "same", []typelattice.ID{r.Int64, r.String}); err == nil {
		t.Fatalf("mismatched T bindings should fail to dispatch")
	}
}

func TestSiteCacheInvalidatesOnLatticeMutation(t *testing.T) {
	r := typelattice.Bootstrap()
	mt := NewMethodTable()
	mt.AddMethod(&Method{FunctionName: "f", ParamTypes: []typelattice.ID{r.Int64}})

	site := NewSiteCache()
	res1, err := DispatchCached(site, mt, r.Lattice, "f", []typelattice.ID{r.Int64})
	if err != nil {
		t.Fatal(err)
	}

	narrower := &Method{FunctionName: "f", ParamTypes: []typelattice.ID{r.Int64}}
	_ = narrower
	r.Lattice.RegisterConcrete("Unrelated", r.Any) // bump lattice version

	res2, err := DispatchCached(site, mt, r.Lattice, "f", []typelattice.ID{r.Int64})
	if err != nil {
		t.Fatal(err)
	}
	if res1.Method != res2.Method {
		t.Fatalf("expected same method resolved after cache refresh")
	}
}

func TestPromotionTableSymmetric(t *testing.T) {
	r := typelattice.Bootstrap()
	p := NewPromotionTable()
	p.Register(r.Int64, r.Float64, r.Float64)

	if got, ok := p.Rule(r.Float64, r.Int64); !ok || got != r.Float64 {
		t.Fatalf("expected symmetric promotion rule")
	}
}

func TestSiteCacheInvalidatesOnMethodTableMutation(t *testing.T) {
	r := typelattice.Bootstrap()
	mt := NewMethodTable()
	mt.AddMethod(&Method{FunctionName: "g", ParamTypes: []typelattice.ID{r.Integer}})

	site := NewSiteCache()
	res1, err := DispatchCached(site, mt, r.Lattice, "g", []typelattice.ID{r.Int64})
	if err != nil {
		t.Fatal(err)
	}

	narrower := &Method{FunctionName: "g", ParamTypes: []typelattice.ID{r.Int64}}
	mt.AddMethod(narrower)

	res2, err := DispatchCached(site, mt, r.Lattice, "g", []typelattice.ID{r.Int64})
	if err != nil {
		t.Fatal(err)
	}
	if res1.Method == res2.Method {
		t.Fatalf("expected the newly added, more specific method to win after table mutation")
	}
	if res2.Method != narrower {
		t.Fatalf("expected the narrower method, got %v", res2.Method.Identity())
	}
}
