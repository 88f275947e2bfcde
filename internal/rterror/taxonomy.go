package rterror

import "github.com/vela-lang/vela/internal/typelattice"

// Taxonomy registers each exception type in this file as a distinct
// concrete type under Exception in the lattice, so `catch e isa T` can
// narrow by subtype and so MethodError et al. participate in dispatch like
// any other concrete type (§7).
type Taxonomy struct {
	MethodError       typelattice.ID
	AmbiguityError    typelattice.ID
	TypeError         typelattice.ID
	ArgumentError     typelattice.ID
	DivideError       typelattice.ID
	DomainError       typelattice.ID
	InexactError      typelattice.ID
	DimensionMismatch typelattice.ID
	KeyError          typelattice.ID
	StringIndexError  typelattice.ID
	AssertionError    typelattice.ID
	EOFError          typelattice.ID
	UndefKeywordError typelattice.ID
	OverflowError     typelattice.ID
	ErrorException    typelattice.ID
}

// RegisterTaxonomy registers the exception hierarchy under r.Exception.
func RegisterTaxonomy(r *typelattice.Registry) *Taxonomy {
	l := r.Lattice
	reg := func(name string) typelattice.ID { return l.RegisterConcrete(name, r.Exception) }
	return &Taxonomy{
		MethodError:       reg("MethodError"),
		AmbiguityError:    reg("AmbiguityError"),
		TypeError:         reg("TypeError"),
		ArgumentError:     reg("ArgumentError"),
		DivideError:       reg("DivideError"),
		DomainError:       reg("DomainError"),
		InexactError:      reg("InexactError"),
		DimensionMismatch: reg("DimensionMismatch"),
		KeyError:          reg("KeyError"),
		StringIndexError:  reg("StringIndexError"),
		AssertionError:    reg("AssertionError"),
		EOFError:          reg("EOFError"),
		UndefKeywordError: reg("UndefKeywordError"),
		OverflowError:     reg("OverflowError"),
		ErrorException:    reg("ErrorException"),
	}
}

// TypeIDOf returns the lattice type of a concrete Exception value, used by
// `catch e isa T` and by typeof(e).
func (t *Taxonomy) TypeIDOf(e Exception) typelattice.ID {
	switch e.(type) {
	case *MethodError:
		return t.MethodError
	case *AmbiguityError:
		return t.AmbiguityError
	case *TypeError:
		return t.TypeError
	case *ArgumentError:
		return t.ArgumentError
	case *DivideError:
		return t.DivideError
	case *DomainError:
		return t.DomainError
	case *InexactError:
		return t.InexactError
	case *DimensionMismatch:
		return t.DimensionMismatch
	case *KeyError:
		return t.KeyError
	case *StringIndexError:
		return t.StringIndexError
	case *AssertionError:
		return t.AssertionError
	case *EOFError:
		return t.EOFError
	case *UndefKeywordError:
		return t.UndefKeywordError
	case *OverflowError:
		return t.OverflowError
	default:
		return t.ErrorException
	}
}
