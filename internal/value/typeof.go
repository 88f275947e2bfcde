package value

import "github.com/vela-lang/vela/internal/typelattice"

// TypeOf returns the concrete type ID for v under the given registry's
// bootstrapped numeric tower, registering parametric instantiations
// (Array{T,N}, Complex{T}, Rational{T}, Tuple{...}) on first use. Every
// non-singleton value reports a concrete type whose parameters reflect its
// actual element types, per §3.1.
func TypeOf(r *typelattice.Registry, v Value) typelattice.ID {
	l := r.Lattice
	switch v.Kind {
	case KindNothing:
		return r.Nothing
	case KindMissing:
		return r.Missing
	case KindBool:
		return r.Bool
	case KindChar:
		return r.Char
	case KindInt8:
		return r.Int8
	case KindInt16:
		return r.Int16
	case KindInt32:
		return r.Int32
	case KindInt64:
		return r.Int64
	case KindInt128:
		return r.Int128
	case KindUInt8:
		return r.UInt8
	case KindUInt16:
		return r.UInt16
	case KindUInt32:
		return r.UInt32
	case KindUInt64:
		return r.UInt64
	case KindUInt128:
		return r.UInt128
	case KindFloat16:
		return r.Float16
	case KindFloat32:
		return r.Float32
	case KindFloat64:
		return r.Float64
	case KindBigInt:
		return r.BigInt
	case KindBigFloat:
		return r.BigFloat
	case KindRational:
		return l.RegisterParametric("Rational", r.Rational, r.BigInt)
	case KindComplex:
		elem := typeOfKind(r, AsComplex(v).ElemKind)
		return l.RegisterParametric("Complex", r.Complex, elem)
	case KindString:
		return r.String
	case KindSymbol:
		return r.Symbol
	case KindTuple:
		t := AsTuple(v)
		params := make([]typelattice.ID, len(t.Elems))
		for i, e := range t.Elems {
			params[i] = TypeOf(r, e)
		}
		return l.RegisterParametric("Tuple", r.Tuple, params...)
	case KindNamedTuple:
		nt := AsNamedTuple(v)
		if nt.TypeID != typelattice.Invalid {
			return nt.TypeID
		}
		return r.NamedTuple
	case KindGenerator:
		return r.Generator
	case KindRange:
		return r.Range
	case KindArray:
		a := AsArray(v)
		elem := typeOfKind(r, a.ElemKind)
		return l.RegisterParametric("Array", r.Array, elem, rankPlaceholder(r, a.Rank()))
	case KindMemory:
		m := v.Data.(*Memory)
		return l.RegisterParametric("Memory", r.Memory, typeOfKind(r, m.ElemKind))
	case KindSet:
		return r.Set
	case KindPair:
		return r.Pair
	case KindPairs:
		return r.Pairs
	case KindRegex:
		return r.Regex
	case KindVersionNumber:
		return r.VersionNumber
	case KindHTML:
		return l.RegisterParametric("HTML", r.Any, TypeOf(r, AsHTML(v).Inner))
	case KindText:
		return l.RegisterParametric("Text", r.Any, TypeOf(r, AsText(v).Inner))
	case KindMIME:
		return r.MIME
	case KindSome:
		return l.RegisterParametric("Some", r.Any, TypeOf(r, AsSome(v).Inner))
	case KindDataType:
		return r.DataType
	case KindUnionAll:
		return r.UnionAll
	case KindFunction, KindClosure:
		return r.Function
	case KindMethod:
		return r.Method
	case KindGenericFunction:
		return r.GenericFunction
	case KindExpr:
		return r.Expr
	case KindQuoteNode:
		return r.QuoteNode
	case KindException:
		// Concrete taxonomy types name themselves; anything else (a bare
		// Go error thrown through) stays at the abstract Exception node.
		if tn, ok := AsException(v).(interface{ TypeName() string }); ok {
			if id, found := l.Lookup(tn.TypeName()); found {
				return id
			}
		}
		return r.Exception
	default:
		return r.Any
	}
}

func typeOfKind(r *typelattice.Registry, k Kind) typelattice.ID {
	switch k {
	case KindInt8:
		return r.Int8
	case KindInt16:
		return r.Int16
	case KindInt32:
		return r.Int32
	case KindInt64:
		return r.Int64
	case KindInt128:
		return r.Int128
	case KindUInt8:
		return r.UInt8
	case KindUInt16:
		return r.UInt16
	case KindUInt32:
		return r.UInt32
	case KindUInt64:
		return r.UInt64
	case KindUInt128:
		return r.UInt128
	case KindFloat16:
		return r.Float16
	case KindFloat32:
		return r.Float32
	case KindFloat64:
		return r.Float64
	case KindBigInt:
		return r.BigInt
	case KindBigFloat:
		return r.BigFloat
	case KindBool:
		return r.Bool
	default:
		return r.Any
	}
}

// rankPlaceholder registers (or reuses) a concrete marker type standing in
// for an array's rank N, so Array{Float64,2} and Array{Float64,1} are
// distinct parametric nodes as §3.1 requires.
func rankPlaceholder(r *typelattice.Registry, n int) typelattice.ID {
	names := [...]string{"0", "1", "2", "3", "4", "5", "6", "7", "8"}
	name := "Dim8+"
	if n >= 0 && n < len(names) {
		name = "Dim" + names[n]
	}
	if id, ok := r.Lattice.Lookup(name); ok {
		return id
	}
	return r.Lattice.RegisterConcrete(name, r.Any)
}
