package builtins

import (
	"math"
	"math/big"

	"github.com/vela-lang/vela/internal/dispatch"
	"github.com/vela-lang/vela/internal/rterror"
	"github.com/vela-lang/vela/internal/typelattice"
	"github.com/vela-lang/vela/internal/value"
	"github.com/vela-lang/vela/internal/vm"
)

// RegisterIntrospection wires `typeof, isa, <:, nfields, fieldnames,
// fieldtypes, zero, one, oneunit, eps, typemin, typemax, error, precision,
// rounding, setprecision, setrounding`. `isa`/`<:` take their second
// argument as a DataType value (the result of a type literal) rather than
// as a lattice.ID directly, since the operand actually reaching a Native
// builtin is always a Value. cfg is the live BigFloat precision/rounding
// state precision/rounding read and setprecision/setrounding write.
func RegisterIntrospection(mt *dispatch.MethodTable, r *typelattice.Registry, cfg *vm.Config) {
	method(mt, "typeof", []typelattice.ID{r.Any}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.DataTypeValue(value.TypeOf(r, a[0])), nil
	})

	method(mt, "isa", []typelattice.ID{r.Any, r.DataType}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		target := value.AsDataType(a[1]).TypeID
		return value.Bool(r.Lattice.IsSubtype(value.TypeOf(r, a[0]), target)), nil
	})

	method(mt, "<:", []typelattice.ID{r.DataType, r.DataType}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		x, y := value.AsDataType(a[0]).TypeID, value.AsDataType(a[1]).TypeID
		return value.Bool(r.Lattice.IsSubtype(x, y)), nil
	})

	// nfields/fieldnames/fieldtypes accept either an instance or a DataType
	// literal, resolving to the same lattice node either way, since a user
	// writing `fieldnames(Circle)` and one writing `fieldnames(c)` (c::Circle)
	// both mean "describe this struct's shape".
	method(mt, "nfields", []typelattice.ID{r.Any}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		t := r.Lattice.Get(fieldTypeID(r, a[0]))
		return value.Int64Value(int64(len(t.Fields))), nil
	})
	method(mt, "fieldnames", []typelattice.ID{r.Any}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		t := r.Lattice.Get(fieldTypeID(r, a[0]))
		elems := make([]value.Value, len(t.Fields))
		for i, f := range t.Fields {
			elems[i] = value.SymbolValue(f)
		}
		return value.TupleValue(elems...), nil
	})
	method(mt, "fieldtypes", []typelattice.ID{r.Any}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		t := r.Lattice.Get(fieldTypeID(r, a[0]))
		elems := make([]value.Value, len(t.FieldTypes))
		for i, ft := range t.FieldTypes {
			elems[i] = value.DataTypeValue(ft)
		}
		return value.TupleValue(elems...), nil
	})

	method(mt, "zero", []typelattice.ID{r.Int64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Int64Value(0), nil
	})
	method(mt, "zero", []typelattice.ID{r.Float64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Float64Value(0), nil
	})
	method(mt, "one", []typelattice.ID{r.Int64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Int64Value(1), nil
	})
	method(mt, "one", []typelattice.ID{r.Float64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Float64Value(1), nil
	})

	// oneunit(x) is one(x) taken from a value rather than a type literal;
	// with no units system here it's otherwise identical to `one`.
	method(mt, "oneunit", []typelattice.ID{r.Int64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Int64Value(1), nil
	})
	method(mt, "oneunit", []typelattice.ID{r.Float64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Float64Value(1), nil
	})

	method(mt, "eps", []typelattice.ID{r.Float64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Float64Value(math.Nextafter(1, 2) - 1), nil
	})
	method(mt, "eps", []typelattice.ID{r.Float32}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Float32Value(math.Nextafter32(1, 2) - 1), nil
	})

	method(mt, "error", []typelattice.ID{r.String}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.ExceptionValue(&rterror.ErrorException{Message: value.AsString(a[0])}), nil
	})

	method(mt, "typemin", []typelattice.ID{r.DataType}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return typeWidthBound(r, value.AsDataType(a[0]).TypeID, false)
	})
	method(mt, "typemax", []typelattice.ID{r.DataType}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return typeWidthBound(r, value.AsDataType(a[0]).TypeID, true)
	})

	method(mt, "precision", []typelattice.ID{r.DataType}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Int64Value(int64(cfg.BigFloatPrecision)), nil
	})
	method(mt, "rounding", []typelattice.ID{r.DataType}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		name, ok := roundingNames[cfg.BigFloatRounding]
		if !ok {
			name = "nearest"
		}
		return value.SymbolValue(name), nil
	})
	method(mt, "setprecision", []typelattice.ID{r.DataType, r.Int64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		prec := value.AsInt64(a[1])
		if prec < 0 {
			return value.Value{}, &rterror.DomainError{Value: a[1], Message: "precision must be non-negative"}
		}
		cfg.BigFloatPrecision = uint(prec)
		return value.Nothing(), nil
	})
	method(mt, "setrounding", []typelattice.ID{r.DataType, r.Symbol}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		name := value.AsSymbol(a[1]).String()
		mode, ok := roundingModes[name]
		if !ok {
			return value.Value{}, &rterror.DomainError{Value: a[1], Message: "unknown rounding mode " + name}
		}
		cfg.BigFloatRounding = mode
		return value.Nothing(), nil
	})
}

// fieldTypeID resolves v (either a DataType literal or an instance) to the
// lattice ID whose Fields/FieldTypes describe it.
func fieldTypeID(r *typelattice.Registry, v value.Value) typelattice.ID {
	if v.Kind == value.KindDataType {
		return value.AsDataType(v).TypeID
	}
	return value.TypeOf(r, v)
}

var roundingNames = map[big.RoundingMode]string{
	big.ToNearestEven: "nearest",
	big.ToNearestAway: "nearest_away",
	big.ToZero:        "toward_zero",
	big.AwayFromZero:  "away_from_zero",
	big.ToNegativeInf: "down",
	big.ToPositiveInf: "up",
}

var roundingModes = map[string]big.RoundingMode{
	"nearest":        big.ToNearestEven,
	"nearest_away":   big.ToNearestAway,
	"toward_zero":    big.ToZero,
	"away_from_zero": big.AwayFromZero,
	"down":           big.ToNegativeInf,
	"up":             big.ToPositiveInf,
}

// typeWidthBound answers typemin/typemax for every fixed-width numeric kind
// in the tower; anything without a bounded representation (String, a user
// struct, ...) raises rather than silently handing back a Nothing a caller
// could mistake for a real (if useless) answer.
func typeWidthBound(r *typelattice.Registry, id typelattice.ID, max bool) (value.Value, error) {
	switch id {
	case r.Int8:
		if max {
			return value.Int8Value(127), nil
		}
		return value.Int8Value(-128), nil
	case r.Int16:
		if max {
			return value.Int16Value(32767), nil
		}
		return value.Int16Value(-32768), nil
	case r.Int32:
		if max {
			return value.Int32Value(2147483647), nil
		}
		return value.Int32Value(-2147483648), nil
	case r.Int64:
		if max {
			return value.Int64Value(9223372036854775807), nil
		}
		return value.Int64Value(-9223372036854775808), nil
	case r.Int128:
		if max {
			return value.Int128Value(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))), nil
		}
		return value.Int128Value(new(big.Int).Lsh(big.NewInt(-1), 127)), nil
	case r.UInt8:
		if max {
			return value.UInt8Value(255), nil
		}
		return value.UInt8Value(0), nil
	case r.UInt16:
		if max {
			return value.UInt16Value(65535), nil
		}
		return value.UInt16Value(0), nil
	case r.UInt32:
		if max {
			return value.UInt32Value(4294967295), nil
		}
		return value.UInt32Value(0), nil
	case r.UInt64:
		if max {
			return value.UInt64Value(18446744073709551615), nil
		}
		return value.UInt64Value(0), nil
	case r.UInt128:
		if max {
			return value.UInt128Value(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))), nil
		}
		return value.UInt128Value(big.NewInt(0)), nil
	case r.Float32:
		if max {
			return value.Float32Value(float32(math.Inf(1))), nil
		}
		return value.Float32Value(float32(math.Inf(-1))), nil
	case r.Float64:
		if max {
			return value.Float64Value(math.Inf(1)), nil
		}
		return value.Float64Value(math.Inf(-1)), nil
	default:
		return value.Value{}, &rterror.DomainError{Message: "typemin/typemax: " + formatTypeName(r, id) + " has no fixed-width bound"}
	}
}

func formatTypeName(r *typelattice.Registry, id typelattice.ID) string {
	return r.Lattice.Name(id)
}
