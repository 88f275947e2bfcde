package builtins

import (
	"math"
	"math/big"
	"strconv"

	"github.com/vela-lang/vela/internal/dispatch"
	"github.com/vela-lang/vela/internal/rterror"
	"github.com/vela-lang/vela/internal/typelattice"
	"github.com/vela-lang/vela/internal/value"
)

// RegisterConversion wires `convert, promote_type, parse, tryparse,
// string`. Numeric widening casts (`Float64(x)`, `Int64(x)`) are ordinary
// single-argument generic functions named after the target type, not a
// distinct opcode, so they're registered the same way any other builtin is.
func RegisterConversion(mt *dispatch.MethodTable, r *typelattice.Registry, promotions *dispatch.PromotionTable) {
	method(mt, "convert", []typelattice.ID{r.DataType, r.Int64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return convertNumeric(r, value.AsDataType(a[0]).TypeID, a[1])
	})
	method(mt, "convert", []typelattice.ID{r.DataType, r.Float64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return convertNumeric(r, value.AsDataType(a[0]).TypeID, a[1])
	})

	method(mt, "Float64", []typelattice.ID{r.Int64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Float64Value(float64(value.AsInt64(a[0]))), nil
	})
	method(mt, "Int64", []typelattice.ID{r.Float64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		f := value.AsFloat64(a[0])
		if f != math.Trunc(f) {
			return value.Value{}, &rterror.InexactError{Target: "Int64", Value: a[0]}
		}
		return value.Int64Value(int64(f)), nil
	})

	method(mt, "string", []typelattice.ID{r.Any}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.String(value.Display(a[0])), nil
	})

	// promote_type(A,B) tries both orders via the symmetric PromotionTable
	// (§4.2); a pair with no registered rule widens to Any rather than
	// signalling an error here.
	method(mt, "promote_type", []typelattice.ID{r.DataType, r.DataType}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		ta, tb := value.AsDataType(a[0]).TypeID, value.AsDataType(a[1]).TypeID
		if result, ok := promotions.Rule(ta, tb); ok {
			return value.DataTypeValue(result), nil
		}
		return value.DataTypeValue(r.Any), nil
	})

	// Width casts: one constructor per fixed-width integer type plus the
	// float widths, so annotated-return tests and explicit narrowing both
	// have a callable spelling (`Int8(200)` raises InexactError, not a
	// silent wrap).
	for name, kind := range map[string]value.Kind{
		"Int8": value.KindInt8, "Int16": value.KindInt16, "Int32": value.KindInt32,
		"UInt8": value.KindUInt8, "UInt16": value.KindUInt16, "UInt32": value.KindUInt32,
		"UInt64": value.KindUInt64,
	} {
		kind := kind
		castName := name
		castFn := func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
			return narrowCast(value.AsInt64(a[0]), kind, castName, a[0])
		}
		method(mt, name, []typelattice.ID{r.Int64}, false, castFn)
		method(mt, name, []typelattice.ID{r.Bool}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
			n := int64(0)
			if value.AsBool(a[0]) {
				n = 1
			}
			return narrowCast(n, kind, castName, a[0])
		})
	}
	method(mt, "Int128", []typelattice.ID{r.Int64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Int128Value(big.NewInt(value.AsInt64(a[0]))), nil
	})
	method(mt, "UInt128", []typelattice.ID{r.Int64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		n := value.AsInt64(a[0])
		if n < 0 {
			return value.Value{}, &rterror.InexactError{Target: "UInt128", Value: a[0]}
		}
		return value.UInt128Value(big.NewInt(n)), nil
	})
	method(mt, "Float32", []typelattice.ID{r.Int64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Float32Value(float32(value.AsInt64(a[0]))), nil
	})
	method(mt, "Float32", []typelattice.ID{r.Float64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Float32Value(float32(value.AsFloat64(a[0]))), nil
	})
	method(mt, "Bool", []typelattice.ID{r.Int64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		switch value.AsInt64(a[0]) {
		case 0:
			return value.Bool(false), nil
		case 1:
			return value.Bool(true), nil
		}
		return value.Value{}, &rterror.InexactError{Target: "Bool", Value: a[0]}
	})
	method(mt, "Float64", []typelattice.ID{r.Float64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return a[0], nil
	})
	method(mt, "Int64", []typelattice.ID{r.Int64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return a[0], nil
	})
	method(mt, "Float64", []typelattice.ID{r.Rational}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Float64Value(value.AsRational(a[0]).Float64()), nil
	})
	method(mt, "Float64", []typelattice.ID{r.BigInt}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		f, _ := new(big.Float).SetInt(value.AsBigInt(a[0])).Float64()
		return value.Float64Value(f), nil
	})

	// big(x) lifts a machine number into the arbitrary-precision tower,
	// the callable spelling of the `big"…"` literal.
	method(mt, "big", []typelattice.ID{r.Int64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.BigIntValue(big.NewInt(value.AsInt64(a[0]))), nil
	})
	method(mt, "big", []typelattice.ID{r.Float64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.BigFloatValue(new(big.Float).SetFloat64(value.AsFloat64(a[0]))), nil
	})

	method(mt, "parse", []typelattice.ID{r.DataType, r.String}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return parseNumeric(r, value.AsDataType(a[0]).TypeID, value.AsString(a[1]))
	})
	method(mt, "tryparse", []typelattice.ID{r.DataType, r.String}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		v, err := parseNumeric(r, value.AsDataType(a[0]).TypeID, value.AsString(a[1]))
		if err != nil {
			return value.Nothing(), nil
		}
		return value.SomeValue(v), nil
	})
}

func convertNumeric(r *typelattice.Registry, target typelattice.ID, v value.Value) (value.Value, error) {
	switch target {
	case r.Float64:
		return value.Float64Value(value.AsFloat64(v)), nil
	case r.Int64:
		return value.Int64Value(value.AsInt64(v)), nil
	default:
		return value.Value{}, &rterror.TypeError{Context: "convert", Expected: r.Lattice.Name(target), Got: v}
	}
}

func parseNumeric(r *typelattice.Registry, target typelattice.ID, s string) (value.Value, error) {
	switch target {
	case r.Int64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return value.Value{}, &rterror.ArgumentError{Message: "invalid Int64 literal: " + s}
		}
		return value.Int64Value(n), nil
	case r.Float64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return value.Value{}, &rterror.ArgumentError{Message: "invalid Float64 literal: " + s}
		}
		return value.Float64Value(f), nil
	default:
		return value.Value{}, &rterror.TypeError{Context: "parse", Expected: r.Lattice.Name(target), Got: value.String(s)}
	}
}

// narrowCast retags n at the requested width, range-checked; out-of-range
// raises InexactError the way convert does.
func narrowCast(n int64, kind value.Kind, name string, orig value.Value) (value.Value, error) {
	switch kind {
	case value.KindInt8:
		if n >= math.MinInt8 && n <= math.MaxInt8 {
			return value.Int8Value(int8(n)), nil
		}
	case value.KindInt16:
		if n >= math.MinInt16 && n <= math.MaxInt16 {
			return value.Int16Value(int16(n)), nil
		}
	case value.KindInt32:
		if n >= math.MinInt32 && n <= math.MaxInt32 {
			return value.Int32Value(int32(n)), nil
		}
	case value.KindUInt8:
		if n >= 0 && n <= math.MaxUint8 {
			return value.UInt8Value(uint8(n)), nil
		}
	case value.KindUInt16:
		if n >= 0 && n <= math.MaxUint16 {
			return value.UInt16Value(uint16(n)), nil
		}
	case value.KindUInt32:
		if n >= 0 && n <= math.MaxUint32 {
			return value.UInt32Value(uint32(n)), nil
		}
	case value.KindUInt64:
		if n >= 0 {
			return value.UInt64Value(uint64(n)), nil
		}
	}
	return value.Value{}, &rterror.InexactError{Target: name, Value: orig}
}
