package vm

import (
	"math"
	"math/big"

	"github.com/vela-lang/vela/internal/rterror"
	"github.com/vela-lang/vela/internal/value"
)

// convertReturn enforces a declared return annotation (§4.3): the result is
// converted to the annotated kind, and a narrow integer or Bool annotation
// keeps its declared width instead of widening to the machine word (§3.1's
// numeric return-type preservation). A value the annotation cannot
// represent exactly raises InexactError; a non-numeric mismatch raises
// TypeError.
func convertReturn(v value.Value, target value.Kind) (value.Value, error) {
	if v.Kind == target {
		return v, nil
	}

	switch target {
	case value.KindBool:
		if v.IsInteger() {
			switch n := value.AsInt64(v); n {
			case 0:
				return value.Bool(false), nil
			case 1:
				return value.Bool(true), nil
			}
			return value.Value{}, &rterror.InexactError{Target: "Bool", Value: v}
		}

	case value.KindInt8, value.KindInt16, value.KindInt32, value.KindInt64,
		value.KindUInt8, value.KindUInt16, value.KindUInt32, value.KindUInt64:
		if iv, ok := integralValueOf(v); ok {
			return narrowInt(iv, target, v)
		}

	case value.KindInt128:
		if bv, ok := bigIntegralValueOf(v); ok {
			if !value.InRangeInt128(bv) {
				return value.Value{}, &rterror.InexactError{Target: "Int128", Value: v}
			}
			return value.Int128Value(bv), nil
		}

	case value.KindUInt128:
		if bv, ok := bigIntegralValueOf(v); ok {
			if !value.InRangeUInt128(bv) {
				return value.Value{}, &rterror.InexactError{Target: "UInt128", Value: v}
			}
			return value.UInt128Value(bv), nil
		}

	case value.KindFloat64:
		if v.IsNumber() && v.Kind != value.KindComplex && v.Kind != value.KindRational {
			return value.Float64Value(value.AsFloat64(v)), nil
		}

	case value.KindFloat32:
		if v.IsNumber() && v.Kind != value.KindComplex && v.Kind != value.KindRational {
			return value.Float32Value(float32(value.AsFloat64(v))), nil
		}

	case value.KindBigInt:
		if bv, ok := bigIntegralValueOf(v); ok {
			return value.BigIntValue(bv), nil
		}
	}

	return value.Value{}, &rterror.TypeError{Context: "return", Expected: target.String(), Got: v}
}

// integralValueOf extracts an int64 from any fixed-width integer or an
// exactly-integral float; ok is false when v isn't integral or overflows.
func integralValueOf(v value.Value) (int64, bool) {
	switch {
	case v.Kind == value.KindBool:
		if value.AsBool(v) {
			return 1, true
		}
		return 0, true
	case v.IsInteger() && v.Kind != value.KindInt128 && v.Kind != value.KindUInt128 && v.Kind != value.KindBigInt:
		return value.AsInt64(v), true
	case v.Kind == value.KindBigInt, v.Kind == value.KindInt128, v.Kind == value.KindUInt128:
		b := value.AsBigInt(v)
		if b.IsInt64() {
			return b.Int64(), true
		}
		return 0, false
	case v.Kind == value.KindFloat64 || v.Kind == value.KindFloat32:
		f := value.AsFloat64(v)
		if f == math.Trunc(f) && f >= math.MinInt64 && f <= math.MaxInt64 {
			return int64(f), true
		}
		return 0, false
	}
	return 0, false
}

func bigIntegralValueOf(v value.Value) (*big.Int, bool) {
	if v.IsInteger() {
		return value.AsBigInt(v), true
	}
	if iv, ok := integralValueOf(v); ok {
		return big.NewInt(iv), true
	}
	return nil, false
}

func narrowInt(n int64, target value.Kind, orig value.Value) (value.Value, error) {
	switch target {
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
	case value.KindInt64:
		return value.Int64Value(n), nil
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
	return value.Value{}, &rterror.InexactError{Target: target.String(), Value: orig}
}
