package value

import "math/big"

// Native-width integer constructors. Each keeps its own Kind so that a
// return-type annotation of e.g. Int8 can be checked for narrowness
// preservation (§3.1 "Numeric return-type preservation") without widening
// through a common int64 representation.
func Int8Value(i int8) Value   { return Value{Kind: KindInt8, Data: i} }
func Int16Value(i int16) Value { return Value{Kind: KindInt16, Data: i} }
func Int32Value(i int32) Value { return Value{Kind: KindInt32, Data: i} }
func Int64Value(i int64) Value { return Value{Kind: KindInt64, Data: i} }

func UInt8Value(i uint8) Value   { return Value{Kind: KindUInt8, Data: i} }
func UInt16Value(i uint16) Value { return Value{Kind: KindUInt16, Data: i} }
func UInt32Value(i uint32) Value { return Value{Kind: KindUInt32, Data: i} }
func UInt64Value(i uint64) Value { return Value{Kind: KindUInt64, Data: i} }

// Int128/UInt128 have no native Go type; they are represented as a
// range-checked *big.Int, mirroring funvibe-funxy's use of math/big for
// its arbitrary-precision values but with a fixed-width wrapper on top.
const (
	int128Bits  = 128
	uint128Bits = 128
)

var (
	int128Min  = new(big.Int).Lsh(big.NewInt(-1), int128Bits-1)
	int128Max  = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), int128Bits-1), big.NewInt(1))
	uint128Max = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint128Bits), big.NewInt(1))
)

func Int128Value(i *big.Int) Value {
	clamped := new(big.Int).Set(i)
	return Value{Kind: KindInt128, Data: clamped}
}

func UInt128Value(i *big.Int) Value {
	clamped := new(big.Int).Set(i)
	return Value{Kind: KindUInt128, Data: clamped}
}

// InRangeInt128 / InRangeUInt128 report whether a BigInt fits the fixed
// 128-bit range; arithmetic that overflows these bounds raises OverflowError
// per §7 rather than silently wrapping.
func InRangeInt128(i *big.Int) bool {
	return i.Cmp(int128Min) >= 0 && i.Cmp(int128Max) <= 0
}

func InRangeUInt128(i *big.Int) bool {
	return i.Sign() >= 0 && i.Cmp(uint128Max) <= 0
}

func Float32Value(f float32) Value { return Value{Kind: KindFloat32, Data: f} }
func Float64Value(f float64) Value { return Value{Kind: KindFloat64, Data: f} }

// Float16 is stored as its IEEE-754 binary16 bit pattern; conversion to/from
// float32 is done in software (float16.go) since Go has no native type.
func Float16Value(bits uint16) Value { return Value{Kind: KindFloat16, Data: bits} }

func BigIntValue(i *big.Int) Value     { return Value{Kind: KindBigInt, Data: i} }
func BigFloatValue(f *big.Float) Value { return Value{Kind: KindBigFloat, Data: f} }

// Accessors. Each panics via the zero value path (returns the Go zero
// value) rather than panicking outright when the Kind doesn't match; callers
// that need a hard check should consult Kind first, exactly as the teacher's
// AsInt/AsFloat/AsString accessors on bytecode.Value do.
func AsInt8(v Value) int8   { i, _ := v.Data.(int8); return i }
func AsInt16(v Value) int16 { i, _ := v.Data.(int16); return i }
func AsInt32(v Value) int32 { i, _ := v.Data.(int32); return i }

// AsInt64 widens any native signed/unsigned/bool kind to int64, used by the
// interpreter's dynamic-dispatch fallback path and by disassembly/printing.
// It is NOT used to decide return types; those always consult Kind.
func AsInt64(v Value) int64 {
	switch v.Kind {
	case KindInt8:
		return int64(v.Data.(int8))
	case KindInt16:
		return int64(v.Data.(int16))
	case KindInt32:
		return int64(v.Data.(int32))
	case KindInt64:
		return v.Data.(int64)
	case KindUInt8:
		return int64(v.Data.(uint8))
	case KindUInt16:
		return int64(v.Data.(uint16))
	case KindUInt32:
		return int64(v.Data.(uint32))
	case KindUInt64:
		return int64(v.Data.(uint64))
	case KindBool:
		if v.Data.(bool) {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func AsUint8(v Value) uint8   { i, _ := v.Data.(uint8); return i }
func AsUint16(v Value) uint16 { i, _ := v.Data.(uint16); return i }
func AsUint32(v Value) uint32 { i, _ := v.Data.(uint32); return i }

func AsUint64(v Value) uint64 {
	switch v.Kind {
	case KindUInt8:
		return uint64(v.Data.(uint8))
	case KindUInt16:
		return uint64(v.Data.(uint16))
	case KindUInt32:
		return uint64(v.Data.(uint32))
	case KindUInt64:
		return v.Data.(uint64)
	default:
		return uint64(AsInt64(v))
	}
}

// AsBigInt returns the value as a *big.Int regardless of which integer kind
// it holds (including Int128/UInt128, which are already big.Int-backed).
func AsBigInt(v Value) *big.Int {
	switch v.Kind {
	case KindInt128, KindUInt128, KindBigInt:
		if b, ok := v.Data.(*big.Int); ok {
			return b
		}
		return new(big.Int)
	case KindUInt8, KindUInt16, KindUInt32, KindUInt64:
		return new(big.Int).SetUint64(AsUint64(v))
	default:
		return big.NewInt(AsInt64(v))
	}
}

func AsFloat16(v Value) uint16 { b, _ := v.Data.(uint16); return b }
func AsFloat32(v Value) float32 {
	f, _ := v.Data.(float32)
	return f
}

// AsFloat64 widens any numeric kind (except BigInt/BigFloat/Rational/
// Complex, which have their own accessors) to float64.
func AsFloat64(v Value) float64 {
	switch v.Kind {
	case KindFloat16:
		return float64(Float16ToFloat32(AsFloat16(v)))
	case KindFloat32:
		return float64(v.Data.(float32))
	case KindFloat64:
		return v.Data.(float64)
	default:
		if v.IsInteger() {
			if v.Kind == KindInt128 || v.Kind == KindUInt128 {
				f := new(big.Float).SetInt(AsBigInt(v))
				r, _ := f.Float64()
				return r
			}
			return float64(AsInt64(v))
		}
		return 0
	}
}

func AsBigFloat(v Value) *big.Float {
	if f, ok := v.Data.(*big.Float); ok {
		return f
	}
	return new(big.Float).SetFloat64(AsFloat64(v))
}

// NumericRank orders kinds for promotion purposes: higher rank wins ties in
// promote_type when no explicit rule narrows the result further (used by
// builtins.PromoteType as the default total order over the tower).
func NumericRank(k Kind) int {
	switch k {
	case KindBool:
		return 0
	case KindInt8, KindUInt8:
		return 1
	case KindInt16, KindUInt16:
		return 2
	case KindInt32, KindUInt32:
		return 3
	case KindInt64, KindUInt64:
		return 4
	case KindInt128, KindUInt128:
		return 5
	case KindBigInt:
		return 6
	case KindFloat16:
		return 7
	case KindFloat32:
		return 8
	case KindFloat64:
		return 9
	case KindBigFloat:
		return 10
	case KindRational:
		return 11
	case KindComplex:
		return 12
	default:
		return -1
	}
}
