// Package value implements the tagged Value union that every instruction in
// the VM operates on (§3.1). A Value is a small struct carrying a Kind tag
// and an untyped payload, following the same shape the teacher's bytecode
// package uses (`Value{Data interface{}, Type ValueType}`) but with the
// much larger variant set this runtime's numeric tower and container model
// need.
package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind tags which variant a Value currently holds.
type Kind byte

const (
	KindNothing Kind = iota
	KindMissing
	KindBool
	KindChar

	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindInt128
	KindUInt8
	KindUInt16
	KindUInt32
	KindUInt64
	KindUInt128

	KindFloat16
	KindFloat32
	KindFloat64

	KindBigInt
	KindBigFloat
	KindRational
	KindComplex

	KindString
	KindSymbol

	KindTuple
	KindNamedTuple
	KindArray
	KindMemory
	KindSet
	KindPair
	KindPairs

	KindRegex
	KindVersionNumber
	KindHTML
	KindText
	KindMIME
	KindSome

	KindDataType
	KindUnionAll

	KindFunction
	KindMethod
	KindGenericFunction
	KindClosure

	KindExpr
	KindQuoteNode

	KindException

	KindGenerator
	KindRange
	KindIterator
)

var kindNames = [...]string{
	KindNothing: "Nothing", KindMissing: "Missing", KindBool: "Bool", KindChar: "Char",
	KindInt8: "Int8", KindInt16: "Int16", KindInt32: "Int32", KindInt64: "Int64", KindInt128: "Int128",
	KindUInt8: "UInt8", KindUInt16: "UInt16", KindUInt32: "UInt32", KindUInt64: "UInt64", KindUInt128: "UInt128",
	KindFloat16: "Float16", KindFloat32: "Float32", KindFloat64: "Float64",
	KindBigInt: "BigInt", KindBigFloat: "BigFloat", KindRational: "Rational", KindComplex: "Complex",
	KindString: "String", KindSymbol: "Symbol",
	KindTuple: "Tuple", KindNamedTuple: "NamedTuple", KindArray: "Array", KindMemory: "Memory",
	KindSet: "Set", KindPair: "Pair", KindPairs: "Pairs",
	KindRegex: "Regex", KindVersionNumber: "VersionNumber", KindHTML: "HTML", KindText: "Text",
	KindMIME: "MIME", KindSome: "Some",
	KindDataType: "DataType", KindUnionAll: "UnionAll",
	KindFunction: "Function", KindMethod: "Method", KindGenericFunction: "GenericFunction",
	KindClosure: "Function",
	KindExpr:    "Expr", KindQuoteNode: "QuoteNode",
	KindException: "Exception",
	KindGenerator: "Generator", KindRange: "UnitRange", KindIterator: "Iterator",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Value is a tagged runtime datum. Like the teacher's bytecode.Value, it
// carries its payload in an untyped field rather than as a Go interface
// hierarchy, so that copying a Value (pushing/popping the VM stack) never
// allocates beyond what the payload itself requires.
type Value struct {
	Data any
	Kind Kind
}

// IsNothing reports whether v is the Nothing singleton.
func (v Value) IsNothing() bool { return v.Kind == KindNothing }

// IsMissing reports whether v is the Missing singleton.
func (v Value) IsMissing() bool { return v.Kind == KindMissing }

// IsNumber reports whether v's kind belongs to the numeric tower (§3.2's
// Number subtree: Complex, Real==AbstractFloat|Rational|Integer).
func (v Value) IsNumber() bool {
	switch v.Kind {
	case KindBool, KindInt8, KindInt16, KindInt32, KindInt64, KindInt128,
		KindUInt8, KindUInt16, KindUInt32, KindUInt64, KindUInt128,
		KindFloat16, KindFloat32, KindFloat64,
		KindBigInt, KindBigFloat, KindRational, KindComplex:
		return true
	default:
		return false
	}
}

// IsInteger reports whether v's kind belongs to the Integer subtree
// (Signed, Unsigned, Bool, BigInt).
func (v Value) IsInteger() bool {
	switch v.Kind {
	case KindBool, KindInt8, KindInt16, KindInt32, KindInt64, KindInt128,
		KindUInt8, KindUInt16, KindUInt32, KindUInt64, KindUInt128, KindBigInt:
		return true
	default:
		return false
	}
}

// IsFloat reports whether v's kind is in AbstractFloat (including BigFloat).
func (v Value) IsFloat() bool {
	switch v.Kind {
	case KindFloat16, KindFloat32, KindFloat64, KindBigFloat:
		return true
	default:
		return false
	}
}

// Singletons. Nothing and Missing are distinct per §3.1.
func Nothing() Value { return Value{Kind: KindNothing} }
func Missing() Value { return Value{Kind: KindMissing} }

func Bool(b bool) Value     { return Value{Kind: KindBool, Data: b} }
func Char(c rune) Value     { return Value{Kind: KindChar, Data: c} }
func String(s string) Value { return Value{Kind: KindString, Data: s} }

func AsBool(v Value) bool { b, _ := v.Data.(bool); return b }
func AsChar(v Value) rune { c, _ := v.Data.(rune); return c }
func AsString(v Value) string {
	s, _ := v.Data.(string)
	return s
}

// Symbol is an interned identifier. Two Values holding the same name always
// compare == under Go's interface equality because the interning table
// hands back the same underlying *Symbol pointer.
type Symbol struct {
	name string
}

func (s *Symbol) String() string { return s.name }

var symbolTable = struct {
	m map[string]*Symbol
}{m: make(map[string]*Symbol)}

// Intern returns the canonical Symbol for name, creating it on first use.
func Intern(name string) *Symbol {
	if s, ok := symbolTable.m[name]; ok {
		return s
	}
	s := &Symbol{name: name}
	symbolTable.m[name] = s
	return s
}

func SymbolValue(name string) Value { return Value{Kind: KindSymbol, Data: Intern(name)} }

func AsSymbol(v Value) *Symbol {
	s, _ := v.Data.(*Symbol)
	return s
}

// Identical reports whether two constants are the same literal, for the
// chunk-level constant pool's deduplication. Only the scalar kinds a
// literal can directly produce are compared; anything else (containers,
// closures) is never deduplicated since two constructions are never the
// same constant slot.
func Identical(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNothing, KindMissing:
		return true
	case KindBool:
		return AsBool(a) == AsBool(b)
	case KindChar:
		return AsChar(a) == AsChar(b)
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return AsInt64(a) == AsInt64(b)
	case KindUInt8, KindUInt16, KindUInt32, KindUInt64:
		return AsUint64(a) == AsUint64(b)
	case KindInt128, KindUInt128:
		return AsBigInt(a).Cmp(AsBigInt(b)) == 0
	case KindFloat32:
		return AsFloat32(a) == AsFloat32(b)
	case KindFloat64:
		return AsFloat64(a) == AsFloat64(b)
	case KindBigInt:
		return AsBigInt(a).Cmp(AsBigInt(b)) == 0
	case KindString:
		return AsString(a) == AsString(b)
	case KindSymbol:
		return AsSymbol(a) == AsSymbol(b)
	case KindDataType:
		return AsDataType(a).TypeID == AsDataType(b).TypeID
	default:
		return false
	}
}

// String renders v the way a REPL would print a scalar, for error messages,
// disassembly, and the `string`/`repr` builtins' scalar fallback path.
func (v Value) String() string {
	switch v.Kind {
	case KindNothing:
		return "nothing"
	case KindMissing:
		return "missing"
	case KindBool:
		if AsBool(v) {
			return "true"
		}
		return "false"
	case KindChar:
		return "'" + string(AsChar(v)) + "'"
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return strconv.FormatInt(AsInt64(v), 10)
	case KindInt128:
		return AsBigInt(v).String()
	case KindUInt8, KindUInt16, KindUInt32, KindUInt64:
		return strconv.FormatUint(AsUint64(v), 10)
	case KindUInt128:
		return AsBigInt(v).String()
	case KindFloat16:
		return strconv.FormatFloat(float64(Float16ToFloat32(AsFloat16(v))), 'g', -1, 32)
	case KindFloat32:
		return strconv.FormatFloat(float64(AsFloat32(v)), 'g', -1, 32)
	case KindFloat64:
		return strconv.FormatFloat(AsFloat64(v), 'g', -1, 64)
	case KindBigInt:
		return AsBigInt(v).String()
	case KindBigFloat:
		return AsBigFloat(v).Text('g', -1)
	case KindRational:
		r := AsRational(v)
		return r.Num.String() + "//" + r.Den.String()
	case KindComplex:
		c := AsComplex(v)
		im := c.Im.String()
		if !strings.HasPrefix(im, "-") {
			im = "+" + im
		}
		return c.Re.String() + im + "im"
	case KindString:
		return AsString(v)
	case KindSymbol:
		return ":" + AsSymbol(v).String()
	default:
		return fmt.Sprintf("#<%s>", v.Kind)
	}
}
