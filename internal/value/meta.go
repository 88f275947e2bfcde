package value

import "github.com/vela-lang/vela/internal/typelattice"

// DataType is the runtime descriptor for a concrete/abstract/parametric
// type node: `typeof(x)` and type literals like `Int64` both produce one of
// these. TypeID indexes into the TypeLattice that created it.
type DataType struct {
	TypeID typelattice.ID
}

func DataTypeValue(id typelattice.ID) Value {
	return Value{Kind: KindDataType, Data: DataType{TypeID: id}}
}

func AsDataType(v Value) DataType { d, _ := v.Data.(DataType); return d }

// UnionAllValue is the runtime descriptor for a `X where T<:U` type, as
// produced by parametric type declarations.
type UnionAllDescriptor struct {
	TypeID typelattice.ID
}

func UnionAllValue(id typelattice.ID) Value {
	return Value{Kind: KindUnionAll, Data: UnionAllDescriptor{TypeID: id}}
}

func AsUnionAll(v Value) UnionAllDescriptor { d, _ := v.Data.(UnionAllDescriptor); return d }

// FunctionIdentity names a generic function by its process-wide namespace
// symbol; the method table (internal/dispatch) is keyed by this identity,
// not by the Value itself, so two FunctionIdentity values with the same
// Name always resolve to the same method list.
type FunctionIdentity struct {
	Name string
}

func FunctionValue(name string) Value {
	return Value{Kind: KindFunction, Data: FunctionIdentity{Name: name}}
}

func AsFunctionIdentity(v Value) FunctionIdentity { f, _ := v.Data.(FunctionIdentity); return f }

// MethodIdentity names one registered (signature, body) pair belonging to a
// generic function, used by introspection (`methods(f)`) and by
// AmbiguityError to name the competing candidates.
type MethodIdentity struct {
	FunctionName string
	ParamTypes   []typelattice.ID
}

func MethodValue(m MethodIdentity) Value {
	return Value{Kind: KindMethod, Data: m}
}

func AsMethodIdentity(v Value) MethodIdentity { m, _ := v.Data.(MethodIdentity); return m }

// GenericFunctionIdentity is the Value handed to user code when it
// references a generic function by name as a first-class value (not
// calling it). Per the §9 open question, `isa(f, Function)` reproduces the
// source's documented quirk of answering false for callables implemented as
// GenericFunction — see dispatch package doc comment for the decision.
type GenericFunctionIdentity struct {
	Name string
}

func GenericFunctionValue(name string) Value {
	return Value{Kind: KindGenericFunction, Data: GenericFunctionIdentity{Name: name}}
}

func AsGenericFunctionIdentity(v Value) GenericFunctionIdentity {
	g, _ := v.Data.(GenericFunctionIdentity)
	return g
}

// Expr is quoted-AST-as-data: `head` names the syntactic form (:call,
// :block, ...) and `args` holds its children, themselves Values (nested
// Expr/QuoteNode/literals). Macros operate purely on this representation.
type Expr struct {
	Head *Symbol
	Args []Value
}

func ExprValue(head *Symbol, args ...Value) Value {
	return Value{Kind: KindExpr, Data: Expr{Head: head, Args: args}}
}

func AsExpr(v Value) Expr { e, _ := v.Data.(Expr); return e }

// QuoteNode wraps a single literal value inside quoted code, preventing it
// from being spliced/evaluated further (the difference between `:(1+1)`,
// an Expr that still evaluates its children, and `QuoteNode(:x)`, which
// freezes `x` as a literal symbol rather than a variable reference).
type QuoteNode struct {
	Value Value
}

func QuoteNodeValue(inner Value) Value {
	return Value{Kind: KindQuoteNode, Data: QuoteNode{Value: inner}}
}

func AsQuoteNode(v Value) QuoteNode { q, _ := v.Data.(QuoteNode); return q }
