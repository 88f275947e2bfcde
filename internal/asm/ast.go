package asm

// Program is the parsed form of one source unit: zero or more function
// definitions (each becomes a dispatch.Method), struct/abstract type
// declarations, plus a sequence of top-level statements that become the
// program's entry chunk, the way `pkg.LoadProgram` hands the VM something
// runnable as a whole.
type Program struct {
	Funcs     []*FuncDecl
	Structs   []*StructDecl
	Abstracts []*AbstractDecl
	Main      []Stmt
}

// StructField is one `name[::Type][= default]` entry in a struct
// declaration; Default is only legal under @kwdef, which turns it into the
// generated keyword constructor's default expression.
type StructField struct {
	Name    string
	Type    string // "" means unannotated (Any)
	Default Expr   // nil means no default
}

// StructDecl models `struct Name [:: Parent] { field[::Type], ... }`,
// registered into the type lattice as a concrete DataType carrying field
// names/types (typelattice.RegisterStruct) before any function body compiles,
// so constructor calls and field access can resolve against it.
type StructDecl struct {
	Name   string
	Parent string // "" means Any
	Fields []StructField
	// KwDef marks `@kwdef struct`: the expander generates a keyword
	// constructor from the field defaults.
	KwDef bool
	Line  int
}

// AbstractDecl models `abstract Name [:: Parent];`, a lattice node usable
// only as a dispatch bound, never instantiated directly.
type AbstractDecl struct {
	Name   string
	Parent string // "" means Any
	Line   int
}

// Param is one function parameter, optionally annotated with a registered
// type name (`x::Int64`); an unannotated parameter dispatches as Any.
type Param struct {
	Name string
	Type string // "" means unannotated (Any)
}

// KwParam is one declared keyword parameter `name = default` after the
// `;` in a parameter list.
type KwParam struct {
	Name    string
	Default Expr
}

// TypeVarDecl is one `where`-clause variable with an optional upper bound:
// `where T` or `where T <: Number`.
type TypeVarDecl struct {
	Name  string
	Bound string // "" means Any
}

type FuncDecl struct {
	Name        string
	Params      []Param
	KwParams    []KwParam
	KwCollector string // `rest...` after the keyword params; "" if none
	ReturnType  string // `func f(x)::Int8`; "" if unannotated
	TypeVars    []TypeVarDecl
	Body        []Stmt
	Line        int
}

// Stmt is one statement node. The sealed set below covers exactly what
// SPEC_FULL.md's end-to-end scenarios need: binding, assignment, branching,
// loops, returns, exceptions.
type Stmt interface{ stmtNode() }

type LetStmt struct {
	Name  string
	Value Expr
	Line  int
}

type GlobalStmt struct {
	Name  string
	Value Expr
	Line  int
}

type AssignStmt struct {
	Name  string
	Value Expr
	Line  int
}

type ExprStmt struct {
	Value Expr
	Line  int
}

type ReturnStmt struct {
	Value Expr // nil means `return` with no expression (yields Nothing)
	Line  int
}

type IfStmt struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
	Line int
}

type WhileStmt struct {
	Cond Expr
	Body []Stmt
	Line int
}

// TryStmt models `try { } catch name[::Type] { } [finally { }]`. A typed
// catch narrows by subtype: the compiled handler tests the caught value
// with IsA and rethrows anything that doesn't match.
type TryStmt struct {
	Body        []Stmt
	CatchName   string
	CatchType   string
	CatchBody   []Stmt
	FinallyBody []Stmt
	Line        int
}

type ThrowStmt struct {
	Value Expr
	Line  int
}

// ForStmt models `for v in iterable { ... }`, compiling to the same
// IterInit/IterNext loop shape a generator expression uses.
type ForStmt struct {
	Var      string
	Iterable Expr
	Body     []Stmt
	Line     int
}

// SetFieldStmt models `object.field = value;`, recognized in parseStmt's
// expression-statement branch when the parsed expression is a FieldExpr
// followed by `=`.
type SetFieldStmt struct {
	Object Expr
	Field  string
	Value  Expr
	Line   int
}

func (*LetStmt) stmtNode()      {}
func (*LetBlockStmt) stmtNode() {}
func (*GlobalStmt) stmtNode()   {}
func (*AssignStmt) stmtNode()   {}
func (*ExprStmt) stmtNode()     {}
func (*ReturnStmt) stmtNode()   {}
func (*IfStmt) stmtNode()       {}
func (*WhileStmt) stmtNode()    {}
func (*TryStmt) stmtNode()      {}
func (*ThrowStmt) stmtNode()    {}
func (*ForStmt) stmtNode()      {}
func (*SetFieldStmt) stmtNode() {}
func (*SetIndexStmt) stmtNode() {}

// Expr is one expression node.
type Expr interface{ exprNode() }

type IntLit struct{ Value int64 }
type FloatLit struct{ Value float64 }
type StringLit struct{ Value string }
type BoolLit struct{ Value bool }
type NothingLit struct{}

type Ident struct{ Name string }

type BinaryExpr struct {
	Op          string
	Left, Right Expr
}

type UnaryExpr struct {
	Op      string
	Operand Expr
}

// KwArg is one `name = value` keyword argument at a call site.
type KwArg struct {
	Name  string
	Value Expr
}

type CallExpr struct {
	Callee string
	Args   []Expr
	Kw     []KwArg
	// Broadcast marks `f.(args...)`: elementwise application over the
	// container arguments with scalars held fixed.
	Broadcast bool
	// Do carries the trailing `do p... { body }` block, desugared by the
	// compiler into a leading anonymous-function argument (§4.3).
	Do *LambdaExpr
}

// LambdaExpr is `(p...) -> expr` or a do-block body; Body is a statement
// list whose trailing expression statement provides the return value.
type LambdaExpr struct {
	Params []string
	Body   []Stmt
	Line   int
}

// BlockExpr runs Stmts in the enclosing scope and yields Value — the
// `begin { ... }` expression form and the shape macro expansions build.
type BlockExpr struct {
	Stmts []Stmt
	Value Expr
}

// LetBlockStmt is the scoped `let x = init { body }` form: the binding is
// visible only inside Body (§4.3 "let introduces fresh bindings visible
// only in its body").
type LetBlockStmt struct {
	Name  string
	Value Expr
	Body  []Stmt
	Line  int
}

// ArrayLit is `[e1, e2, ...]`, compiling to OpNewArray with the element
// kind promoted across the evaluated elements.
type ArrayLit struct{ Elems []Expr }

// IndexExpr is `target[index]`, also the left-hand shape SetIndexStmt
// recognizes when followed by `=`.
type IndexExpr struct {
	Target Expr
	Index  Expr
}

// SetIndexStmt models `target[index] = value;`.
type SetIndexStmt struct {
	Target Expr
	Index  Expr
	Value  Expr
	Line   int
}

// SymbolLit is `:name`.
type SymbolLit struct{ Name string }

// MissingLit is the `missing` singleton.
type MissingLit struct{}

// Float32Lit is a `1f0`-form literal.
type Float32Lit struct{ Value float64 }

// ImagLit is `2im`/`2.5im`; exactly one of Int/Float is meaningful,
// selected by IsFloat.
type ImagLit struct {
	Int     int64
	Float   float64
	IsFloat bool
}

// PrefixStringLit is `pfx"body"`. The compiler materializes big/b/v/r
// bodies as constants at lowering time and lowers every other prefix to a
// dispatched `pfx_str(body)` call (§6).
type PrefixStringLit struct {
	Prefix string
	Body   string
	Line   int
}

// MacroCall is `@name args...`, replaced by the expander before lowering;
// the compiler never sees one.
type MacroCall struct {
	Name string
	Args []Expr
	Line int
}

// FieldExpr is a `target.field` read, also the left-hand shape SetFieldStmt
// recognizes when followed by `=`.
type FieldExpr struct {
	Target Expr
	Field  string
}

// RangeExpr is `lo:hi`, compiling to OpMakeRange.
type RangeExpr struct {
	Lo, Hi Expr
}

// GeneratorExpr is `(Body for Var in Iterable [if Cond])`, a comprehension
// expression; Cond is nil when there is no filter clause.
type GeneratorExpr struct {
	Body     Expr
	Var      string
	Iterable Expr
	Cond     Expr
}

func (*IntLit) exprNode()          {}
func (*Float32Lit) exprNode()      {}
func (*ArrayLit) exprNode()        {}
func (*IndexExpr) exprNode()       {}
func (*ImagLit) exprNode()         {}
func (*SymbolLit) exprNode()       {}
func (*MissingLit) exprNode()      {}
func (*PrefixStringLit) exprNode() {}
func (*LambdaExpr) exprNode()      {}
func (*BlockExpr) exprNode()       {}
func (*MacroCall) exprNode()       {}
func (*FloatLit) exprNode()        {}
func (*StringLit) exprNode()       {}
func (*BoolLit) exprNode()         {}
func (*NothingLit) exprNode()      {}
func (*Ident) exprNode()           {}
func (*BinaryExpr) exprNode()      {}
func (*UnaryExpr) exprNode()       {}
func (*CallExpr) exprNode()        {}
func (*FieldExpr) exprNode()       {}
func (*RangeExpr) exprNode()       {}
func (*GeneratorExpr) exprNode()   {}
