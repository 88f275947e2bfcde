package typelattice

// Well-known type IDs populated by Bootstrap. Embedders that need to test
// values against these without a name lookup hold onto a *Registry.
type Registry struct {
	Lattice *Lattice

	Any, Bottom ID

	Number, Complex, Real                                ID
	AbstractFloat, Rational, Integer, AbstractIrrational ID
	Signed, Unsigned, Bool                               ID

	Int8, Int16, Int32, Int64, Int128      ID
	UInt8, UInt16, UInt32, UInt64, UInt128 ID
	Float16, Float32, Float64              ID
	BigInt, BigFloat                       ID

	Char, String, Symbol              ID
	Nothing, Missing                  ID
	Tuple, NamedTuple                 ID
	Array, Memory, Set, Pair, Pairs   ID
	Regex, VersionNumber, MIME        ID
	DataType, UnionAll                ID
	Function, Method, GenericFunction ID
	Expr, QuoteNode                   ID
	Exception                         ID
	Generator, Range                  ID
}

// Bootstrap registers the fixed numeric tower and the other concrete
// variants named in spec §3.1/§3.2, returning a Registry of their IDs.
// This mirrors the teacher's runtime bootstrap (registering the class
// hierarchy once at interpreter construction) but for the numeric lattice
// instead of DWScript's class tree.
func Bootstrap() *Registry {
	l := New()
	r := &Registry{Lattice: l, Any: l.Any(), Bottom: l.Bottom()}

	r.Number = l.RegisterAbstract("Number", r.Any)
	r.Complex = l.RegisterAbstract("Complex", r.Number)
	r.Real = l.RegisterAbstract("Real", r.Number)

	r.AbstractFloat = l.RegisterAbstract("AbstractFloat", r.Real)
	r.Rational = l.RegisterAbstract("Rational", r.Real)
	r.Integer = l.RegisterAbstract("Integer", r.Real)
	r.AbstractIrrational = l.RegisterAbstract("AbstractIrrational", r.Real)

	r.Signed = l.RegisterAbstract("Signed", r.Integer)
	r.Unsigned = l.RegisterAbstract("Unsigned", r.Integer)
	r.Bool = l.RegisterConcrete("Bool", r.Integer)

	r.Int8 = l.RegisterConcrete("Int8", r.Signed)
	r.Int16 = l.RegisterConcrete("Int16", r.Signed)
	r.Int32 = l.RegisterConcrete("Int32", r.Signed)
	r.Int64 = l.RegisterConcrete("Int64", r.Signed)
	r.Int128 = l.RegisterConcrete("Int128", r.Signed)
	r.BigInt = l.RegisterConcrete("BigInt", r.Signed)

	r.UInt8 = l.RegisterConcrete("UInt8", r.Unsigned)
	r.UInt16 = l.RegisterConcrete("UInt16", r.Unsigned)
	r.UInt32 = l.RegisterConcrete("UInt32", r.Unsigned)
	r.UInt64 = l.RegisterConcrete("UInt64", r.Unsigned)
	r.UInt128 = l.RegisterConcrete("UInt128", r.Unsigned)

	r.Float16 = l.RegisterConcrete("Float16", r.AbstractFloat)
	r.Float32 = l.RegisterConcrete("Float32", r.AbstractFloat)
	r.Float64 = l.RegisterConcrete("Float64", r.AbstractFloat)
	r.BigFloat = l.RegisterConcrete("BigFloat", r.AbstractFloat)

	r.Char = l.RegisterConcrete("Char", r.Any)
	r.String = l.RegisterConcrete("String", r.Any)
	r.Symbol = l.RegisterConcrete("Symbol", r.Any)
	r.Nothing = l.RegisterConcrete("Nothing", r.Any)
	r.Missing = l.RegisterConcrete("Missing", r.Any)

	r.Tuple = l.RegisterConcrete("Tuple", r.Any)
	r.NamedTuple = l.RegisterConcrete("NamedTuple", r.Any)
	r.Array = l.RegisterConcrete("Array", r.Any)
	r.Memory = l.RegisterConcrete("Memory", r.Any)
	r.Set = l.RegisterConcrete("Set", r.Any)
	r.Pair = l.RegisterConcrete("Pair", r.Any)
	r.Pairs = l.RegisterConcrete("Pairs", r.Any)

	r.Regex = l.RegisterConcrete("Regex", r.Any)
	r.VersionNumber = l.RegisterConcrete("VersionNumber", r.Any)
	r.MIME = l.RegisterConcrete("MIME", r.Any)

	r.DataType = l.RegisterConcrete("DataType", r.Any)
	r.UnionAll = l.RegisterConcrete("UnionAll", r.Any)

	// Method and GenericFunction sit under Function so `isa(f, Function)`
	// answers true for function values.
	r.Function = l.RegisterAbstract("Function", r.Any)
	r.Method = l.RegisterConcrete("Method", r.Function)
	r.GenericFunction = l.RegisterConcrete("GenericFunction", r.Function)

	r.Expr = l.RegisterConcrete("Expr", r.Any)
	r.QuoteNode = l.RegisterConcrete("QuoteNode", r.Any)

	r.Exception = l.RegisterAbstract("Exception", r.Any)

	r.Generator = l.RegisterConcrete("Generator", r.Any)
	r.Range = l.RegisterConcrete("UnitRange", r.Any)

	return r
}
