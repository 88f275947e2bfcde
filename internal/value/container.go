package value

import (
	"fmt"

	"github.com/vela-lang/vela/internal/typelattice"
)

// Tuple is an immutable heterogeneous fixed-length sequence.
type Tuple struct {
	Elems []Value
}

func TupleValue(elems ...Value) Value {
	return Value{Kind: KindTuple, Data: Tuple{Elems: elems}}
}

func AsTuple(v Value) Tuple { t, _ := v.Data.(Tuple); return t }

// NamedTuple is a Tuple plus an ordered key list; Keys[i] names Elems[i].
// TypeID is typelattice.Invalid for a plain untyped NamedTuple literal, or a
// user DataType ID when the tuple is a struct instance (RegisterStruct'd),
// so typeof and dispatch can tell `Circle{...}` apart from `Rectangle{...}`
// instead of both collapsing to NamedTuple.
type NamedTuple struct {
	Keys   []string
	Elems  []Value
	TypeID typelattice.ID
}

func NamedTupleValue(keys []string, elems []Value) Value {
	return Value{Kind: KindNamedTuple, Data: NamedTuple{Keys: keys, Elems: elems}}
}

// NamedTupleValueTyped builds a struct instance: a NamedTuple tagged with the
// user DataType ID its fields were declared under.
func NamedTupleValueTyped(typeID typelattice.ID, keys []string, elems []Value) Value {
	return Value{Kind: KindNamedTuple, Data: NamedTuple{Keys: keys, Elems: elems, TypeID: typeID}}
}

func AsNamedTuple(v Value) NamedTuple { n, _ := v.Data.(NamedTuple); return n }

// Get looks up a named tuple field by key; ok is false if absent.
func (n NamedTuple) Get(key string) (Value, bool) {
	for i, k := range n.Keys {
		if k == key {
			return n.Elems[i], true
		}
	}
	return Value{}, false
}

// Memory is a raw flat buffer with bounds-checked indexing; it is the
// parent storage for Array (§3.1 "Memory-of-T ... parent for arrays").
type Memory struct {
	ElemKind Kind
	Data     []Value
}

func NewMemory(elemKind Kind, data []Value) *Memory {
	return &Memory{ElemKind: elemKind, Data: data}
}

func MemoryValue(m *Memory) Value { return Value{Kind: KindMemory, Data: m} }

func (m *Memory) Len() int { return len(m.Data) }

func (m *Memory) Get(i int) (Value, error) {
	if i < 0 || i >= len(m.Data) {
		return Value{}, fmt.Errorf("index %d out of bounds [0,%d)", i, len(m.Data))
	}
	return m.Data[i], nil
}

func (m *Memory) Set(i int, v Value) error {
	if i < 0 || i >= len(m.Data) {
		return fmt.Errorf("index %d out of bounds [0,%d)", i, len(m.Data))
	}
	m.Data[i] = v
	return nil
}

// Array is a dense, column-major, rank-N view over a Memory buffer. Per
// §3.1, stride(A,1)=1: the first dimension is always contiguous, matching
// the column-major convention. A View aliases its Parent's Memory rather
// than copying, so writes through a view are observed by the parent
// (§8 property 6).
type Array struct {
	ElemKind Kind
	Dims     []int // one entry per rank; len(Dims) == rank
	Strides  []int // column-major: Strides[0] == 1
	Offset   int   // index into Parent.Data where this array/view begins
	Parent   *Memory
}

// NewArray allocates a fresh Memory of the given dims and wraps it.
func NewArray(elemKind Kind, dims []int, fill Value) *Array {
	total := 1
	for _, d := range dims {
		total *= d
	}
	data := make([]Value, total)
	for i := range data {
		data[i] = fill
	}
	strides := columnMajorStrides(dims)
	return &Array{ElemKind: elemKind, Dims: dims, Strides: strides, Parent: NewMemory(elemKind, data)}
}

func columnMajorStrides(dims []int) []int {
	strides := make([]int, len(dims))
	acc := 1
	for i := range dims {
		strides[i] = acc
		acc *= dims[i]
	}
	return strides
}

func ArrayValue(a *Array) Value { return Value{Kind: KindArray, Data: a} }
func AsArray(v Value) *Array    { a, _ := v.Data.(*Array); return a }

func (a *Array) Rank() int { return len(a.Dims) }

func (a *Array) Len() int {
	n := 1
	for _, d := range a.Dims {
		n *= d
	}
	return n
}

// LinearIndex converts a per-dimension index tuple (1-based, as the spec's
// host language uses) into a flat Memory offset.
func (a *Array) LinearIndex(idx []int) (int, error) {
	if len(idx) != len(a.Dims) {
		return 0, fmt.Errorf("expected %d indices, got %d", len(a.Dims), len(idx))
	}
	off := a.Offset
	for i, ix := range idx {
		if ix < 1 || ix > a.Dims[i] {
			return 0, fmt.Errorf("index %d out of bounds [1,%d] in dimension %d", ix, a.Dims[i], i+1)
		}
		off += (ix - 1) * a.Strides[i]
	}
	return off, nil
}

func (a *Array) Get(idx ...int) (Value, error) {
	off, err := a.LinearIndex(idx)
	if err != nil {
		return Value{}, err
	}
	return a.Parent.Get(off)
}

func (a *Array) Set(v Value, idx ...int) error {
	off, err := a.LinearIndex(idx)
	if err != nil {
		return err
	}
	return a.Parent.Set(off, v)
}

// View constructs a 1-D aliasing window over the first `length` elements
// starting at `start` (1-based), sharing the same Parent Memory.
func (a *Array) View(start, length int) *Array {
	return &Array{
		ElemKind: a.ElemKind,
		Dims:     []int{length},
		Strides:  []int{1},
		Offset:   a.Offset + (start-1)*a.Strides[0],
		Parent:   a.Parent,
	}
}

// Set is an unordered collection of unique elements; insertion order is not
// preserved (§3.1), so membership is tracked via a string-keyed map from
// each element's canonical string form to the Value.
type Set struct {
	elems map[string]Value
}

func NewSet() *Set { return &Set{elems: make(map[string]Value)} }

func SetValue(s *Set) Value { return Value{Kind: KindSet, Data: s} }
func AsSet(v Value) *Set    { s, _ := v.Data.(*Set); return s }

func (s *Set) Add(v Value) { s.elems[v.String()] = v }

func (s *Set) Has(v Value) bool {
	_, ok := s.elems[v.String()]
	return ok
}

func (s *Set) Delete(v Value) { delete(s.elems, v.String()) }

func (s *Set) Len() int { return len(s.elems) }

func (s *Set) Elements() []Value {
	out := make([]Value, 0, len(s.elems))
	for _, v := range s.elems {
		out = append(out, v)
	}
	return out
}

// Pair is {first, second}.
type Pair struct {
	First, Second Value
}

func PairValue(first, second Value) Value {
	return Value{Kind: KindPair, Data: Pair{First: first, Second: second}}
}

func AsPair(v Value) Pair { p, _ := v.Data.(Pair); return p }

// Pairs is the ordered symbol→value mapping a keyword-collecting callee
// receives for its unmatched keyword arguments (§4.3). An empty Pairs is a
// real value — a collector invoked with no keywords observes length 0,
// never Nothing.
type Pairs struct {
	Keys  []*Symbol
	Elems []Value
}

func PairsValue(keys []*Symbol, elems []Value) Value {
	return Value{Kind: KindPairs, Data: Pairs{Keys: keys, Elems: elems}}
}

// EmptyPairs is the zero-keyword bundle.
func EmptyPairs() Value { return Value{Kind: KindPairs, Data: Pairs{}} }

func AsPairs(v Value) Pairs { p, _ := v.Data.(Pairs); return p }

func (p Pairs) Len() int { return len(p.Keys) }

// Get looks up a keyword by symbol name; ok is false if absent.
func (p Pairs) Get(name string) (Value, bool) {
	for i, k := range p.Keys {
		if k.String() == name {
			return p.Elems[i], true
		}
	}
	return Value{}, false
}

// CommonElemKind reports the promoted element kind for a collection of
// values: uniform kinds keep theirs, mixed numerics widen by rank, and
// anything else collapses to KindNothing (an Any-elementd container).
func CommonElemKind(elems []Value) Kind {
	if len(elems) == 0 {
		return KindNothing
	}
	kind := elems[0].Kind
	for _, e := range elems[1:] {
		if e.Kind == kind {
			continue
		}
		if e.IsNumber() && elems[0].IsNumber() {
			if NumericRank(e.Kind) > NumericRank(kind) {
				kind = e.Kind
			}
			continue
		}
		return KindNothing
	}
	return kind
}

// NewArrayFrom builds a 1-D array holding elems, with the element kind
// promoted via CommonElemKind. The shape array literals, broadcast
// results, and collect all produce.
func NewArrayFrom(elems []Value) *Array {
	out := NewArray(CommonElemKind(elems), []int{len(elems)}, Nothing())
	copy(out.Parent.Data, elems)
	return out
}
