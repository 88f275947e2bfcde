package value

// Range is a lazy ascending integer range `lo:hi`, both ends inclusive.
// Iterating it never materializes a backing slice up front; Iterator does
// that incrementally.
type Range struct {
	Lo, Hi int64
}

func RangeValue(lo, hi int64) Value {
	return Value{Kind: KindRange, Data: Range{Lo: lo, Hi: hi}}
}

func AsRange(v Value) Range { rg, _ := v.Data.(Range); return rg }

// Generator holds the accumulated elements of a `(expr for v in iter)`
// comprehension once fully evaluated. Unlike the host language's lazy
// generators, this runtime's generators are eagerly collected into Elems as
// each iteration runs (§9): there is no suspend/resume across calls, only a
// fixed-size result a sum/prod/collect can then fold over.
type Generator struct {
	Elems []Value
}

func NewGenerator() *Generator { return &Generator{} }

func GeneratorValue(g *Generator) Value { return Value{Kind: KindGenerator, Data: g} }
func AsGenerator(v Value) *Generator    { g, _ := v.Data.(*Generator); return g }

func (g *Generator) Append(v Value) { g.Elems = append(g.Elems, v) }

// Iterator is the runtime cursor a `for` loop or generator comprehension
// drives: NewIterator flattens whatever's being looped over into a plain
// element slice once, and Next walks it. It never escapes to user-visible
// values; it only ever lives in a VM local slot between OpIterInit and the
// loop's final OpIterNext.
type Iterator struct {
	elems []Value
	pos   int
}

func IteratorValue(it *Iterator) Value { return Value{Kind: KindIterator, Data: it} }
func AsIterator(v Value) *Iterator     { it, _ := v.Data.(*Iterator); return it }

// NewIterator builds an Iterator over v's elements. Ranges expand to their
// integer members; arrays/memory/tuples/sets iterate their own elements;
// generators iterate their already-collected Elems.
func NewIterator(v Value) *Iterator {
	switch v.Kind {
	case KindRange:
		rg := AsRange(v)
		elems := make([]Value, 0, rg.Hi-rg.Lo+1)
		for i := rg.Lo; i <= rg.Hi; i++ {
			elems = append(elems, Int64Value(i))
		}
		return &Iterator{elems: elems}
	case KindTuple:
		return &Iterator{elems: AsTuple(v).Elems}
	case KindArray:
		arr := AsArray(v)
		elems := make([]Value, 0, arr.Len())
		idx := make([]int, len(arr.Dims))
		for i := range idx {
			idx[i] = 1
		}
		for n := arr.Len(); n > 0; n-- {
			val, _ := arr.Get(idx...)
			elems = append(elems, val)
			for d := 0; d < len(idx); d++ {
				idx[d]++
				if idx[d] <= arr.Dims[d] {
					break
				}
				idx[d] = 1
			}
		}
		return &Iterator{elems: elems}
	case KindMemory:
		m := v.Data.(*Memory)
		return &Iterator{elems: m.Data}
	case KindSet:
		return &Iterator{elems: AsSet(v).Elements()}
	case KindGenerator:
		return &Iterator{elems: AsGenerator(v).Elems}
	default:
		return &Iterator{elems: nil}
	}
}

// Next advances the cursor, reporting the next element and whether one was
// available.
func (it *Iterator) Next() (Value, bool) {
	if it.pos >= len(it.elems) {
		return Value{}, false
	}
	v := it.elems[it.pos]
	it.pos++
	return v, true
}
