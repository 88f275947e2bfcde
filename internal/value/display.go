package value

import "strings"

// Display renders containers and wrapper kinds that value.String doesn't
// cover with a scalar fast path. Kept separate from Value.String (which
// only handles scalars) because these cases need to recurse into nested
// Values, and value.go's switch is meant to stay a flat lookup.
func Display(v Value) string {
	switch v.Kind {
	case KindTuple:
		return joinValues("(", AsTuple(v).Elems, ")")
	case KindNamedTuple:
		nt := AsNamedTuple(v)
		var sb strings.Builder
		sb.WriteString("(")
		for i, k := range nt.Keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(k)
			sb.WriteString(" = ")
			sb.WriteString(Display(nt.Elems[i]))
		}
		sb.WriteString(")")
		return sb.String()
	case KindArray:
		a := AsArray(v)
		elems := make([]Value, a.Len())
		for i := range elems {
			elems[i], _ = a.Parent.Get(a.Offset + i*a.Strides[0])
		}
		return joinValues("[", elems, "]")
	case KindSet:
		return joinValues("Set(", AsSet(v).Elements(), ")")
	case KindPair:
		p := AsPair(v)
		return Display(p.First) + " => " + Display(p.Second)
	case KindPairs:
		ps := AsPairs(v)
		var sb strings.Builder
		sb.WriteString("pairs(")
		for i, k := range ps.Keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(":" + k.String() + " => " + Display(ps.Elems[i]))
		}
		sb.WriteString(")")
		return sb.String()
	case KindSome:
		return "Some(" + Display(AsSome(v).Inner) + ")"
	case KindException:
		return AsException(v).Error()
	default:
		return v.String()
	}
}

func joinValues(open string, elems []Value, close string) string {
	var sb strings.Builder
	sb.WriteString(open)
	for i, e := range elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(Display(e))
	}
	sb.WriteString(close)
	return sb.String()
}
