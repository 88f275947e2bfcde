package builtins

import (
	"encoding/hex"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/vela-lang/vela/internal/dispatch"
	"github.com/vela-lang/vela/internal/rterror"
	"github.com/vela-lang/vela/internal/typelattice"
	"github.com/vela-lang/vela/internal/value"
)

// RegisterStrings wires the §4.4 "Strings" builtin family: codeunit
// indexing, ASCII/hex helpers, repr/sprint, and the split/occursin family,
// built over Go's strings/unicode/utf8 packages the way the teacher's own
// string intrinsics lean on Go's standard library rather than reinventing
// codepoint handling.
func RegisterStrings(mt *dispatch.MethodTable, r *typelattice.Registry) {
	method(mt, "ncodeunits", []typelattice.ID{r.String}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Int64Value(int64(len(value.AsString(a[0])))), nil
	})

	method(mt, "codeunit", []typelattice.ID{r.String, r.Int64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		s := value.AsString(a[0])
		i := int(value.AsInt64(a[1]))
		if i < 1 || i > len(s) {
			return value.Value{}, &rterror.StringIndexError{Index: i}
		}
		return value.UInt8Value(s[i-1]), nil
	})

	method(mt, "codeunits", []typelattice.ID{r.String}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		s := value.AsString(a[0])
		elems := make([]value.Value, len(s))
		for i := 0; i < len(s); i++ {
			elems[i] = value.UInt8Value(s[i])
		}
		return value.TupleValue(elems...), nil
	})

	method(mt, "isvalid", []typelattice.ID{r.String, r.Int64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		s := value.AsString(a[0])
		i := int(value.AsInt64(a[1]))
		return value.Bool(i >= 1 && i <= len(s) && utf8.RuneStart(s[i-1])), nil
	})

	method(mt, "thisind", []typelattice.ID{r.String, r.Int64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		s := value.AsString(a[0])
		i := int(value.AsInt64(a[1]))
		for i >= 1 && i <= len(s) && !utf8.RuneStart(s[i-1]) {
			i--
		}
		return value.Int64Value(int64(i)), nil
	})

	method(mt, "nextind", []typelattice.ID{r.String, r.Int64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		s := value.AsString(a[0])
		i := int(value.AsInt64(a[1]))
		if i < 0 || i > len(s) {
			return value.Value{}, &rterror.StringIndexError{Index: i}
		}
		if i == len(s) {
			return value.Int64Value(int64(i + 1)), nil
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		return value.Int64Value(int64(i + size)), nil
	})

	method(mt, "prevind", []typelattice.ID{r.String, r.Int64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		s := value.AsString(a[0])
		i := int(value.AsInt64(a[1]))
		if i < 1 || i > len(s)+1 {
			return value.Value{}, &rterror.StringIndexError{Index: i}
		}
		j := i - 2
		for j >= 0 && !utf8.RuneStart(s[j]) {
			j--
		}
		return value.Int64Value(int64(j + 1)), nil
	})

	method(mt, "reverseind", []typelattice.ID{r.String, r.Int64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		s := value.AsString(a[0])
		i := int(value.AsInt64(a[1]))
		return value.Int64Value(int64(len(s) + 1 - i)), nil
	})

	method(mt, "ascii", []typelattice.ID{r.String}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		s := value.AsString(a[0])
		for i := 0; i < len(s); i++ {
			if s[i] > 127 {
				return value.Value{}, &rterror.ArgumentError{Message: "ascii: string contains non-ASCII bytes"}
			}
		}
		return value.String(s), nil
	})

	method(mt, "bitstring", []typelattice.ID{r.Int64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.String(strconv.FormatUint(uint64(value.AsInt64(a[0])), 2)), nil
	})

	method(mt, "bytes2hex", []typelattice.ID{r.String}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.String(hex.EncodeToString([]byte(value.AsString(a[0])))), nil
	})
	method(mt, "hex2bytes", []typelattice.ID{r.String}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		b, err := hex.DecodeString(value.AsString(a[0]))
		if err != nil {
			return value.Value{}, &rterror.ArgumentError{Message: "hex2bytes: " + err.Error()}
		}
		return value.String(string(b)), nil
	})

	method(mt, "repr", []typelattice.ID{r.Any}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.String(reprOf(a[0])), nil
	})

	method(mt, "sprint", []typelattice.ID{r.Any}, true, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		var sb strings.Builder
		for _, v := range a {
			sb.WriteString(value.Display(v))
		}
		return value.String(sb.String()), nil
	})

	method(mt, "uppercase", []typelattice.ID{r.String}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.String(strings.ToUpper(value.AsString(a[0]))), nil
	})
	method(mt, "lowercase", []typelattice.ID{r.String}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.String(strings.ToLower(value.AsString(a[0]))), nil
	})

	method(mt, "split", []typelattice.ID{r.String, r.String}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		parts := strings.Split(value.AsString(a[0]), value.AsString(a[1]))
		elems := make([]value.Value, len(parts))
		for i, p := range parts {
			elems[i] = value.String(p)
		}
		return value.TupleValue(elems...), nil
	})
	method(mt, "rsplit", []typelattice.ID{r.String, r.String}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		parts := strings.Split(value.AsString(a[0]), value.AsString(a[1]))
		for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
			parts[i], parts[j] = parts[j], parts[i]
		}
		elems := make([]value.Value, len(parts))
		for i, p := range parts {
			elems[i] = value.String(p)
		}
		return value.TupleValue(elems...), nil
	})

	method(mt, "unescape_string", []typelattice.ID{r.String}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		unescaped, err := strconv.Unquote(`"` + value.AsString(a[0]) + `"`)
		if err != nil {
			return value.Value{}, &rterror.ArgumentError{Message: "unescape_string: " + err.Error()}
		}
		return value.String(unescaped), nil
	})

	method(mt, "occursin", []typelattice.ID{r.String, r.String}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Bool(strings.Contains(value.AsString(a[1]), value.AsString(a[0]))), nil
	})

	method(mt, "!=", []typelattice.ID{r.Any, r.Any}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Bool(!value.Identical(a[0], a[1])), nil
	})

	// String-macro family (§6): a literal `pfx"…"` lowers to `pfx_str(s)`;
	// the wrapping forms ship here, and a user-registered `foo_str` method
	// picks up `foo"…"` with no front-end changes.
	method(mt, "html_str", []typelattice.ID{r.String}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.HTMLValue(a[0]), nil
	})
	method(mt, "text_str", []typelattice.ID{r.String}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.TextValue(a[0]), nil
	})
	method(mt, "MIME", []typelattice.ID{r.String}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.MIMEValue(value.AsString(a[0])), nil
	})

	// namedtuple(:key, value, ...) builds a NamedTuple from alternating
	// symbol/value pairs; the @timed expansion's result shape.
	method(mt, "namedtuple", []typelattice.ID{r.Any}, true, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		if len(a)%2 != 0 {
			return value.Value{}, &rterror.ArgumentError{Message: "namedtuple: need alternating symbol/value pairs"}
		}
		keys := make([]string, 0, len(a)/2)
		vals := make([]value.Value, 0, len(a)/2)
		for i := 0; i < len(a); i += 2 {
			if a[i].Kind != value.KindSymbol {
				return value.Value{}, &rterror.ArgumentError{Message: "namedtuple: keys must be symbols"}
			}
			keys = append(keys, value.AsSymbol(a[i]).String())
			vals = append(vals, a[i+1])
		}
		return value.NamedTupleValue(keys, vals), nil
	})
}

// reprOf renders v the way `repr` would for the REPL: strings get quoted,
// everything else falls back to Display's existing rendering.
func reprOf(v value.Value) string {
	if v.Kind == value.KindString {
		return strconv.Quote(value.AsString(v))
	}
	if v.Kind == value.KindChar {
		return "'" + string(value.AsChar(v)) + "'"
	}
	return value.Display(v)
}
