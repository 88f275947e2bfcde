package value

import (
	"fmt"
	"regexp"
)

// Regex wraps a compiled regular expression (`r"..."` literal, §6).
type Regex struct {
	Source   string
	Compiled *regexp.Regexp
}

func RegexValue(source string) (Value, error) {
	re, err := regexp.Compile(source)
	if err != nil {
		return Value{}, fmt.Errorf("invalid regex %q: %w", source, err)
	}
	return Value{Kind: KindRegex, Data: Regex{Source: source, Compiled: re}}, nil
}

func AsRegex(v Value) Regex { r, _ := v.Data.(Regex); return r }

// VersionNumber is `v"..."` with default minor/patch of 0 (§6).
type VersionNumber struct {
	Major, Minor, Patch int
	Prerelease, Build   string
}

func (vn VersionNumber) String() string {
	s := fmt.Sprintf("%d.%d.%d", vn.Major, vn.Minor, vn.Patch)
	if vn.Prerelease != "" {
		s += "-" + vn.Prerelease
	}
	if vn.Build != "" {
		s += "+" + vn.Build
	}
	return s
}

func VersionNumberValue(vn VersionNumber) Value {
	return Value{Kind: KindVersionNumber, Data: vn}
}

func AsVersionNumber(v Value) VersionNumber { vn, _ := v.Data.(VersionNumber); return vn }

// HTML{T} and Text{T} are display-routing wrappers around an inner value of
// element type T (display/MIME routing is named out of scope in spec.md §1,
// but the Value variants themselves are part of the core tagged union).
type HTML struct{ Inner Value }
type Text struct{ Inner Value }

func HTMLValue(inner Value) Value { return Value{Kind: KindHTML, Data: HTML{Inner: inner}} }
func TextValue(inner Value) Value { return Value{Kind: KindText, Data: Text{Inner: inner}} }

func AsHTML(v Value) HTML { h, _ := v.Data.(HTML); return h }
func AsText(v Value) Text { t, _ := v.Data.(Text); return t }

// MIME wraps a MIME type string, e.g. `MIME("text/html")`.
type MIME struct{ Type string }

func MIMEValue(t string) Value { return Value{Kind: KindMIME, Data: MIME{Type: t}} }
func AsMIME(v Value) MIME      { m, _ := v.Data.(MIME); return m }

// Some{T} wraps a present optional value, distinguishing "a value that
// happens to be nothing" from "no value at all" where Nothing alone would
// be ambiguous.
type Some struct{ Inner Value }

func SomeValue(inner Value) Value { return Value{Kind: KindSome, Data: Some{Inner: inner}} }
func AsSome(v Value) Some         { s, _ := v.Data.(Some); return s }
