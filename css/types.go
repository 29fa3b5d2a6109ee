package css

import (
	"strconv"
	"strings"
)

// Value is a parsed declaration value. Raw keeps normalized (lowercase,
// single spaced, without !important) value text, numeric values are split
// into Value and Unit, single identifiers, strings and hashes end up in
// Keyword. Multi-token values only carry Raw and Keyword.
type Value struct {
	Raw       string
	Value     float64
	Unit      string
	Keyword   string
	Important bool
}

// IsNumeric reports whether value is a single number, percentage or dimension.
func (v Value) IsNumeric() bool {
	return v.Keyword == "" && v.Raw != ""
}

// IsKeyword reports whether value is the given keyword (case-insensitive).
func (v Value) IsKeyword(kw string) bool {
	return strings.EqualFold(v.Keyword, kw)
}

// Px returns value in CSS pixels if it was specified in px.
func (v Value) Px() (float64, bool) {
	if !v.IsNumeric() || v.Unit != "px" {
		return 0, false
	}
	return v.Value, true
}

// Fields splits raw value into whitespace separated tokens with stray commas
// removed, as used by shorthand properties.
func (v Value) Fields() []string {
	var res []string
	for f := range strings.FieldsSeq(v.Raw) {
		f = strings.Trim(f, ",")
		if f != "" {
			res = append(res, f)
		}
	}
	return res
}

func (v Value) String() string {
	switch {
	case v.Raw == "":
		return ""
	case v.IsNumeric():
		return strconv.FormatFloat(v.Value, 'f', -1, 64) + v.Unit
	default:
		return v.Raw
	}
}

// Declaration is one ';' separated piece of inline style. Property is empty
// when the piece is not a valid declaration, Source always keeps the text
// as written.
type Declaration struct {
	Source   string
	Property string
	Value    Value
}

// Declarations preserves source order, duplicates included.
type Declarations []Declaration

// Last returns value of the last declaration of the property.
func (d Declarations) Last(prop string) (Value, bool) {
	prop = strings.ToLower(prop)
	for i := len(d) - 1; i >= 0; i-- {
		if d[i].Property == prop {
			return d[i].Value, true
		}
	}
	return Value{}, false
}

// Has reports whether the property is declared at least once.
func (d Declarations) Has(prop string) bool {
	_, ok := d.Last(prop)
	return ok
}

func (d Declarations) String() string {
	var sb strings.Builder
	for i, decl := range d {
		if i > 0 {
			sb.WriteString("; ")
		}
		if decl.Property == "" {
			sb.WriteString(decl.Source)
			continue
		}
		sb.WriteString(decl.Property)
		sb.WriteString(": ")
		sb.WriteString(decl.Value.String())
		if decl.Value.Important {
			sb.WriteString(" !important")
		}
	}
	return sb.String()
}
