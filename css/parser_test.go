package css_test

import (
	"reflect"
	"testing"

	"go.uber.org/zap/zaptest"

	"cradoc/css"
)

func TestParser_ParseInline(t *testing.T) {
	p := css.NewParser(zaptest.NewLogger(t))

	decls := p.ParseInline("color: #F00; width: 96px;  ; margin: 0 auto; font-weight bold")
	if len(decls) != 4 {
		t.Fatalf("got %d declarations, want 4: %#v", len(decls), decls)
	}

	tests := []struct {
		idx      int
		source   string
		property string
	}{
		{0, "color: #F00", "color"},
		{1, "width: 96px", "width"},
		{2, "margin: 0 auto", "margin"},
		{3, "font-weight bold", ""},
	}
	for _, tt := range tests {
		d := decls[tt.idx]
		if d.Source != tt.source {
			t.Errorf("decl[%d].Source = %q, want %q", tt.idx, d.Source, tt.source)
		}
		if d.Property != tt.property {
			t.Errorf("decl[%d].Property = %q, want %q", tt.idx, d.Property, tt.property)
		}
	}

	if got := decls[0].Value.Keyword; got != "#f00" {
		t.Errorf("color keyword = %q, want #f00", got)
	}
	if px, ok := decls[1].Value.Px(); !ok || px != 96 {
		t.Errorf("width px = %v (%v), want 96", px, ok)
	}
	if got := decls[2].Value.Fields(); !reflect.DeepEqual(got, []string{"0", "auto"}) {
		t.Errorf("margin fields = %q", got)
	}
}

func TestParseInline_Empty(t *testing.T) {
	for _, s := range []string{"", "   ", ";;"} {
		if got := css.NewParser(nil).ParseInline(s); len(got) != 0 {
			t.Errorf("ParseInline(%q) = %#v, want none", s, got)
		}
	}
}

func TestParseInline_Values(t *testing.T) {
	tests := []struct {
		name    string
		style   string
		prop    string
		value   float64
		unit    string
		keyword string
		numeric bool
	}{
		{name: "px", style: "margin-left: 40px", prop: "margin-left", value: 40, unit: "px", numeric: true},
		{name: "fraction", style: "height:12.5px", prop: "height", value: 12.5, unit: "px", numeric: true},
		{name: "negative", style: "margin-left: -10px", prop: "margin-left", value: -10, unit: "px", numeric: true},
		{name: "percent", style: "width: 50%", prop: "width", value: 50, unit: "%", numeric: true},
		{name: "em", style: "width: 2EM", prop: "width", value: 2, unit: "em", numeric: true},
		{name: "number", style: "margin: 0", prop: "margin", numeric: true},
		{name: "keyword", style: "text-align: Center", prop: "text-align", keyword: "center"},
		{name: "uppercase property", style: "TEXT-ALIGN: right", prop: "text-align", keyword: "right"},
		{name: "important", style: "margin-left: auto !important", prop: "margin-left", keyword: "auto"},
		{name: "function", style: "color: rgb(300, -10, 128)", prop: "color", keyword: "rgb(300,-10,128)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decls := css.NewParser(nil).ParseInline(tt.style)
			v, ok := decls.Last(tt.prop)
			if !ok {
				t.Fatalf("property %q not found in %#v", tt.prop, decls)
			}
			if v.IsNumeric() != tt.numeric {
				t.Errorf("IsNumeric() = %v, want %v", v.IsNumeric(), tt.numeric)
			}
			if v.Value != tt.value || v.Unit != tt.unit {
				t.Errorf("value = %v%s, want %v%s", v.Value, v.Unit, tt.value, tt.unit)
			}
			if v.Keyword != tt.keyword {
				t.Errorf("keyword = %q, want %q", v.Keyword, tt.keyword)
			}
		})
	}
}

func TestDeclarations_Last(t *testing.T) {
	decls := css.NewParser(nil).ParseInline("text-align: left; color: red; text-align: right")

	v, ok := decls.Last("text-align")
	if !ok || !v.IsKeyword("right") {
		t.Errorf("Last(text-align) = %#v, want right", v)
	}
	if !decls.Has("color") {
		t.Error("Has(color) = false")
	}
	if decls.Has("margin") {
		t.Error("Has(margin) = true")
	}
	if _, ok := decls.Last("background-color"); ok {
		t.Error("unexpected background-color")
	}
}

func TestValue_Px(t *testing.T) {
	tests := []struct {
		style string
		want  float64
		ok    bool
	}{
		{"width: 120px", 120, true},
		{"width: 120", 0, false},
		{"width: 120pt", 0, false},
		{"width: auto", 0, false},
	}
	for _, tt := range tests {
		v, _ := css.NewParser(nil).ParseInline(tt.style).Last("width")
		got, ok := v.Px()
		if got != tt.want || ok != tt.ok {
			t.Errorf("%q: Px() = %v, %v; want %v, %v", tt.style, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDeclarations_String(t *testing.T) {
	decls := css.NewParser(nil).ParseInline("color:#ABC;width:10px;oops")
	want := "color: #abc; width: 10px; oops"
	if got := decls.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
