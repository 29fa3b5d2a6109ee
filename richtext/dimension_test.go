package richtext

import (
	"testing"

	"cradoc/markup"
)

func TestDimension(t *testing.T) {
	tests := []struct {
		name string
		node *markup.Node
		attr string
		want float64
		ok   bool
	}{
		{name: "style px", node: node("img", "style", "width: 96px", "width", "50"), attr: "width", want: 96, ok: true},
		{name: "style percent falls through", node: node("img", "style", "width: 50%", "width", "120"), attr: "width", want: 120, ok: true},
		{name: "attribute", node: node("img", "height", " 42.5 "), attr: "height", want: 42.5, ok: true},
		{name: "attribute with unit", node: node("img", "width", "42px"), attr: "width"},
		{name: "colwidth", node: node("td", "colwidth", "150,200"), attr: "width", want: 150, ok: true},
		{name: "data-colwidth", node: node("td", "data-colwidth", "75"), attr: "width", want: 75, ok: true},
		{name: "empty colwidth uses data-colwidth", node: node("td", "colwidth", "", "data-colwidth", "75"), attr: "width", want: 75, ok: true},
		{name: "malformed colwidth", node: node("td", "colwidth", "10,abc"), attr: "width"},
		{name: "colwidth not for height", node: node("td", "colwidth", "150"), attr: "height"},
		{name: "broken attribute then colwidth", node: node("td", "width", "wide", "colwidth", "60"), attr: "width", want: 60, ok: true},
		{name: "nothing", node: node("td"), attr: "width"},
		{name: "nil", attr: "width"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := plain.dimension(tt.node, tt.attr)
			if got != tt.want || ok != tt.ok {
				t.Errorf("plain.dimension() = %v, %v; want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}
