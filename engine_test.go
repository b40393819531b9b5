package enhance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/enhance/pkg/markup"
	"github.com/vango-dev/enhance/pkg/render"
)

func TestProjectSlot(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		children string
		want     string
	}{
		{"no slot", `<p>x</p>`, `kid`, `<p>x</p>`},
		{"unnamed slot", `<p><slot></slot></p>`, `<b>kid</b>`, `<p><b>kid</b></p>`},
		{"fallback", `<p><slot>none</slot></p>`, ``, `<p>none</p>`},
		{"only first unnamed slot", `<slot></slot>|<slot>2</slot>`, `kid`, `kid|2`},
		{"named slot keeps fallback", `<slot name="a">A</slot><slot></slot>`, `kid`, `Akid`},
		{"deep slot", `<ul><li><span><slot></slot></span></li></ul>`, `kid`, `<ul><li><span>kid</span></li></ul>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := markup.ParseFragment(tt.output)
			require.NoError(t, err)
			kids, err := markup.ParseFragment(tt.children)
			require.NoError(t, err)

			got := render.String((&expander{}).projectSlot(out, kids, true)...)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProjectSlotClonesChildren(t *testing.T) {
	kids := []*markup.Node{markup.Element("b", nil, markup.Text("k"))}
	out, err := markup.ParseFragment(`<slot></slot>`)
	require.NoError(t, err)

	projected := (&expander{}).projectSlot(out, kids, true)
	require.Len(t, projected, 1)
	assert.NotSame(t, kids[0], projected[0])
}

func TestProjectSlotKeepsOrigin(t *testing.T) {
	inner := markup.Element("x-in", nil)
	emitted := markup.Element("x-em", nil, inner)
	e := &expander{stated: map[*markup.Node]bool{inner: true}}

	out, err := markup.ParseFragment(`<div><slot></slot></div>`)
	require.NoError(t, err)

	projected := e.projectSlot(out, []*markup.Node{emitted}, false)
	require.Len(t, projected, 1)
	div := projected[0]
	require.Len(t, div.Children, 1)
	em := div.Children[0]
	require.Len(t, em.Children, 1)

	assert.False(t, e.stated[em], "emitted copy")
	assert.True(t, e.stated[em.Children[0]], "input copy")
}

func TestAttributesDropsReserved(t *testing.T) {
	n := markup.Element("x-a", []markup.Attr{
		{Key: "id", Val: "1"},
		{Key: MarkerAttr, Val: "✨"},
		{Key: SSRAttr},
	})

	assert.Equal(t, map[string]string{"id": "1"}, attributes(n))
}
