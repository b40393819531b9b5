package style

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestScope(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "single rule",
			raw:  "h1{color:red;}",
			want: "my-header h1 {\n  color: red;\n}",
		},
		{
			name: "selector list",
			raw:  "a, b { margin: 0 }",
			want: "my-header a, my-header b {\n  margin: 0;\n}",
		},
		{
			name: "several rules",
			raw:  "h1{color:red}\np{color:blue;font-weight:bold}",
			want: "my-header h1 {\n  color: red;\n}\nmy-header p {\n  color: blue;\n  font-weight: bold;\n}",
		},
		{
			name: "important",
			raw:  "p{color:red !important}",
			want: "my-header p {\n  color: red !important;\n}",
		},
		{
			name: "combinators",
			raw:  "ul > li + li{margin-top:1px}",
			want: "my-header ul > li + li {\n  margin-top: 1px;\n}",
		},
		{
			name: "host",
			raw:  ":host{display:block}",
			want: "my-header {\n  display: block;\n}",
		},
		{
			name: "host with compound",
			raw:  ":host(.active) h1{color:red}",
			want: "my-header.active h1 {\n  color: red;\n}",
		},
		{
			name: "host context",
			raw:  ":host-context(.dark) h1{color:white}",
			want: "my-header:is(.dark, .dark *) h1 {\n  color: white;\n}",
		},
		{
			name: "already scoped",
			raw:  "my-header h1{color:red}",
			want: "my-header h1 {\n  color: red;\n}",
		},
		{
			name: "host named after another compound",
			raw:  ".item my-header p{color:red}",
			want: "my-header .item my-header p {\n  color: red;\n}",
		},
		{
			name: "host in a pseudo class argument",
			raw:  "p:not(my-header){color:red}",
			want: "my-header p:not(my-header) {\n  color: red;\n}",
		},
		{
			name: "host compound",
			raw:  "my-header.open > p{color:red}",
			want: "my-header.open > p {\n  color: red;\n}",
		},
		{
			name: "similar tag is not the host",
			raw:  "my-header-item{color:red}",
			want: "my-header my-header-item {\n  color: red;\n}",
		},
		{
			name: "comma inside pseudo class",
			raw:  "p:is(.a,.b){color:red}",
			want: "my-header p:is(.a,.b) {\n  color: red;\n}",
		},
		{
			name: "media",
			raw:  "@media (max-width: 600px){h1{font-size:1rem}}",
			want: "@media (max-width: 600px) {\n  my-header h1 {\n    font-size: 1rem;\n  }\n}",
		},
		{
			name: "keyframes pass through",
			raw:  "@keyframes spin{from{opacity:0}}",
			want: "@keyframes spin {\n  from {\n    opacity: 0;\n  }\n}",
		},
		{
			name: "comments dropped",
			raw:  "/* heading */ h1{color:red}",
			want: "my-header h1 {\n  color: red;\n}",
		},
		{
			name: "empty rule dropped",
			raw:  "h1{}p{color:red}",
			want: "my-header p {\n  color: red;\n}",
		},
		{
			name: "empty input",
			raw:  "  ",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Scope(tt.raw, "my-header")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScopeIsIdempotent(t *testing.T) {
	for _, raw := range []string{
		"h1{color:red;}",
		":host(.a){color:red}",
		":host-context(.dark) p{color:red}",
		"@media print{a, b{display:none}}",
		".my-header{color:red}",
		".item my-header p{color:red}",
	} {
		once, err := Scope(raw, "my-header")
		require.NoError(t, err)
		twice, err := Scope(once, "my-header")
		require.NoError(t, err)
		assert.Equal(t, once, twice, raw)
	}
}

func TestScopeMalformed(t *testing.T) {
	_, err := Scope("}", "my-header")

	var scopeErr *ScopeError
	require.True(t, errors.As(err, &scopeErr))
	assert.Equal(t, "my-header", scopeErr.Host)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestNewFragmentGlobal(t *testing.T) {
	f, err := NewFragment("  body{margin:0}\n", "my-page", true)
	require.NoError(t, err)
	assert.True(t, f.Global)
	assert.Equal(t, "body{margin:0}", f.Scoped)

	f, err = NewFragment("body{margin:0}", "my-page", false)
	require.NoError(t, err)
	assert.Equal(t, "my-page body {\n  margin: 0;\n}", f.Scoped)
	assert.Equal(t, "body{margin:0}", f.Raw)
	assert.Equal(t, "my-page", f.Host)
}

func TestScopeIdempotentProperty(t *testing.T) {
	ident := rapid.StringMatching(`[a-z][a-z0-9]{0,5}`)
	hostGen := rapid.StringMatching(`[a-z]{1,4}-[a-z]{1,4}`)

	simple := rapid.Custom(func(t *rapid.T) string {
		base := ident.Draw(t, "tag")
		switch rapid.IntRange(0, 3).Draw(t, "form") {
		case 1:
			return base + "." + ident.Draw(t, "class")
		case 2:
			return "#" + base
		case 3:
			return ":host(." + base + ")"
		}
		return base
	})

	selector := rapid.Custom(func(t *rapid.T) string {
		parts := rapid.SliceOfN(simple, 1, 3).Draw(t, "compounds")
		comb := rapid.SampledFrom([]string{" ", " > ", " + ", " ~ "}).Draw(t, "combinator")
		return strings.Join(parts, comb)
	})

	rapid.Check(t, func(t *rapid.T) {
		host := hostGen.Draw(t, "host")
		rules := rapid.SliceOfN(selector, 1, 4).Draw(t, "selectors")

		var sb strings.Builder
		for _, sel := range rules {
			sb.WriteString(sel + "{color:red;margin:0}")
		}

		once, err := Scope(sb.String(), host)
		if err != nil {
			t.Fatalf("scope: %v", err)
		}
		twice, err := Scope(once, host)
		if err != nil {
			t.Fatalf("rescope: %v", err)
		}
		if once != twice {
			t.Fatalf("not idempotent:\n%s\n---\n%s", once, twice)
		}
	})
}
