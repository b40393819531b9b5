package markup

import "testing"

func TestParseFragment(t *testing.T) {
	nodes, err := ParseFragment(`<my-header class="big">Hello <b>World</b></my-header><!-- c -->tail`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 3 {
		t.Fatalf("got %d nodes, want 3", len(nodes))
	}

	el := nodes[0]
	if !el.IsElement("my-header") {
		t.Fatalf("first node = %v %q, want my-header element", el.Kind, el.Tag)
	}
	if v, _ := el.Attr("class"); v != "big" {
		t.Errorf("class = %q, want big", v)
	}
	if len(el.Children) != 2 || el.Children[0].Text != "Hello " || !el.Children[1].IsElement("b") {
		t.Errorf("unexpected children: %+v", el.Children)
	}
	if nodes[1].Kind != KindComment || nodes[1].Text != " c " {
		t.Errorf("second node = %+v, want comment", nodes[1])
	}
	if nodes[2].Kind != KindText || nodes[2].Text != "tail" {
		t.Errorf("third node = %+v, want text", nodes[2])
	}
}

func TestParseFragmentLowercasesTags(t *testing.T) {
	nodes, err := ParseFragment(`<My-Header DATA-X="1"></My-Header>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 1 || nodes[0].Tag != "my-header" {
		t.Fatalf("got %+v", nodes)
	}
	if v, ok := nodes[0].Attr("data-x"); !ok || v != "1" {
		t.Errorf("data-x = %q, %v", v, ok)
	}
}

func TestParseFragmentKeepsStyleText(t *testing.T) {
	nodes, err := ParseFragment(`<style>h1{color:red;}</style><h1><slot></slot></h1>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(nodes))
	}
	if !nodes[0].IsElement("style") || nodes[0].Children[0].Text != "h1{color:red;}" {
		t.Errorf("style node = %+v", nodes[0])
	}
	if !nodes[1].Children[0].IsElement("slot") {
		t.Errorf("slot not parsed: %+v", nodes[1])
	}
}

func TestParseFragmentEmpty(t *testing.T) {
	nodes, err := ParseFragment("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 0 {
		t.Errorf("got %d nodes, want 0", len(nodes))
	}
}

func TestParseFragmentInTableContext(t *testing.T) {
	const row = `<tr><td>x</td></tr>`

	nodes, err := ParseFragment(row)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 1 || nodes[0].Kind != KindText {
		t.Errorf("body context kept table parts: %+v", nodes)
	}

	nodes, err = ParseFragmentIn(row, "TBODY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 1 || !nodes[0].IsElement("tr") {
		t.Fatalf("tbody context lost the row: %+v", nodes)
	}
	if len(nodes[0].Children) != 1 || !nodes[0].Children[0].IsElement("td") {
		t.Errorf("row lost its cell: %+v", nodes[0])
	}
}

func TestParseInvalidUTF8(t *testing.T) {
	if _, err := ParseFragment("<p>\xff</p>"); err != ErrInvalidUTF8 {
		t.Errorf("ParseFragment err = %v, want ErrInvalidUTF8", err)
	}
	if _, err := ParseDocument("\xff"); err != ErrInvalidUTF8 {
		t.Errorf("ParseDocument err = %v, want ErrInvalidUTF8", err)
	}
}

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument(`<!DOCTYPE html><html><head><title>T</title></head><body><my-x></my-x></body></html>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Kind != KindDocument {
		t.Fatalf("root kind = %v, want Document", doc.Kind)
	}
	if doc.Children[0].Kind != KindDoctype || doc.Children[0].Text != "html" {
		t.Errorf("doctype = %+v", doc.Children[0])
	}
	if FindElement(doc, "head") == nil {
		t.Error("head not found")
	}
	body := FindElement(doc, "body")
	if body == nil || !body.Children[0].IsElement("my-x") {
		t.Errorf("body = %+v", body)
	}
}

func TestIsDocument(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"<!DOCTYPE html><html></html>", true},
		{"  \n<!doctype html>", true},
		{"<HTML lang=en>", true},
		{"<my-header></my-header>", false},
		{"<htm", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsDocument(tt.in); got != tt.want {
			t.Errorf("IsDocument(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFindAndWalk(t *testing.T) {
	root := Element("div", nil,
		Element("section", nil, Element("p", nil, Text("x"))),
		Element("p", nil, Text("y")),
	)

	p := FindElement(root, "p")
	if p == nil || p.Children[0].Text != "x" {
		t.Fatalf("FindElement returned %+v, want first p", p)
	}

	var tags []string
	Walk(root, func(n *Node) bool {
		if n.Kind == KindElement {
			tags = append(tags, n.Tag)
		}
		return n.Tag != "section"
	})
	want := []string{"div", "section", "p"}
	if len(tags) != len(want) {
		t.Fatalf("walked %v, want %v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("tags[%d] = %q, want %q", i, tags[i], want[i])
		}
	}
}
