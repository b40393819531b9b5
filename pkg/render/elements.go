package render

import "golang.org/x/net/html/atom"

// Element and attribute classes are keyed by atom. Custom elements have
// no atom, so they fall in no class.

type atomSet map[atom.Atom]struct{}

func newAtomSet(atoms ...atom.Atom) atomSet {
	s := make(atomSet, len(atoms))
	for _, a := range atoms {
		s[a] = struct{}{}
	}
	return s
}

func (s atomSet) has(name string) bool {
	a := atom.Lookup([]byte(name))
	if a == 0 {
		return false
	}
	_, ok := s[a]
	return ok
}

// Void elements have no children and no closing tag.
var voidElements = newAtomSet(
	atom.Area, atom.Base, atom.Br, atom.Col, atom.Embed, atom.Hr, atom.Img,
	atom.Input, atom.Link, atom.Meta, atom.Param, atom.Source, atom.Track,
	atom.Wbr,
)

// Raw text elements hold character data that is written verbatim.
var rawTextElements = newAtomSet(
	atom.Iframe, atom.Noembed, atom.Noframes, atom.Plaintext, atom.Script,
	atom.Style, atom.Xmp,
)

// Inline elements stay on one line in pretty output.
var inlineElements = newAtomSet(
	atom.A, atom.Abbr, atom.B, atom.Br, atom.Cite, atom.Code, atom.Em,
	atom.I, atom.Kbd, atom.Mark, atom.Q, atom.S, atom.Samp, atom.Slot,
	atom.Small, atom.Span, atom.Strong, atom.Sub, atom.Sup, atom.Time,
	atom.U,
)

// Boolean attributes with an empty value are written as the bare name.
var booleanAttrs = newAtomSet(
	atom.Allowfullscreen, atom.Async, atom.Autofocus, atom.Autoplay,
	atom.Checked, atom.Controls, atom.Default, atom.Defer, atom.Disabled,
	atom.Formnovalidate, atom.Hidden, atom.Ismap, atom.Itemscope, atom.Loop,
	atom.Multiple, atom.Muted, atom.Novalidate, atom.Open, atom.Playsinline,
	atom.Readonly, atom.Required, atom.Reversed, atom.Selected,
)

func isVoidElement(tag string) bool    { return voidElements.has(tag) }
func isRawTextElement(tag string) bool { return rawTextElements.has(tag) }
func isInlineElement(tag string) bool  { return inlineElements.has(tag) }
func isBooleanAttr(name string) bool   { return booleanAttrs.has(name) }
