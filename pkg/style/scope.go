package style

import (
	"fmt"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

// Fragment is a stylesheet extracted from one component invocation.
type Fragment struct {
	// Raw is the stylesheet text as the component emitted it.
	Raw string

	// Host is the tag of the element that emitted it.
	Host string

	// Scoped is Raw rewritten by Scope. Equal to Raw for global fragments.
	Scoped string

	// Global is set for <style scope="global"> blocks, which are never
	// rewritten.
	Global bool
}

// ScopeError reports a stylesheet that could not be parsed.
type ScopeError struct {
	Host  string
	Cause error
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("style for <%s>: %v", e.Host, e.Cause)
}

func (e *ScopeError) Unwrap() error {
	return e.Cause
}

// NewFragment scopes raw to host and returns the resulting fragment.
func NewFragment(raw, host string, global bool) (Fragment, error) {
	f := Fragment{Raw: raw, Host: host, Global: global}
	if global {
		f.Scoped = strings.TrimSpace(raw)
		return f, nil
	}

	scoped, err := Scope(raw, host)
	if err != nil {
		return Fragment{}, err
	}
	f.Scoped = scoped
	return f, nil
}

// Scope prefixes every selector in raw with host and a descendant
// combinator. The output has one block per rule, two-space indented
// declarations, and no trailing newline.
//
// :host, :host(sel) and :host-context(sel) are rewritten to address the
// host element itself. Rules nested in @media and @supports are scoped;
// other at-rules pass through unchanged. Comments and empty rules are
// dropped.
func Scope(raw, host string) (string, error) {
	host = strings.ToLower(strings.TrimSpace(host))

	sheet, err := parser.Parse(raw)
	if err != nil {
		return "", &ScopeError{Host: host, Cause: err}
	}

	sheet.Rules = scopeRules(sheet.Rules, host)
	return sheet.String(), nil
}

func scopeRules(rules []*css.Rule, host string) []*css.Rule {
	out := rules[:0]
	for _, rule := range rules {
		switch {
		case rule.Kind == css.QualifiedRule:
			if len(rule.Declarations) == 0 {
				continue
			}
			rule.Selectors = scopeSelectors(rule.Prelude, host)

		case rule.Name == "@media" || rule.Name == "@supports":
			rule.Rules = scopeRules(rule.Rules, host)
			if len(rule.Rules) == 0 {
				continue
			}
		}
		out = append(out, rule)
	}
	return out
}

// scopeSelectors splits a selector list on top-level commas and scopes each
// selector independently.
func scopeSelectors(prelude, host string) []string {
	parts := splitSelectors(prelude)
	out := make([]string, 0, len(parts))
	for _, sel := range parts {
		out = append(out, ScopeSelector(sel, host))
	}
	return out
}

// ScopeSelector scopes a single selector to host.
func ScopeSelector(sel, host string) string {
	sel = strings.TrimSpace(sel)
	if sel == "" {
		return sel
	}
	if rewritten, ok := rewriteHost(sel, host); ok {
		return rewritten
	}
	if namesHost(sel, host) {
		return sel
	}
	return host + " " + sel
}

func rewriteHost(sel, host string) (string, bool) {
	if !strings.HasPrefix(sel, ":host") {
		return "", false
	}

	rest := sel[len(":host"):]
	switch {
	case strings.HasPrefix(rest, "-context("):
		arg, tail, ok := parenArg(rest[len("-context"):])
		if !ok {
			return "", false
		}
		if arg = strings.TrimSpace(arg); arg == "" {
			return host + tail, true
		}
		// The host itself or any ancestor may match arg.
		return host + ":is(" + arg + ", " + arg + " *)" + tail, true

	case strings.HasPrefix(rest, "("):
		arg, tail, ok := parenArg(rest)
		if !ok {
			return "", false
		}
		// A compound can only start with one type selector.
		if arg = strings.TrimSpace(arg); arg != "" && isNameByte(arg[0]) {
			return "", false
		}
		return host + arg + tail, true

	case rest == "" || !isNameByte(rest[0]):
		return host + rest, true
	}
	return "", false
}

// parenArg splits "(arg)tail" at the matching close paren.
func parenArg(s string) (arg, tail string, ok bool) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[1:i], s[i+1:], true
			}
		}
	}
	return "", "", false
}

// namesHost reports whether the first compound of sel is the host type
// selector. A host named further right only constrains descendants, so
// such selectors still get scoped.
func namesHost(sel, host string) bool {
	if !strings.HasPrefix(sel, host) {
		return false
	}
	rest := sel[len(host):]
	return rest == "" || !isNameByte(rest[0])
}

func splitSelectors(prelude string) []string {
	var (
		parts []string
		depth int
		start int
		quote byte
	)
	for i := 0; i < len(prelude); i++ {
		c := prelude[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			depth--
		case c == ',' && depth == 0:
			parts = append(parts, prelude[start:i])
			start = i + 1
		}
	}
	return append(parts, prelude[start:])
}

func isNameByte(c byte) bool {
	return c == '-' || c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c >= 0x80
}
