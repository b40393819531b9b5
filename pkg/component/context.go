package component

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/vango-dev/enhance/pkg/render"
)

// RenderContext is the argument passed to a render function. A fresh
// context is built for every invocation.
type RenderContext struct {
	// HTML composes markup.
	HTML Composer

	// State exposes the initial state threaded to this invocation.
	State StateView

	// Attributes are the element's attributes, minus the ones reserved by
	// the renderer.
	Attributes map[string]string

	// Slot is the element's original children serialized as markup.
	Slot string
}

// Attr returns the named attribute, or "" when absent.
func (c *RenderContext) Attr(name string) string {
	return c.Attributes[name]
}

// =============================================================================
// State
// =============================================================================

// StateView wraps the caller-supplied initial state. Store is nil for
// invocations that receive no state.
type StateView struct {
	Store any
}

// Get looks up a dotted path ("user.name", "items.0") in the store. Maps,
// slices and structs are supported; structs are read through their JSON
// field names.
func (s StateView) Get(path string) (any, bool) {
	cur, err := plain(s.Store)
	if err != nil || cur == nil {
		return nil, false
	}
	if path == "" {
		return cur, true
	}

	for _, key := range strings.Split(path, ".") {
		switch v := cur.(type) {
		case map[string]any:
			next, ok := v[key]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil, false
			}
			cur = v[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

// String returns the value at path formatted as text, or "" when absent.
func (s StateView) String(path string) string {
	v, ok := s.Get(path)
	if !ok || v == nil {
		return ""
	}
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprint(v)
}

// Decode decodes the store into target, which must be a pointer. Field
// names are matched using json tags.
func (s StateView) Decode(target any) error {
	src, err := plain(s.Store)
	if err != nil {
		return err
	}
	if src == nil {
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return err
	}
	return dec.Decode(src)
}

// plain converts v to a tree of map[string]any, []any and scalars. Values
// that already have that shape are returned as is; anything else takes a
// JSON round trip.
func plain(v any) (any, error) {
	if isPlain(v) {
		return v, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("state is not serializable: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func isPlain(v any) bool {
	switch t := v.(type) {
	case nil, string, bool, float64, int, int64:
		return true
	case map[string]any:
		for _, e := range t {
			if !isPlain(e) {
				return false
			}
		}
		return true
	case []any:
		for _, e := range t {
			if !isPlain(e) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// =============================================================================
// Composer
// =============================================================================

// Raw marks trusted markup that Sprintf must not escape.
type Raw string

// Composer is the markup helper handed to render functions.
type Composer struct{}

// Compose concatenates parts into markup the way a template literal would.
// Slices are joined without a separator and nil parts are dropped. Nothing
// is escaped.
func (Composer) Compose(parts ...any) string {
	var sb strings.Builder
	for _, p := range parts {
		writePart(&sb, p)
	}
	return sb.String()
}

func writePart(sb *strings.Builder, p any) {
	switch v := p.(type) {
	case nil:
	case string:
		sb.WriteString(v)
	case Raw:
		sb.WriteString(string(v))
	case []string:
		for _, s := range v {
			sb.WriteString(s)
		}
	case []any:
		for _, e := range v {
			writePart(sb, e)
		}
	case fmt.Stringer:
		sb.WriteString(v.String())
	default:
		fmt.Fprint(sb, v)
	}
}

// Sprintf formats markup. String arguments are escaped as text unless they
// are Raw.
func (Composer) Sprintf(format string, args ...any) string {
	escaped := make([]any, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case Raw:
			escaped[i] = string(v)
		case string:
			escaped[i] = render.EscapeText(v)
		case fmt.Stringer:
			escaped[i] = render.EscapeText(v.String())
		default:
			escaped[i] = a
		}
	}
	return fmt.Sprintf(format, escaped...)
}

// Escape escapes s for use as text content.
func (Composer) Escape(s string) string {
	return render.EscapeText(s)
}

// Attr renders a single attribute with a leading space.
func (Composer) Attr(name, value string) string {
	return " " + name + `="` + render.EscapeAttr(value) + `"`
}
