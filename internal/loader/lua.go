package loader

import (
	stderrors "errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	lua "github.com/Shopify/go-lua"

	"github.com/vango-dev/enhance/internal/errors"
	"github.com/vango-dev/enhance/pkg/component"
	"github.com/vango-dev/enhance/pkg/render"
)

// renderKey is the global that holds a compiled component's function.
const renderKey = "__enhance_render"

// maxFlattenDepth bounds recursion into nested markup tables.
const maxFlattenDepth = 32

// script is a compiled component. Lua states are not safe for concurrent
// use, so each invocation borrows one from the pool.
type script struct {
	Script
	pool sync.Pool
}

// Compile compiles a component script into a render function. The script
// is executed once up front so syntax errors and a missing render
// function surface at load time.
func Compile(s Script) (component.RenderFunc, error) {
	c := &script{Script: s}

	l, err := c.newState()
	if err != nil {
		return nil, err
	}
	c.pool.Put(l)

	return c.render, nil
}

// newState creates an interpreter with the component's function installed.
func (c *script) newState() (*lua.State, error) {
	l := lua.NewState()
	openLibraries(l)

	if err := lua.LoadBuffer(l, c.Code, "@"+c.Origin, "t"); err != nil {
		return nil, c.compileError(luaError(l, err))
	}
	if err := l.ProtectedCall(0, 1, 0); err != nil {
		return nil, c.compileError(luaError(l, err))
	}

	if !l.IsFunction(-1) {
		l.Pop(1)
		l.Global("render")
	}
	if !l.IsFunction(-1) {
		return nil, c.compileError(stderrors.New("script must return a function or define render"))
	}
	l.SetGlobal(renderKey)
	l.SetTop(0)
	return l, nil
}

func (c *script) compileError(err error) error {
	return errors.New("E201").
		Wrap(err).
		WithLocationFromError(c.Origin, err).
		WithSuggestion(fmt.Sprintf("Check %s. It must return function(ctx) ... end.", c.Origin))
}

// render implements component.RenderFunc.
func (c *script) render(rc *component.RenderContext) (string, error) {
	l, ok := c.pool.Get().(*lua.State)
	if !ok {
		var err error
		if l, err = c.newState(); err != nil {
			return "", err
		}
	}

	l.Global(renderKey)
	pushContext(l, rc)
	if err := l.ProtectedCall(1, 1, 0); err != nil {
		// The state may be left inconsistent, so it is not reused.
		return "", luaError(l, err)
	}

	var sb strings.Builder
	if err := flatten(l, &sb, -1, 0); err != nil {
		return "", err
	}
	l.SetTop(0)
	c.pool.Put(l)
	return sb.String(), nil
}

// openLibraries opens the libraries a component may use. io, os and
// package are left out, as are the base functions that read files.
func openLibraries(l *lua.State) {
	libs := []lua.RegistryFunction{
		{Name: "_G", Function: lua.BaseOpen},
		{Name: "string", Function: lua.StringOpen},
		{Name: "table", Function: lua.TableOpen},
		{Name: "math", Function: lua.MathOpen},
	}
	for _, lib := range libs {
		lua.Require(l, lib.Name, lib.Function, true)
		l.Pop(1)
	}
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		l.PushNil()
		l.SetGlobal(name)
	}
}

// luaError turns a failed call into an error carrying the Lua message.
func luaError(l *lua.State, err error) error {
	if l.Top() > 0 {
		if msg, ok := l.ToString(-1); ok && msg != "" {
			l.Pop(1)
			return stderrors.New(msg)
		}
	}
	return err
}

// =============================================================================
// Context table
// =============================================================================

var contextFunctions = []lua.RegistryFunction{
	{Name: "html", Function: luaHTML},
	{Name: "escape", Function: luaEscape},
	{Name: "attr", Function: luaAttr},
}

// pushContext pushes the ctx table for one invocation.
func pushContext(l *lua.State, rc *component.RenderContext) {
	l.NewTable()
	lua.SetFunctions(l, contextFunctions, 0)

	l.CreateTable(0, len(rc.Attributes))
	for k, v := range rc.Attributes {
		l.PushString(v)
		l.SetField(-2, k)
	}
	l.SetField(-2, "attrs")

	l.PushString(rc.Slot)
	l.SetField(-2, "slot")

	l.NewTable()
	if store, ok := rc.State.Get(""); ok {
		pushValue(l, store, 0)
		l.SetField(-2, "store")
	}
	l.SetField(-2, "state")
}

// pushValue pushes a plain Go value as the matching Lua value.
func pushValue(l *lua.State, v any, depth int) {
	if depth > maxFlattenDepth {
		l.PushNil()
		return
	}
	switch t := v.(type) {
	case nil:
		l.PushNil()
	case string:
		l.PushString(t)
	case bool:
		l.PushBoolean(t)
	case int:
		l.PushInteger(t)
	case int64:
		l.PushNumber(float64(t))
	case float64:
		l.PushNumber(t)
	case []any:
		l.CreateTable(len(t), 0)
		for i, e := range t {
			pushValue(l, e, depth+1)
			l.RawSetInt(-2, i+1)
		}
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		l.CreateTable(0, len(t))
		for _, k := range keys {
			pushValue(l, t[k], depth+1)
			l.SetField(-2, k)
		}
	default:
		l.PushString(fmt.Sprint(t))
	}
}

// luaHTML concatenates its arguments. Arrays are flattened in order and
// nil or boolean values are skipped.
func luaHTML(l *lua.State) int {
	var sb strings.Builder
	for i := 1; i <= l.Top(); i++ {
		if err := flatten(l, &sb, i, 0); err != nil {
			lua.Errorf(l, "%s", err.Error())
		}
	}
	l.PushString(sb.String())
	return 1
}

func luaEscape(l *lua.State) int {
	l.PushString(render.EscapeText(lua.OptString(l, 1, "")))
	return 1
}

// luaAttr renders name="value", or nothing when value is nil or false.
func luaAttr(l *lua.State) int {
	name := lua.CheckString(l, 1)
	switch l.TypeOf(2) {
	case lua.TypeNil, lua.TypeNone:
		l.PushString("")
	case lua.TypeBoolean:
		if l.ToBoolean(2) {
			l.PushString(" " + name)
		} else {
			l.PushString("")
		}
	default:
		value, _ := l.ToString(2)
		l.PushString(component.Composer{}.Attr(name, value))
	}
	return 1
}

// flatten writes the value at index to sb.
func flatten(l *lua.State, sb *strings.Builder, index, depth int) error {
	if depth > maxFlattenDepth {
		return stderrors.New("markup table nested too deeply")
	}
	index = l.AbsIndex(index)

	switch l.TypeOf(index) {
	case lua.TypeNil, lua.TypeNone, lua.TypeBoolean:
	case lua.TypeNumber:
		n, _ := l.ToNumber(index)
		sb.WriteString(formatNumber(n))
	case lua.TypeString:
		s, _ := l.ToString(index)
		sb.WriteString(s)
	case lua.TypeTable:
		for i := 1; i <= l.RawLength(index); i++ {
			l.RawGetInt(index, i)
			err := flatten(l, sb, -1, depth+1)
			l.Pop(1)
			if err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("cannot render a %s as markup", lua.TypeNameOf(l, index))
	}
	return nil
}

// formatNumber prints integral numbers without a fraction.
func formatNumber(n float64) string {
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}
