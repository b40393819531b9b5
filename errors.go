package enhance

import (
	"errors"
	"fmt"
)

// RenderError reports a failed render function. Cause is the error the
// function returned, a recovered panic, or the reason its output could not
// be used.
type RenderError struct {
	Tag   string
	Cause error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render <%s>: %v", e.Tag, e.Cause)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// RenderDepthExceededError is returned when component expansion nests
// deeper than the configured limit, usually because a component emits its
// own tag.
type RenderDepthExceededError struct {
	Tag   string
	Depth int
}

func (e *RenderDepthExceededError) Error() string {
	return fmt.Sprintf("render <%s>: maximum expansion depth %d exceeded", e.Tag, e.Depth)
}

// MalformedMarkupError reports input markup that could not be parsed.
type MalformedMarkupError struct {
	Cause error
}

func (e *MalformedMarkupError) Error() string {
	return fmt.Sprintf("malformed markup: %v", e.Cause)
}

func (e *MalformedMarkupError) Unwrap() error {
	return e.Cause
}

// panicError wraps a value recovered from a panicking render function.
type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

var (
	errNoBody  = errors.New("document has no <body>")
	errNilNode = errors.New("nil node")
)
