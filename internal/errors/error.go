package errors

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig    Category = "config"
	CategoryComponent Category = "component"
	CategoryRender    Category = "render"
	CategoryCLI       Category = "cli"
)

// Location is a position in a source file.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as file:line[:column].
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// EnhanceError is a coded error with optional source location and hints.
type EnhanceError struct {
	// Code is a unique error identifier (e.g., "E201").
	Code string

	// Category groups related codes.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation.
	Detail string

	// Location points at the offending source, if known.
	Location *Location

	// Context holds source lines around Location.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *EnhanceError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *EnhanceError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds a source location and reads the surrounding lines.
func (e *EnhanceError) WithLocation(file string, line, column int) *EnhanceError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithLocationFromError extracts a location from a "file:line: message"
// style error, as produced by script compilers.
func (e *EnhanceError) WithLocationFromError(file string, err error) *EnhanceError {
	if err == nil {
		return e
	}
	msg := err.Error()
	if i := strings.Index(msg, ":"); i >= 0 {
		rest := msg[i+1:]
		if j := strings.Index(rest, ":"); j > 0 {
			if line, convErr := strconv.Atoi(rest[:j]); convErr == nil && line > 0 {
				return e.WithLocation(file, line, 0)
			}
		}
	}
	e.Location = &Location{File: file}
	return e
}

// WithSuggestion adds a fix suggestion.
func (e *EnhanceError) WithSuggestion(s string) *EnhanceError {
	e.Suggestion = s
	return e
}

// WithDetail replaces the detailed explanation.
func (e *EnhanceError) WithDetail(d string) *EnhanceError {
	e.Detail = d
	return e
}

// Wrap sets the underlying error.
func (e *EnhanceError) Wrap(err error) *EnhanceError {
	e.Wrapped = err
	return e
}

func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}

	return lines
}

// New creates an EnhanceError from a registered code.
func New(code string) *EnhanceError {
	template, ok := codes[code]
	if !ok {
		return &EnhanceError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &EnhanceError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates an uncoded error with a formatted message.
func Newf(category Category, format string, args ...any) *EnhanceError {
	return &EnhanceError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps err under code unless it already is an EnhanceError.
func FromError(err error, code string) *EnhanceError {
	if err == nil {
		return nil
	}
	if ee, ok := err.(*EnhanceError); ok {
		return ee
	}
	return New(code).Wrap(err)
}
