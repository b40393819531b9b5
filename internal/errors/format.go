package errors

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// term renders error output for stderr. Colors follow the terminal unless
// disabled.
var term = lipgloss.NewRenderer(os.Stderr)

var (
	errorStyle  = term.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	titleStyle  = term.NewStyle().Bold(true)
	accentStyle = term.NewStyle().Foreground(lipgloss.Color("6"))
	mutedStyle  = term.NewStyle().Foreground(lipgloss.Color("8"))
	markStyle   = term.NewStyle().Foreground(lipgloss.Color("1"))
)

// DisableColors turns off ANSI styling.
func DisableColors() {
	term.SetColorProfile(termenv.Ascii)
}

// EnableColors forces ANSI styling, even when stderr is not a terminal.
func EnableColors() {
	term.SetColorProfile(termenv.ANSI)
}

// Format renders the error for terminal output.
func (e *EnhanceError) Format() string {
	var b strings.Builder

	b.WriteString("\n")
	if e.Code != "" {
		b.WriteString(errorStyle.Render("ERROR "))
		b.WriteString(titleStyle.Render(e.Code + ": " + e.Message))
	} else {
		b.WriteString(errorStyle.Render("ERROR: "))
		b.WriteString(titleStyle.Render(e.Message))
	}
	b.WriteString("\n\n")

	if e.Location != nil {
		fmt.Fprintf(&b, "  %s\n\n", accentStyle.Render(e.Location.String()))
		if len(e.Context) > 0 {
			e.writeContext(&b)
			b.WriteString("\n")
		}
	}

	if lines := wrapText(e.Detail, 70); len(lines) > 0 {
		for _, line := range lines {
			fmt.Fprintf(&b, "  %s\n", line)
		}
		b.WriteString("\n")
	}

	if e.Suggestion != "" {
		fmt.Fprintf(&b, "  %s%s\n\n", accentStyle.Render("Hint: "), e.Suggestion)
	}

	if e.Wrapped != nil {
		fmt.Fprintf(&b, "  %s%s\n", mutedStyle.Render("Cause: "), e.Wrapped.Error())
	}

	return b.String()
}

// writeContext writes the source lines around Location, marking the
// offending line and, when known, its column.
func (e *EnhanceError) writeContext(b *strings.Builder) {
	first := e.Location.Line - len(e.Context)/2
	bar := mutedStyle.Render(" │ ")

	for i, line := range e.Context {
		n := first + i
		if n != e.Location.Line {
			fmt.Fprintf(b, "    %4d%s%s\n", n, bar, line)
			continue
		}
		fmt.Fprintf(b, "  %s%4d%s%s\n", markStyle.Render("→ "), n, bar, line)
		if e.Location.Column > 0 {
			fmt.Fprintf(b, "       %s%s%s\n",
				mutedStyle.Render("│ "),
				strings.Repeat(" ", e.Location.Column-1),
				markStyle.Render("^"))
		}
	}
}

// FormatCompact returns the error on one line, prefixed with its location.
func (e *EnhanceError) FormatCompact() string {
	parts := make([]string, 0, 3)
	if e.Location != nil {
		parts = append(parts, e.Location.String())
	}
	if e.Code != "" {
		parts = append(parts, e.Code)
	}
	parts = append(parts, e.Message)
	return strings.Join(parts, ": ")
}

type jsonLocation struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

type jsonError struct {
	Code       string        `json:"code,omitempty"`
	Category   Category      `json:"category"`
	Message    string        `json:"message"`
	Detail     string        `json:"detail,omitempty"`
	Location   *jsonLocation `json:"location,omitempty"`
	Suggestion string        `json:"suggestion,omitempty"`
	Cause      string        `json:"cause,omitempty"`
}

// FormatJSON returns the error as a JSON object.
func (e *EnhanceError) FormatJSON() string {
	out := jsonError{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Suggestion: e.Suggestion,
	}
	if e.Location != nil {
		out.Location = &jsonLocation{File: e.Location.File, Line: e.Location.Line, Column: e.Location.Column}
	}
	if e.Wrapped != nil {
		out.Cause = e.Wrapped.Error()
	}

	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Sprintf(`{"message":%q}`, e.Message)
	}
	return string(data)
}

// wrapText breaks text into lines of at most width bytes. Words longer
// than width get a line of their own.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var (
		lines []string
		line  = words[0]
	)
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	return append(lines, line)
}

// PrintError prints a formatted error to stderr.
func PrintError(err error) {
	fmt.Fprint(os.Stderr, FormatError(err))
}

// FormatError formats any error, preferring the first EnhanceError in its
// chain.
func FormatError(err error) string {
	for e := err; e != nil; {
		if ee, ok := e.(*EnhanceError); ok {
			return ee.Format()
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}
		e = u.Unwrap()
	}
	return fmt.Sprintf("\n%s %s\n\n", errorStyle.Render("ERROR:"), err.Error())
}
