package errors

import "sort"

// Template describes a registered error code.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

var codes = map[string]Template{
	// Configuration (E1xx)

	"E100": {
		Category: CategoryConfig,
		Message:  "Configuration file not readable",
		Detail:   "The configuration file could not be opened or read.",
	},
	"E101": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "enhance.json must be a valid JSON object.",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Invalid environment override",
		Detail:   "An ENHANCE_* environment variable could not be parsed.",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range or refers to a missing resource.",
	},

	// Components (E2xx)

	"E200": {
		Category: CategoryComponent,
		Message:  "Component source not readable",
		Detail:   "A component source location could not be listed or read.",
	},
	"E201": {
		Category: CategoryComponent,
		Message:  "Component failed to compile",
		Detail:   "The component script has a syntax error or does not produce a render function.",
	},
	"E202": {
		Category: CategoryComponent,
		Message:  "Duplicate component",
		Detail:   "Two component sources define the same tag name. Tag names must be unique across all sources.",
	},
	"E203": {
		Category: CategoryComponent,
		Message:  "Invalid component name",
		Detail:   "Component tag names must contain a hyphen, for example my-header.",
	},

	// Rendering (E3xx)

	"E300": {
		Category: CategoryRender,
		Message:  "Component render failed",
		Detail:   "A render function returned an error or its output could not be processed.",
	},
	"E301": {
		Category: CategoryRender,
		Message:  "Maximum expansion depth exceeded",
		Detail:   "Components nested deeper than the configured limit. A component probably renders its own tag.",
	},
	"E302": {
		Category: CategoryRender,
		Message:  "Malformed markup",
		Detail:   "The input markup could not be parsed.",
	},
	"E303": {
		Category: CategoryRender,
		Message:  "Page not found",
	},
	"E304": {
		Category: CategoryRender,
		Message:  "Invalid page state",
		Detail:   "The page state file must contain a YAML or JSON document.",
	},
	"E305": {
		Category: CategoryRender,
		Message:  "Render canceled",
		Detail:   "The request was canceled or timed out before rendering finished.",
	},

	// Command line (E4xx)

	"E400": {
		Category: CategoryCLI,
		Message:  "Invalid command arguments",
	},
	"E401": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The HTTP server stopped with an error.",
	},
}

// Codes returns all registered codes in sorted order.
func Codes() []string {
	out := make([]string, 0, len(codes))
	for code := range codes {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the template for a code.
func Lookup(code string) (Template, bool) {
	t, ok := codes[code]
	return t, ok
}
