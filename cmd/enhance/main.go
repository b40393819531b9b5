package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/enhance/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌─┐┌┐┌┬ ┬┌─┐┌┐┌┌─┐┌─┐
  ├┤ │││├─┤├─┤││││  ├┤
  └─┘┘└┘┴ ┴┴ ┴┘└┘└─┘└─┘
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "enhance",
		Short: "Server-side rendering for custom elements",
		Long: `Enhance expands custom elements on the server.

Components are small Lua scripts named after their tag. Pages are
plain HTML that use those tags; the server replaces every custom
element with its rendered output and collects the component styles
into the document head.

  • One file per component, components/my-header.lua
  • Scoped component styles
  • Named slots and initial state
  • Hot reload development server`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		renderCmd(),
		componentsCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

// printBanner prints the ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
