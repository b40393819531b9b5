package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	enhance "github.com/vango-dev/enhance"
	"github.com/vango-dev/enhance/internal/errors"
	"github.com/vango-dev/enhance/pkg/host"
	"github.com/vango-dev/enhance/pkg/markup"
	"github.com/vango-dev/enhance/pkg/render"
)

// Output formats of the render command.
const (
	formatBody     = "body"
	formatDocument = "document"
	formatJSON     = "json"
)

type renderOptions struct {
	configPath string
	statePath  string
	format     string
	pretty     bool
}

func renderCmd() *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Render markup once and print the result",
		Long: `Render a file, or standard input, with the project's components.

The output is the expanded body by default. Use --format=document for
a complete document with the style block in its head, or --format=json
for the document, body and styles as one JSON object.

Examples:
  enhance render pages/index.html
  echo '<my-header>Hi</my-header>' | enhance render -
  enhance render page.html --state state.yaml --format=json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			return runRender(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), input, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to enhance.json (default ./enhance.json)")
	cmd.Flags().StringVar(&opts.statePath, "state", "", "YAML or JSON file with the initial state")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatBody, "Output format: body, document or json")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Indent the HTML output")

	return cmd
}

func runRender(ctx context.Context, stdin io.Reader, w io.Writer, input string, opts renderOptions) error {
	switch opts.format {
	case formatBody, formatDocument, formatJSON:
	default:
		return errors.New("E400").WithDetail(fmt.Sprintf("unknown format %q", opts.format)).
			WithSuggestion("Use --format=body, --format=document or --format=json")
	}

	src, err := readInput(stdin, input)
	if err != nil {
		return err
	}

	var state any
	if opts.statePath != "" {
		if state, err = host.LoadStateFile(opts.statePath); err != nil {
			return errors.New("E304").Wrap(err)
		}
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	reg, err := buildRegistry(ctx, cfg)
	if err != nil {
		return err
	}

	res, err := newRenderer(reg, cfg).Process(ctx, src, state)
	if err != nil {
		return errors.New(renderCode(err)).Wrap(err)
	}

	if opts.pretty {
		if res.Body, err = prettyFragment(res.Body); err != nil {
			return err
		}
		if res.Document, err = prettyDocument(res.Document); err != nil {
			return err
		}
	}

	switch opts.format {
	case formatJSON:
		enc := json.NewEncoder(w)
		if opts.pretty {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(res)
	case formatDocument:
		_, err = fmt.Fprintln(w, res.Document)
	default:
		_, err = fmt.Fprintln(w, res.Body)
	}
	return err
}

func readInput(stdin io.Reader, input string) (string, error) {
	var (
		data []byte
		err  error
	)
	if input == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(input)
	}
	if err != nil {
		return "", errors.New("E400").WithDetail("input could not be read").Wrap(err)
	}
	return string(data), nil
}

// renderCode maps a Process error to its error code.
func renderCode(err error) string {
	var (
		depth     *enhance.RenderDepthExceededError
		malformed *enhance.MalformedMarkupError
	)
	switch {
	case stderrors.As(err, &depth):
		return "E301"
	case stderrors.As(err, &malformed):
		return "E302"
	default:
		return "E300"
	}
}

var prettyRenderer = render.NewRenderer(render.RendererConfig{Pretty: true})

func prettyFragment(s string) (string, error) {
	nodes, err := markup.ParseFragment(s)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := prettyRenderer.RenderNodes(&sb, nodes); err != nil {
		return "", err
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

func prettyDocument(s string) (string, error) {
	doc, err := markup.ParseDocument(s)
	if err != nil {
		return "", err
	}
	out, err := prettyRenderer.RenderToString(doc)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}
