package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/enhance/internal/loader"
)

func componentsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "components",
		Short: "List the components of the project",
		Long: `Compile every configured component source and list the tags it
provides, with the file or object each one came from.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			srcs, err := sources(ctx, cfg)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TAG\tSOURCE")
			total := 0
			for _, src := range srcs {
				scripts, err := src.Scripts(ctx)
				if err != nil {
					return err
				}
				for _, s := range scripts {
					if _, err := loader.Compile(s); err != nil {
						return err
					}
					fmt.Fprintf(tw, "%s\t%s\n", s.Tag, s.Origin)
					total++
				}
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d components\n", total)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to enhance.json (default ./enhance.json)")

	return cmd
}
