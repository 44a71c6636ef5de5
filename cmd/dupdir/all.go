package main

import (
	"github.com/spf13/cobra"

	dupdir "github.com/mattkeenan/dupdir/pkg"
)

func newAllCmd(opts *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "all <root>",
		Short: "Run every stage and report duplicate directories",
		Long: `Enumerate, hash, expand and reduce in one run, then print the duplicate
directories under root. The search root itself is never reported.

The directory digests are computed with the configured strategy: "batch"
builds every stage in memory, "streaming" computes them in a single walk.
Both give the same result.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := opts.openSession()
			if err != nil {
				return err
			}

			if format == "" {
				format = session.Config().GetOutputConfig().Format
			}
			if err := dupdir.ValidateOutputFormat(format); err != nil {
				return err
			}

			report, err := session.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := session.Close(); err != nil {
				return err
			}
			return report.Render(cmd.OutOrStdout(), format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: lines, human, json, yaml (default from config)")
	return cmd
}
