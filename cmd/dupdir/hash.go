package main

import (
	"github.com/spf13/cobra"

	dupdir "github.com/mattkeenan/dupdir/pkg"
)

func newHashCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "hash <files.txt|->",
		Short: "Hash every file in a file list",
		Long: `Hash every file named in a file list and print "<digest>  <path>" lines in
input order. Digests already in the hash cache are reused and new ones are
saved to it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := opts.openSession()
			if err != nil {
				return err
			}

			files, err := readInput(opts, args[0], dupdir.ParseFileLine)
			if err != nil {
				return err
			}

			fileHashes, err := session.HashFiles(cmd.Context(), files)
			if err != nil {
				return err
			}
			if err := session.Close(); err != nil {
				return err
			}
			return dupdir.WriteLines(cmd.OutOrStdout(), fileHashes, dupdir.FormatHashLine)
		},
	}
}
