package main

import (
	"github.com/spf13/cobra"

	dupdir "github.com/mattkeenan/dupdir/pkg"
)

func newFindCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "find <root>",
		Short: "List regular files under a root",
		Long: `List every regular file under root as an absolute path, one per line.

Symlinks and special files are skipped, as are the state directory and any
path matching a pattern in the state directory's ignore file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := opts.openSession()
			if err != nil {
				return err
			}

			if ignore := session.IgnoreManager(); ignore.HasPatterns() {
				dupdir.VerboseLog(1, "Applying ignore patterns from %s", ignore.GetIgnoreFilePath())
			}

			files, err := session.Find(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return dupdir.WriteLines(cmd.OutOrStdout(), files, dupdir.FormatFileLine)
		},
	}
}
