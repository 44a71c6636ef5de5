package main

import (
	"github.com/spf13/cobra"

	dupdir "github.com/mattkeenan/dupdir/pkg"
)

func newDupDirsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dup-dirs <dir-hashes.txt|->",
		Short: "Reduce directory digests to duplicate directories",
		Long: `Group directories by digest, drop unique ones and directories inside another
member of their group, and print "<digest>;<dir>" lines sorted by directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := opts.openSession()
			if err != nil {
				return err
			}

			dirHashes, err := readInput(opts, args[0], dupdir.ParseDirHashLine)
			if err != nil {
				return err
			}
			return dupdir.WriteLines(cmd.OutOrStdout(), session.DupDirs(dirHashes), dupdir.FormatDupDirLine)
		},
	}
}
