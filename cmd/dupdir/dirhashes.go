package main

import (
	"github.com/spf13/cobra"

	dupdir "github.com/mattkeenan/dupdir/pkg"
)

func newDirHashesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dir-hashes <dir-files.txt> <hashes.txt>",
		Short: "Compute a digest for every directory",
		Long: `Combine dir-files output with a hash list and print "<digest>  <dir>" for every
directory with at least one file under it, sorted by digest.

A directory digest depends only on the set of distinct file digests under it.`,
		Args: cobra.MatchAll(cobra.ExactArgs(2), singleStdin),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := opts.openSession()
			if err != nil {
				return err
			}

			dirFiles, err := readInput(opts, args[0], dupdir.ParseDirFileLine)
			if err != nil {
				return err
			}
			fileHashes, err := readInput(opts, args[1], dupdir.ParseHashLine)
			if err != nil {
				return err
			}

			dirHashes, err := session.DirHashes(dirFiles, fileHashes)
			if err != nil {
				return err
			}
			return dupdir.WriteLines(cmd.OutOrStdout(), dirHashes, dupdir.FormatDirHashLine)
		},
	}
}
