package main

import (
	"github.com/spf13/cobra"

	dupdir "github.com/mattkeenan/dupdir/pkg"
)

func newDirFilesCmd(opts *globalOptions) *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "dir-files <files.txt|->",
		Short: "Pair every file with each of its ancestor directories",
		Long: `Print one "<ancestor>;<file>" line for every ancestor directory of every file
in a file list, grouped by ancestor.

The filesystem root is never an ancestor. With --root the chain also stops
before the given search root, so files directly inside it contribute nothing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := readInput(opts, args[0], dupdir.ParseFileLine)
			if err != nil {
				return err
			}

			dirFiles, err := dupdir.DirFiles(files, root)
			if err != nil {
				return err
			}
			return dupdir.WriteLines(cmd.OutOrStdout(), dirFiles, dupdir.FormatDirFileLine)
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "Search root the ancestor chain stops before")
	return cmd
}
