package main

import (
	"fmt"

	"github.com/spf13/cobra"

	dupdir "github.com/mattkeenan/dupdir/pkg"
)

func newHashAlgosCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "hashalgos",
		Short: "List supported hash algorithms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range dupdir.HashAlgorithmNames() {
				alg, err := dupdir.GetHashAlgorithm(name)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintf(out, "%-12s %3d bits\n", alg.Name, alg.Size*8); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
