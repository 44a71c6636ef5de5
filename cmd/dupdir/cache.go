package main

import (
	"fmt"

	"github.com/spf13/cobra"

	dupdir "github.com/mattkeenan/dupdir/pkg"
)

func newCacheCmd(opts *globalOptions) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the hash cache",
	}

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "List cached digests as a hash list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := opts.openSession()
			if err != nil {
				return err
			}
			return dupdir.WriteLines(cmd.OutOrStdout(), session.Cache().Entries(), dupdir.FormatHashLine)
		},
	})

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Summarize the hash cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := opts.openSession()
			if err != nil {
				return err
			}
			cache := session.Cache()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "index:     %s\n", cache.IndexPath())
			fmt.Fprintf(out, "algorithm: %s\n", cache.Algorithm().Name)
			fmt.Fprintf(out, "entries:   %d\n", cache.Len())
			_, err = fmt.Fprintf(out, "other:     %d\n", cache.ForeignLen())
			return err
		},
	})

	return cacheCmd
}
