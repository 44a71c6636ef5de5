package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	dupdir "github.com/mattkeenan/dupdir/pkg"
)

var version = "dev"

// globalOptions holds the persistent flags shared by every command
type globalOptions struct {
	stateDir  string
	verbose   int
	debug     string
	overrides []string

	stdin  io.Reader
	stdout io.Writer
}

func main() {
	root := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dupdir: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{stdin: stdin, stdout: stdout}

	defaultStateDir := os.Getenv(dupdir.StateDirEnv)
	if defaultStateDir == "" {
		defaultStateDir = dupdir.DefaultStateDir
	}

	rootCmd := &cobra.Command{
		Use:   "dupdir",
		Short: "Find duplicate directories",
		Long: `dupdir finds directories whose file contents duplicate another directory
elsewhere in a tree, even after renames and moves.

Each pipeline stage is a command reading the previous stage's output, and
'all' runs every stage in one go. File digests are cached in the state
directory so a second run only reads files it has not seen.

Examples:
  dupdir all ~/photos                       # Report duplicate directories
  dupdir -c format:human all ~/photos       # Human-readable report
  dupdir find ~/photos > files.txt          # Run the stages separately
  dupdir hash files.txt > hashes.txt
  dupdir dir-files --root ~/photos files.txt > dirfiles.txt
  dupdir dir-hashes dirfiles.txt hashes.txt > dirhashes.txt
  dupdir dup-dirs dirhashes.txt`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			dupdir.SetVerboseLevel(opts.verbose)
			dupdir.SetDebugFlags(opts.debug)
		},
	}
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.stateDir, "state-dir", defaultStateDir, "State directory holding config, ignore patterns and the hash cache (env "+dupdir.StateDirEnv+")")
	flags.CountVarP(&opts.verbose, "verbose", "v", "Verbose output on stderr (repeat for more)")
	flags.StringVar(&opts.debug, "debug", "", "Comma-separated debug flags (hash, walk, ancestors, reduce)")
	flags.StringArrayVarP(&opts.overrides, "config", "c", nil, "Override a config value as key:value (repeatable)")

	rootCmd.AddCommand(
		newFindCmd(opts),
		newHashCmd(opts),
		newDirFilesCmd(opts),
		newDirHashesCmd(opts),
		newDupDirsCmd(opts),
		newAllCmd(opts),
		newConfigCmd(opts),
		newCacheCmd(opts),
		newHashAlgosCmd(opts),
	)

	return rootCmd
}

// openSession opens the state directory and applies config defaults for
// anything the flags left unset
func (o *globalOptions) openSession() (*dupdir.Session, error) {
	session, err := dupdir.OpenSession(o.stateDir, o.overrides)
	if err != nil {
		return nil, err
	}

	verboseConfig := session.Config().GetVerboseConfig()
	if o.verbose == 0 && verboseConfig.Level > 0 {
		dupdir.SetVerboseLevel(verboseConfig.Level)
	}
	if o.debug == "" && verboseConfig.Debug != "" {
		dupdir.SetDebugFlags(verboseConfig.Debug)
	}
	return session, nil
}

// singleStdin rejects "-" for more than one input argument, since the first
// read drains stdin
func singleStdin(cmd *cobra.Command, args []string) error {
	stdin := 0
	for _, arg := range args {
		if arg == "-" {
			stdin++
		}
	}
	if stdin > 1 {
		return fmt.Errorf("%s: stdin (-) can be used for at most one input", cmd.Name())
	}
	return nil
}

// readInput parses a stage input file, "-" meaning stdin
func readInput[T any](o *globalOptions, path string, parse func(string) (T, error)) ([]T, error) {
	if path == "-" {
		items, err := dupdir.ReadLines(o.stdin, parse)
		if err != nil {
			return nil, fmt.Errorf("stdin: %w", err)
		}
		return items, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer file.Close()

	items, err := dupdir.ReadLines(file, parse)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}
