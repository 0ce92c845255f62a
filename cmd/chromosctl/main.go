package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"chromos/internal/config"
	"chromos/internal/logging"
	"chromos/pkg/chromos"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, describeError(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	root := newRootCmd(out)
	root.SetArgs(args)
	root.SetOut(out)
	return root.ExecuteContext(ctx)
}

// app carries the persistent flags and the resources opened for a command.
type app struct {
	out io.Writer

	configPath string
	storeKind  string
	storePath  string
	verbose    bool

	logger *zap.Logger
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}
	root := &cobra.Command{
		Use:           "chromosctl",
		Short:         "Compose, breed and inspect binary genomes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML settings file (defaults are built in)")
	flags.StringVar(&a.storeKind, "store", "", "store backend: memory|file|badger|sqlite")
	flags.StringVar(&a.storePath, "path", "", "store directory, or database file for sqlite")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		a.composeCmd(),
		a.inspectCmd(),
		a.dumpCmd(),
		a.countCmd(),
		a.findCmd(),
		a.breedCmd(),
		a.breedsCmd(),
		a.wipeParentsCmd(),
		a.lineageCmd(),
		a.listCmd(),
		a.deleteCmd(),
	)
	return root
}

// open loads settings, applies flag overrides and opens a client. The caller
// closes it.
func (a *app) open(cmd *cobra.Command) (*chromos.Client, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}
	if a.storeKind != "" {
		cfg.Store.Kind = a.storeKind
	}
	if a.storePath != "" {
		cfg.Store.Path = a.storePath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger, err := logging.Verbose(cfg.Log.Level, a.verbose)
	if err != nil {
		return nil, err
	}
	a.logger = logger
	return chromos.Open(cmd.Context(), chromos.OptionsFromConfig(cfg, logger))
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
