package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/iamkaf/dirty/pkg/bootstrap"
	"github.com/iamkaf/dirty/pkg/config"
	dirtyerrors "github.com/iamkaf/dirty/pkg/errors"
	"github.com/iamkaf/dirty/pkg/scan"
	"github.com/iamkaf/dirty/pkg/ui"
)

var cfgFile string
var verbose bool

var (
	scanDirty    bool
	scanLocal    bool
	scanUnpushed bool
	scanRaw      bool
	scanNoColor  bool
)

// rootCmd represents the base command; it scans the given directory.
var rootCmd = &cobra.Command{
	Use:   "dirty [flags] <path>",
	Short: "List git repos, their dirty status, and whether they're local-only",
	Long: `Dirty walks a directory tree, finds every git repository within the depth
limit and reports whether each one has uncommitted work and whether it has
any remote at all.

Repositories are inspected in parallel and listed in a stable order:

   * alpha              dirty (modified, staged or untracked files)
     beta [local]       clean, no remotes configured
     gamma [↑2]         two commits ahead of upstream (--unpushed)
   ! broken (unreadable) could not be inspected

Filters combine: --dirty --local lists only repositories that are both.

Examples:
  dirty ~/src
  dirty -L 5 --dirty ~/work
  dirty --local --raw ~/src | xargs -n1 echo
  dirty --unpushed -f json ~/src`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScan(cmd, args[0])
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// cobra only sets --verbose once parsing succeeds; parse errors need it too.
	cfgFile, verbose = bootstrap.PreParseGlobalFlags(os.Args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if verbose {
			fmt.Fprintf(os.Stderr, "%+v\n\n", err)
		}
		fmt.Fprintln(os.Stderr, dirtyerrors.FormatUserError(err))
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "C", "", "config file (default is $HOME/.config/dirty/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	flags := rootCmd.Flags()
	flags.IntP("depth", "L", 3, "Max depth to search for repos")
	flags.IntP("jobs", "j", 0, "Repositories to inspect concurrently (0 = one per CPU)")
	flags.Duration("timeout", 0, "Per-repository inspection limit, e.g. 5s (0 = none)")
	flags.StringP("format", "f", ui.FormatText, "Output format (text, json, yaml)")
	flags.BoolVarP(&scanDirty, "dirty", "d", false, "Only show dirty repos")
	flags.BoolVarP(&scanLocal, "local", "l", false, "Only show local-only repos (no remotes)")
	flags.BoolVar(&scanUnpushed, "unpushed", false, "Only show repos with unpushed commits (ahead of upstream)")
	flags.BoolVarP(&scanRaw, "raw", "r", false, "Raw output: one path per line, no colors or summary")
	flags.BoolVar(&scanNoColor, "no-color", false, "Disable colored output")
}

func runScan(cmd *cobra.Command, root string) error {
	cfg, err := bootstrap.InitConfig(cfgFile, verbose, cmd.Flags())
	if err != nil {
		return err
	}

	logger := bootstrap.NewLogger(cmd.ErrOrStderr(), cfg.Log.Level, verbose)

	path, err := config.ExpandPath(root)
	if err != nil {
		return errors.Wrap(err, "failed to expand path")
	}

	engine := scan.NewEngine(scan.Options{
		Depth:        cfg.Scan.Depth,
		Workers:      cfg.Scan.Jobs,
		ProbeTimeout: cfg.Scan.Timeout,
		Exclusions:   cfg.Scan.Exclude,
		Filters: scan.Filters{
			DirtyOnly: scanDirty,
			LocalOnly: scanLocal,
			Unpushed:  scanUnpushed,
		},
	}, logger)

	report, err := engine.Run(commandContext(cmd), path)
	if err != nil {
		return err
	}

	opts := ui.Options{
		Format: cfg.Output.Format,
		Raw:    scanRaw,
		Color:  !scanRaw && ui.ColorEnabled(cfg.Output.Color, scanNoColor, outputFile(cmd)),
	}
	if scanRaw {
		opts.Format = ui.FormatText
	}

	return ui.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts).Render(report)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// outputFile returns the command's stdout when it is a real file, so that
// terminal detection can inspect it.
func outputFile(cmd *cobra.Command) *os.File {
	f, _ := cmd.OutOrStdout().(*os.File)
	return f
}

// resetFlags restores every flag to its default and clears viper state.
// This is primarily used in tests, since rootCmd is shared.
func resetFlags() {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	rootCmd.Flags().VisitAll(reset)
	rootCmd.PersistentFlags().VisitAll(reset)
	bootstrap.Reset()
}
