package scan

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/lumipallolabs/folderdiff/cmd/util"
	"github.com/lumipallolabs/folderdiff/internal/config"
	"github.com/lumipallolabs/folderdiff/internal/core"
	"github.com/lumipallolabs/folderdiff/internal/logging"
	"github.com/lumipallolabs/folderdiff/internal/report"
	"github.com/lumipallolabs/folderdiff/internal/scanner"
	"github.com/lumipallolabs/folderdiff/internal/ui"
)

type options struct {
	configPath    string
	reverse       bool
	compare       string
	workers       int
	oneFileSystem bool
	noTUI         bool
	save          bool
	yes           bool
	verbose       bool
	remote        util.RemoteFlags
}

// New creates a new `scan` command.
func New() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "scan SOURCE TARGET",
		Short: "List files in SOURCE that are missing from TARGET",
		Long: "Compare two directory trees and list every file of the master tree\n" +
			"that has no counterpart at the same relative path in the other tree.\n" +
			"The differences can then be uploaded to a remote mirror.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], args[1], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", config.DefaultPath, "config file")
	flags.BoolVar(&opts.reverse, "reverse", false, "list files in TARGET that are missing from SOURCE")
	flags.StringVar(&opts.compare, "compare", "", "file equality: name-size or name")
	flags.IntVar(&opts.workers, "workers", 0, "parallel directory workers (default: number of CPUs)")
	flags.BoolVar(&opts.oneFileSystem, "one-file-system", false, "do not cross filesystem boundaries")
	flags.BoolVar(&opts.noTUI, "no-tui", false, "print plain text even on a terminal")
	flags.BoolVar(&opts.save, "save", false, "save the result as a report for later upload")
	flags.BoolVarP(&opts.yes, "yes", "y", false, "upload without asking")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")
	opts.remote.Register(cmd)

	return cmd
}

func run(cmd *cobra.Command, source, target string, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	if !cmd.Flags().Changed("workers") {
		opts.workers = cfg.Scan.Workers
	}
	if opts.compare == "" {
		opts.compare = cfg.Scan.Compare
	}
	if !cmd.Flags().Changed("one-file-system") {
		opts.oneFileSystem = cfg.Scan.OneFileSystem
	}

	comparator, err := scanner.ParseComparator(opts.compare)
	if err != nil {
		return err
	}

	remoteCfg := opts.remote.Apply(cfg.Remote)
	endpoint, err := util.Endpoint(remoteCfg)
	if err != nil {
		return err
	}

	direction := scanner.MissingInTarget
	if opts.reverse {
		direction = scanner.MissingInSource
	}

	var reports *report.Store
	if opts.save {
		reports = report.New(report.DefaultDir())
	}

	ctrl := core.NewController(core.Options{
		Source:        source,
		Target:        target,
		Direction:     direction,
		Workers:       opts.workers,
		Comparator:    comparator,
		OneFileSystem: opts.oneFileSystem,
		Remote:        endpoint,
		RemoteWorkers: remoteCfg.Workers,
		Reports:       reports,
		Stats:         util.LoadStats(),
	})
	defer ctrl.Stop()

	ctx := cmd.Context()
	if useTUI(opts, isatty.IsTerminal(os.Stdout.Fd())) {
		return runTUI(ctx, ctrl)
	}
	return runPlain(ctx, ctrl, opts.yes)
}

// setVerbose is swapped in tests
var setVerbose = logging.SetVerbose

// useTUI picks the output mode. Verbose logging goes to stderr, so it is
// only turned on for plain output.
func useTUI(opts options, terminal bool) bool {
	if !opts.noTUI && terminal {
		return true
	}
	setVerbose(opts.verbose)
	return false
}

func runTUI(ctx context.Context, ctrl *core.Controller) error {
	p := tea.NewProgram(ui.NewApp(ctx, ctrl), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return ctrl.State().Error
}

func runPlain(ctx context.Context, ctrl *core.Controller, yes bool) error {
	events, err := ctrl.StartScan(ctx)
	if err != nil {
		return err
	}
	entries, err := util.PrintScan(os.Stdout, events)
	if err != nil {
		return err
	}

	if !ctrl.HasRemote() || len(entries) == 0 {
		return nil
	}
	if !yes && !util.Confirm(os.Stdin, os.Stdout, "Upload differences? y/n") {
		return nil
	}

	events, err = ctrl.StartUpload(ctx)
	if err != nil {
		return err
	}
	result, err := util.PrintUpload(os.Stdout, events)
	if err != nil {
		return err
	}
	if result != nil && result.Failed() > 0 {
		return fmt.Errorf("%d of %d files could not be uploaded", result.Failed(), len(entries))
	}
	return nil
}
