package upload

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lumipallolabs/folderdiff/cmd/util"
	"github.com/lumipallolabs/folderdiff/internal/config"
	"github.com/lumipallolabs/folderdiff/internal/core"
	"github.com/lumipallolabs/folderdiff/internal/logging"
	"github.com/lumipallolabs/folderdiff/internal/report"
)

type options struct {
	configPath string
	reverse    bool
	yes        bool
	verbose    bool
	remote     util.RemoteFlags
}

// New creates a new `upload` command.
func New() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "upload SOURCE TARGET",
		Short: "Upload the differences of the last saved scan",
		Long: "Upload the files listed in the most recent report saved by\n" +
			"`folderdiff scan --save SOURCE TARGET` to the configured remote.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], args[1], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", config.DefaultPath, "config file")
	flags.BoolVar(&opts.reverse, "reverse", false, "use the report of a --reverse scan")
	flags.BoolVarP(&opts.yes, "yes", "y", false, "upload without asking")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")
	opts.remote.Register(cmd)

	return cmd
}

func run(cmd *cobra.Command, source, target string, opts options) error {
	logging.SetVerbose(opts.verbose)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	remoteCfg := opts.remote.Apply(cfg.Remote)
	endpoint, err := util.Endpoint(remoteCfg)
	if err != nil {
		return err
	}
	if endpoint == nil {
		return errors.New("no remote configured; pass --remote or set remote.url in " + config.DefaultPath)
	}

	name, err := reportName(source, target, opts.reverse)
	if err != nil {
		return err
	}
	store := report.New(report.DefaultDir())
	saved, err := store.LoadLatest(name)
	if err != nil {
		return fmt.Errorf("load report: %w", err)
	}
	fmt.Printf("Report from %s: %d files missing\n", saved.Created.Format("2006-01-02 15:04:05"), len(saved.Entries))
	if len(saved.Entries) == 0 {
		return nil
	}

	if !opts.yes && !util.Confirm(os.Stdin, os.Stdout, "Upload differences? y/n") {
		return nil
	}

	ctrl := core.NewController(core.Options{
		Remote:        endpoint,
		RemoteWorkers: remoteCfg.Workers,
		Stats:         util.LoadStats(),
	})
	defer ctrl.Stop()
	ctrl.SetReport(saved)

	events, err := ctrl.StartUpload(cmd.Context())
	if err != nil {
		return err
	}
	result, err := util.PrintUpload(os.Stdout, events)
	if err != nil {
		return err
	}
	if result != nil && result.Failed() > 0 {
		return fmt.Errorf("%d of %d files could not be uploaded", result.Failed(), len(saved.Entries))
	}
	return nil
}

// reportName resolves the roots the same way a scan does
func reportName(source, target string, reverse bool) (string, error) {
	src, err := filepath.Abs(source)
	if err != nil {
		return "", err
	}
	tgt, err := filepath.Abs(target)
	if err != nil {
		return "", err
	}
	if reverse {
		src, tgt = tgt, src
	}
	return report.Name(src, tgt), nil
}
