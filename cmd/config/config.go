package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumipallolabs/folderdiff/cmd/util"
	"github.com/lumipallolabs/folderdiff/internal/config"
	"github.com/lumipallolabs/folderdiff/internal/scanner"
)

type options struct {
	configPath    string
	compare       string
	workers       int
	oneFileSystem bool
	remote        util.RemoteFlags
}

// New creates a new `config` command.
func New() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Save scan and remote defaults to the config file",
		Long: "Update the folderdiff config file with the given flags. Settings\n" +
			"that are not passed keep their current value.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := run(cmd, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", config.DefaultPath, "config file")
	flags.StringVar(&opts.compare, "compare", "", "file equality: name-size or name")
	flags.IntVar(&opts.workers, "workers", 0, "parallel directory workers (0: number of CPUs)")
	flags.BoolVar(&opts.oneFileSystem, "one-file-system", false, "do not cross filesystem boundaries")
	opts.remote.Register(cmd)

	return cmd
}

func run(cmd *cobra.Command, opts options) (string, error) {
	cfg, err := config.Read(opts.configPath)
	if err != nil {
		return "", err
	}

	flags := cmd.Flags()
	if flags.Changed("compare") {
		if _, err := scanner.ParseComparator(opts.compare); err != nil {
			return "", err
		}
		cfg.Scan.Compare = opts.compare
	}
	if flags.Changed("workers") {
		cfg.Scan.Workers = opts.workers
	}
	if flags.Changed("one-file-system") {
		cfg.Scan.OneFileSystem = opts.oneFileSystem
	}

	cfg.Remote = opts.remote.Apply(cfg.Remote)
	if _, err := util.Endpoint(cfg.Remote); err != nil {
		return "", err
	}

	if err := config.Write(opts.configPath, cfg); err != nil {
		return "", err
	}
	return opts.configPath, nil
}
