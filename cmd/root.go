package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/lumipallolabs/folderdiff/cmd/config"
	"github.com/lumipallolabs/folderdiff/cmd/scan"
	"github.com/lumipallolabs/folderdiff/cmd/upload"
	"github.com/lumipallolabs/folderdiff/cmd/util"
	"github.com/lumipallolabs/folderdiff/cmd/version"
)

// Execute runs the main CLI process.
func Execute() {
	rootCmd := &cobra.Command{
		Use:   "folderdiff",
		Short: "Find files missing from a mirror and upload them",

		SilenceUsage: true,

		// The error is printed by HandleFatalError
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		config.New(),
		scan.New(),
		upload.New(),
		version.New(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		util.HandleFatalError(err)
	}
}
