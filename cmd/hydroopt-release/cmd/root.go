package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gladistony/hydroopt-release/internal/config"
	"github.com/gladistony/hydroopt-release/internal/service/release"
	"github.com/gladistony/hydroopt-release/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// rootCmd represents the base command running the full release pipeline.
	rootCmd = &cobra.Command{
		Use:   "hydroopt-release [version]",
		Short: "Bump the project version and build distribution packages",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &release.Options{
				ConfigPath: configPath,
			}
			if len(args) > 0 {
				options.Version = args[0]
			}

			return release.Run(ctx, options)
		},
	}
)

// Execute runs the hydroopt-release CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
}
