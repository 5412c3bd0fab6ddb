package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gladistony/hydroopt-release/internal/config"
	"github.com/gladistony/hydroopt-release/internal/logger"
	syncsvc "github.com/gladistony/hydroopt-release/internal/service/sync"
	"github.com/gladistony/hydroopt-release/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// rootCmd represents the base command stamping a version across the project files.
	rootCmd = &cobra.Command{
		Use:   "hydroopt-bump <version>",
		Short: "Synchronize a release version across the project files",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			ctx = logger.WithName(ctx, "hydroopt-bump")

			if _, err := version.ParseRelease(args[0]); err != nil {
				return err
			}

			cfg, err := config.LoadOrDefault(configPath)
			if err != nil {
				return err
			}

			cfg.Version = args[0]
			if err = config.Validate(cfg); err != nil {
				return err
			}

			// Per-file outcomes are logged by the synchronizer and do
			// not change the exit status.
			_ = syncsvc.Run(ctx, &syncsvc.Options{
				Version: cfg.Version,
				Targets: cfg.Targets,
			})

			return nil
		},
	}
)

// Execute runs the hydroopt-bump CLI and exits with non-zero status on error.
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
