package cmd

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/samber/do"
	"github.com/spf13/cobra"

	"github.com/stackup-sh/stackup/internal/compose"
	"github.com/stackup-sh/stackup/internal/config"
	"github.com/stackup-sh/stackup/internal/docker"
	"github.com/stackup-sh/stackup/internal/fetch"
	"github.com/stackup-sh/stackup/internal/filesystem"
	"github.com/stackup-sh/stackup/internal/health"
	"github.com/stackup-sh/stackup/internal/logging"
	"github.com/stackup-sh/stackup/internal/preflight"
)

var (
	configPath string
	logger     zerolog.Logger
)

func newRootCmd(i *do.Injector) *cobra.Command {
	return &cobra.Command{
		Use:   "stackup",
		Short: "Bootstrap the local development stack",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			// Source order determines precedence. The last source loaded will
			// override any previous values.
			var sources []*config.Source
			if configPath != "" {
				sources = append(sources, config.NewJsonFileSource(configPath))
			}
			sources = append(sources,
				config.NewEnvVarSource(),
				config.NewPFlagSource(cmd.Flags()),
			)

			cfg, err := config.LoadSources(sources...)
			if err != nil {
				return fmt.Errorf("failed to load configs: %w", err)
			}

			config.Provide(i, cfg)
			compose.Provide(i)
			docker.Provide(i)
			fetch.Provide(i)
			filesystem.Provide(i)
			health.Provide(i)
			logging.Provide(i)
			preflight.Provide(i)

			logger, err = do.Invoke[zerolog.Logger](i)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			return nil
		},
	}
}

func Execute() {
	i := do.New()
	rootCmd := newRootCmd(i)
	rootCmd.PersistentFlags().StringVarP(&configPath, "config-path", "c", "", "Path to the config.json file for this tool.")
	rootCmd.PersistentFlags().StringP("logging.level", "l", "", "The logging level, e.g. 'debug', 'info', 'error', etc.")
	rootCmd.PersistentFlags().BoolP("logging.pretty", "p", false, "Use pretty logging instead of JSON logging.")
	rootCmd.PersistentFlags().StringP("paths.work-dir", "d", "", "Directory containing the compose definition and env file.")

	rootCmd.AddCommand(newUpCommand(i))
	rootCmd.AddCommand(newDownCommand(i))
	rootCmd.AddCommand(newStatusCommand(i))
	rootCmd.AddCommand(newVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		if logger.GetLevel() == zerolog.NoLevel {
			// NoLevel indicates that the logger is uninitialized. In this case
			// we'll use our fallback logger.
			logging.Fatal(err, "command failed")
		} else {
			logger.Fatal().
				Err(err).
				Msg("command failed")
		}
	}
}
