// Package cli wires the cobra command tree on top of the client facade.
package cli

import (
	"fmt"
	"os"

	"github.com/awibisono/arsipdrive/internal/client"
	"github.com/awibisono/arsipdrive/internal/config"
	"github.com/awibisono/arsipdrive/internal/logging"
	"github.com/awibisono/arsipdrive/internal/types"
	"github.com/awibisono/arsipdrive/internal/utils"
	"github.com/awibisono/arsipdrive/pkg/version"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	globalFlags types.GlobalFlags
	logger      logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "arsipdrive",
	Short: "Upload and organize submission documents in Google Drive",
	Long: `arsipdrive uploads submission documents into a fixed Drive folder
hierarchy (root / category / subject), provisioning missing folders on
the way. Commands support JSON output for automation.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := validateGlobalFlags(); err != nil {
			return err
		}

		if globalFlags.EnvFile != "" {
			if err := godotenv.Load(globalFlags.EnvFile); err != nil {
				return fmt.Errorf("failed to load env file %s: %w", globalFlags.EnvFile, err)
			}
		}

		logConfig := logging.LogConfig{
			Level:           logging.INFO,
			EnableConsole:   !globalFlags.Quiet,
			EnableDebug:     globalFlags.Debug,
			RedactSensitive: true,
			EnableTimestamp: true,
		}
		if globalFlags.Verbose {
			logConfig.Level = logging.DEBUG
		}
		if globalFlags.OutputFormat == types.OutputFormatJSON && !globalFlags.Verbose && !globalFlags.Debug {
			logConfig.EnableConsole = false
		}

		logger = logging.NewLogger(logConfig)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar((*string)(&globalFlags.OutputFormat), "output", "json", "Output format (json, table)")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.Debug, "debug", false, "Enable debug output")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.JSON, "json", false, "Output in JSON format (alias for --output json)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.EnvFile, "env-file", "", "Path to a .env file with credentials")

	rootCmd.AddCommand(versionCmd)
}

func validateGlobalFlags() error {
	if globalFlags.JSON {
		globalFlags.OutputFormat = types.OutputFormatJSON
	}
	if globalFlags.OutputFormat != types.OutputFormatJSON && globalFlags.OutputFormat != types.OutputFormatTable {
		return fmt.Errorf("invalid output format: %s", globalFlags.OutputFormat)
	}
	return nil
}

// newClient loads configuration and builds the facade.
func newClient() (*client.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return client.New(cfg, logger), nil
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(utils.ExitCodeFor(utils.CategoryOf(err)))
	}
	return nil
}

// GetLogger returns the global logger
func GetLogger() logging.Logger {
	return logger
}
