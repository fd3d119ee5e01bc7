// Package root contains the root command for the application
package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kcbailey111/finance-agent/internal/config"
	"github.com/kcbailey111/finance-agent/internal/container"
	"github.com/kcbailey111/finance-agent/internal/logging"
	"github.com/kcbailey111/finance-agent/internal/models"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input    string
	InputDir string
	Output   string
}

var (
	// Log is the shared logger instance for commands. PersistentPreRunE
	// replaces it with one built from the resolved configuration.
	Log logging.Logger = logging.NewLogrusAdapter("info", "text")

	// AppConfig is the resolved application configuration, populated
	// before any subcommand runs.
	AppConfig *config.Config

	// AppContainer holds the wired application dependencies for the
	// lifetime of a command invocation.
	AppContainer *container.Container

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "finance-agent",
		Short: "A CLI tool to categorize bank transactions and surface spending insights.",
		Long: `finance-agent ingests bank transaction CSV exports, categorizes each
transaction through a rule engine with optional AI escalation, flags
anomalies, detects recurring charges, and reports spending analytics.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to finance-agent!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()

			cfg, err := config.InitializeConfig()
			if err != nil {
				return err
			}
			AppConfig = cfg

			// Configured logger is available before the container exists so
			// container construction errors are logged in the right format.
			Log = logging.NewLogrusAdapterFromLogger(config.ConfigureLoggingFromConfig(cfg))

			c, err := container.NewContainer(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			AppContainer = c
			Log = c.GetLogger()
			return nil
		},
		// Persist learned overrides and shut down the AI client after ANY
		// command finishes.
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if AppContainer == nil {
				return
			}
			if err := AppContainer.Close(); err != nil {
				Log.WithError(err).Warn("Failed to close application container")
			}
		},
	}

	// Common flags accessible to all commands
	SharedFlags = CommonFlags{}

	// Specific anomalies command flags
	TopN int

	// Specific analyze command flags
	SummaryFile string

	// Specific categorize command flags
	Merchant    string
	Description string
	Amount      string
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input CSV file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.InputDir, "input-dir", "I", "", "Directory of CSV files to ingest")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file")
}

// GetConfig returns the resolved application configuration, or nil before
// the root command has run.
func GetConfig() *config.Config {
	return AppConfig
}

// GetContainer returns the wired dependency container, or nil before the
// root command has run.
func GetContainer() *container.Container {
	return AppContainer
}

// GetLogrusAdapter returns the shared command logger.
func GetLogrusAdapter() logging.Logger {
	return Log
}

// RequireContainer returns the container built by PersistentPreRunE,
// constructing one on demand when a command function is exercised outside
// the normal cobra lifecycle.
func RequireContainer(ctx context.Context) (*container.Container, error) {
	if AppContainer != nil {
		return AppContainer, nil
	}
	cfg := AppConfig
	if cfg == nil {
		var err error
		cfg, err = config.InitializeConfig()
		if err != nil {
			return nil, err
		}
		AppConfig = cfg
	}
	c, err := container.NewContainer(ctx, cfg)
	if err != nil {
		return nil, err
	}
	AppContainer = c
	return c, nil
}

// LoadInput reads transactions from --input or --input-dir, whichever is
// set. Exactly one of the two must be provided.
func LoadInput(c *container.Container) ([]models.Transaction, error) {
	switch {
	case SharedFlags.Input != "" && SharedFlags.InputDir != "":
		return nil, fmt.Errorf("--input and --input-dir are mutually exclusive")
	case SharedFlags.Input != "":
		return c.GetLoader().LoadFile(SharedFlags.Input)
	case SharedFlags.InputDir != "":
		return c.GetLoader().LoadDir(SharedFlags.InputDir)
	default:
		return nil, fmt.Errorf("either --input or --input-dir is required")
	}
}
