package main

import (
	"fmt"
	"os"

	"github.com/asakaida/unicatalog/internal/app"
	"github.com/asakaida/unicatalog/internal/infrastructure/config"
	"github.com/asakaida/unicatalog/internal/infrastructure/logging"
	"github.com/asakaida/unicatalog/internal/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	envFlag string

	application *app.App
	catalog     services.CatalogServiceInterface
	logger      = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Operator CLI for the course catalog",
	Long: `Operator CLI for the course catalog.
Reads and writes catalog entities and their dynamic attributes directly
against PostgreSQL. Records are printed as JSON.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if application != nil {
			_ = application.Close()
		}
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&envFlag, "env", "e", "dev", "Environment to use (dev, test, prod)")

	rootCmd.AddCommand(
		newCreateCmd(),
		newGetCmd(),
		newListCmd(),
		newUpdateCmd(),
		newDeleteCmd(),
		newSetCmd(),
		newSearchCmd(),
		newFilterCmd(),
		newChildrenCmd(),
		newAttributesCmd(),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	if err := config.InitConfig(envFlag); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Keep stdout for records; diagnostics go to stderr
	logger, err = logging.New(cfg.Logging.Level, "console")
	if err != nil {
		return err
	}

	application, err = app.New(cfg, logger)
	if err != nil {
		return err
	}
	catalog = application.Catalog
	return nil
}
