package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/asakaida/unicatalog/internal/infrastructure/config"
	"github.com/asakaida/unicatalog/internal/infrastructure/database"
	"github.com/asakaida/unicatalog/internal/infrastructure/logging"
	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const migrationsPathSuffix = "internal/infrastructure/database/migrations/postgres"

var (
	envFlag        string
	migrationsFlag string

	logger = zap.NewNop()
	pg     *database.Postgres
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database migration tool for the course catalog",
	Long: `Database migration tool for the course catalog.
Manages the PostgreSQL EAV schema using golang-migrate.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupDatabase,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if pg != nil {
			_ = pg.Close()
		}
		_ = logger.Sync()
	},
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrate(func(m *migrate.Migrate) error {
			err := m.Up()
			if errors.Is(err, migrate.ErrNoChange) {
				logger.Info("no migrations to apply")
				return nil
			}
			if err != nil {
				return fmt.Errorf("migration up failed: %w", err)
			}
			logger.Info("migration up completed")
			return nil
		})
	},
}

var downCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Rollback migrations",
	Long:  `Rollback the specified number of migrations (default: 1).`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps := 1
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("steps must be a positive integer, got %q", args[0])
			}
			steps = n
		}

		return withMigrate(func(m *migrate.Migrate) error {
			err := m.Steps(-steps)
			if errors.Is(err, migrate.ErrNoChange) {
				logger.Info("no migrations to rollback")
				return nil
			}
			if err != nil {
				return fmt.Errorf("migration down failed: %w", err)
			}
			logger.Info("migration down completed", zap.Int("steps", steps))
			return nil
		})
	},
}

var gotoCmd = &cobra.Command{
	Use:   "goto <version>",
	Short: "Migrate to a specific version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[0], err)
		}

		return withMigrate(func(m *migrate.Migrate) error {
			err := m.Migrate(uint(version))
			if errors.Is(err, migrate.ErrNoChange) {
				logger.Info("already at version", zap.Uint64("version", version))
				return nil
			}
			if err != nil {
				return fmt.Errorf("migration goto failed: %w", err)
			}
			logger.Info("migration goto completed", zap.Uint64("version", version))
			return nil
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show current migration version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrate(func(m *migrate.Migrate) error {
			version, dirty, err := m.Version()
			if errors.Is(err, migrate.ErrNilVersion) {
				fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied yet")
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to get version: %w", err)
			}
			if dirty {
				fmt.Fprintf(cmd.OutOrStdout(), "%d (dirty - migration may have failed)\n", version)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\n", version)
			}
			return nil
		})
	},
}

var forceCmd = &cobra.Command{
	Use:   "force <version>",
	Short: "Force set migration version (use with caution)",
	Long:  `Force set the migration version without running migrations. Use with caution.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[0], err)
		}

		return withMigrate(func(m *migrate.Migrate) error {
			if err := m.Force(version); err != nil {
				return fmt.Errorf("migration force failed: %w", err)
			}
			logger.Warn("migration version forced", zap.Int("version", version))
			return nil
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&envFlag, "env", "e", "dev", "Environment to use (dev, test, prod)")
	rootCmd.PersistentFlags().StringVar(&migrationsFlag, "path", "", "Migrations directory (default: <project root>/"+migrationsPathSuffix+")")

	rootCmd.AddCommand(upCmd, downCmd, gotoCmd, versionCmd, forceCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupDatabase(cmd *cobra.Command, args []string) error {
	if err := config.InitConfig(envFlag); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err = logging.New(cfg.Logging.Level, "console")
	if err != nil {
		return err
	}
	logger.Debug("using environment", zap.String("env", envFlag))

	pg, err = database.NewPostgres(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("connected to database",
		zap.String("user", cfg.Database.User),
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.Database),
	)
	return nil
}

func withMigrate(fn func(m *migrate.Migrate) error) error {
	path, err := migrationsPath()
	if err != nil {
		return err
	}
	logger.Debug("using migrations path", zap.String("path", path))

	m, err := pg.NewMigrate(path)
	if err != nil {
		return err
	}
	// Closing the migrate instance also closes the pool
	defer func() {
		_, _ = m.Close()
		pg = nil
	}()

	return fn(m)
}

func migrationsPath() (string, error) {
	if migrationsFlag != "" {
		return migrationsFlag, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(dir, migrationsPathSuffix), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found in any parent directory, pass --path")
		}
		dir = parent
	}
}
