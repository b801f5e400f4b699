// Package cmd implements the femtocode command line interface.
package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/diana-hep/femtocode/internal/engine"
	"github.com/diana-hep/femtocode/internal/repository"
	"github.com/diana-hep/femtocode/internal/storage"
	"github.com/diana-hep/femtocode/pkg/config"
	"github.com/diana-hep/femtocode/pkg/telemetry"
	"github.com/diana-hep/femtocode/pkg/utils"
)

var (
	// Global flags
	verbose    bool
	configPath string

	cfg          *config.Config
	logger       utils.Logger
	otelShutdown telemetry.ShutdownFunc
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "femtocode",
	Short: "Columnar explosion runtime for nested data",
	Long: `femtocode is the compute runtime of a columnar analytical engine for
nested (jagged) data. Datasets are stored shredded: one flat data array per
nested field plus one flat size array per nesting level.

The runtime materializes the implicit broadcast structure of such data
(explode), applies elementwise arithmetic to the pre-aligned results (add),
and manages the dataset catalog backing both.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		logLevel := utils.ParseLogLevel(cfg.Log.Level)
		if verbose {
			logLevel = utils.LevelDebug
		}
		logger = utils.NewDefaultLogger(logLevel, os.Stdout)
		utils.SetGlobalLogger(logger)

		shutdown, err := telemetry.Init(cmd.Context())
		if err != nil {
			logger.Warn("Failed to initialize telemetry: %v", err)
			shutdown = nil
		}
		otelShutdown = shutdown

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if otelShutdown != nil {
			return otelShutdown(cmd.Context())
		}
		return nil
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	binName := BinName()
	rootCmd.Example = `  # Explode the shape of a doubly nested field
  ` + binName + ` explode -d events -l jets@size,jets@size

  # Explode a data column along with its shape
  ` + binName + ` explode -d events -l jets@size,jets@size --data jets.pt

  # Add two aligned columns elementwise
  ` + binName + ` add -d events --left jets.pt --right jets.e

  # Register a dataset from a spec file and a directory of segments
  ` + binName + ` dataset register --spec events.json --dir ./segments`
}

// GetLogger returns the configured logger.
func GetLogger() utils.Logger {
	return logger
}

// BinName returns the base name of the current executable.
func BinName() string {
	return filepath.Base(os.Args[0])
}

// runtimeHandles bundles the components a command needs to execute against
// the catalog and storage.
type runtimeHandles struct {
	engine *engine.Engine
	repos  *repository.Repositories
	store  storage.Storage
}

// initRuntime connects catalog and storage and builds the engine. The
// returned cleanup closes the catalog connection.
func initRuntime(ctx context.Context) (*runtimeHandles, func(), error) {
	gormDB, err := repository.NewGormDB(&cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	repos, err := repository.NewRepositories(gormDB)
	if err != nil {
		return nil, nil, err
	}

	store, err := storage.New(&cfg.Storage)
	if err != nil {
		repos.Close()
		return nil, nil, err
	}

	if err := repos.HealthCheck(ctx); err != nil {
		repos.Close()
		return nil, nil, err
	}

	handles := &runtimeHandles{
		engine: engine.New(cfg, logger, repos.Catalog, store),
		repos:  repos,
		store:  store,
	}
	cleanup := func() {
		if err := repos.Close(); err != nil {
			logger.Warn("Failed to close catalog: %v", err)
		}
	}
	return handles, cleanup, nil
}
