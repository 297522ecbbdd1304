package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marshallshelly/pebble-orders/pkg/config"
	"github.com/marshallshelly/pebble-orders/pkg/logging"
	"github.com/marshallshelly/pebble-orders/pkg/migration"
	"github.com/marshallshelly/pebble-orders/pkg/models"
	"github.com/marshallshelly/pebble-orders/pkg/registry"
	"github.com/marshallshelly/pebble-orders/pkg/runtime"
)

var (
	// Global flags
	dbURL      string
	configFile string
	logLevel   string
	logFormat  string
	jsonOutput bool
	timeout    time.Duration
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "orderload",
	Short: "Load JSON order exports into PostgreSQL",
	Long: `orderload normalizes JSON order exports into a relational PostgreSQL schema
of categories, products, customers, orders and order items.

Each file is loaded in its own transaction: a file either lands completely or not at all.
Categories and customers are deduplicated by name and email across every file of a run.`,
	Version:       "0.3.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database connection URL (overrides database.* settings)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default ./orderload.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "Log format: json or console")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Abort the run after this long (0 disables)")
}

// app carries everything a database command needs. close releases it in reverse order.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *runtime.DB
	registry *registry.Registry
	manager  *migration.Manager
	locked   bool
}

// loadConfig resolves configuration and the logger without touching the database.
func loadConfig(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// commandContext is cancelled on SIGINT/SIGTERM and after --timeout.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func newRegistry() (*registry.Registry, error) {
	reg, err := registry.New(models.All()...)
	if err != nil {
		return nil, fmt.Errorf("failed to register models: %w", err)
	}
	return reg, nil
}

// connect opens the single connection. With lock set it also takes the writer lock
// and fails at once if another run holds it.
func connect(ctx context.Context, cmd *cobra.Command, lock bool) (*app, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	reg, err := newRegistry()
	if err != nil {
		return nil, err
	}

	db, err := runtime.ConnectWithURL(ctx, cfg.DatabaseURL())
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		registry: reg,
		manager:  migration.NewManager(db, reg, logger).WithLockID(cfg.Lock.ID),
	}

	if lock {
		acquired, err := a.manager.TryLock(ctx)
		if err != nil {
			a.close()
			return nil, err
		}
		if !acquired {
			a.close()
			return nil, migration.ErrLocked
		}
		a.locked = true
	}
	return a, nil
}

func (a *app) close() {
	if a.locked {
		// The request context may already be cancelled.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.manager.Unlock(ctx); err != nil {
			a.logger.Warn("failed to release lock", zap.Error(err))
		}
		cancel()
	}
	a.db.Close()
	_ = a.logger.Sync()
}
