// Package cli provides the command-line interface for boardstats.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/swamp-dev/boardstats/internal/config"
	"github.com/swamp-dev/boardstats/internal/stats"
	"github.com/swamp-dev/boardstats/internal/store"
)

var (
	cfgFile string
	envFile string
	verbose bool
	logger  = slog.New(slog.DiscardHandler)

	dbDriver string
	dbDSN    string
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "boardstats",
	Short: "Student gameboard engagement reports",
	Long: `Boardstats reports how students use the gameboards they build on the
question platform.

It runs aggregate queries over users, gameboards and question attempts for a
date range, exports the results as CSV summaries and renders pie and scatter
charts from those summaries.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logLevel := slog.LevelInfo
		if verbose {
			logLevel = slog.LevelDebug
		}

		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))

		if path := viper.ConfigFileUsed(); path != "" {
			logger.Debug("using config file", "path", path)
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./boardstats.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "file with DB_USER and DB_PASS")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&dbDriver, "driver", "", "database driver (postgres, sqlite)")
	rootCmd.PersistentFlags().StringVar(&dbDSN, "dsn", "", "sqlite snapshot path or postgres DSN")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	// Variables already set in the environment win over the file.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: reading %s: %v\n", envFile, err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("boardstats")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	viper.BindEnv("db_user", "DB_USER")
	viper.BindEnv("db_pass", "DB_PASS")
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}

// loadConfig reads the config file viper found, falling back to a search of
// parent directories, and applies the database flags.
func loadConfig() (*config.Config, error) {
	path := viper.ConfigFileUsed()
	if path == "" {
		if found, err := config.FindConfigFile(); err == nil {
			path = found
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if dbDriver != "" {
		cfg.Database.Driver = dbDriver
	}
	if dbDSN != "" {
		cfg.Database.DSN = dbDSN
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// dataSource returns the driver and DSN to open for cfg. Postgres credentials
// come from DB_USER and DB_PASS.
func dataSource(cfg *config.Config, user, password string) (string, string, error) {
	db := cfg.Database
	switch db.Driver {
	case store.DriverSQLite:
		if _, err := os.Stat(db.DSN); err != nil {
			return "", "", fmt.Errorf("opening snapshot %s: %w", db.DSN, err)
		}
		return store.DriverSQLite, db.DSN, nil
	case store.DriverPostgres:
		if db.DSN != "" {
			return store.DriverPostgres, db.DSN, nil
		}
		return store.DriverPostgres, store.PostgresDSN(db.Host, db.Port, db.Name, user, password, db.SSLMode), nil
	default:
		return "", "", fmt.Errorf("unsupported driver: %s", db.Driver)
	}
}

// openEngine connects to the configured database and wraps it in an engine.
// The caller closes the returned store.
func openEngine(ctx context.Context, cfg *config.Config) (*store.Store, *stats.Engine, error) {
	driver, dsn, err := dataSource(cfg, viper.GetString("db_user"), viper.GetString("db_pass"))
	if err != nil {
		return nil, nil, err
	}

	timeout, err := cfg.ConnectTimeout()
	if err != nil {
		return nil, nil, err
	}
	openCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		openCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	logger.Debug("connecting", "driver", driver, "host", cfg.Database.Host, "database", cfg.Database.Name)
	s, err := store.Open(openCtx, driver, dsn)
	if err != nil {
		return nil, nil, err
	}

	engine, err := stats.NewEngine(s.DB(), logger)
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	return s, engine, nil
}

// commandContext is cancelled on SIGINT or SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}
