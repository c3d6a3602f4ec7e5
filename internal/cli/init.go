package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/swamp-dev/boardstats/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default boardstats.yaml",
	Long: `Init creates the files boardstats reads in the current directory.

This includes:
- boardstats.yaml - database location, named ranges and export settings
- .env.example    - template for the DB_USER and DB_PASS credentials

Examples:
  boardstats init
  boardstats init --driver sqlite --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing files")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	logger.Info("initializing boardstats", "dir", cwd)

	if err := createConfigFile(cwd); err != nil {
		return err
	}

	if err := createEnvExample(cwd); err != nil {
		return err
	}

	fmt.Printf("\n✓ Initialized boardstats in %s\n", cwd)
	fmt.Println("\nCreated files:")
	fmt.Println("  - boardstats.yaml  (configuration)")
	fmt.Println("  - .env.example     (credentials template)")
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Copy .env.example to .env and fill in DB_USER and DB_PASS")
	fmt.Println("  2. Run 'boardstats report'")

	return nil
}

func createConfigFile(dir string) error {
	path := filepath.Join(dir, config.FileName)

	if !initForce {
		if _, err := os.Stat(path); err == nil {
			logger.Info("boardstats.yaml already exists, skipping")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if dbDriver != "" {
		cfg.Database.Driver = dbDriver
	}
	if dbDSN != "" {
		cfg.Database.DSN = dbDSN
	} else if cfg.Database.Driver == "sqlite" {
		cfg.Database.DSN = "snapshot.db"
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}

	logger.Info("created boardstats.yaml")
	return nil
}

func createEnvExample(dir string) error {
	path := filepath.Join(dir, ".env.example")

	if !initForce {
		if _, err := os.Stat(path); err == nil {
			logger.Info(".env.example already exists, skipping")
			return nil
		}
	}

	content := `# Credentials for the reporting database. Copy to .env.
DB_USER=
DB_PASS=
`

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("creating .env.example: %w", err)
	}

	logger.Info("created .env.example")
	return nil
}
