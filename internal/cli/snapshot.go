package cli

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/swamp-dev/boardstats/internal/store"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage offline sqlite snapshots",
	Long: `A snapshot is a sqlite file with the users, gameboards, content_data and
question_attempts tables. Load an extract of the production database into one
and report on it with --driver sqlite --dsn PATH.`,
}

var snapshotInitCmd = &cobra.Command{
	Use:   "init PATH",
	Short: "Create an empty snapshot database",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotInit,
}

var snapshotInfoCmd = &cobra.Command{
	Use:   "info PATH",
	Short: "Show row counts of a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotInfo,
}

var snapshotForce bool

func init() {
	snapshotInitCmd.Flags().BoolVarP(&snapshotForce, "force", "f", false, "replace an existing file")

	snapshotCmd.AddCommand(snapshotInitCmd)
	snapshotCmd.AddCommand(snapshotInfoCmd)
}

func runSnapshotInit(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err == nil {
		if !snapshotForce {
			return fmt.Errorf("%s already exists (use --force to replace it)", path)
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("removing %s: %w", path, err)
		}
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	s, err := store.CreateSnapshot(ctx, path)
	if err != nil {
		return err
	}
	defer s.Close()

	logger.Info("created snapshot", "path", path)
	fmt.Printf("✓ Created snapshot %s\n", path)
	fmt.Printf("\nReport on it with:\n  boardstats report --driver sqlite --dsn %s\n", path)
	return nil
}

func runSnapshotInfo(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	s, err := store.Open(ctx, store.DriverSQLite, path)
	if err != nil {
		return err
	}
	defer s.Close()

	counts, err := s.TableCounts(ctx)
	if err != nil {
		return err
	}

	tables := make([]string, 0, len(counts))
	for name := range counts {
		tables = append(tables, name)
	}
	sort.Strings(tables)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Table", "Rows"})
	for _, name := range tables {
		table.Append([]string{name, strconv.FormatInt(counts[name], 10)})
	}
	table.Render()
	return nil
}
