package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/katana-go/katana/core/state"
	"github.com/katana-go/katana/core/state/trie"
	"github.com/katana-go/katana/katanalib/kv"
	"github.com/katana-go/katana/katanalib/kv/mdbx"
)

const defaultDBPath = "~/.katana/db"

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Inspect or maintain a chaindata directory",
}

func init() {
	dbCmd.AddCommand(dbStatsCmd)
	dbCmd.AddCommand(dbVersionCmd)
	dbCmd.AddCommand(dbPruneCmd)
	dbCmd.AddCommand(dbMigrateCmd)
}

// expandPath resolves "~" to the user's home directory and makes the
// result absolute, the way original_source's shellexpand::full +
// path::absolute pair does for every db.rs path argument.
func expandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Retrieve database statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := expandPath(dbStatsPath)
		if err != nil {
			return err
		}
		db, err := mdbx.Open(path)
		if err != nil {
			return fmt.Errorf("open database at %s: %w", path, err)
		}
		defer db.Close()
		return printStats(cmd.Context(), db)
	},
}

var dbStatsPath string

func init() {
	dbStatsCmd.Flags().StringVarP(&dbStatsPath, "path", "p", defaultDBPath, "path to the database directory")
}

func printStats(ctx context.Context, db *mdbx.DB) error {
	type row struct {
		name           string
		entries, depth uint64
		branch, leaf   uint64
		overflow, size uint64
	}
	var rows []row
	var pageSize uint32

	err := db.View(ctx, func(tx kv.Tx) error {
		for _, name := range kv.ChaindataTables {
			stats, err := tx.Stats(name)
			if err != nil {
				return fmt.Errorf("stats for table %s: %w", name, err)
			}
			rows = append(rows, row{
				name:     name,
				entries:  stats.Entries,
				depth:    uint64(stats.Depth),
				branch:   stats.BranchPages,
				leaf:     stats.LeafPages,
				overflow: stats.OverflowPages,
				size:     stats.TotalSizeBytes,
			})
			if pageSize == 0 {
				pageSize = stats.PageSize
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].name < rows[j].name })

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Table", "Entries", "Depth", "Branch Pages", "Leaf Pages", "Overflow Pages", "Size"})

	var totalSize uint64
	for _, r := range rows {
		t.AppendRow(table.Row{r.name, r.entries, r.depth, r.branch, r.leaf, r.overflow, byteUnit(r.size)})
		totalSize += r.size
	}

	freelistPages, err := dataDirFreelistPages(ctx, db)
	if err != nil {
		return err
	}
	freelistSize := freelistPages * uint64(pageSize)
	totalSize += freelistSize
	t.AppendRow(table.Row{"Freelist", freelistPages, "-", "-", "-", "-", byteUnit(freelistSize)})
	t.AppendRow(table.Row{"Total Size", "-", "-", "-", "-", "-", byteUnit(totalSize)})

	t.Render()
	return nil
}

// dataDirFreelistPages reads FreelistPages from the DbInfo table's Stats.
// The mdbx backend does not fill that field, so the Freelist row reports 0.
func dataDirFreelistPages(ctx context.Context, db *mdbx.DB) (uint64, error) {
	var pages uint64
	err := db.View(ctx, func(tx kv.Tx) error {
		stats, err := tx.Stats(kv.DbInfo)
		if err != nil {
			return err
		}
		pages = stats.FreelistPages
		return nil
	})
	return pages, err
}

func byteUnit(size uint64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := uint64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}

var dbVersionPath string

var dbVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show database schema version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("current version: %d.%d.%d\n", kv.DBSchemaVersion.Major, kv.DBSchemaVersion.Minor, kv.DBSchemaVersion.Patch)
		if dbVersionPath == "" {
			return nil
		}
		path, err := expandPath(dbVersionPath)
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("database does not exist at path %s", path)
		}
		db, err := mdbx.Open(path)
		if err != nil {
			return fmt.Errorf("open database at %s: %w", path, err)
		}
		defer db.Close()

		var version kv.Version
		var found bool
		err = db.View(cmd.Context(), func(tx kv.Tx) error {
			version, found, err = mdbx.ReadSchemaVersion(tx)
			return err
		})
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("database at %s has no recorded schema version", path)
		}
		fmt.Printf("database version: %d.%d.%d\n", version.Major, version.Minor, version.Patch)
		return nil
	},
}

func init() {
	dbVersionCmd.Flags().StringVarP(&dbVersionPath, "path", "p", "", "path to the database directory")
}

var dbPrunePath string

var dbPruneCmd = &cobra.Command{
	Use:   "prune (latest | keep-last-n N)",
	Short: "Prune historical trie data",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := expandPath(dbPrunePath)
		if err != nil {
			return err
		}

		var mode trie.Mode
		var keep uint64
		switch args[0] {
		case "latest":
			mode = trie.Latest
		case "keep-last-n":
			if len(args) < 2 {
				return fmt.Errorf("keep-last-n requires a block count argument")
			}
			if _, err := fmt.Sscanf(args[1], "%d", &keep); err != nil || keep == 0 {
				return fmt.Errorf("invalid block count %q: must be a positive integer", args[1])
			}
			mode = trie.KeepLastN
		default:
			return fmt.Errorf("unknown prune mode %q: expected \"latest\" or \"keep-last-n\"", args[0])
		}

		db, err := mdbx.Open(path)
		if err != nil {
			return fmt.Errorf("open database at %s: %w", path, err)
		}
		defer db.Close()

		return db.Update(cmd.Context(), func(tx kv.RwTx) error {
			tip, err := latestBlockNumber(tx)
			if err != nil {
				return err
			}
			deleted, err := trie.NewPruner(tx, mode, keep).Prune(cmd.Context(), tip)
			if err != nil {
				return err
			}
			fmt.Printf("pruned %d history entries up to block %d\n", deleted, tip)
			return nil
		})
	},
}

func latestBlockNumber(tx kv.Tx) (uint64, error) {
	c, err := tx.Cursor(kv.Headers)
	if err != nil {
		return 0, err
	}
	defer c.Close()
	k, _, err := c.Last()
	if err != nil || k == nil {
		return 0, err
	}
	return kv.DecodeBlockNumber(k), nil
}

func init() {
	dbPruneCmd.Flags().StringVarP(&dbPrunePath, "path", "p", defaultDBPath, "path to the database directory")
}

var dbMigratePath string

// dbMigrateCmd rewrites every record in the Transactions table from schema
// v6 to the current (v7) schema and re-stamps the database version,
// grounded on original_source's storage/migration/lib.rs one-shot migration
// command (spec §4.1 "each old version defines a lossless conversion").
var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate a v6-schema database to the current schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := expandPath(dbMigratePath)
		if err != nil {
			return err
		}

		db, err := mdbx.OpenForMigration(path)
		if err != nil {
			return fmt.Errorf("open database at %s: %w", path, err)
		}
		defer db.Close()

		var stored kv.Version
		var found bool
		if err := db.View(cmd.Context(), func(tx kv.Tx) error {
			stored, found, err = mdbx.ReadSchemaVersion(tx)
			return err
		}); err != nil {
			return err
		}
		if found && stored == kv.DBSchemaVersion {
			fmt.Printf("database at %s is already at the current schema (%d.%d.%d); nothing to do\n",
				path, stored.Major, stored.Minor, stored.Patch)
			return nil
		}
		if found && (stored.Major != 6 || stored.Minor != 0) {
			return fmt.Errorf("no migration path from schema %d.%d.%d to %d.%d.%d",
				stored.Major, stored.Minor, stored.Patch,
				kv.DBSchemaVersion.Major, kv.DBSchemaVersion.Minor, kv.DBSchemaVersion.Patch)
		}

		return db.Update(cmd.Context(), func(tx kv.RwTx) error {
			rewritten, err := migrateTransactionsTable(tx)
			if err != nil {
				return err
			}
			if err := mdbx.WriteSchemaVersion(tx, kv.DBSchemaVersion); err != nil {
				return fmt.Errorf("stamp schema version: %w", err)
			}
			fmt.Printf("migrated %d transaction records to schema %d.%d.%d\n",
				rewritten, kv.DBSchemaVersion.Major, kv.DBSchemaVersion.Minor, kv.DBSchemaVersion.Patch)
			return nil
		})
	},
}

// migrateTransactionsTable collects every (tx_number, record) pair first via
// a read cursor, then writes the re-encoded records back with Put — mutating
// a table mid-cursor-iteration is undefined behavior under mdbx.
func migrateTransactionsTable(tx kv.RwTx) (int, error) {
	c, err := tx.Cursor(kv.Transactions)
	if err != nil {
		return 0, err
	}
	type entry struct{ key, value []byte }
	var entries []entry
	for k, v, err := c.First(); k != nil; k, v, err = c.Next() {
		if err != nil {
			c.Close()
			return 0, err
		}
		entries = append(entries, entry{key: append([]byte(nil), k...), value: append([]byte(nil), v...)})
	}
	c.Close()

	for _, e := range entries {
		migrated, err := state.MigrateTransactionRecord(e.value)
		if err != nil {
			return 0, fmt.Errorf("migrate transaction record at key %x: %w", e.key, err)
		}
		if err := tx.Put(kv.Transactions, e.key, migrated); err != nil {
			return 0, fmt.Errorf("write migrated transaction record at key %x: %w", e.key, err)
		}
	}
	return len(entries), nil
}

func init() {
	dbMigrateCmd.Flags().StringVarP(&dbMigratePath, "path", "p", defaultDBPath, "path to the database directory")
}
