package commands

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ankitdsmb/DictionaryImporter-sub008/config"
	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
	"github.com/ankitdsmb/DictionaryImporter-sub008/graph"
	"github.com/ankitdsmb/DictionaryImporter-sub008/lexicon"
	"github.com/ankitdsmb/DictionaryImporter-sub008/sym"
)

// DbCmd represents the db (database) command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: sym.DB + " Manage the lexicon database",
	Long: sym.DB + ` db - Manage lexicon database operations

Manage database operations including schema migrations and statistics
over the staging and canonical tables.

Examples:
  dictimport db migrate            # Apply pending schema migrations
  dictimport db stats              # Show lexicon statistics
  dictimport db purge EN-WIKT      # Remove everything a source contributed`,
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Long:  "Open the database and apply every schema migration that has not run yet.",
	RunE:  runDbMigrate,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show lexicon statistics",
	Long:  "Display canonical table sizes, per-source staging and sense counts, and import stage statuses.",
	RunE:  runDbStats,
}

var dbPurgeCmd = &cobra.Command{
	Use:   "purge <source-code>",
	Short: "Remove everything a source contributed",
	Long: `Remove a source's staged entries, fragments, stage records, relations,
and senses, along with any words and concepts left without contributors.
The source can then be re-imported from scratch. Data contributed by
other sources is untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runDbPurge,
}

var dbPathFlag string

func init() {
	DbCmd.AddCommand(dbMigrateCmd)
	DbCmd.AddCommand(dbStatsCmd)
	DbCmd.AddCommand(dbPurgeCmd)
	DbCmd.PersistentFlags().StringVar(&dbPathFlag, "db", "", "Database path (default: database.path from config)")
}

func runDbMigrate(cmd *cobra.Command, args []string) error {
	// openDatabase migrates as part of opening
	database, err := openDatabase(dbPathFlag)
	if err != nil {
		return err
	}
	defer database.Close()

	fmt.Printf("%s Database schema is up to date\n", sym.DB)
	return nil
}

func runDbStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	dbPath := dbPathFlag
	if dbPath == "" {
		path, err := config.GetDatabasePath()
		if err != nil {
			return errors.Wrap(err, "failed to get database path")
		}
		dbPath = path
	}

	database, err := openDatabase(dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	canonical := lexicon.NewCanonicalStore(database)
	counts, err := canonical.TableCounts(ctx)
	if err != nil {
		return err
	}

	var fragments int64
	if err := database.QueryRowContext(ctx, `SELECT COUNT(*) FROM raw_fragments`).Scan(&fragments); err != nil {
		return errors.Wrap(err, "failed to count fragments")
	}

	fmt.Printf("%s Lexicon Statistics\n", sym.DB)
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")
	fmt.Printf("Database Path:  %s\n", dbPath)
	fmt.Printf("Words:          %d\n", counts.Words)
	fmt.Printf("Senses:         %d\n", counts.Senses)
	fmt.Printf("Concepts:       %d\n", counts.Concepts)
	fmt.Printf("Relations:      %d\n", counts.Relations)
	fmt.Printf("Raw Fragments:  %d\n", fragments)
	fmt.Println()

	if err := printSourceBreakdown(ctx, database, canonical); err != nil {
		return err
	}
	return printStageStatuses(ctx, database)
}

// printSourceBreakdown shows staging and canonical counts per source.
func printSourceBreakdown(ctx context.Context, database *sql.DB, canonical *lexicon.CanonicalStore) error {
	rows, err := database.QueryContext(ctx, `
		SELECT source_code, COUNT(*), COALESCE(SUM(sealed), 0)
		FROM staging_entries
		GROUP BY source_code
		ORDER BY source_code
	`)
	if err != nil {
		return errors.Wrap(err, "failed to query staging counts")
	}
	defer rows.Close()

	staged := make(map[string][2]int64)
	codes := make([]string, 0)
	for rows.Next() {
		var code string
		var total, sealed int64
		if err := rows.Scan(&code, &total, &sealed); err != nil {
			return errors.Wrap(err, "failed to scan staging count")
		}
		staged[code] = [2]int64{total, sealed}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, "failed to iterate staging counts")
	}

	if len(codes) == 0 {
		fmt.Println("No sources imported yet")
		fmt.Println()
		return nil
	}

	fmt.Printf("Per-Source Counts:\n")
	fmt.Printf("  %-12s %10s %10s %10s %10s %10s\n", "SOURCE", "STAGED", "SEALED", "WORDS", "SENSES", "RELS")
	relations := graph.NewStore(database)
	for _, code := range codes {
		words, senses, err := canonical.CountsBySource(ctx, code)
		if err != nil {
			return err
		}
		rels, err := relations.CountBySource(ctx, code)
		if err != nil {
			return err
		}
		fmt.Printf("  %-12s %10d %10d %10d %10d %10d\n", code, staged[code][0], staged[code][1], words, senses, rels)
	}
	fmt.Println()
	return nil
}

// printStageStatuses shows the import stage table.
func printStageStatuses(ctx context.Context, database *sql.DB) error {
	rows, err := database.QueryContext(ctx, `
		SELECT source_code, stage, status, updated_at
		FROM import_stages
		ORDER BY source_code, stage
	`)
	if err != nil {
		return errors.Wrap(err, "failed to query import stages")
	}
	defer rows.Close()

	var hasStages bool
	fmt.Printf("Import Stages:\n")
	for rows.Next() {
		hasStages = true
		var code, stage, status, updatedAt string
		if err := rows.Scan(&code, &stage, &status, &updatedAt); err != nil {
			return errors.Wrap(err, "failed to scan import stage")
		}
		fmt.Printf("  %-12s %-12s %-10s %s\n", code, stage, status, updatedAt)
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, "failed to iterate import stages")
	}
	if !hasStages {
		fmt.Println("  No import stages recorded yet")
	}
	return nil
}

func runDbPurge(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sourceCode := strings.ToUpper(args[0])

	database, err := openDatabase(dbPathFlag)
	if err != nil {
		return err
	}
	defer database.Close()

	relations, err := graph.NewStore(database).DeleteBySource(ctx, sourceCode)
	if err != nil {
		return err
	}

	// Deleting the source's senses cascades to its concept memberships.
	res, err := database.ExecContext(ctx, `DELETE FROM senses WHERE source_code = ?`, sourceCode)
	if err != nil {
		return errors.Wrapf(err, "failed to delete senses for %s", sourceCode)
	}
	senses, _ := res.RowsAffected()

	// Words and concepts this source was the last contributor to are now
	// empty; dropping them keeps the verify step's invariants intact.
	res, err = database.ExecContext(ctx,
		`DELETE FROM words WHERE id NOT IN (SELECT DISTINCT word_id FROM senses)`)
	if err != nil {
		return errors.Wrap(err, "failed to delete orphaned words")
	}
	words, _ := res.RowsAffected()

	res, err = database.ExecContext(ctx,
		`DELETE FROM concepts WHERE id NOT IN (SELECT DISTINCT concept_id FROM concept_members)`)
	if err != nil {
		return errors.Wrap(err, "failed to delete orphaned concepts")
	}
	concepts, _ := res.RowsAffected()

	staged, err := lexicon.NewStagingStore(database).DeleteBySource(ctx, sourceCode)
	if err != nil {
		return err
	}
	fragments, err := lexicon.NewFragmentStore(database).DeleteBySource(ctx, sourceCode)
	if err != nil {
		return err
	}
	if err := lexicon.NewStageStore(database).DeleteBySource(ctx, sourceCode); err != nil {
		return err
	}

	fmt.Printf("%s Purged %s\n", sym.DB, sourceCode)
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")
	fmt.Printf("Senses removed:     %d\n", senses)
	fmt.Printf("Relations removed:  %d\n", relations)
	fmt.Printf("Orphaned words:     %d\n", words)
	fmt.Printf("Orphaned concepts:  %d\n", concepts)
	fmt.Printf("Staged removed:     %d\n", staged)
	fmt.Printf("Fragments removed:  %d\n", fragments)
	fmt.Println("Stage records cleared")
	return nil
}
