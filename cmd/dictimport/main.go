package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ankitdsmb/DictionaryImporter-sub008/cmd/dictimport/commands"
	"github.com/ankitdsmb/DictionaryImporter-sub008/config"
	"github.com/ankitdsmb/DictionaryImporter-sub008/logger"
)

var rootCmd = &cobra.Command{
	Use:   "dictimport",
	Short: "dictimport - Batch dictionary import pipeline",
	Long: `dictimport - Batch ETL for dictionary sources into a canonical lexicon.

dictimport stages raw dictionary data per source, merges sealed staging
rows into the shared lexicon, and runs the configured refinement steps,
with bounded parallelism across sources and per-source failure isolation.

Available commands:
  import  - Import every source in a manifest
  watch   - Watch a drop directory and import changed source files
  lookup  - Look up a word in the lexicon
  sources - List manifest sources and supported formats
  db      - Manage the lexicon database
  config  - Manage importer configuration
  version - Show version information

Examples:
  dictimport import -m sources.yaml           # Full run: import, merge, pipeline
  dictimport import -m sources.yaml --import-only
  dictimport watch ./drop                     # Import files as they land
  dictimport lookup bank                      # Show a word's senses
  dictimport sources -m sources.yaml          # Show configured sources
  dictimport db stats                         # Show lexicon statistics
  dictimport config show                      # Show effective configuration`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Re-initialize the global logger with the flag-selected verbosity
		// before any command runs
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if !jsonLogs {
			if cfg, err := config.Load(); err == nil {
				jsonLogs = cfg.Log.JSON
			}
		}
		if err := logger.InitializeWithVerbosity(jsonLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if verbosity >= logger.VerbosityDebug {
			categories := logger.EnabledCategories(verbosity)
			names := make([]string, 0, len(categories))
			for _, category := range categories {
				names = append(names, logger.CategoryName(category))
			}
			sort.Strings(names)
			logger.Debugw("Logger initialized",
				"level_name", logger.LevelName(verbosity),
				"output_categories", names,
			)
		}
		return nil
	},
}

func init() {
	// Initialize logger early with defaults; PersistentPreRunE replaces it
	// once flags are parsed
	if err := logger.Initialize(false); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to initialize logger: %v\n", err)
	}

	// Add global flags
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Write logs as JSON lines")

	// Add commands
	rootCmd.AddCommand(commands.ImportCmd)
	rootCmd.AddCommand(commands.WatchCmd)
	rootCmd.AddCommand(commands.LookupCmd)
	rootCmd.AddCommand(commands.SourcesCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
