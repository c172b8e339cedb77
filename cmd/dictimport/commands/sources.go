package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ankitdsmb/DictionaryImporter-sub008/config"
	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
	"github.com/ankitdsmb/DictionaryImporter-sub008/sources"
	"github.com/ankitdsmb/DictionaryImporter-sub008/sym"
)

// SourcesCmd represents the sources command - manifest inspection
var SourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: sym.Source + " List manifest sources and supported formats",
	Long: sym.Source + ` Sources - inspect the source manifest.

Shows every source the manifest configures, with its format and graph
rebuild flag, plus the format names this build supports.

Examples:
  dictimport sources -m sources.yaml
  dictimport sources                   # Uses import.manifest_path from config`,
	RunE: runSources,
}

var sourcesManifestFlag string

func init() {
	SourcesCmd.Flags().StringVarP(&sourcesManifestFlag, "manifest", "m", "", "Source manifest path (default: import.manifest_path from config)")
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	manifestPath := sourcesManifestFlag
	if manifestPath == "" {
		manifestPath = cfg.Import.ManifestPath
	}
	if manifestPath == "" {
		return errors.New("no source manifest: pass --manifest or set import.manifest_path")
	}

	sourceDefs, err := sources.LoadManifest(manifestPath)
	if err != nil {
		return err
	}

	fmt.Printf("%s Sources in %s\n", sym.Source, manifestPath)
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Printf("  %-12s %-30s %-8s %s\n", "CODE", "NAME", "FORMAT", "REBUILD GRAPH")
	for _, def := range sourceDefs {
		rebuild := "no"
		if def.RebuildGraph {
			rebuild = "yes"
		}
		fmt.Printf("  %-12s %-30s %-8s %s\n", def.SourceCode, def.SourceName, def.Format, rebuild)
	}

	formats := make([]string, 0)
	for name := range sources.BuiltinFormats() {
		formats = append(formats, name)
	}
	sort.Strings(formats)
	fmt.Printf("\nSupported formats: %s (each also as .gz)\n", strings.Join(formats, ", "))

	return nil
}
