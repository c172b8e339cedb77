package commands

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
	"github.com/ankitdsmb/DictionaryImporter-sub008/graph"
	"github.com/ankitdsmb/DictionaryImporter-sub008/lexicon"
	"github.com/ankitdsmb/DictionaryImporter-sub008/sym"
)

var (
	lookupLanguageFlag  string
	lookupDBFlag        string
	lookupFragmentsFlag bool
)

// LookupCmd looks a word up in the canonical lexicon.
var LookupCmd = &cobra.Command{
	Use:   "lookup <headword>",
	Short: sym.Lexicon + " Look up a word in the lexicon",
	Long: sym.Lexicon + ` Look up a word in the canonical lexicon.

The headword is normalized the same way imports normalize it, so lookups
match regardless of case, surrounding whitespace, or domain markers.

Examples:
  dictimport lookup bank
  dictimport lookup Bank -l en            # same entry
  dictimport lookup bank --fragments      # include raw source fragments`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

func init() {
	LookupCmd.Flags().StringVarP(&lookupLanguageFlag, "language", "l", "en", "Language code of the entry")
	LookupCmd.Flags().StringVar(&lookupDBFlag, "db", "", "Database path (default from config)")
	LookupCmd.Flags().BoolVar(&lookupFragmentsFlag, "fragments", false, "Show the raw source fragments behind the entry")
}

func runLookup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	database, err := openDatabase(lookupDBFlag)
	if err != nil {
		return err
	}
	defer database.Close()

	normalized := lexicon.Normalize(lexicon.StripDomainMarkers(args[0]))
	store := lexicon.NewCanonicalStore(database)

	word, err := store.GetWord(ctx, normalized, lookupLanguageFlag)
	if err != nil {
		return err
	}
	senses, err := store.SensesForWord(ctx, word.ID)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s (%s)\n", sym.Lexicon, word.Headword, word.Language)
	if word.IPA != "" {
		fmt.Printf("  IPA: %s\n", word.IPA)
	}
	if word.ASCIIForm != "" && word.ASCIIForm != word.Normalized {
		fmt.Printf("  ASCII: %s\n", word.ASCIIForm)
	}
	fmt.Println()

	for _, sense := range senses {
		pos := sense.PartOfSpeech
		if pos == "" {
			pos = "unknown"
		}
		fmt.Printf("  %d. (%s) %s [%s]\n", sense.SenseNumber, pos, sense.Definition, sense.SourceCode)
	}
	if len(senses) == 0 {
		fmt.Println("  (no senses recorded)")
	}

	if err := printRelations(ctx, database, word.ID); err != nil {
		return err
	}

	if lookupFragmentsFlag {
		return printFragments(ctx, database, normalized, lookupLanguageFlag)
	}
	return nil
}

// printRelations shows the word's typed relations grouped by type, with
// relation targets resolved back to their headwords.
func printRelations(ctx context.Context, database *sql.DB, wordID int64) error {
	edges, err := graph.NewStore(database).RelationsForWord(ctx, wordID)
	if err != nil {
		return err
	}
	if len(edges) == 0 {
		return nil
	}

	byType := make(map[string][]string)
	for _, edge := range edges {
		var headword string
		err := database.QueryRowContext(ctx,
			`SELECT headword FROM words WHERE id = ?`, edge.ToWordID).Scan(&headword)
		if err != nil {
			return errors.Wrapf(err, "failed to resolve relation target %d", edge.ToWordID)
		}
		byType[edge.Type] = append(byType[edge.Type], headword)
	}

	types := make([]string, 0, len(byType))
	for relationType := range byType {
		types = append(types, relationType)
	}
	sort.Strings(types)

	fmt.Println()
	fmt.Println("Related words:")
	for _, relationType := range types {
		fmt.Printf("  %-9s %s\n", relationType+":", strings.Join(byType[relationType], ", "))
	}
	return nil
}

// printFragments shows the raw source material the entry was built from,
// found through the staging rows that reference it.
func printFragments(ctx context.Context, database *sql.DB, normalized, language string) error {
	rows, err := database.QueryContext(ctx, `
		SELECT DISTINCT fragment_ref, source_code
		FROM staging_entries
		WHERE normalized_headword = ? AND language = ?
		ORDER BY source_code, fragment_ref`,
		normalized, language)
	if err != nil {
		return errors.Wrap(err, "failed to find fragments")
	}
	defer rows.Close()

	type fragmentRef struct {
		ref        string
		sourceCode string
	}
	var refs []fragmentRef
	for rows.Next() {
		var fr fragmentRef
		if err := rows.Scan(&fr.ref, &fr.sourceCode); err != nil {
			return errors.Wrap(err, "failed to scan fragment ref")
		}
		refs = append(refs, fr)
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, "failed to iterate fragment refs")
	}

	fmt.Println()
	if len(refs) == 0 {
		fmt.Println("No staged fragments reference this entry.")
		return nil
	}

	fragments := lexicon.NewFragmentStore(database)
	fmt.Println("Raw fragments:")
	for _, fr := range refs {
		payload, err := fragments.GetFragment(ctx, fr.ref)
		if err != nil {
			return err
		}
		fmt.Printf("  %s %s %s\n", sym.Source, fr.sourceCode, shortRef(fr.ref))
		fmt.Printf("    %s\n", string(payload))
	}
	return nil
}

// shortRef abbreviates a content-hash ref for display.
func shortRef(ref string) string {
	if len(ref) > 12 {
		return ref[:12]
	}
	return ref
}
