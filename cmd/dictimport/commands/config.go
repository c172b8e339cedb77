package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ankitdsmb/DictionaryImporter-sub008/config"
	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
	"github.com/ankitdsmb/DictionaryImporter-sub008/sym"
)

// ConfigCmd represents the config command
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: sym.Config + " Manage importer configuration",
	Long: sym.Config + ` Manage importer configuration.

Configuration sources (in order of precedence):
1. Environment variables (DICTIMPORT_* prefix)
2. Project config (./dictimport.toml, searched upward)
3. User config (~/.dictimport/config.toml)
4. System config (/etc/dictimport/config.toml)
5. Default values

Examples:
  dictimport config show                     # Show current configuration
  dictimport config show --format json       # Show configuration in JSON format
  dictimport config get import.batch_size    # Get a specific config value
  dictimport config validate                 # Validate current configuration
  dictimport config validate candidate.toml  # Validate a file before deploying it
  dictimport config where                    # Show which files are in effect`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the merged importer configuration from all sources",
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., database.path, import.batch_size)",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate configuration",
	Long: `Validate the merged importer configuration, or a specific file.

With a file argument the file is loaded in isolation, so a candidate
config can be checked before it is deployed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigValidate,
}

var configWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration is loaded from",
	Long: `Show the configuration cascade and which files are in effect.

Lists all configuration sources in order of precedence, the files that
exist, and any environment overrides currently set.`,
	RunE: runConfigWhere,
}

var configFormatFlag string

func init() {
	configShowCmd.Flags().StringVar(&configFormatFlag, "format", "toml", "Output format: toml, json, yaml")

	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configGetCmd)
	ConfigCmd.AddCommand(configValidateCmd)
	ConfigCmd.AddCommand(configWhereCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	switch configFormatFlag {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to JSON")
		}
		fmt.Println(string(data))

	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to YAML")
		}
		fmt.Printf("# dictimport configuration\n%s", string(data))

	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to TOML")
		}
		fmt.Printf("# dictimport configuration\n%s", string(data))

	default:
		return errors.Newf("unsupported format: %s (supported: toml, json, yaml)", configFormatFlag)
	}

	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	v := config.GetViper()
	if !v.IsSet(key) {
		return errors.Newf("configuration key %q not found", key)
	}

	fmt.Println(v.Get(key))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		cfg, err := config.LoadFromFile(args[0])
		if err != nil {
			return errors.Wrapf(err, "failed to load %s", args[0])
		}
		if err := cfg.Validate(); err != nil {
			return errors.Wrapf(err, "%s failed validation", args[0])
		}
		fmt.Printf("✓ %s is valid\n", args[0])
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}

	fmt.Println("✓ Configuration is valid")
	return nil
}

func runConfigWhere(cmd *cobra.Command, args []string) error {
	fmt.Println("Configuration cascade (later overrides earlier):")
	fmt.Println("  1. [DEFAULT]  Built-in defaults")
	fmt.Println("  2. [SYSTEM]   /etc/dictimport/config.toml")
	fmt.Println("  3. [USER]     ~/.dictimport/config.toml")
	fmt.Println("  4. [PROJECT]  ./dictimport.toml (searches up directories)")
	fmt.Println("  5. [ENV]      DICTIMPORT_* environment variables")
	fmt.Println()

	homeDir, _ := os.UserHomeDir()
	candidates := []string{
		"/etc/dictimport/config.toml",
		filepath.Join(homeDir, ".dictimport", "config.toml"),
	}
	projectConfig := config.ProjectConfigPath()
	if projectConfig != "" {
		candidates = append(candidates, projectConfig)
	}

	fmt.Println("Files in effect:")
	found := false
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			fmt.Printf("  %s %s\n", sym.Config, candidate)
			found = true
		}
	}
	if !found {
		fmt.Println("  (none; running on built-in defaults)")
	}
	if projectConfig == "" {
		fmt.Println("  No project dictimport.toml above the working directory.")
	}

	var overrides []string
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "DICTIMPORT_") {
			overrides = append(overrides, env)
		}
	}
	if len(overrides) > 0 {
		sort.Strings(overrides)
		fmt.Println()
		fmt.Println("Environment overrides:")
		for _, override := range overrides {
			fmt.Printf("  %s\n", override)
		}
	}

	return nil
}
