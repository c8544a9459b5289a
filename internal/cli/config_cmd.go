package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ariel-frischer/mergelog/internal/config"
	"github.com/ariel-frischer/mergelog/internal/errors"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage mergelog configuration",
	Long: `Manage mergelog configuration settings.

Configuration is loaded with the following priority (highest to lowest):
  1. Environment variables (MERGELOG_*)
  2. Project config (.mergelog/config.yml)
  3. User config (~/.config/mergelog/config.yml)
  4. Built-in defaults

Secrets (NOTION_TOKEN, NOTION_DATABASE_ID, GITHUB_TOKEN, OPENAI_API_KEY)
are read from the environment only and never appear in config files.`,
	Example: `  # Show the effective configuration
  mergelog config show

  # Set a configuration value in the project config
  mergelog config set timezone America/New_York

  # List all known keys
  mergelog config keys`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return errors.ConfigLoadFailed(err)
		}

		out, err := yaml.Marshal(map[string]interface{}{
			"timezone":       cfg.Timezone,
			"date_property":  cfg.DateProperty,
			"title_property": cfg.TitleProperty,
			"model":          cfg.Model,
			"comment_on_pr":  cfg.CommentOnPR,
			"max_retries":    cfg.MaxRetries,
			"log_level":      cfg.LogLevel,
		})
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value in the project config",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		user, _ := cmd.Flags().GetBool("user")
		path := config.ProjectConfigPath()
		if user {
			var err error
			path, err = config.UserConfigPath()
			if err != nil {
				return errors.ConfigLoadFailed(err)
			}
		}

		if err := config.SetConfigValue(path, key, value); err != nil {
			return errors.NewArgumentError(err.Error(),
				"Run 'mergelog config keys' to list valid keys and values")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", key, value, path)
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List all known configuration keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		names := make([]string, 0, len(config.KnownKeys))
		for name := range config.KnownKeys {
			names = append(names, name)
		}
		sort.Strings(names)

		out := cmd.OutOrStdout()
		for _, name := range names {
			schema := config.KnownKeys[name]
			fmt.Fprintf(out, "%-16s %-8s %s (default: %v)\n",
				schema.Path, schema.Type.String(), schema.Description, schema.Default)
		}
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file locations",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(cmd.OutOrStdout(), "project: %s\n", config.ProjectConfigPath())
		if userPath, err := config.UserConfigPath(); err == nil {
			fmt.Fprintf(out, "user:    %s\n", userPath)
		}
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented default project config",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ProjectConfigPath()
		if err := config.WriteDefaultConfig(path); err != nil {
			return errors.NewRuntimeError(err.Error(),
				"Check that the current directory is writable")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var configMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate legacy JSON configs to YAML",
	Long: `Migrate legacy JSON configuration files to the YAML format.

Legacy locations:
  user:    ~/.mergelog/config.json -> ~/.config/mergelog/config.yml
  project: .mergelog/config.json   -> .mergelog/config.yml

The JSON file is renamed to .bak after a successful migration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		userOnly, _ := cmd.Flags().GetBool("user")
		projectOnly, _ := cmd.Flags().GetBool("project")
		out := cmd.OutOrStdout()

		// Neither flag means both scopes.
		doUser := userOnly || !projectOnly
		doProject := projectOnly || !userOnly

		if doUser {
			result, err := config.MigrateUserConfig(dryRun)
			if err != nil {
				return errors.ConfigLoadFailed(err)
			}
			fmt.Fprintln(out, result.Message)
			if result.Success && !dryRun {
				legacyPath, _ := config.LegacyUserConfigPath()
				if err := config.RemoveLegacyConfig(legacyPath, dryRun); err != nil {
					return errors.ConfigLoadFailed(err)
				}
			}
		}
		if doProject {
			result, err := config.MigrateProjectConfig(dryRun)
			if err != nil {
				return errors.ConfigLoadFailed(err)
			}
			fmt.Fprintln(out, result.Message)
			if result.Success && !dryRun {
				if err := config.RemoveLegacyConfig(config.LegacyProjectConfigPath(), dryRun); err != nil {
					return errors.ConfigLoadFailed(err)
				}
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configKeysCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configMigrateCmd)

	configSetCmd.Flags().Bool("user", false, "Write to the user config instead of the project config")
	configMigrateCmd.Flags().Bool("dry-run", false, "Report planned actions without writing")
	configMigrateCmd.Flags().Bool("user", false, "Migrate only the user config")
	configMigrateCmd.Flags().Bool("project", false, "Migrate only the project config")
}
