package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Configuration keys stored in ~/.chainctl/config.yaml.
const (
	ConfigKeyOutputDir         = "output_dir"
	ConfigKeyCopyBackend       = "copy_backend"
	ConfigKeyCopyBackendConfig = "copy_backend_config"
	ConfigKeyLogLevel          = "log_level"
	ConfigKeyLogFormat         = "log_format"
)

var configKeys = []string{
	ConfigKeyOutputDir,
	ConfigKeyCopyBackend,
	ConfigKeyLogLevel,
	ConfigKeyLogFormat,
}

const configKeysHelp = `Available keys:
  output-dir                  Directory chains are written to (default ./output).
  copy-backend                Backend receiving project folder copies (local, s3, gcs, azurerm).
  copy-backend-config.<key>   Configuration passed to the copy backend, e.g. copy-backend-config.bucket.
  log-level                   debug, info, warn or error.
  log-format                  text, json or auto.`

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  `Get and set chainctl CLI configuration values stored in ~/.chainctl/config.yaml.`,
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigListCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value in ~/.chainctl/config.yaml.

` + configKeysHelp + `

Examples:
  chainctl config set output-dir ./chains
  chainctl config set copy-backend s3
  chainctl config set copy-backend-config.bucket survey-chains`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]

			viperKey, err := validateConfigKey(key)
			if err != nil {
				return err
			}

			viper.Set(viperKey, value)
			if err := writeConfig(); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
			return nil
		},
	}

	return cmd
}

func newConfigGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get a configuration value from ~/.chainctl/config.yaml.

Examples:
  chainctl config get output-dir`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			viperKey, err := validateConfigKey(key)
			if err != nil {
				return err
			}

			value := viper.GetString(viperKey)
			if value == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is not set\n", key)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), value)
			}
			return nil
		},
	}

	return cmd
}

func newConfigListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long:  `List all configuration values from ~/.chainctl/config.yaml.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Configuration:")

			set := 0
			for _, key := range configKeys {
				if v := viper.GetString(key); v != "" {
					fmt.Fprintf(out, "  %s = %s\n", displayConfigKey(key), v)
					set++
				}
			}
			backendCfg := copyBackendConfig()
			for _, k := range sortedMapKeys(backendCfg) {
				fmt.Fprintf(out, "  %s.%s = %s\n", displayConfigKey(ConfigKeyCopyBackendConfig), k, backendCfg[k])
				set++
			}

			if set == 0 {
				fmt.Fprintln(out, "  (no values set)")
			}
			return nil
		},
	}

	return cmd
}

// validateConfigKey maps a CLI key to its viper key and rejects unknown keys.
func validateConfigKey(key string) (string, error) {
	viperKey := normalizeConfigKey(key)
	for _, k := range configKeys {
		if viperKey == k {
			return viperKey, nil
		}
	}
	if sub := strings.TrimPrefix(viperKey, ConfigKeyCopyBackendConfig+"."); sub != viperKey && sub != "" {
		return viperKey, nil
	}
	return "", fmt.Errorf("unknown configuration key %q\n\n%s", key, configKeysHelp)
}

// copyBackendConfig merges copy_backend_config from the config file.
func copyBackendConfig() map[string]string {
	return viper.GetStringMapString(ConfigKeyCopyBackendConfig)
}

// writeConfig writes the current viper config to the config file.
func writeConfig() error {
	configPath := viper.ConfigFileUsed()
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir := filepath.Join(home, ".chainctl")
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
		configPath = filepath.Join(configDir, "config.yaml")
	}

	return viper.WriteConfigAs(configPath)
}

// normalizeConfigKey converts CLI-style keys (with dashes) to viper-style keys (with underscores).
func normalizeConfigKey(key string) string {
	head, rest, nested := strings.Cut(key, ".")
	head = strings.ReplaceAll(head, "-", "_")
	if nested {
		return head + "." + rest
	}
	return head
}

func displayConfigKey(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

func sortedMapKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// parseKeyValues parses repeated key=value flags. Entries without "=" are
// ignored.
func parseKeyValues(pairs []string) map[string]string {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		parts := strings.SplitN(p, "=", 2)
		if len(parts) == 2 {
			out[parts[0]] = parts[1]
		}
	}
	return out
}
