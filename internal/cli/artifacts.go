package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/davidthor/chainctl/pkg/aggregate"
	"github.com/davidthor/chainctl/pkg/artifact/store"
	"github.com/davidthor/chainctl/pkg/artifact/store/local"
)

// EnvArtifactsPrefix is the prefix for artifact backend configuration from
// the environment. CHAINCTL_ARTIFACTS_BUCKET sets the "bucket" key.
const EnvArtifactsPrefix = "CHAINCTL_ARTIFACTS_"

type artifactsFlags struct {
	backend       string
	backendConfig []string
}

func newArtifactsCmd() *cobra.Command {
	var flags artifactsFlags

	cmd := &cobra.Command{
		Use:     "artifacts",
		Aliases: []string{"artifact"},
		Short:   "Inspect generated chains in an artifact store",
		Long: `List, print and remove chain files held by an artifact backend.

Without --backend the local output directory is used (output_dir from the
config, else ./output). Other backends take the same keys as --copy-backend.

Examples:
  chainctl artifacts ls
  chainctl artifacts cat "Road Upgrade ALL CHAIN.chain"
  chainctl artifacts ls --backend s3 --backend-config bucket=survey-chains
  chainctl artifacts rm M1.chain M2.chain`,
	}

	cmd.PersistentFlags().StringVar(&flags.backend, "backend", "", "Artifact backend (local, s3, gcs, azurerm)")
	cmd.PersistentFlags().StringArrayVar(&flags.backendConfig, "backend-config", nil, "Backend configuration (key=value)")

	cmd.AddCommand(newArtifactsListCmd(&flags))
	cmd.AddCommand(newArtifactsCatCmd(&flags))
	cmd.AddCommand(newArtifactsRmCmd(&flags))

	return cmd
}

// openArtifacts creates the backend named by the flags.
//
// Configuration precedence (highest to lowest):
//  1. CLI flags (--backend, --backend-config)
//  2. Environment variables (CHAINCTL_ARTIFACTS_*)
//  3. The local output directory
func openArtifacts(flags *artifactsFlags) (store.Backend, error) {
	backendType := flags.backend
	if backendType == "" {
		backendType = "local"
	}

	cfg := make(map[string]string)
	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if ok && strings.HasPrefix(key, EnvArtifactsPrefix) {
			cfg[strings.ToLower(strings.TrimPrefix(key, EnvArtifactsPrefix))] = value
		}
	}
	for k, v := range parseKeyValues(flags.backendConfig) {
		cfg[k] = v
	}

	if backendType == "local" && cfg["path"] == "" {
		cfg["path"] = viper.GetString(ConfigKeyOutputDir)
		if cfg["path"] == "" {
			cfg["path"] = local.DefaultPath
		}
	}

	return store.Create(backendType, cfg)
}

func newArtifactsListCmd(flags *artifactsFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "ls [prefix]",
		Aliases: []string{"list"},
		Short:   "List artifacts",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openArtifacts(flags)
			if err != nil {
				return err
			}
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}

			paths, err := b.List(cmd.Context(), prefix)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(paths) == 0 {
				fmt.Fprintln(out, "No artifacts found.")
				return nil
			}

			// Mark chains the last batch reported as missing.
			missing := map[string]bool{}
			if m, err := aggregate.ReadManifest(cmd.Context(), b); err == nil {
				for _, d := range m.Missing {
					missing[d.Filename] = true
				}
				if m.RunID != "" {
					fmt.Fprintf(out, "Run: %s\n\n", m.RunID)
				}
			} else if !errors.Is(err, store.ErrNotFound) {
				return err
			}

			fmt.Fprintf(out, "%-40s %s\n", "PATH", "LOCATION")
			for _, p := range paths {
				fmt.Fprintf(out, "%-40s %s\n", p, b.Location(p))
			}
			if len(missing) > 0 {
				fmt.Fprintf(out, "\n%d chain(s) missing from the last batch\n", len(missing))
			}
			return nil
		},
	}
}

func newArtifactsCatCmd(flags *artifactsFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "cat <path>",
		Short: "Print an artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openArtifacts(flags)
			if err != nil {
				return err
			}
			data, err := store.Get(cmd.Context(), b, args[0])
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("artifact %q not found at %s", args[0], b.Location(args[0]))
			}
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newArtifactsRmCmd(flags *artifactsFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <path>...",
		Aliases: []string{"delete"},
		Short:   "Remove artifacts",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openArtifacts(flags)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			for _, p := range args {
				exists, err := b.Exists(ctx, p)
				if err != nil {
					return err
				}
				if !exists {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: not found\n", p)
					continue
				}
				if err := b.Delete(ctx, p); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", b.Location(p))
			}
			return nil
		},
	}
}
