// Package cli implements the chainctl CLI commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/davidthor/chainctl/pkg/ctxlog"
	"github.com/davidthor/chainctl/pkg/tracing"

	// Import artifact backends to register them via init()
	_ "github.com/davidthor/chainctl/pkg/artifact/store/azurerm"
	_ "github.com/davidthor/chainctl/pkg/artifact/store/gcs"
	_ "github.com/davidthor/chainctl/pkg/artifact/store/local"
	_ "github.com/davidthor/chainctl/pkg/artifact/store/s3"
)

var (
	cfgFile   string
	traceFile string

	// closeTracing flushes spans after the command finishes.
	closeTracing func()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "chainctl",
	Short: "Generate 12d Model chain files from workflow graphs",
	Long: `chainctl turns a workflow graph and a table of model names into 12d Model
chain files, one per model.

The graph describes the commands to run and their order; variable bindings
fill in per-run and per-model values such as disciplines, prefixes and the
project folder.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(viper.GetString(ConfigKeyLogLevel), viper.GetString(ConfigKeyLogFormat), os.Stderr)
		cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))

		if traceFile == "" {
			return nil
		}
		f, err := os.Create(traceFile)
		if err != nil {
			return fmt.Errorf("failed to create trace file: %w", err)
		}
		shutdown, err := tracing.Init("chainctl", Version, f)
		if err != nil {
			f.Close()
			return fmt.Errorf("failed to initialise tracing: %w", err)
		}
		closeTracing = func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Warn("failed to flush traces", "error", err)
			}
			f.Close()
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if closeTracing != nil {
			closeTracing()
			closeTracing = nil
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.chainctl/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "auto", "Log format (text, json, auto)")
	rootCmd.PersistentFlags().StringVar(&traceFile, "trace-file", "", "Write OpenTelemetry spans as JSON to this file")

	// Bind to viper
	_ = viper.BindPFlag(ConfigKeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag(ConfigKeyLogFormat, rootCmd.PersistentFlags().Lookup("log-format"))
	viper.SetEnvPrefix("CHAINCTL")
	viper.AutomaticEnv()

	// Add subcommands
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newOrderCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newNodesCmd())
	rootCmd.AddCommand(newArtifactsCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in home directory
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".chainctl"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	// Read config file if it exists
	_ = viper.ReadInConfig()
}

// newLogger builds the CLI logger. "auto" picks text on a terminal and JSON
// otherwise, so batch logs stay machine readable under CI.
func newLogger(level, format string, w io.Writer) *slog.Logger {
	if format == "" || format == "auto" {
		format = "json"
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			format = "text"
		}
	}
	return ctxlog.New(level, format, w)
}
