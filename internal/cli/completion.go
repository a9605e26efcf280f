package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/davidthor/chainctl/pkg/artifact/store"
	"github.com/davidthor/chainctl/pkg/commands"
)

func init() {
	rootCmd.AddCommand(newCompletionCmd())
}

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for chainctl.

Bash:
  $ source <(chainctl completion bash)

Zsh:
  $ chainctl completion zsh > "${fpath[1]}/_chainctl"

Fish:
  $ chainctl completion fish > ~/.config/fish/completions/chainctl.fish

PowerShell:
  PS> chainctl completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletionV2(out, true)
			case "zsh":
				return rootCmd.GenZshCompletion(out)
			case "fish":
				return rootCmd.GenFishCompletion(out, true)
			case "powershell":
				return rootCmd.GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unknown shell: %s", args[0])
			}
		},
	}

	return cmd
}

// registerFileCompletions limits flag completion to the document types
// chainctl reads. Flags missing from cmd are ignored.
func registerFileCompletions(cmd *cobra.Command) {
	exts := map[string][]string{
		"graph": {"json", "yaml", "yml"},
		"vars":  {"json", "yaml", "yml", "hcl"},
		"table": {"csv", "xlsx"},
	}
	for flag, e := range exts {
		if cmd.Flags().Lookup(flag) != nil {
			_ = cmd.MarkFlagFilename(flag, e...)
		}
	}
	if cmd.Flags().Lookup("copy-backend") != nil {
		_ = cmd.RegisterFlagCompletionFunc("copy-backend", completeBackendTypes)
	}
}

// completeBackendTypes returns the registered artifact backends.
func completeBackendTypes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return store.Types(), cobra.ShellCompDirectiveNoFileComp
}

// completeNodeTypes returns the registered node types.
func completeNodeTypes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var types []string
	for _, t := range commands.Default().Types() {
		types = append(types, string(t))
	}
	return types, cobra.ShellCompDirectiveNoFileComp
}
