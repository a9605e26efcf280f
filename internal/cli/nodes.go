package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/davidthor/chainctl/pkg/commands"
)

type nodeTypeInfo struct {
	Type       string      `json:"type" yaml:"type"`
	Summary    string      `json:"summary,omitempty" yaml:"summary,omitempty"`
	SideEffect bool        `json:"side_effect,omitempty" yaml:"side_effect,omitempty"`
	Parameters []paramInfo `json:"parameters" yaml:"parameters"`
}

type paramInfo struct {
	Key         string      `json:"key" yaml:"key"`
	Default     interface{} `json:"default" yaml:"default"`
	Raw         bool        `json:"raw,omitempty" yaml:"raw,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
}

func newNodesCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "nodes [type]",
		Short: "List the node types chainctl can generate",
		Long: `List every registered node type with its parameters and defaults.

A string default names the variable looked up when the node does not set the
parameter; raw parameters are used as written.

Examples:
  chainctl nodes
  chainctl nodes cleanModel -o yaml`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeNodeTypes,
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := describeNodes(commands.Default())
			if len(args) == 1 {
				var filtered []nodeTypeInfo
				for _, info := range infos {
					if info.Type == args[0] {
						filtered = append(filtered, info)
					}
				}
				if len(filtered) == 0 {
					return fmt.Errorf("unknown node type %q", args[0])
				}
				infos = filtered
			}

			out := cmd.OutOrStdout()
			switch outputFormat {
			case "json":
				data, err := json.MarshalIndent(infos, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			case "yaml":
				data, err := yaml.Marshal(infos)
				if err != nil {
					return err
				}
				fmt.Fprint(out, string(data))
			case "table", "":
				for _, info := range infos {
					marker := ""
					if info.SideEffect {
						marker = " (writes files)"
					}
					fmt.Fprintf(out, "%s%s\n", info.Type, marker)
					if info.Summary != "" {
						fmt.Fprintf(out, "  %s\n", info.Summary)
					}
					for _, p := range info.Parameters {
						fmt.Fprintf(out, "    %-22s default=%v\n", p.Key, p.Default)
					}
				}
			default:
				return fmt.Errorf("unknown output format %q (use table, json or yaml)", outputFormat)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json, yaml")

	return cmd
}

func describeNodes(r *commands.Registry) []nodeTypeInfo {
	var infos []nodeTypeInfo
	for _, t := range r.Types() {
		g, _ := r.Get(t)
		info := nodeTypeInfo{Type: string(t)}
		if d, ok := g.(commands.Describer); ok {
			info.Summary = d.Description()
		}
		_, info.SideEffect = g.(commands.SideEffect)
		for _, p := range g.Params() {
			info.Parameters = append(info.Parameters, paramInfo{
				Key:         p.Key,
				Default:     p.Default,
				Raw:         p.Raw,
				Description: p.Description,
			})
		}
		infos = append(infos, info)
	}
	return infos
}
