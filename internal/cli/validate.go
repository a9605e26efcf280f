package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/davidthor/chainctl/pkg/commands"
	"github.com/davidthor/chainctl/pkg/errors"
	"github.com/davidthor/chainctl/pkg/table"
	"github.com/davidthor/chainctl/pkg/variables"
	"github.com/davidthor/chainctl/pkg/workflow"
)

func newValidateCmd() *cobra.Command {
	var (
		graphPath string
		varsPath  string
		tablePath string
		strict    bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a workflow graph and its inputs",
		Long: `Validate the workflow graph against its schema and report authoring
problems that chainctl run tolerates silently: dangling edges, unknown node
types, flow cycles and missing foreachModel or chainFileOutput nodes.

Bindings and the model table are checked when given.

Examples:
  chainctl validate -g workflow.json
  chainctl validate -g workflow.json --vars vars.hcl -t models.xlsx --strict`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			g, err := workflow.LoadFile(graphPath)
			if err != nil {
				printProblems(cmd, err)
				return err
			}
			fmt.Fprintf(out, "✓ Graph is valid (%d nodes, %d edges)\n", len(g.Nodes), len(g.Edges))

			if varsPath != "" {
				bindings, err := variables.LoadFile(varsPath)
				if err != nil {
					printProblems(cmd, err)
					return err
				}
				fmt.Fprintf(out, "✓ Bindings are valid (%d variables)\n", len(bindings))
			}

			if tablePath != "" {
				models, err := table.Load(tablePath)
				if err != nil {
					return err
				}
				if len(models) == 0 {
					return errors.New(errors.ErrCodeEmptyBatch, "model table contains no model identifiers")
				}
				fmt.Fprintf(out, "✓ Table has %d model(s)\n", len(models))
			}

			registry := commands.Default()
			warnings := workflow.Lint(g, func(t workflow.NodeType) bool {
				_, ok := registry.Get(t)
				return ok
			})
			for _, w := range warnings {
				fmt.Fprintf(out, "  warning: %s\n", w)
			}
			if strict && len(warnings) > 0 {
				return fmt.Errorf("%d warning(s) in strict mode", len(warnings))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&graphPath, "graph", "g", "", "Workflow graph (.json, .yaml)")
	cmd.Flags().StringVar(&varsPath, "vars", "", "Variable bindings (.json, .yaml, .hcl)")
	cmd.Flags().StringVarP(&tablePath, "table", "t", "", "Model table (.csv or .xlsx)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as errors")
	_ = cmd.MarkFlagRequired("graph")
	registerFileCompletions(cmd)

	return cmd
}

// printProblems lists the individual problems of a validation error.
func printProblems(cmd *cobra.Command, err error) {
	var e *errors.Error
	if !errors.As(err, &e) {
		return
	}
	problems, _ := e.Details["errors"].([]string)
	for _, p := range problems {
		fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", p)
	}
}
