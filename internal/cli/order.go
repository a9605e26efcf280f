package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/davidthor/chainctl/pkg/engine/orderer"
	"github.com/davidthor/chainctl/pkg/workflow"
	"github.com/davidthor/chainctl/pkg/workflow/visual"
)

func newOrderCmd() *cobra.Command {
	var (
		graphPath string
		format    string
		direction string
		dataEdges bool
		imagePath string
	)

	cmd := &cobra.Command{
		Use:   "order",
		Short: "Show the execution order of a workflow graph",
		Long: `Print the order in which the graph's command nodes run for each model.

Formats:
  list      One node per line with its type (default)
  json      The order and the strategy that produced it
  mermaid   A Mermaid flowchart with the steps numbered

With --image the flowchart is rendered through mermaid-cli (mmdc) to a
.png, .svg or .pdf file.

Examples:
  chainctl order -g workflow.json
  chainctl order -g workflow.json --format mermaid --data-edges
  chainctl order -g workflow.json --image workflow.svg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			g, err := workflow.LoadFile(graphPath)
			if err != nil {
				return err
			}
			result := orderer.Order(ctx, g)

			mermaidOpts := visual.MermaidOptions{
				Direction: direction,
				DataEdges: dataEdges,
				Order:     result.IDs,
			}

			if imagePath != "" {
				if err := visual.RenderImage(ctx, g, imagePath, visual.ImageOptions{MermaidOptions: mermaidOpts}); err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote %s\n", imagePath)
				return nil
			}

			switch format {
			case "list", "":
				fmt.Fprintf(out, "Strategy: %s\n", result.Strategy)
				for i, id := range result.IDs {
					n, _ := g.GetNode(id)
					fmt.Fprintf(out, "%3d  %-24s %s\n", i+1, id, n.Type)
				}
			case "json":
				data, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			case "mermaid":
				text, err := visual.RenderMermaid(g, mermaidOpts)
				if err != nil {
					return err
				}
				fmt.Fprint(out, text)
			default:
				return fmt.Errorf("unknown format %q (use list, json or mermaid)", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&graphPath, "graph", "g", "", "Workflow graph (.json, .yaml)")
	cmd.Flags().StringVarP(&format, "format", "f", "list", "Output format: list, json, mermaid")
	cmd.Flags().StringVar(&direction, "direction", "LR", "Mermaid direction: LR or TD")
	cmd.Flags().BoolVar(&dataEdges, "data-edges", false, "Include parameter edges in the diagram")
	cmd.Flags().StringVar(&imagePath, "image", "", "Render the diagram to an image file (.png, .svg, .pdf)")
	_ = cmd.MarkFlagRequired("graph")
	registerFileCompletions(cmd)

	return cmd
}
