package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/davidthor/chainctl/pkg/aggregate"
	"github.com/davidthor/chainctl/pkg/artifact/store/local"
	"github.com/davidthor/chainctl/pkg/ctxlog"
	"github.com/davidthor/chainctl/pkg/engine"
	"github.com/davidthor/chainctl/pkg/variables"
	"github.com/davidthor/chainctl/pkg/workflow"
)

type runOutput struct {
	RunID         string                  `json:"run_id" yaml:"run_id"`
	ProjectFolder string                  `json:"project_folder" yaml:"project_folder"`
	Strategy      string                  `json:"strategy" yaml:"strategy"`
	Order         []string                `json:"order" yaml:"order"`
	Artifacts     []engine.Artifact       `json:"artifacts" yaml:"artifacts"`
	Aggregates    []engine.ArtifactDetail `json:"aggregates,omitempty" yaml:"aggregates,omitempty"`
	Skipped       []string                `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

func newRunCmd() *cobra.Command {
	var (
		tablePath     string
		graphPath     string
		varsPath      string
		outputDir     string
		selectModels  []string
		copyBackend   string
		backendConfig []string
		noAggregate   bool
		outputFormat  string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate chain files for every model in a table",
		Long: `Run the workflow graph once for every model in the table and write one
<model>.chain file per model to the output directory.

Models are read from the first column of a .csv or .xlsx table. The first
row is skipped when it is a header (filename, name, model, model_name or
model name). When the project folder variable resolves, chains are grouped
into "<project> ALL CHAIN.chain" files and, with --copy-backend, copied to
the project folder.

Examples:
  chainctl run -t models.xlsx -g workflow.json --vars vars.yaml
  chainctl run -t models.csv -g workflow.yaml --select M1,M2 -d ./chains
  chainctl run -t models.csv -g workflow.json --copy-backend s3 \
    --copy-backend-config bucket=survey-chains --copy-backend-config region=ap-southeast-2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := ctxlog.FromContext(ctx)

			g, err := workflow.LoadFile(graphPath)
			if err != nil {
				return err
			}
			if len(selectModels) > 0 {
				g.SelectedModelNames = selectModels
			}

			var bindings []variables.Binding
			if varsPath != "" {
				bindings, err = variables.LoadFile(varsPath)
				if err != nil {
					return err
				}
			}

			if outputDir == "" {
				outputDir = viper.GetString(ConfigKeyOutputDir)
			}
			if outputDir == "" {
				outputDir = "output"
			}

			if copyBackend == "" {
				copyBackend = viper.GetString(ConfigKeyCopyBackend)
			}
			copyCfg := copyBackendConfig()
			for k, v := range parseKeyValues(backendConfig) {
				copyCfg[k] = v
			}

			out := cmd.OutOrStdout()
			e := engine.NewEngine(engine.Options{
				CopyBackend: copyBackend,
				CopyConfig:  copyCfg,
				OnArtifact: func(a engine.Artifact) {
					logger.Info("generated chain", "model", a.Model, "path", a.OutputPath)
				},
			})

			result, err := e.Run(ctx, engine.RunInput{
				TablePath: tablePath,
				Graph:     g,
				Bindings:  bindings,
				OutputDir: outputDir,
			})
			if err != nil {
				return err
			}

			report := runOutput{
				RunID:         result.RunID,
				ProjectFolder: result.ProjectFolder,
				Strategy:      string(result.Order.Strategy),
				Order:         result.Order.IDs,
				Artifacts:     result.Artifacts,
				Skipped:       result.Skipped,
			}

			if !noAggregate && len(result.Artifacts) > 0 {
				b, err := local.NewBackend(map[string]string{"path": outputDir})
				if err != nil {
					return err
				}
				report.Aggregates, err = aggregate.Build(ctx, b, result.RunID, result.Details)
				if err != nil {
					return err
				}
			}

			return printRun(out, report, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&tablePath, "table", "t", "", "Model table (.csv or .xlsx)")
	cmd.Flags().StringVarP(&graphPath, "graph", "g", "", "Workflow graph (.json, .yaml)")
	cmd.Flags().StringVar(&varsPath, "vars", "", "Variable bindings (.json, .yaml, .hcl)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Output directory (default from config, else ./output)")
	cmd.Flags().StringSliceVar(&selectModels, "select", nil, "Only generate these models (overrides selectedModelNames)")
	cmd.Flags().StringVar(&copyBackend, "copy-backend", "", "Copy chains to the project folder on this backend (local, s3, gcs, azurerm)")
	cmd.Flags().StringArrayVar(&backendConfig, "copy-backend-config", nil, "Copy backend configuration (key=value)")
	cmd.Flags().BoolVar(&noAggregate, "no-aggregate", false, "Skip the per-project ALL CHAIN files and manifest")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json, yaml")
	_ = cmd.MarkFlagRequired("table")
	_ = cmd.MarkFlagRequired("graph")
	registerFileCompletions(cmd)

	return cmd
}

func printRun(w io.Writer, r runOutput, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
	case "yaml":
		data, err := yaml.Marshal(r)
		if err != nil {
			return err
		}
		fmt.Fprint(w, string(data))
	case "table", "":
		for _, m := range r.Skipped {
			fmt.Fprintf(w, "skipped %q: not usable as a file name\n", m)
		}
		if len(r.Artifacts) == 0 {
			fmt.Fprintln(w, "No chains generated.")
			return nil
		}
		fmt.Fprintf(w, "%-30s %-6s %s\n", "MODEL", "KIND", "OUTPUT")
		for _, a := range r.Artifacts {
			fmt.Fprintf(w, "%-30s %-6s %s\n", a.Model, a.Kind, a.OutputPath)
		}
		for _, a := range r.Aggregates {
			fmt.Fprintf(w, "%-30s %-6s %s\n", "(all)", "", a.OutputPath)
		}
		fmt.Fprintf(w, "\n%d chain(s) generated, run %s\n", len(r.Artifacts), r.RunID)
	default:
		return fmt.Errorf("unknown output format %q (use table, json or yaml)", format)
	}
	return nil
}
