// Package engine drives a batch: it orders the workflow graph once and runs
// it for every model in the table, writing one chain artifact per model.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/davidthor/chainctl/pkg/artifact/store"
	"github.com/davidthor/chainctl/pkg/artifact/store/local"
	"github.com/davidthor/chainctl/pkg/commands"
	"github.com/davidthor/chainctl/pkg/commands/scaffold"
	"github.com/davidthor/chainctl/pkg/ctxlog"
	"github.com/davidthor/chainctl/pkg/engine/executor"
	"github.com/davidthor/chainctl/pkg/engine/orderer"
	"github.com/davidthor/chainctl/pkg/errors"
	"github.com/davidthor/chainctl/pkg/names"
	"github.com/davidthor/chainctl/pkg/table"
	"github.com/davidthor/chainctl/pkg/tracing"
	"github.com/davidthor/chainctl/pkg/variables"
	"github.com/davidthor/chainctl/pkg/workflow"
)

// Output node data keys.
const (
	KeyProjectFolderVariable = "projectFolderVariable"
	KeyModelType             = "modelType"

	// DefaultProjectFolderVariable is the run variable holding the project
	// folder when the output node does not name one.
	DefaultProjectFolderVariable = "project_folder"
)

// Options configures an Engine.
type Options struct {
	// Registry maps node types to generators. Nil uses the built-in set.
	Registry *commands.Registry

	// CopyBackend, when set, names an artifact store backend that receives a
	// second copy of every chain under the project folder.
	CopyBackend string

	// CopyConfig is passed to the copy backend factory.
	CopyConfig map[string]string

	// OnArtifact is called after each artifact is written.
	OnArtifact func(Artifact)
}

// Engine runs workflow batches.
type Engine struct {
	executor *executor.Executor
	opts     Options
}

// NewEngine creates a batch engine.
func NewEngine(opts Options) *Engine {
	return &Engine{
		executor: executor.NewExecutor(opts.Registry),
		opts:     opts,
	}
}

// RunInput is everything a batch needs.
type RunInput struct {
	// TablePath is a .csv or .xlsx model table. Ignored when Models is set.
	TablePath string

	// Models overrides TablePath with already loaded rows.
	Models []table.Model

	Graph     *workflow.Graph
	Bindings  []variables.Binding
	OutputDir string
}

// Artifact is one generated chain file.
type Artifact struct {
	Filename      string        `json:"filename" yaml:"filename"`
	OutputPath    string        `json:"output_path" yaml:"output_path"`
	ProjectFolder string        `json:"project_folder" yaml:"project_folder"`
	Model         string        `json:"model" yaml:"model"`
	Kind          scaffold.Kind `json:"kind" yaml:"kind"`
	CopyLocation  string        `json:"copy_location,omitempty" yaml:"copy_location,omitempty"`
}

// Detail returns the metadata consumed by batch-level aggregation.
func (a Artifact) Detail() ArtifactDetail {
	return ArtifactDetail{
		Filename:      a.Filename,
		OutputPath:    a.OutputPath,
		ProjectFolder: a.ProjectFolder,
	}
}

// ArtifactDetail describes an artifact for aggregation.
type ArtifactDetail struct {
	Filename      string `json:"filename" yaml:"filename"`
	OutputPath    string `json:"output_path" yaml:"output_path"`
	ProjectFolder string `json:"project_folder" yaml:"project_folder"`
}

// RunResult is the outcome of a batch.
type RunResult struct {
	RunID         string
	Artifacts     []Artifact
	ProjectFolder string
	Details       []ArtifactDetail
	// Skipped lists models whose names cannot be used as file names.
	Skipped  []string
	Order    orderer.Result
	Duration time.Duration
}

// Paths returns the output paths of all artifacts in table order.
func (r *RunResult) Paths() []string {
	out := make([]string, 0, len(r.Artifacts))
	for _, a := range r.Artifacts {
		out = append(out, a.OutputPath)
	}
	return out
}

// Run executes the workflow graph once per model and persists the chains.
//
// A missing table or an empty selection yields an empty result. An unreadable
// table, or a table without a single model identifier, is fatal.
func (e *Engine) Run(ctx context.Context, in RunInput) (_ *RunResult, err error) {
	start := time.Now()
	result := &RunResult{RunID: uuid.NewString()}

	ctx, span := tracing.Start(ctx, "engine.Run", attribute.String("run_id", result.RunID))
	defer func() { tracing.End(span, err) }()

	logger := ctxlog.FromContext(ctx).With("run_id", result.RunID)
	ctx = ctxlog.WithLogger(ctx, logger)

	if in.Graph == nil {
		in.Graph = &workflow.Graph{}
	}

	models, err := e.models(ctx, in)
	if err != nil {
		return nil, err
	}

	selected := table.Filter(models, in.Graph.SelectedModelNames)
	if len(selected) == 0 {
		logger.Info("no models selected, nothing to generate", "table_models", len(models))
		result.Duration = time.Since(start)
		return result, nil
	}

	runVars := variables.RunVars(in.Bindings)
	output, _ := in.Graph.OutputNode()
	kind := scaffold.ParseKind(output.StringOr(KeyModelType, string(scaffold.KindModel)))
	result.ProjectFolder = projectFolder(output, in.Bindings, runVars)

	out, err := local.NewBackend(map[string]string{"path": in.OutputDir})
	if err != nil {
		return nil, errors.BackendError("local", "open output directory", err)
	}
	copies, copyPrefix := e.copyBackend(ctx, result.ProjectFolder)

	result.Order = orderer.Order(ctx, in.Graph)
	nodes := make([]workflow.Node, 0, len(result.Order.IDs))
	for _, id := range result.Order.IDs {
		if n, ok := in.Graph.GetNode(id); ok {
			nodes = append(nodes, n)
		}
	}
	logger.Info("starting batch",
		"models", len(selected),
		"nodes", len(nodes),
		"strategy", string(result.Order.Strategy),
		"kind", string(kind),
		"project_folder", result.ProjectFolder,
	)

	for _, m := range selected {
		if err := names.CheckFileName(m.Name); err != nil {
			logger.Warn("skipping model with unsafe file name", "model", m.Name, "error", err)
			result.Skipped = append(result.Skipped, m.Name)
			continue
		}

		artifact, err := e.runModel(ctx, m, nodes, kind, result.ProjectFolder, in, runVars, out)
		if err != nil {
			return nil, err
		}

		if copies != nil {
			path := store.Join(copyPrefix, artifact.Filename)
			if err := store.Put(ctx, copies, path, []byte(artifact.content)); err != nil {
				logger.Warn("failed to copy artifact to project folder",
					"model", m.Name, "backend", copies.Type(), "error", err)
			} else {
				artifact.CopyLocation = copies.Location(path)
			}
		}

		result.Artifacts = append(result.Artifacts, artifact.Artifact)
		result.Details = append(result.Details, artifact.Detail())
		if e.opts.OnArtifact != nil {
			e.opts.OnArtifact(artifact.Artifact)
		}
	}

	result.Duration = time.Since(start)
	span.SetAttributes(attribute.Int("artifacts", len(result.Artifacts)))
	logger.Info("batch complete", "artifacts", len(result.Artifacts), "duration", result.Duration)
	return result, nil
}

type generated struct {
	Artifact
	content string
}

func (e *Engine) runModel(
	ctx context.Context,
	m table.Model,
	nodes []workflow.Node,
	kind scaffold.Kind,
	projectFolder string,
	in RunInput,
	runVars map[string]string,
	out store.Backend,
) (_ generated, err error) {
	model := m.Name
	ctx, span := tracing.Start(ctx, "engine.runModel", attribute.String("model", model))
	defer func() { tracing.End(span, err) }()

	rc := variables.NewContext(model, in.Bindings, runVars).WithAttributes(m.Attributes)

	buf := &executor.Buffer{}
	buf.Append(scaffold.Open(kind, projectFolder, model)...)
	for _, n := range nodes {
		e.executor.Execute(ctx, n, rc, buf, in.OutputDir)
	}
	buf.Append(scaffold.ChainClosing()...)

	filename := names.ChainFile(model)
	content := buf.String()
	if err := store.Put(ctx, out, filename, []byte(content)); err != nil {
		return generated{}, errors.Wrap(errors.ErrCodeArtifact, fmt.Sprintf("failed to write %s", filename), err)
	}

	ctxlog.FromContext(ctx).Debug("wrote chain", "model", model, "lines", buf.Len())

	return generated{
		Artifact: Artifact{
			Filename:      filename,
			OutputPath:    out.Location(filename),
			ProjectFolder: projectFolder,
			Model:         model,
			Kind:          kind,
		},
		content: content,
	}, nil
}

func (e *Engine) models(ctx context.Context, in RunInput) ([]table.Model, error) {
	if in.Models != nil {
		if len(in.Models) == 0 {
			return nil, errors.New(errors.ErrCodeEmptyBatch, "model table contains no model identifiers")
		}
		return in.Models, nil
	}

	if in.TablePath == "" {
		ctxlog.FromContext(ctx).Info("no model table supplied")
		return nil, nil
	}

	models, err := table.Load(in.TablePath)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyBatch, "model table contains no model identifiers").
			WithDetail("file", in.TablePath)
	}
	return models, nil
}

// copyBackend opens the secondary destination and returns it with the key
// prefix that copies are written under. A local copy backend without an
// explicit path writes straight into the project folder; every other
// backend groups copies under the project folder's base name.
func (e *Engine) copyBackend(ctx context.Context, projectFolder string) (store.Backend, string) {
	if e.opts.CopyBackend == "" || projectFolder == "" {
		return nil, ""
	}

	cfg := make(map[string]string, len(e.opts.CopyConfig)+1)
	for k, v := range e.opts.CopyConfig {
		cfg[k] = v
	}
	prefix := names.Base(projectFolder)
	if e.opts.CopyBackend == "local" && cfg["path"] == "" {
		cfg["path"] = projectFolder
		prefix = ""
	}

	b, err := store.Create(e.opts.CopyBackend, cfg)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("copy backend unavailable, skipping project folder copies",
			"backend", e.opts.CopyBackend, "error", err)
		return nil, ""
	}
	return b, prefix
}

// projectFolder resolves the run variable named on the output node. A name
// that resolves to nothing yields an empty folder.
func projectFolder(output workflow.Node, bindings []variables.Binding, runVars map[string]string) string {
	name := output.StringOr(KeyProjectFolderVariable, DefaultProjectFolderVariable)
	value := variables.Resolve(name, "", bindings, runVars)
	if value == name {
		return ""
	}
	return value
}
