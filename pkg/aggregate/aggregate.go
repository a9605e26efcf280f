// Package aggregate builds the batch-level artifacts: one "ALL CHAIN" file per
// project folder that runs every chain of that project, and a manifest.
package aggregate

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"gopkg.in/yaml.v3"

	"github.com/davidthor/chainctl/pkg/artifact/store"
	"github.com/davidthor/chainctl/pkg/commands"
	"github.com/davidthor/chainctl/pkg/commands/scaffold"
	"github.com/davidthor/chainctl/pkg/ctxlog"
	"github.com/davidthor/chainctl/pkg/engine"
	"github.com/davidthor/chainctl/pkg/errors"
	"github.com/davidthor/chainctl/pkg/names"
	"github.com/davidthor/chainctl/pkg/tracing"
)

const (
	// ManifestFile is written next to the chains.
	ManifestFile = "manifest.yaml"

	allChainSuffix = " ALL CHAIN"
)

// Project groups the artifacts that share a project folder.
type Project struct {
	Folder    string                  `yaml:"folder"`
	Aggregate engine.ArtifactDetail   `yaml:"aggregate"`
	Artifacts []engine.ArtifactDetail `yaml:"artifacts"`
}

// Manifest summarises a batch.
type Manifest struct {
	RunID      string                  `yaml:"run_id,omitempty"`
	Projects   []Project               `yaml:"projects,omitempty"`
	Unassigned []engine.ArtifactDetail `yaml:"unassigned,omitempty"`
	// Missing lists chains that were reported but are not in the store.
	Missing []engine.ArtifactDetail `yaml:"missing,omitempty"`
}

// Aggregates returns the aggregate file names recorded in the manifest.
func (m *Manifest) Aggregates() []string {
	var files []string
	for _, p := range m.Projects {
		if p.Aggregate.Filename != "" {
			files = append(files, p.Aggregate.Filename)
		}
	}
	return files
}

// ReadManifest loads the manifest of the previous batch. It returns
// store.ErrNotFound when no batch has been aggregated yet.
func ReadManifest(ctx context.Context, b store.Backend) (*Manifest, error) {
	data, err := store.Get(ctx, b, ManifestFile)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeArtifact, "failed to decode manifest", err)
	}
	return &m, nil
}

// AllChainFile returns the aggregate file name for a project folder.
func AllChainFile(projectFolder string) string {
	return names.ChainFile(names.Base(projectFolder) + allChainSuffix)
}

// Group splits details by project folder, in first-seen order. Details
// without a project folder are returned separately.
func Group(details []engine.ArtifactDetail) ([]Project, []engine.ArtifactDetail) {
	var (
		projects   []Project
		unassigned []engine.ArtifactDetail
		index      = map[string]int{}
	)
	for _, d := range details {
		if d.ProjectFolder == "" {
			unassigned = append(unassigned, d)
			continue
		}
		i, ok := index[d.ProjectFolder]
		if !ok {
			i = len(projects)
			index[d.ProjectFolder] = i
			projects = append(projects, Project{Folder: d.ProjectFolder})
		}
		projects[i].Artifacts = append(projects[i].Artifacts, d)
	}
	return projects, unassigned
}

// Lines renders the ALL CHAIN file of a project.
func Lines(p Project) []string {
	var cmds []string
	for _, a := range p.Artifacts {
		name := "Run " + strings.TrimSuffix(a.Filename, names.ChainExt)
		cmds = append(cmds, commands.RunChain(name, joinFolder(p.Folder, a.Filename), true)...)
	}
	model := names.Base(p.Folder) + allChainSuffix
	return scaffold.Wrap(scaffold.KindModel, p.Folder, model, cmds)
}

// Build writes one ALL CHAIN file per project folder plus the batch manifest
// to b, and returns the details of the aggregate files. Chains that b does
// not hold are left out of the aggregates and recorded as missing. Aggregates
// listed by the previous manifest that this batch no longer produces are
// deleted.
func Build(ctx context.Context, b store.Backend, runID string, details []engine.ArtifactDetail) (_ []engine.ArtifactDetail, err error) {
	ctx, span := tracing.Start(ctx, "aggregate.Build", attribute.String("run_id", runID))
	defer func() { tracing.End(span, err) }()

	logger := ctxlog.FromContext(ctx)

	previous, err := ReadManifest(ctx, b)
	if err != nil && !stderrors.Is(err, store.ErrNotFound) {
		logger.Warn("ignoring unreadable manifest", "error", err)
	}

	present, missing, err := partition(ctx, b, details)
	if err != nil {
		return nil, err
	}
	for _, d := range missing {
		logger.Warn("chain not found in output, leaving it out of the aggregate", "file", d.Filename)
	}

	projects, unassigned := Group(present)

	var out []engine.ArtifactDetail
	written := make(map[string]bool, len(projects))
	for i := range projects {
		p := &projects[i]
		filename := AllChainFile(p.Folder)
		content := strings.Join(Lines(*p), "\n")
		if err := store.Put(ctx, b, filename, []byte(content)); err != nil {
			return nil, errors.Wrap(errors.ErrCodeArtifact, fmt.Sprintf("failed to write %s", filename), err)
		}

		p.Aggregate = engine.ArtifactDetail{
			Filename:      filename,
			OutputPath:    b.Location(filename),
			ProjectFolder: p.Folder,
		}
		written[filename] = true
		out = append(out, p.Aggregate)
		logger.Info("wrote project aggregate", "project_folder", p.Folder, "chains", len(p.Artifacts))
	}

	if len(unassigned) > 0 {
		logger.Debug("artifacts without a project folder are not aggregated", "count", len(unassigned))
	}

	if previous != nil {
		for _, filename := range previous.Aggregates() {
			if written[filename] {
				continue
			}
			if err := b.Delete(ctx, filename); err != nil {
				return nil, errors.Wrap(errors.ErrCodeArtifact, fmt.Sprintf("failed to remove stale %s", filename), err)
			}
			logger.Info("removed stale project aggregate", "file", filename)
		}
	}

	manifest, err := yaml.Marshal(Manifest{RunID: runID, Projects: projects, Unassigned: unassigned, Missing: missing})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeArtifact, "failed to encode manifest", err)
	}
	if err := store.Put(ctx, b, ManifestFile, manifest); err != nil {
		return nil, errors.Wrap(errors.ErrCodeArtifact, "failed to write manifest", err)
	}

	return out, nil
}

// partition splits details by whether b holds their chain file.
func partition(ctx context.Context, b store.Backend, details []engine.ArtifactDetail) (present, missing []engine.ArtifactDetail, err error) {
	for _, d := range details {
		ok, err := b.Exists(ctx, d.Filename)
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeArtifact, fmt.Sprintf("failed to check %s", d.Filename), err)
		}
		if ok {
			present = append(present, d)
		} else {
			missing = append(missing, d)
		}
	}
	return present, missing, nil
}

// joinFolder joins using the separator style of the folder itself.
func joinFolder(folder, file string) string {
	sep := "/"
	if strings.Contains(folder, `\`) {
		sep = `\`
	}
	return strings.TrimRight(folder, `/\`) + sep + file
}
