package visual

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/davidthor/chainctl/pkg/workflow"
)

// ImageFormats are the output formats mermaid-cli can produce.
var ImageFormats = []string{"png", "svg", "pdf"}

// RenderImage renders the workflow through mermaid-cli (mmdc) and writes the
// image to outputPath. The format follows the file extension.
//
// mmdc must be on $PATH:
//
//	npm install -g @mermaid-js/mermaid-cli
func RenderImage(ctx context.Context, g *workflow.Graph, outputPath string, opts ImageOptions) error {
	text, err := RenderMermaid(g, opts.MermaidOptions)
	if err != nil {
		return fmt.Errorf("failed to generate mermaid diagram: %w", err)
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(outputPath)), ".")
	if !supportedFormat(format) {
		return fmt.Errorf("unsupported image format %q (supported: %s)", format, strings.Join(ImageFormats, ", "))
	}

	mmdc, err := exec.LookPath("mmdc")
	if err != nil {
		return fmt.Errorf("mermaid-cli (mmdc) is not on $PATH; install it with " +
			"'npm install -g @mermaid-js/mermaid-cli' or use --format mermaid and paste the output into mermaid.live")
	}

	tmpDir, err := os.MkdirTemp("", "chainctl-mermaid-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	input := filepath.Join(tmpDir, "workflow.mmd")
	if err := os.WriteFile(input, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write mermaid input: %w", err)
	}

	cmd := exec.CommandContext(ctx, mmdc, mmdcArgs(input, outputPath, format, opts)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("mmdc failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func mmdcArgs(input, output, format string, opts ImageOptions) []string {
	theme := opts.Theme
	if theme == "" {
		theme = "default"
	}
	args := []string{"-i", input, "-o", output, "-e", format, "-t", theme}
	if opts.Width > 0 {
		args = append(args, "-w", strconv.Itoa(opts.Width))
	}
	if opts.Height > 0 {
		args = append(args, "-H", strconv.Itoa(opts.Height))
	}
	return args
}

func supportedFormat(format string) bool {
	for _, f := range ImageFormats {
		if f == format {
			return true
		}
	}
	return false
}
