package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/davidthor/chainctl/pkg/names"
)

// boxingSlots is the number of numbered left/right boxing blocks in an MTF.
const boxingSlots = 8

// WriteMTFFile writes <name>.mtf under dir. The left side modifier inserts
// the right template and vice versa, which is how 12d mirrors batters.
func WriteMTFFile(dir, name, leftTemplate, rightTemplate string) (string, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), ".mtf")
	if err := names.CheckFileName(name); err != nil {
		return "", fmt.Errorf("invalid mtf name: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	path := filepath.Join(dir, name+".mtf")
	if err := os.WriteFile(path, []byte(mtfBody(leftTemplate, rightTemplate)), 0644); err != nil {
		return "", fmt.Errorf("failed to write mtf: %w", err)
	}
	return path, nil
}

func mtfBody(leftTemplate, rightTemplate string) string {
	var b strings.Builder
	block := func(name, body string) {
		fmt.Fprintf(&b, "%s = {\n%s\n}\n\n", name, body)
	}
	insert := func(template string) string {
		return fmt.Sprintf(`  insert_full_template start_ref 0 final_ref 0 "%s" "Design<<" absolute extra_start extra_end`, template)
	}

	b.WriteString("\n")
	for _, name := range []string{"left_side", "right_side", "specials", "hinge_modifier"} {
		block(name, "")
	}
	block("left_side_modifier", "\n"+insert(rightTemplate))
	block("right_side_modifier", insert(leftTemplate))
	block("stripping", "")
	b.WriteString("boxing_file = \"\"\n\n")
	block("left_boxing", "")
	block("right_boxing", "")
	for i := 2; i <= boxingSlots; i++ {
		block(fmt.Sprintf("left_boxing_%d", i), "")
		block(fmt.Sprintf("right_boxing_%d", i), "")
	}
	block("string_modifiers", "")

	settings := []string{
		"section_width =     10000.00000",
		"auto_super_tables = 1",
	}
	for _, s := range settings {
		b.WriteString(s + "\n\n")
	}
	block("loop_removals", "")
	settings = []string{
		"auto_recalc = 0",
		`hinge_link_name = "HINGE"`,
		`hinge_widen_type = "horz"`,
		"extra_start_end_value = 0.00010",
		`default_chainage_type = "Extents reference string"`,
		`design_layer_name = "Design"`,
		"show_extra_start_end = 1",
		"show_absolute_column = 1",
		"show_interval_column = 1",
		"show_extra_start_end_column = 1",
		`shape_formation_type = "full"`,
		"check_volume_errors = 1",
		"minimum_final_batter_length = 0.00000",
		"allow_links_modified_inwards = 0",
		"do_clear_output_window = 0",
	}
	b.WriteString(strings.Join(settings, "\n\n"))
	b.WriteString("\n")
	return b.String()
}

// mtfFile writes a design MTF and emits nothing.
type mtfFile struct{}

func (mtfFile) Description() string {
	return "Write an MTF file applying left and right templates as side modifiers"
}

func (mtfFile) Params() []Param {
	return []Param{
		{Key: "mtfName", Default: "mtf_name", Description: "MTF name (.mtf is optional)"},
		{Key: "templateLeft", Default: "template_left", Description: "left side template"},
		{Key: "templateRight", Default: "template_right", Description: "right side template"},
	}
}

func (mtfFile) Generate(Params) []string { return nil }

func (mtfFile) Apply(_ context.Context, p Params, outputDir string) error {
	_, err := WriteMTFFile(outputDir, p.String("mtfName"), p.String("templateLeft"), p.String("templateRight"))
	return err
}

var applyMtf = Command{
	Summary: "Recalculate the design function that applies an MTF",
	Parameters: []Param{
		{Key: "functionName", Default: "function_name", Description: "MTF function to recalculate"},
		{Key: "continueOnFailure", Default: false, Raw: true, Description: "keep running the chain if this command fails"},
		paramComments,
	},
	Fn: func(p Params) []string {
		fn := p.String("functionName")
		lines := commandOpen("Function", "Recalc "+fn, p.Bool("continueOnFailure", false), p.String("comments"))
		return append(lines, field("Function", fn), commandClose("Function"))
	},
}
