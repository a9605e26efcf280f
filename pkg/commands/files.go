package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/davidthor/chainctl/pkg/names"
)

// Attribute manipulator rule files read by the DGN import.
const (
	AttrModelAttrNameToStringName = "ModelAttrNameToStringName.12dattmf"
	AttrModelNameToStringAttr     = "ModelNameToStringAttr.12dattmf"
	AttrStringAttrDeconcat        = "StringAttrDeconcat.12dattmf"
)

var attrManipulatorFiles = []struct {
	name    string
	content string
}{
	{AttrModelAttrNameToStringName, `<Rules>
    <Rule>
        <Attribute_To_Use>
            <String_Attribute_Rule>
                <Name>strName</Name>
                <Evaluate_Default>true</Evaluate_Default>
                <Expected_Type>Unknown</Expected_Type>
                <Delimeter/>
                <Action_mode>0</Action_mode>
            </String_Attribute_Rule>
        </Attribute_To_Use>
        <Attribute_To_Modify>
            <Property_Rule>
                <Name/>
                <Evaluate_Default>true</Evaluate_Default>
                <Property_Type>0</Property_Type>
            </Property_Rule>
        </Attribute_To_Modify>
        <Active>1</Active>
        <Comment/>
    </Rule>
</Rules>
`},
	{AttrModelNameToStringAttr, `<Rules>
    <Rule>
        <Attribute_To_Use>
            <Property_Rule>
                <Name/>
                <Evaluate_Default>true</Evaluate_Default>
                <Property_Type>27</Property_Type>
            </Property_Rule>
        </Attribute_To_Use>
        <Attribute_To_Modify>
            <String_Attribute_Rule>
                <Name>ModelName</Name>
                <Evaluate_Default>true</Evaluate_Default>
                <Expected_Type>Text</Expected_Type>
                <Delimeter/>
                <Action_mode>0</Action_mode>
            </String_Attribute_Rule>
        </Attribute_To_Modify>
        <Active>1</Active>
        <Comment/>
    </Rule>
</Rules>
`},
	{AttrStringAttrDeconcat, `<Rules>
    <Rule>
        <Attribute_To_Use>
        </Attribute_To_Use>
        <Attribute_To_Modify>
            <String_Attribute_Rule>
                <Name>ModelName</Name>
                <Default_Value>{fileName}/{strName}</Default_Value>
                <Evaluate_Default>true</Evaluate_Default>
                <Expected_Type>Deconcat</Expected_Type>
                <Delimeter/>
                <Action_mode>0</Action_mode>
            </String_Attribute_Rule>
        </Attribute_To_Modify>
        <Active>1</Active>
        <Comment/>
    </Rule>
</Rules>
`},
}

// WriteAttrManipulatorFiles writes the three rule files into dir, replacing
// existing copies, and returns their paths.
func WriteAttrManipulatorFiles(dir string) ([]string, error) {
	if dir == "" {
		return nil, fmt.Errorf("attribute manipulator folder is empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	paths := make([]string, 0, len(attrManipulatorFiles))
	for _, f := range attrManipulatorFiles {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, []byte(f.content), 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", f.name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// attrFiles writes the rule files and emits nothing.
type attrFiles struct{}

func (attrFiles) Description() string {
	return "Write the attribute manipulator rule files used by DGN imports"
}

func (attrFiles) Params() []Param { return nil }

func (attrFiles) Generate(Params) []string { return nil }

func (attrFiles) Apply(_ context.Context, _ Params, outputDir string) error {
	_, err := WriteAttrManipulatorFiles(outputDir)
	return err
}

var applyAttrManipulators = Command{
	Summary: "Run the attribute manipulator rule files over the view",
	Parameters: []Param{
		{Key: "modifiedVariable", Default: "modified_variable", Description: "view to manipulate"},
		{Key: "rulesFolder", Default: "project_folder", Description: "folder holding the .12dattmf files"},
		paramContinueOnFailure,
	},
	Fn: func(p Params) []string {
		view := p.String("modifiedVariable")
		folder := strings.TrimRight(p.String("rulesFolder"), `\/`)

		var lines []string
		for _, f := range attrManipulatorFiles {
			rules := f.name
			if folder != "" {
				rules = folder + `\` + f.name
			}
			lines = append(lines, commandOpen("Run_option", "Apply "+strings.TrimSuffix(f.name, ".12dattmf"), p.Bool("continueOnFailure", true), "")...)
			pn := &panel{name: "Attribute Manipulator", x: 402, y: 233}
			pn.source("Data to manipulate", "Source_Box_View", "Data to manipulate - View", view).
				file("Rules file", rules)
			lines = append(lines, pn.slf("Apply")...)
			lines = append(lines, commandClose("Run_option"))
		}
		return lines
	},
}

// templateFile writes a 12d design template (.tpl).
type templateFile struct{}

func (templateFile) Description() string {
	return "Write a design template file with final cut/fill slopes"
}

func (templateFile) Params() []Param {
	return []Param{
		{Key: "templateName", Default: "template_name", Description: "template name (.tpl is optional)"},
		{Key: "cutSlope", Default: "2", Description: "final cut slope"},
		{Key: "fillSlope", Default: "2", Description: "final fill slope"},
		{Key: "searchDistance", Default: "100", Description: "final search distance"},
	}
}

func (templateFile) Generate(Params) []string { return nil }

func (templateFile) Apply(_ context.Context, p Params, outputDir string) error {
	_, err := WriteTemplateFile(outputDir, p.String("templateName"),
		p.String("cutSlope"), p.String("fillSlope"), p.String("searchDistance"))
	return err
}

// WriteTemplateFile writes <name>.tpl under dir encoded as UTF-16LE with a
// byte order mark, which is what 12d reads.
func WriteTemplateFile(dir, name, cutSlope, fillSlope, searchDistance string) (string, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), ".tpl")
	if name == "" {
		return "", fmt.Errorf("template name is required")
	}
	if err := names.CheckFileName(name); err != nil {
		return "", fmt.Errorf("invalid template name: %w", err)
	}

	body := fmt.Sprintf(`template "%s" {
  final {
    "int"
    cut_slope %s fill_slope %s search_distance %s
  }
}
`, name, cutSlope, fillSlope, searchDistance)

	encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(body)
	if err != nil {
		return "", fmt.Errorf("failed to encode template: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	path := filepath.Join(dir, name+".tpl")
	if err := os.WriteFile(path, []byte(encoded), 0644); err != nil {
		return "", fmt.Errorf("failed to write template: %w", err)
	}
	return path, nil
}
