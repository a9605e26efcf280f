package commands

import (
	"context"
	"strings"

	"github.com/davidthor/chainctl/pkg/names"
)

// Supported import file types.
const (
	FileTypeDWG = "dwg"
	FileTypeDGN = "dgn"
	FileTypeIFC = "ifc"
)

// importer generates the Read <type> File run option and, for DGN files,
// writes the attribute manipulator rules the DGN read relies on.
type importer struct{}

func (importer) Description() string {
	return "Read a DWG, DGN or IFC file into models prefixed with the display name"
}

func (importer) Params() []Param {
	return []Param{
		{Key: "fileType", Default: FileTypeDWG, Raw: true, Description: "dwg, dgn or ifc"},
		{Key: "actualFilePath", Default: "actual_file_path", Description: "path of the file to read"},
		{Key: "modifiedVariable", Default: "modified_variable", Description: "model prefix"},
	}
}

func (importer) Generate(p Params) []string {
	path := p.String("actualFilePath")
	prefix := p.String("modifiedVariable")

	switch strings.ToLower(p.String("fileType")) {
	case FileTypeDGN:
		return readDGN(names.ForwardSlashes(path), prefix)
	case FileTypeIFC:
		return readIFC(names.Normalize(path), prefix)
	case FileTypeDWG:
		return readDWG(names.Normalize(path), prefix)
	default:
		return nil
	}
}

func (importer) Apply(ctx context.Context, p Params, outputDir string) error {
	if !strings.EqualFold(p.String("fileType"), FileTypeDGN) {
		return nil
	}
	_, err := WriteAttrManipulatorFiles(outputDir)
	return err
}

func readDGN(path, prefix string) []string {
	lines := commandOpen("Run_option", "Read DGN File", false, "")
	pn := &panel{name: "Read DGN external v78", x: 303, y: 312}
	pn.resize("1.4115942", "1")
	pn.tick("Create anonymous function", false).
		input("Import method", "").
		file("File", path).
		file("Mapfile", "").
		input("Mapfile key", "").
		input("Pre*postfix for models", prefix+"/*").
		input("Allow merge into existing models", "yes").
		input("Level name as model", "yes").
		input("Hidden levels", "no").
		input("Frozen levels", "no").
		input("Invisible elements", "no").
		input("Combine elements", "no").
		input("Shapes as faces", "no").
		input("Text as super strings", "no").
		input("Create symbols", "no").
		input("Load xref files", "no")
	lines = append(lines, pn.slf("&Read")...)
	return append(lines, commandClose("Run_option"))
}

func readDWG(path, prefix string) []string {
	lines := commandOpen("Run_option", "Read DWG File", false, "")
	pn := &panel{name: "Read DWG/DXF external", x: 303, y: 312}
	pn.tick("Create anonymous function", false).
		file("File", path).
		input("Pre*postfix for models", prefix+"/*").
		input("Allow merge into existing models", "yes").
		input("Layer name as model", "yes").
		input("Frozen layers", "no").
		input("Invisible layers", "no").
		input("Text as super strings", "no").
		input("Create symbols", "no").
		input("Load xref files", "no")
	lines = append(lines, pn.slf("&Read")...)
	return append(lines, commandClose("Run_option"))
}

func readIFC(path, prefix string) []string {
	lines := commandOpen("Run_option", "Read IFC File", false, "")
	pn := &panel{name: "IFC Read", x: 303, y: 312}
	pn.file("File", path).
		input("Model prefix", prefix+" ").
		input("Model mode", "Entity type").
		tick("Create trimeshes", true).
		tick("Import properties as attributes", true)
	lines = append(lines, pn.slf("Read")...)
	return append(lines, commandClose("Run_option"))
}
