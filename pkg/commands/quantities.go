package commands

import "strings"

// reportFile joins a report folder and file name with the Windows separator
// 12d file boxes use. The .html extension is added when missing.
func reportFile(folder, name string) string {
	if !strings.HasSuffix(strings.ToLower(name), ".html") {
		name += ".html"
	}
	folder = strings.TrimRight(folder, `\/`)
	if folder == "" {
		return name
	}
	return folder + `\` + name
}

var createTrimeshFromTin = Command{
	Summary: "Build a trimesh solid from a TIN",
	Parameters: []Param{
		{Key: "tinName", Default: "tin_name", Description: "TIN to convert"},
		{Key: "trimeshName", Default: "trimesh_name", Description: "name of the trimesh"},
		{Key: "prefix", Default: "prefix", Description: "model prefix"},
		{Key: "modelName", Default: "model_name", Description: "model suffix, usually the table cell"},
		{Key: "zOffset", Default: "0", Description: "z offset of the trimesh"},
		{Key: "depth", Default: "1", Description: "depth of the trimesh"},
		{Key: "colour", Default: "red", Description: "trimesh colour"},
		{Key: "continueOnFailure", Default: false, Raw: true, Description: "keep running the chain if this command fails"},
		paramComments,
	},
	Fn: func(p Params) []string {
		name := p.String("trimeshName")
		model := p.String("modelName")
		if prefix := strings.TrimSpace(p.String("prefix")); prefix != "" {
			model = prefix + "/" + model
		}

		lines := commandOpen("Run_option", name, p.Bool("continueOnFailure", false), p.String("comments"))
		pn := &panel{name: "Trimesh from Tin", x: 1280, y: 429}
		pn.resize("1.47311828", "1").
			input("Tin to convert", p.String("tinName")).
			input("Name for trimesh", name).
			input("Model for trimesh", model).
			input("Z offset of trimesh", p.String("zOffset")).
			input("Depth of trimesh", p.String("depth")).
			tick("Use tin colour", false).
			input("Colour for trimesh", p.String("colour"))
		lines = append(lines, pn.slf("Create")...)
		return append(lines, commandClose("Run_option"))
	},
}

var volumeTinToTin = Command{
	Summary: "Report the exact volume between two TINs",
	Parameters: []Param{
		{Key: "originalTin", Default: "original_tin", Description: "original (existing) TIN"},
		{Key: "newTin", Default: "new_tin", Description: "new (design) TIN"},
		{Key: "outputLocation", Default: "project_folder", Description: "report folder"},
		{Key: "filename", Default: "{model_name} volume", Description: "report file name without extension"},
		{Key: "commandName", Default: "Volume TIN to TIN", Description: "command name"},
		{Key: "continueOnFailure", Default: false, Raw: true, Description: "keep running the chain if this command fails"},
		paramComments,
	},
	Fn: func(p Params) []string {
		lines := commandOpen("Run_option", p.String("commandName"), p.Bool("continueOnFailure", false), p.String("comments"))
		pn := &panel{name: "Exact Volume Between Tins", x: 843, y: 383}
		pn.resize("1.53753754", "1").
			input("Original tin", p.String("originalTin")).
			input("New tin", p.String("newTin")).
			file("Range file", "").
			input("Plan view to paint", "").
			input("Model for faces", "").
			tick("Clean faces model beforehand", false).
			input("Report type", "html report").
			file("Report file", reportFile(p.String("outputLocation"), p.String("filename"))).
			tick("Use a polygon", true).
			polygon("Polygon").
			tick("Use a model of polygons", false).
			input("Model", "")
		lines = append(lines, pn.slf("&Volume")...)
		return append(lines, commandClose("Run_option"))
	},
}

var getTotalSurfaceArea = Command{
	Summary: "Report the TIN surface area inside a polygon",
	Parameters: []Param{
		{Key: "tinName", Default: "tin_name", Description: "TIN to measure"},
		{Key: "exportLocation", Default: "export_location", Description: "report file path"},
		{Key: "commandName", Default: "", Description: "command name; defaults to Surface area <tin>"},
		paramContinueOnFailure,
		paramComments,
	},
	Fn: func(p Params) []string {
		tin := p.String("tinName")
		name := p.String("commandName")
		if name == "" {
			name = "Surface area " + tin
		}

		lines := commandOpen("Run_option", name, p.Bool("continueOnFailure", true), p.String("comments"))
		pn := &panel{name: "Surface Area Within a Polygon", x: 1320, y: 377}
		pn.resize("1.38857143", "1").
			input("Tin", tin).
			input("Report type", "html report").
			file("Report file", p.String("exportLocation")).
			polygon("&Poly")
		lines = append(lines, pn.slf("&Area")...)
		return append(lines, commandClose("Run_option"))
	},
}

var trimeshVolumeReport = Command{
	Summary: "Report trimesh volumes and areas summed by name",
	Parameters: []Param{
		{Key: "trimeshName", Default: "trimesh_name", Description: "trimesh model to report"},
		{Key: "outputLocation", Default: "project_folder", Description: "report folder"},
		{Key: "filename", Default: "{model_name} trimesh volume", Description: "report file name without extension"},
		{Key: "commandName", Default: "Trimesh Volume Report", Description: "command name"},
		paramContinueOnFailure,
		paramComments,
	},
	Fn: func(p Params) []string {
		lines := commandOpen("Run_option", p.String("commandName"), p.Bool("continueOnFailure", true), p.String("comments"))
		pn := &panel{name: "Trimesh Volume and Area Report", x: 608, y: 156}
		pn.resize("1.41530055", "1.30215827").
			grid("Data source for trimeshes", "Source_Box_Models", "Models", "Model", p.String("trimeshName")).
			tick("Individual trimesh", false).
			tick("Sum by model", false).
			tick("Sum by name*", true).
			tick("Sum by name* and model", false).
			tick("Use pattern match replace", false).
			input("Pattern", "").
			input("Replace", "").
			input("Report type", "html report").
			file("Report file", reportFile(p.String("outputLocation"), p.String("filename")))
		lines = append(lines, pn.slf("Report")...)
		return append(lines, commandClose("Run_option"))
	},
}
