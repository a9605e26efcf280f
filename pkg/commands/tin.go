package commands

import "strings"

var triangulateManualOption = Command{
	Summary: "Triangulate the view into a TIN named by the naming convention",
	Parameters: []Param{
		{Key: "modifiedVariable", Default: "modified_variable", Description: "source view"},
		{Key: "prefix", Default: "prefix", Description: "TIN name prefix"},
		{Key: "surfaceValue", Default: "surface_value", Description: "surface name"},
		{Key: "fileExt", Default: "file_ext", Description: "source file extension"},
		{Key: "optionsExt", Default: "options_ext", Description: "design option suffix"},
		{Key: "discipline", Default: "discipline", Description: "discipline name"},
		paramContinueOnFailure,
		paramComments,
	},
	Fn: func(p Params) []string {
		view := p.String("modifiedVariable")
		tin := joinNonEmpty(p.String("prefix"), p.String("surfaceValue"), p.String("fileExt"), p.String("optionsExt"))
		model := joinNonEmpty(tin, "tin")

		lines := commandOpen("Run_option", "Triangulate "+tin, p.Bool("continueOnFailure", true), p.String("comments"))
		pn := &panel{name: "Triangulate Data", x: 418, y: 206}
		pn.source("Data to triangulate", "Source_Box_View", "Data to triangulate - View", view).
			input("TIN name", tin).
			input("Model for tin", model).
			input("Tin colour", "green").
			input("Triangulation type", "Triangles").
			tick("Preserve strings", true).
			tick("Remove bad triangles", true).
			input("Discipline", p.String("discipline")).
			tick("Cell method", false)
		lines = append(lines, pn.slf("Triangulate")...)
		return append(lines, commandClose("Run_option"))
	},
}

var tinFunction = Command{
	Summary: "Label and recalculate the TIN function of the display name",
	Parameters: []Param{
		{Key: "modifiedVariable", Default: "modified_variable", Description: "function prefix"},
		paramComments,
	},
	Fn: func(p Params) []string {
		view := p.String("modifiedVariable")

		lines := commandOpen("Label", "run tin function", false, p.String("comments"))
		lines = append(lines, commandClose("Label"))
		lines = append(lines, commandOpen("Function", "Recalc "+view+" tin", false, "")...)
		return append(lines,
			field("Function", view+" tin"),
			commandClose("Function"),
		)
	},
}

func joinNonEmpty(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
