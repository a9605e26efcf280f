package commands

import "strings"

var (
	paramContinueOnFailure = Param{Key: "continueOnFailure", Default: true, Raw: true, Description: "keep running the chain if this command fails"}
	paramComments          = Param{Key: "comments", Default: "", Description: "command comments"}
)

// modelNameParams are the naming convention parts shared by the model
// commands.
var modelNameParams = []Param{
	{Key: "prefix", Default: "prefix", Description: "model name prefix"},
	{Key: "discipline", Default: "discipline", Description: "discipline name"},
	{Key: "description", Default: "description", Description: "model description"},
	{Key: "objectDimension", Default: "object_dimension", Description: "object dimension (2D/3D)"},
	{Key: "fileExt", Default: "file_ext", Description: "source file extension"},
}

// conventionName joins the naming convention parts that resolved to a value.
func conventionName(p Params) string {
	var parts []string
	for _, param := range modelNameParams {
		if v := strings.TrimSpace(p.String(param.Key)); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

func withParams(base []Param, extra ...Param) []Param {
	out := make([]Param, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}

var cleanModel = Command{
	Summary: "Clean the model named by the naming convention",
	Parameters: withParams(modelNameParams,
		Param{Key: "commandName", Default: "", Description: "command name; defaults to Clean <model>"},
		paramContinueOnFailure,
		paramComments,
	),
	Fn: func(p Params) []string {
		model := conventionName(p)
		name := p.String("commandName")
		if name == "" {
			name = "Clean " + model
		}
		// 12d expects Clean_model on a single line.
		line := "<Clean_model>" +
			"<Name>" + esc(name) + "</Name>" +
			"<Active>true</Active>" +
			"<Continue_on_failure>" + boolText(p.Bool("continueOnFailure", true)) + "</Continue_on_failure>" +
			"<Uses_parameters>false</Uses_parameters>" +
			"<Interactive>false</Interactive>" +
			"<Comments>" + esc(p.String("comments")) + "</Comments>" +
			"<Model_Name>" + esc(model) + "</Model_Name>" +
			"<Model_ID>0</Model_ID>" +
			"<Raster_Mode>0</Raster_Mode>" +
			"</Clean_model>"
		return []string{line}
	},
}

var createSharedModel = Command{
	Summary: "Move everything on the view into the shared naming convention model",
	Parameters: withParams(modelNameParams,
		Param{Key: "modifiedVariable", Default: "modified_variable", Description: "source view"},
		Param{Key: "commandName", Default: "", Description: "command name; defaults to Create shared model <model>"},
		paramContinueOnFailure,
		paramComments,
	),
	Fn: func(p Params) []string {
		model := conventionName(p)
		name := p.String("commandName")
		if name == "" {
			name = "Create shared model " + model
		}
		lines := commandOpen("Run_option", name, p.Bool("continueOnFailure", true), p.String("comments"))
		pn := &panel{name: "Change String Info", x: 313, y: 281}
		pn.resize("1.26571429", "1").
			source("Data to convert", "Source_Box_View", "Data to convert - View", p.String("modifiedVariable")).
			input("New name", "").
			input("New colour", "").
			tick("Clear individual segment colours", false).
			input("New style", "").
			tick("Clear individual segment linestyles", false).
			input("New pt-line type", "leave as is").
			input("New weight", "").
			target("Target_Box_Move_To_One_Model", "Target - Move to model", model)
		lines = append(lines, pn.slf("Change")...)
		return append(lines, commandClose("Run_option"))
	},
}

var renameModel = Command{
	Summary: "Globally rename models matching a pattern",
	Parameters: []Param{
		{Key: "patternSearch", Default: "modified_variable", Description: "model name pattern to search"},
		{Key: "patternReplace", Default: "prefix", Description: "replacement prefix"},
		{Key: "commandName", Default: "Rename models", Description: "command name"},
		paramContinueOnFailure,
		paramComments,
	},
	Fn: func(p Params) []string {
		search := p.String("patternSearch")
		replace := p.String("patternReplace")

		lines := commandOpen("Manual_option", p.String("commandName"), p.Bool("continueOnFailure", true), p.String("comments"))
		lines = append(lines,
			indentField+"<Panel_Data><screen_layout>",
			"  <version>1.0</version>",
			"  <panel>",
			"    <name>Global Model Rename</name>",
			"    <x>1093</x>",
			"    <y>159</y>",
			"    <resize>",
			"      <width>1.93367347</width>",
			"      <height>1.81743869</height>",
			"    </resize>",
			"    <tick_box>",
			"      <name>Match sub strings</name>",
			"      <value>false</value>",
			"    </tick_box>",
			"    <tick_box>",
			"      <name>Pattern expression</name>",
			"      <value>true</value>",
			"    </tick_box>",
			"    <input_box>",
			"      <name>Pattern Search</name>",
			"      <value>"+esc(search)+"</value>",
			"    </input_box>",
			"    <input_box>",
			"      <name>Pattern Replace</name>",
			"      <value>"+esc(replace)+"</value>",
			"    </input_box>",
			"    <tick_box>",
			"      <name>Regular expression</name>",
			"      <value>false</value>",
			"    </tick_box>",
			"    <input_box>",
			"      <name>Regex Search</name>",
			"      <value>^"+esc(search)+"(.*)$</value>",
			"    </input_box>",
			"    <input_box>",
			"      <name>Regex Replace</name>",
			"      <value>"+esc(replace)+"$1</value>",
			"    </input_box>",
			"    <tick_box>",
			"      <name>Only show matches</name>",
			"      <value>true</value>",
			"    </tick_box>",
			"    <run_button>",
			"      <name>Rename</name>",
			"    </run_button>",
			"  </panel>",
			"</screen_layout></Panel_Data>",
			indentField+"<Panel_Name>Global Model Rename</Panel_Name>",
			indentField+"<Clean_Up>1</Clean_Up>",
			indentField+"<Buttons>",
			"          <Button>",
			"            <Name>Rename</Name>",
			"            <Order>0</Order>",
			"          </Button>",
			indentField+"</Buttons>",
			indentField+"<Parameter_Mappings>",
			indentField+"</Parameter_Mappings>",
			commandClose("Manual_option"),
		)
		return lines
	},
}
