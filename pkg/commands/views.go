package commands

import "strconv"

var (
	defaultViewCoordinates   = []int{40, 30, 565, 715}
	defaultDeletePanelOrigin = []int{497, 319}
)

var createView = Command{
	Summary: "Create a plan view named after the model",
	Parameters: []Param{
		{Key: "modifiedVariable", Default: "modified_variable", Description: "view name"},
		{Key: "coordinates", Default: defaultViewCoordinates, Raw: true, Description: "top, left, bottom, right"},
	},
	Fn: func(p Params) []string {
		view := p.String("modifiedVariable")
		c := p.Ints("coordinates", defaultViewCoordinates)

		lines := commandOpen("Create_view", "Create view "+view, true, "")
		return append(lines,
			field("View", view),
			indentField+"<View_Type>2010</View_Type>",
			indentField+"<View_Engine>GDI_legacy</View_Engine>",
			indentField+"<Favourite_File></Favourite_File>",
			field("Top", strconv.Itoa(c[0])),
			field("Left", strconv.Itoa(c[1])),
			field("Bot", strconv.Itoa(c[2])),
			field("Right", strconv.Itoa(c[3])),
			indentField+"<Exaggeration></Exaggeration>",
			indentField+"<Use_Draw_Area>0</Use_Draw_Area>",
			indentField+"<Draw_Area_Width>-2147483648</Draw_Area_Width>",
			indentField+"<Draw_Area_Height>-2147483648</Draw_Area_Height>",
			commandClose("Create_view"),
		)
	},
}

var addModelToView = Command{
	Summary: "Add every model prefixed with the display name to its view",
	Parameters: []Param{
		{Key: "modifiedVariable", Default: "modified_variable", Description: "view and model prefix"},
	},
	Fn: func(p Params) []string {
		view := p.String("modifiedVariable")
		lines := commandOpen("Add_model_to_view", "Add model "+view+" to view "+view, true, "")
		return append(lines,
			field("Model", view+"*"),
			field("View", view),
			commandClose("Add_model_to_view"),
		)
	},
}

var removeModelFromView = Command{
	Summary: "Remove models matching a pattern from the view",
	Parameters: []Param{
		{Key: "pattern", Default: "*", Raw: true, Description: "model pattern, e.g. * or *tin"},
		{Key: "modifiedVariable", Default: "modified_variable", Description: "view name"},
	},
	Fn: func(p Params) []string {
		pattern := p.String("pattern")
		if pattern == "" {
			pattern = "*"
		}
		view := p.String("modifiedVariable")
		lines := commandOpen("Remove_model_from_view", "Remove model "+pattern+" from view "+view, true, "")
		return append(lines,
			field("Model", pattern),
			field("View", view),
			commandClose("Remove_model_from_view"),
		)
	},
}

var deleteModelsFromView = Command{
	Summary: "Delete the data on the view",
	Parameters: []Param{
		{Key: "modifiedVariable", Default: "modified_variable", Description: "view name"},
		{Key: "coordinates", Default: defaultDeletePanelOrigin, Raw: true, Description: "panel x, y"},
		paramContinueOnFailure,
		paramComments,
	},
	Fn: func(p Params) []string {
		c := p.Ints("coordinates", defaultDeletePanelOrigin)

		lines := commandOpen("Run_option", "Delete models from view", p.Bool("continueOnFailure", true), p.String("comments"))
		pn := &panel{name: "Delete", x: c[0], y: c[1]}
		pn.source("Data to delete", "Source_Box_View", "Data to delete - View", p.String("modifiedVariable")).
			input("Delete mode", "Split").
			target("Target_Box_Copy_To_One_Model", "Target - Copy to model", "")
		lines = append(lines, pn.slf("Delete")...)
		return append(lines, commandClose("Run_option"))
	},
}
