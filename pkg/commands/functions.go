package commands

// Conditional modes of If_function_exists.
const (
	modeContinue  = "0"
	modeGoToLabel = "1"
)

var ifFunctionExists = Command{
	Summary: "Jump to a label when a function exists",
	Parameters: []Param{
		{Key: "functionName", Default: "function_name", Description: "function to test"},
		{Key: "passLabel", Default: "run tin function", Raw: true, Description: "label to go to when the function exists"},
		{Key: "failLabel", Default: "", Raw: true, Description: "label to go to otherwise; empty continues"},
		{Key: "continueOnFailure", Default: false, Raw: true, Description: "keep running the chain if this command fails"},
		paramComments,
	},
	Fn: func(p Params) []string {
		fn := p.String("functionName")
		pass := p.String("passLabel")
		fail := p.String("failLabel")

		lines := commandOpen("If_function_exists", "If function "+fn+" Exists", p.Bool("continueOnFailure", false), p.String("comments"))
		lines = append(lines,
			indentField+"<Conditional>",
			"          <Pass_Mode>"+modeGoToLabel+"</Pass_Mode>",
			"          <Pass_Action>"+esc(pass)+"</Pass_Action>",
		)
		if fail == "" {
			lines = append(lines,
				"          <Fail_Mode>"+modeContinue+"</Fail_Mode>",
				"          <Fail_Action/>",
			)
		} else {
			lines = append(lines,
				"          <Fail_Mode>"+modeGoToLabel+"</Fail_Mode>",
				"          <Fail_Action>"+esc(fail)+"</Fail_Action>",
			)
		}
		return append(lines,
			indentField+"</Conditional>",
			field("Function", fn),
			commandClose("If_function_exists"),
		)
	},
}

var runFunction = Command{
	Summary: "Run (recalculate) a 12d function",
	Parameters: []Param{
		{Key: "functionName", Default: "function_name", Description: "function to run"},
		{Key: "commandName", Default: "", Description: "command name; defaults to Recalc <function>"},
		paramContinueOnFailure,
		paramComments,
	},
	Fn: func(p Params) []string {
		fn := p.String("functionName")
		name := p.String("commandName")
		if name == "" {
			name = "Recalc " + fn
		}
		lines := commandOpen("Function", name, p.Bool("continueOnFailure", true), p.String("comments"))
		return append(lines, field("Function", fn), commandClose("Function"))
	},
}

var addComment = Command{
	Summary: "Insert a comment command",
	Parameters: []Param{
		{Key: "commentName", Default: "comment", Description: "comment text"},
	},
	Fn: func(p Params) []string {
		lines := commandOpen("Comment", p.String("commentName"), false, "")
		return append(lines, commandClose("Comment"))
	},
}

var addLabel = Command{
	Summary: "Insert a label that conditionals can jump to",
	Parameters: []Param{
		{Key: "labelName", Default: "label", Description: "label name"},
		paramContinueOnFailure,
		paramComments,
	},
	Fn: func(p Params) []string {
		lines := commandOpen("Label", p.String("labelName"), p.Bool("continueOnFailure", true), p.String("comments"))
		return append(lines, commandClose("Label"))
	},
}
