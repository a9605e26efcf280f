package commands

import "strings"

// RunChain returns a Run_chain command that runs another chain file.
// Windows separators are kept, as 12d resolves chain paths natively.
func RunChain(name, chainFile string, continueOnFailure bool) []string {
	lines := commandOpen("Run_chain", name, continueOnFailure, "")
	return append(lines,
		field("Chain_file", chainFile),
		indentField+"<Use_parameters_from_parent>false</Use_parameters_from_parent>",
		commandClose("Run_chain"),
	)
}

var runChain = Command{
	Summary: "Run another chain file",
	Parameters: []Param{
		{Key: "chainFile", Default: "chain_file", Description: "path of the chain to run"},
		{Key: "commandName", Default: "", Description: "command name; defaults to Run <chain>"},
		paramContinueOnFailure,
	},
	Fn: func(p Params) []string {
		file := p.String("chainFile")
		name := p.String("commandName")
		if name == "" {
			name = "Run " + strings.TrimSuffix(baseName(file), ".chain")
		}
		return RunChain(name, file, p.Bool("continueOnFailure", true))
	},
}

func baseName(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}
