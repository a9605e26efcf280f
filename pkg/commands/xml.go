package commands

import (
	"strconv"
	"strings"
)

// Indentation used by 12d inside the <Commands> section.
const (
	indentCommand = "      "
	indentField   = "        "
)

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// esc escapes character data. Values substituted into chain lines come from
// user tables and bindings.
func esc(s string) string {
	return textEscaper.Replace(s)
}

func boolText(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func field(name, value string) string {
	return indentField + "<" + name + ">" + esc(value) + "</" + name + ">"
}

// commandOpen emits the fields every chain command starts with.
func commandOpen(tag, name string, continueOnFailure bool, comments string) []string {
	lines := []string{
		indentCommand + "<" + tag + ">",
		field("Name", name),
		indentField + "<Active>true</Active>",
		indentField + "<Continue_on_failure>" + boolText(continueOnFailure) + "</Continue_on_failure>",
		indentField + "<Uses_parameters>false</Uses_parameters>",
		indentField + "<Interactive>false</Interactive>",
	}
	if comments == "" {
		return append(lines, indentField+"<Comments>", indentField+"</Comments>")
	}
	return append(lines, field("Comments", comments))
}

func commandClose(tag string) string {
	return indentCommand + "</" + tag + ">"
}

// panel builds an SLF screen layout block nested under <SLF_data>.
type panel struct {
	name  string
	x, y  int
	lines []string
}

func (p *panel) resize(width, height string) *panel {
	const in = "              "
	p.lines = append(p.lines,
		in+"<resize>",
		in+"  <width>"+width+"</width>",
		in+"  <height>"+height+"</height>",
		in+"</resize>",
	)
	return p
}

func (p *panel) input(name, value string) *panel {
	p.box("input_box", name, value)
	return p
}

func (p *panel) file(name, value string) *panel {
	p.box("file_box", name, value)
	return p
}

func (p *panel) tick(name string, value bool) *panel {
	p.box("tick_box", name, boolText(value))
	return p
}

func (p *panel) box(kind, name, value string) {
	const in = "              "
	p.lines = append(p.lines, in+"<"+kind+">", in+"  <name>"+esc(name)+"</name>")
	if value == "" {
		p.lines = append(p.lines, in+"  <value/>")
	} else {
		p.lines = append(p.lines, in+"  <value>"+esc(value)+"</value>")
	}
	p.lines = append(p.lines, in+"</"+kind+">")
}

func (p *panel) source(name, mode, boxName, value string) *panel {
	const in = "              "
	p.lines = append(p.lines,
		in+"<source_box>",
		in+"  <name>"+esc(name)+"</name>",
		in+"  <mode>"+mode+"</mode>",
		in+"  <input_box>",
		in+"    <name>"+esc(boxName)+"</name>",
		in+"    <value>"+esc(value)+"</value>",
		in+"  </input_box>",
		in+"</source_box>",
	)
	return p
}

func (p *panel) target(mode, boxName, value string) *panel {
	const in = "              "
	valueLine := in + "    <value/>"
	if value != "" {
		valueLine = in + "    <value>" + esc(value) + "</value>"
	}
	p.lines = append(p.lines,
		in+"<target_box>",
		in+"  <name>Target</name>",
		in+"  <mode>"+mode+"</mode>",
		in+"  <input_box>",
		in+"    <name>"+esc(boxName)+"</name>",
		valueLine,
		in+"  </input_box>",
		in+"</target_box>",
	)
	return p
}

func (p *panel) polygon(name string) *panel {
	const in = "              "
	p.lines = append(p.lines, in+"<polygon_box>", in+"  <name>"+esc(name)+"</name>", in+"</polygon_box>")
	return p
}

// grid is a source box listing items in a single-column grid.
func (p *panel) grid(name, mode, gridName, column string, rows ...string) *panel {
	const in = "              "
	p.lines = append(p.lines,
		in+"<source_box>",
		in+"  <name>"+esc(name)+"</name>",
		in+"  <mode>"+mode+"</mode>",
		in+"  <grid_box>",
		in+"    <name>"+esc(gridName)+"</name>",
		in+"    <columns>",
		in+"      <column>"+esc(column)+"</column>",
		in+"    </columns>",
		in+"    <data>",
	)
	for _, r := range rows {
		p.lines = append(p.lines,
			in+"      <r>",
			in+"        <c>"+esc(r)+"</c>",
			in+"      </r>",
		)
	}
	p.lines = append(p.lines,
		in+"    </data>",
		in+"  </grid_box>",
		in+"</source_box>",
	)
	return p
}

// slf renders the panel followed by the run button and closing tags.
func (p *panel) slf(button string) []string {
	out := []string{
		indentField + "<SLF_data>",
		"          <screen_layout>",
		"            <version>1.0</version>",
		"            <panel>",
		"              <name>" + esc(p.name) + "</name>",
		"              <x>" + strconv.Itoa(p.x) + "</x>",
		"              <y>" + strconv.Itoa(p.y) + "</y>",
	}
	out = append(out, p.lines...)
	out = append(out,
		"              <run_button>",
		"                <name>"+esc(button)+"</name>",
		"              </run_button>",
		"            </panel>",
		"          </screen_layout>",
		indentField+"</SLF_data>",
		indentField+"<Parameter_Mappings>",
		indentField+"</Parameter_Mappings>",
	)
	return out
}
