package commands

import (
	"context"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidthor/chainctl/pkg/workflow"
)

// wellFormed parses the lines inside a synthetic root element.
func wellFormed(t *testing.T, lines []string) {
	t.Helper()
	doc := "<root>\n" + strings.Join(lines, "\n") + "\n</root>"
	dec := xml.NewDecoder(strings.NewReader(doc))
	for {
		_, err := dec.Token()
		if err != nil {
			require.ErrorIs(t, err, io.EOF, doc)
			return
		}
	}
}

// defaults builds Params from a generator's declared defaults, as if the node
// carried no data and every name resolved to itself.
func defaults(g Generator, overrides map[string]interface{}) Params {
	p := Params{}
	for _, param := range g.Params() {
		p[param.Key] = param.Default
	}
	for k, v := range overrides {
		p[k] = v
	}
	return p
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("custom", Command{Fn: func(Params) []string { return []string{"x"} }}))

	g, ok := r.Get("custom")
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, g.Generate(nil))

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_Rejects(t *testing.T) {
	r := NewRegistry()
	gen := Command{}

	assert.Error(t, r.Register("", gen))
	assert.Error(t, r.Register(workflow.NodeTypeForeachModel, gen))
	assert.Error(t, r.Register("x", nil))

	require.NoError(t, r.Register("x", gen))
	assert.Error(t, r.Register("x", gen))
	assert.Panics(t, func() { r.MustRegister("x", gen) })
}

func TestDefault_RegistersBuiltins(t *testing.T) {
	r := Default()
	types := r.Types()

	for _, want := range []workflow.NodeType{
		TypeImport, TypeCleanModel, TypeCreateView, TypeAddModelToView,
		TypeRemoveModelFromView, TypeDeleteModelsFromView, TypeCreateSharedModel,
		TypeTriangulateManualOption, TypeTinFunction, TypeIfFunctionExists,
		TypeRunFunction, TypeAddComment, TypeAddLabel, TypeRenameModel,
		TypeApplyAttrManipulators, TypeCreateTemplateFile, TypeCreateAttrManipulators,
		TypeRunChain, TypeCreateTrimeshFromTin, TypeVolumeTinToTin,
		TypeGetTotalSurfaceArea, TypeTrimeshVolumeReport, TypeCreateMtfFile,
		TypeApplyMtf, TypeLabel,
	} {
		assert.Contains(t, types, want)
	}
	assert.IsIncreasing(t, types)

	_, isSideEffect := mustGet(t, r, TypeCreateTemplateFile).(SideEffect)
	assert.True(t, isSideEffect)
	_, isSideEffect = mustGet(t, r, TypeCreateMtfFile).(SideEffect)
	assert.True(t, isSideEffect)
	_, isSideEffect = mustGet(t, r, TypeCleanModel).(SideEffect)
	assert.False(t, isSideEffect)
}

func mustGet(t *testing.T, r *Registry, nt workflow.NodeType) Generator {
	t.Helper()
	g, ok := r.Get(nt)
	require.True(t, ok, "missing %s", nt)
	return g
}

func TestBuiltins_WellFormed(t *testing.T) {
	r := Default()
	for _, nt := range r.Types() {
		t.Run(string(nt), func(t *testing.T) {
			g := mustGet(t, r, nt)
			wellFormed(t, g.Generate(defaults(g, nil)))
		})
	}
}

func TestBuiltins_EscapeValues(t *testing.T) {
	g := mustGet(t, Default(), TypeAddComment)
	lines := g.Generate(Params{"commentName": "cut & fill <check>"})
	assert.Contains(t, lines, "        <Name>cut &amp; fill &lt;check&gt;</Name>")
	wellFormed(t, lines)
}

func TestCleanModel(t *testing.T) {
	g := mustGet(t, Default(), TypeCleanModel)
	lines := g.Generate(defaults(g, map[string]interface{}{
		"prefix":          "XX",
		"discipline":      "Civil",
		"description":     "Kerb",
		"objectDimension": "3D",
		"fileExt":         "",
	}))

	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "<Name>Clean XX Civil Kerb 3D</Name>")
	assert.Contains(t, lines[0], "<Model_Name>XX Civil Kerb 3D</Model_Name>")
	assert.Contains(t, lines[0], "<Continue_on_failure>true</Continue_on_failure>")
}

func TestCreateView(t *testing.T) {
	g := mustGet(t, Default(), TypeCreateView)

	lines := g.Generate(defaults(g, map[string]interface{}{"modifiedVariable": "A 01"}))
	assert.Contains(t, lines, "        <Name>Create view A 01</Name>")
	assert.Contains(t, lines, "        <Top>40</Top>")
	assert.Contains(t, lines, "        <Right>715</Right>")

	tin := g.Generate(defaults(g, map[string]interface{}{
		"modifiedVariable": "A 01",
		"coordinates":      []interface{}{130.0, 120.0, 640.0, 790.0},
	}))
	assert.Contains(t, tin, "        <Top>130</Top>")
	assert.Contains(t, tin, "        <Right>790</Right>")

	bad := g.Generate(defaults(g, map[string]interface{}{"coordinates": []interface{}{1.0}}))
	assert.Contains(t, bad, "        <Top>40</Top>")
}

func TestRemoveModelFromView(t *testing.T) {
	g := mustGet(t, Default(), TypeRemoveModelFromView)

	lines := g.Generate(defaults(g, map[string]interface{}{"modifiedVariable": "A 01"}))
	assert.Contains(t, lines, "        <Name>Remove model * from view A 01</Name>")

	lines = g.Generate(defaults(g, map[string]interface{}{"modifiedVariable": "A 01", "pattern": "*tin"}))
	assert.Contains(t, lines, "        <Model>*tin</Model>")
}

func TestDeleteModelsFromView(t *testing.T) {
	g := mustGet(t, Default(), TypeDeleteModelsFromView)
	lines := g.Generate(defaults(g, map[string]interface{}{
		"modifiedVariable":  "A 01",
		"coordinates":       []interface{}{241.0, 386.0},
		"continueOnFailure": false,
	}))

	assert.Contains(t, lines, "        <Continue_on_failure>false</Continue_on_failure>")
	assert.Contains(t, lines, "              <x>241</x>")
	assert.Contains(t, lines, "              <y>386</y>")
	assert.Contains(t, lines, "                  <value>A 01</value>")
}

func TestImport(t *testing.T) {
	g := mustGet(t, Default(), TypeImport)

	dgn := g.Generate(Params{"fileType": "dgn", "actualFilePath": `C:\in\A–01.dgn`, "modifiedVariable": "A 01"})
	assert.Contains(t, dgn, "        <Name>Read DGN File</Name>")
	assert.Contains(t, dgn, "                <value>C:/in/A-01.dgn</value>")
	assert.Contains(t, dgn, "                <value>A 01/*</value>")
	assert.Contains(t, dgn, "                <name>&amp;Read</name>")

	dwg := g.Generate(Params{"fileType": "DWG", "actualFilePath": `C:\in\A.dwg`, "modifiedVariable": "A"})
	assert.Contains(t, dwg, "        <Name>Read DWG File</Name>")

	ifc := g.Generate(Params{"fileType": "ifc", "actualFilePath": `C:\in\A.ifc`, "modifiedVariable": "A"})
	assert.Contains(t, ifc, "        <Name>Read IFC File</Name>")

	assert.Empty(t, g.Generate(Params{"fileType": "pdf"}))
}

func TestImport_DGNWritesAttrFiles(t *testing.T) {
	dir := t.TempDir()
	g := mustGet(t, Default(), TypeImport)
	se := g.(SideEffect)

	require.NoError(t, se.Apply(context.Background(), Params{"fileType": "dwg"}, dir))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, se.Apply(context.Background(), Params{"fileType": "dgn"}, dir))
	assert.FileExists(t, filepath.Join(dir, AttrStringAttrDeconcat))
}

func TestIfFunctionExists(t *testing.T) {
	g := mustGet(t, Default(), TypeIfFunctionExists)

	lines := g.Generate(defaults(g, map[string]interface{}{"functionName": "A 01 tin"}))
	assert.Contains(t, lines, "        <Name>If function A 01 tin Exists</Name>")
	assert.Contains(t, lines, "          <Pass_Action>run tin function</Pass_Action>")
	assert.Contains(t, lines, "          <Fail_Action/>")
	assert.Contains(t, lines, "        <Continue_on_failure>false</Continue_on_failure>")

	lines = g.Generate(defaults(g, map[string]interface{}{"functionName": "f", "failLabel": "skip"}))
	assert.Contains(t, lines, "          <Fail_Mode>1</Fail_Mode>")
	assert.Contains(t, lines, "          <Fail_Action>skip</Fail_Action>")
}

func TestTinFunction(t *testing.T) {
	g := mustGet(t, Default(), TypeTinFunction)
	lines := g.Generate(defaults(g, map[string]interface{}{"modifiedVariable": "A 01"}))

	assert.Contains(t, lines, "        <Name>run tin function</Name>")
	assert.Contains(t, lines, "        <Name>Recalc A 01 tin</Name>")
	assert.Contains(t, lines, "        <Function>A 01 tin</Function>")
	wellFormed(t, lines)
}

func TestTriangulate(t *testing.T) {
	g := mustGet(t, Default(), TypeTriangulateManualOption)
	lines := g.Generate(defaults(g, map[string]interface{}{
		"modifiedVariable": "A 01",
		"prefix":           "XX",
		"surfaceValue":     "Design",
		"fileExt":          "dwg",
		"optionsExt":       "",
	}))

	assert.Contains(t, lines, "        <Name>Triangulate XX Design dwg</Name>")
	assert.Contains(t, lines, "                <value>XX Design dwg tin</value>")
}

func TestRenameModel(t *testing.T) {
	g := mustGet(t, Default(), TypeRenameModel)
	lines := g.Generate(defaults(g, map[string]interface{}{"patternSearch": "A 01", "patternReplace": "XX "}))

	assert.Contains(t, lines, "      <value>^A 01(.*)$</value>")
	assert.Contains(t, lines, "      <value>XX $1</value>")
}

func TestApplyAttrManipulators(t *testing.T) {
	g := mustGet(t, Default(), TypeApplyAttrManipulators)
	lines := g.Generate(defaults(g, map[string]interface{}{"modifiedVariable": "A 01", "rulesFolder": `C:\work\`}))

	joined := strings.Join(lines, "\n")
	assert.Equal(t, 3, strings.Count(joined, "<Run_option>"))
	assert.Contains(t, joined, `C:\work\ModelNameToStringAttr.12dattmf`)
}

func TestWriteTemplateFile(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteTemplateFile(dir, "Road.tpl", "3", "4", "50")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Road.tpl"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(data), 2)
	assert.Equal(t, []byte{0xFF, 0xFE}, data[:2], "UTF-16LE byte order mark")
	// 't' of "template" encoded as UTF-16LE.
	assert.Equal(t, []byte{'t', 0}, data[2:4])

	_, err = WriteTemplateFile(dir, "", "2", "2", "100")
	assert.Error(t, err)
	_, err = WriteTemplateFile(dir, "../escape", "2", "2", "100")
	assert.Error(t, err)
}

func TestTemplateFileSideEffect(t *testing.T) {
	dir := t.TempDir()
	g := mustGet(t, Default(), TypeCreateTemplateFile)

	assert.Empty(t, g.Generate(nil))
	require.NoError(t, g.(SideEffect).Apply(context.Background(), defaults(g, map[string]interface{}{"templateName": "Kerb"}), dir))
	assert.FileExists(t, filepath.Join(dir, "Kerb.tpl"))
}

func TestWriteAttrManipulatorFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	paths, err := WriteAttrManipulatorFiles(dir)
	require.NoError(t, err)
	require.Len(t, paths, 3)
	for _, p := range paths {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "<Rules>"))
	}

	_, err = WriteAttrManipulatorFiles("")
	assert.Error(t, err)
}

func TestParams(t *testing.T) {
	p := Params{
		"s":    "text",
		"n":    3.0,
		"b":    "false",
		"bad":  "maybe",
		"list": "1, 2",
	}

	assert.Equal(t, "text", p.String("s"))
	assert.Equal(t, "3", p.String("n"))
	assert.Equal(t, "", p.String("missing"))
	assert.False(t, p.Bool("b", true))
	assert.True(t, p.Bool("bad", true))
	assert.True(t, p.Bool("n", false))
	assert.Equal(t, []int{1, 2}, p.Ints("list", []int{0, 0}))
	assert.Equal(t, []int{9, 9}, p.Ints("s", []int{9, 9}))
}

func TestRunChain(t *testing.T) {
	g := mustGet(t, Default(), TypeRunChain)
	lines := g.Generate(defaults(g, map[string]interface{}{"chainFile": `C:\Jobs\P1\M1.chain`}))

	assert.Equal(t, "      <Run_chain>", lines[0])
	assert.Contains(t, lines, "        <Name>Run M1</Name>")
	assert.Contains(t, lines, `        <Chain_file>C:\Jobs\P1\M1.chain</Chain_file>`)
	assert.Equal(t, "      </Run_chain>", lines[len(lines)-1])
	wellFormed(t, lines)
}

func TestCreateTrimeshFromTin(t *testing.T) {
	g := mustGet(t, Default(), TypeCreateTrimeshFromTin)
	lines := g.Generate(defaults(g, map[string]interface{}{
		"tinName":     "XX Civil tin",
		"trimeshName": "XX Civil trimesh",
		"prefix":      "XX",
		"modelName":   "A-01",
		"depth":       "0.5",
	}))

	wellFormed(t, lines)
	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "<name>Trimesh from Tin</name>")
	assert.Contains(t, joined, "<value>XX Civil tin</value>")
	assert.Contains(t, joined, "<value>XX/A-01</value>")
	assert.Contains(t, joined, "<value>0.5</value>")
	assert.Contains(t, joined, "<Continue_on_failure>false</Continue_on_failure>")
	assert.Equal(t, "      <Run_option>", lines[0])
	assert.Equal(t, "      </Run_option>", lines[len(lines)-1])
}

func TestVolumeTinToTin(t *testing.T) {
	g := mustGet(t, Default(), TypeVolumeTinToTin)
	lines := g.Generate(defaults(g, map[string]interface{}{
		"originalTin":    "existing",
		"newTin":         "design",
		"outputLocation": `C:\Jobs\Reports\`,
		"filename":       "A-01 volume",
	}))

	wellFormed(t, lines)
	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "<Name>Volume TIN to TIN</Name>")
	assert.Contains(t, joined, `<value>C:\Jobs\Reports\A-01 volume.html</value>`)
	assert.Contains(t, joined, "<polygon_box>")
	assert.Contains(t, joined, "<name>&amp;Volume</name>")
}

func TestGetTotalSurfaceArea(t *testing.T) {
	g := mustGet(t, Default(), TypeGetTotalSurfaceArea)
	lines := g.Generate(defaults(g, map[string]interface{}{
		"tinName":        "design",
		"exportLocation": `C:\Jobs\area.html`,
	}))

	wellFormed(t, lines)
	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "<Name>Surface area design</Name>")
	assert.Contains(t, joined, `<value>C:\Jobs\area.html</value>`)
	assert.Contains(t, joined, "<name>&amp;Poly</name>")
	assert.Contains(t, joined, "<Continue_on_failure>true</Continue_on_failure>")
}

func TestTrimeshVolumeReport(t *testing.T) {
	g := mustGet(t, Default(), TypeTrimeshVolumeReport)
	lines := g.Generate(defaults(g, map[string]interface{}{
		"trimeshName":    "XX trimesh",
		"outputLocation": "",
		"filename":       "report.html",
	}))

	wellFormed(t, lines)
	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "<mode>Source_Box_Models</mode>")
	assert.Contains(t, joined, "<c>XX trimesh</c>")
	assert.Contains(t, joined, "<value>report.html</value>")
}

func TestApplyMtf(t *testing.T) {
	g := mustGet(t, Default(), TypeApplyMtf)
	lines := g.Generate(defaults(g, map[string]interface{}{"functionName": "Road MTF"}))

	wellFormed(t, lines)
	assert.Contains(t, lines, "        <Name>Recalc Road MTF</Name>")
	assert.Contains(t, lines, "        <Function>Road MTF</Function>")
}

func TestLabelAlias(t *testing.T) {
	r := Default()
	p := Params{"labelName": "run tin function"}
	assert.Equal(t, mustGet(t, r, TypeAddLabel).Generate(p), mustGet(t, r, TypeLabel).Generate(p))
}

func TestWriteMTFFile(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteMTFFile(dir, "Road.mtf", "Left batter", "Right batter")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Road.mtf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	body := string(data)
	assert.Contains(t, body, "left_side_modifier = {\n\n  insert_full_template start_ref 0 final_ref 0 \"Right batter\"")
	assert.Contains(t, body, "right_side_modifier = {\n  insert_full_template start_ref 0 final_ref 0 \"Left batter\"")
	assert.Contains(t, body, "right_boxing_8 = {")
	assert.NotContains(t, body, "left_boxing_9")
	assert.True(t, strings.HasSuffix(body, "do_clear_output_window = 0\n"))

	_, err = WriteMTFFile(dir, "../escape", "l", "r")
	assert.Error(t, err)
}

func TestMtfFileSideEffect(t *testing.T) {
	dir := t.TempDir()
	g := mustGet(t, Default(), TypeCreateMtfFile)

	assert.Empty(t, g.Generate(nil))
	require.NoError(t, g.(SideEffect).Apply(context.Background(), defaults(g, map[string]interface{}{"mtfName": "Kerb"}), dir))
	assert.FileExists(t, filepath.Join(dir, "Kerb.mtf"))
}
