package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runArtifacts(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newArtifactsCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestArtifactsCmd_Subcommands(t *testing.T) {
	cmd := newArtifactsCmd()
	subcommands := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subcommands[sub.Name()] = true
	}
	for _, expected := range []string{"ls", "cat", "rm"} {
		if !subcommands[expected] {
			t.Errorf("expected subcommand '%s' not found", expected)
		}
	}
	if cmd.PersistentFlags().Lookup("backend") == nil || cmd.PersistentFlags().Lookup("backend-config") == nil {
		t.Error("expected --backend and --backend-config flags")
	}
}

func TestArtifactsCmd_AfterRun(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	graph := writeFixture(t, dir, "workflow.json", testGraphJSON)
	vars := writeFixture(t, dir, "vars.yaml", testVarsYAML)
	table := writeFixture(t, dir, "models.csv", "Filename\nM1\nM2\n")

	run := newRunCmd()
	run.SetOut(&bytes.Buffer{})
	run.SetArgs([]string{"-t", table, "-g", graph, "--vars", vars, "-d", outDir})
	if err := run.Execute(); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	backend := "path=" + outDir

	out, err := runArtifacts(t, "ls", "--backend-config", backend)
	if err != nil {
		t.Fatalf("ls failed: %v", err)
	}
	for _, want := range []string{"M1.chain", "M2.chain", "Road Upgrade ALL CHAIN.chain", "manifest.yaml", "Run: "} {
		if !strings.Contains(out, want) {
			t.Errorf("expected ls output to contain %q, got:\n%s", want, out)
		}
	}

	out, err = runArtifacts(t, "cat", "--backend-config", backend, "Road Upgrade ALL CHAIN.chain")
	if err != nil {
		t.Fatalf("cat failed: %v", err)
	}
	if strings.Count(out, "<Run_chain>") != 2 {
		t.Errorf("expected two Run_chain commands, got:\n%s", out)
	}

	out, err = runArtifacts(t, "rm", "--backend-config", backend, "M2.chain", "M9.chain")
	if err != nil {
		t.Fatalf("rm failed: %v", err)
	}
	if !strings.Contains(out, "removed ") || !strings.Contains(out, "M9.chain: not found") {
		t.Errorf("unexpected rm output:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(outDir, "M2.chain")); !os.IsNotExist(err) {
		t.Errorf("expected M2.chain to be removed, stat err: %v", err)
	}
}

func TestArtifactsCmd_CatMissing(t *testing.T) {
	dir := t.TempDir()

	_, err := runArtifacts(t, "cat", "--backend-config", "path="+dir, "M1.chain")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found error, got: %v", err)
	}
}

func TestArtifactsCmd_ListEmpty(t *testing.T) {
	out, err := runArtifacts(t, "ls", "--backend-config", "path="+t.TempDir())
	if err != nil {
		t.Fatalf("ls failed: %v", err)
	}
	if !strings.Contains(out, "No artifacts found.") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestArtifactsCmd_UnknownBackend(t *testing.T) {
	_, err := runArtifacts(t, "ls", "--backend", "ftp")
	if err == nil || !strings.Contains(err.Error(), "unknown artifact backend") {
		t.Errorf("expected unknown backend error, got: %v", err)
	}
}
