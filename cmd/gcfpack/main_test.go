package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gcfpack/internal/gcf"
	"gcfpack/internal/meta"
)

// runCLI executes one invocation against a fresh command tree. The config
// flag points at a path that never exists so tests always run on defaults.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.toml")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeTestFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

const testDescription = `{
  "header": {"version": 2},
  "resources": [
    {"type": "blob", "source": "a.bin"},
    {"type": "blob", "source": "b.bin"}
  ]
}`

func setupPackDir(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "a.bin"), []byte{1, 2, 3, 4})
	writeTestFile(t, filepath.Join(dir, "b.bin"), []byte{5, 6})
	descPath := filepath.Join(dir, "gcf.json")
	writeTestFile(t, descPath, []byte(testDescription))
	return dir, descPath
}

func TestCreateCommand(t *testing.T) {
	dir, descPath := setupPackDir(t)
	outPath := filepath.Join(dir, "out.gcf")

	output, err := runCLI(t, "create", "-i", descPath, "-o", outPath)
	if err != nil {
		t.Fatalf("create: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Packed 2 resources") {
		t.Fatalf("unexpected output: %q", output)
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer f.Close()
	decoded, err := gcf.Decode(f)
	if err != nil {
		t.Fatalf("decode archive: %v", err)
	}
	if decoded.Header.ResourceCount != 2 {
		t.Fatalf("archive resource count = %d, want 2", decoded.Header.ResourceCount)
	}
}

func TestCreateDryRun(t *testing.T) {
	dir, descPath := setupPackDir(t)

	output, err := runCLI(t, "create", "-i", descPath, "--dry-run")
	if err != nil {
		t.Fatalf("create --dry-run: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Description is valid.") {
		t.Fatalf("unexpected output: %q", output)
	}
	if !strings.Contains(output, "a.bin") {
		t.Fatalf("resource table missing from output: %q", output)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".gcf") {
			t.Fatalf("dry run created %s", entry.Name())
		}
	}
}

func TestCreateRequiresOutput(t *testing.T) {
	_, descPath := setupPackDir(t)

	_, err := runCLI(t, "create", "-i", descPath)
	if err == nil || !strings.Contains(err.Error(), "--output is required") {
		t.Fatalf("error = %v, want missing --output complaint", err)
	}
}

func TestValidateCommand(t *testing.T) {
	_, descPath := setupPackDir(t)

	output, err := runCLI(t, "validate", "-i", descPath)
	if err != nil {
		t.Fatalf("validate: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Description is valid.") {
		t.Fatalf("unexpected output: %q", output)
	}
	for _, want := range []string{"Type", "Format", "Source", "Dimensions", "Flags", "a.bin", "b.bin", "blob"} {
		if !strings.Contains(output, want) {
			t.Fatalf("resource table missing %q: %q", want, output)
		}
	}
}

func TestValidateCommandSchemaFailure(t *testing.T) {
	dir := t.TempDir()
	descPath := filepath.Join(dir, "gcf.json")
	writeTestFile(t, descPath, []byte(`{"header": {"version": 9}, "resources": []}`))

	_, err := runCLI(t, "validate", "-i", descPath)
	if !errors.Is(err, meta.ErrSchema) {
		t.Fatalf("error = %v, want ErrSchema", err)
	}
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "gcf.json")

	output, err := runCLI(t, "init", "-o", target)
	if err != nil {
		t.Fatalf("init: %v\n%s", err, output)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read generated description: %v", err)
	}
	if _, err := meta.Parse(data); err != nil {
		t.Fatalf("generated description does not validate: %v", err)
	}

	// A second init must refuse to clobber the file.
	if _, err := runCLI(t, "init", "-o", target); err == nil {
		t.Fatal("expected error for existing description")
	}
	if _, err := runCLI(t, "init", "-o", target, "--overwrite"); err != nil {
		t.Fatalf("init --overwrite: %v", err)
	}
}

func TestConfigInitCommand(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "config.toml")

	output, err := runCLI(t, "config", "init", "-p", target)
	if err != nil {
		t.Fatalf("config init: %v\n%s", err, output)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if _, err := runCLI(t, "config", "init", "-p", target); err == nil {
		t.Fatal("expected error for existing config")
	}
}
