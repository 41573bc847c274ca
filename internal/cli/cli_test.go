package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	pkgio "github.com/matzehuels/behave/pkg/io"
	"github.com/matzehuels/behave/pkg/project"
	"github.com/matzehuels/behave/pkg/token"
)

const testBundle = `{
  "name": "game",
  "nextShallowId": 3,
  "containers": [
    {
      "id": "root", "shallowId": 1, "name": "Root",
      "token": {"items": [
        {"id": "n1", "type": "Behaviour", "name": "Start", "portals": [{"name": "Exit", "type": "output", "dataType": "object"}]},
        {"id": "n2", "type": "Behaviour", "name": "Move", "left": 200, "portals": [{"name": "Enter", "type": "input", "dataType": "object"}]},
        {"id": "l1", "type": "Link", "startBehaviour": "n1", "startPortal": "Exit", "endBehaviour": "n2", "endPortal": "Enter"}
      ]}
    },
    {"id": "empty", "shallowId": 2, "name": "Empty", "token": {"items": []}}
  ]
}`

// runCLI executes the root command with args in an isolated environment.
func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	var logs bytes.Buffer
	c := New(&logs, log.InfoLevel)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.Execute()
}

func writeBundle(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "game.json")
	if err := os.WriteFile(path, []byte(testBundle), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		explicit, input, suffix, want string
	}{
		{"", "game.json", ".export.json", "game.export.json"},
		{"", "dir/game", ".svg", "dir/game.svg"},
		{"out.json", "game.json", ".export.json", "out.json"},
	}
	for _, tt := range tests {
		if got := outputPath(tt.explicit, tt.input, tt.suffix); got != tt.want {
			t.Errorf("outputPath(%q, %q, %q) = %q, want %q", tt.explicit, tt.input, tt.suffix, got, tt.want)
		}
	}
}

func TestFormatOf(t *testing.T) {
	tests := map[string]string{
		"a.dot": formatDOT,
		"a.DOT": formatDOT,
		"a.svg": formatSVG,
		"a":     formatSVG,
	}
	for path, want := range tests {
		if got := formatOf(path); got != want {
			t.Errorf("formatOf(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestPickContainer(t *testing.T) {
	b, err := pkgio.ReadBundle(strings.NewReader(testBundle))
	if err != nil {
		t.Fatal(err)
	}
	p, err := project.FromBundle(b)
	if err != nil {
		t.Fatal(err)
	}

	ct, err := pickContainer(p, "")
	if err != nil || ct.Name() != "Root" {
		t.Errorf("pickContainer(\"\") = %v, %v; want Root", ct, err)
	}
	ct, err = pickContainer(p, "Empty")
	if err != nil || ct.ID() != "empty" {
		t.Errorf("pickContainer(Empty) = %v, %v", ct, err)
	}
	if _, err := pickContainer(p, "Missing"); err == nil {
		t.Error("pickContainer(Missing) should fail")
	}
}

func TestExportCommand(t *testing.T) {
	input := writeBundle(t)
	output := filepath.Join(t.TempDir(), "out.json")

	if err := runCLI(t, "export", input, "-o", output, "--compact"); err != nil {
		t.Fatalf("export error = %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	var exp token.Export
	if err := json.Unmarshal(data, &exp); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if exp.Name != "game" || len(exp.Containers) != 2 {
		t.Fatalf("export = %s, want 2 containers of game", data)
	}
	root := exp.Containers[0]
	if root.Name != "Root" || len(root.Behaviours) != 2 || len(root.Links) != 1 {
		t.Errorf("root container = %+v", root)
	}
}

func TestValidateCommand(t *testing.T) {
	if err := runCLI(t, "validate", "--strict", writeBundle(t)); err != nil {
		t.Errorf("validate error = %v", err)
	}
	if err := runCLI(t, "validate", filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("validate of a missing bundle should fail")
	}
}

func TestRenderCommand_DOT(t *testing.T) {
	output := filepath.Join(t.TempDir(), "root.dot")
	if err := runCLI(t, "render", writeBundle(t), "-c", "Root", "-o", output); err != nil {
		t.Fatalf("render error = %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "digraph") {
		t.Errorf("output is not DOT:\n%s", data)
	}
}

func TestLayoutCommand(t *testing.T) {
	input := writeBundle(t)
	output := filepath.Join(t.TempDir(), "laid.json")
	if err := runCLI(t, "layout", input, "-o", output); err != nil {
		t.Fatalf("layout error = %v", err)
	}
	b, err := pkgio.ImportBundle(output)
	if err != nil {
		t.Fatal(err)
	}
	var left = map[string]float64{}
	for _, it := range b.Containers[0].Token.Items {
		if !it.IsLink() {
			left[it.ID] = it.Left
		}
	}
	if left["n1"] >= left["n2"] {
		t.Errorf("n1 should sit left of n2, got %v", left)
	}
}

func TestPushPull(t *testing.T) {
	input := writeBundle(t)
	storeDir := t.TempDir()
	cfg := writeConfig(t, "[store]\nbackend = \"file\"\ndir = \""+filepath.ToSlash(storeDir)+"\"\n")

	if err := runCLI(t, "--config", cfg, "push", input); err != nil {
		t.Fatalf("push error = %v", err)
	}
	output := filepath.Join(t.TempDir(), "pulled.json")
	if err := runCLI(t, "--config", cfg, "pull", "-o", output, "--assets", input); err != nil {
		t.Fatalf("pull error = %v", err)
	}
	b, err := pkgio.ImportBundle(output)
	if err != nil {
		t.Fatal(err)
	}
	names := map[string]bool{}
	for _, c := range b.Containers {
		names[c.Name] = true
	}
	if b.Name != "game" || !names["Root"] || !names["Empty"] {
		t.Errorf("pulled bundle = %+v", b)
	}
}
