package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Digital-Shane/cinemabot/internal/bot"
	"github.com/Digital-Shane/cinemabot/internal/config"
	"github.com/Digital-Shane/cinemabot/internal/keyboard"
	"github.com/Digital-Shane/cinemabot/internal/tui/theme"

	"github.com/google/go-cmp/cmp"
)

var fixturePath = filepath.Join("..", "catalog", "fixture", "testdata", "catalog.json")

// isolate points HOME at a temp dir and blanks every variable the config
// loader reads.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, name := range []string{
		"API_TOKEN", "WEBHOOK_HOST", "WEBHOOK_PATH", "WEBHOOK_SECRET", "LISTEN_ADDR",
		"CATALOG", "CATALOG_BASE_URL", "CATALOG_LOCALE", "CATALOG_TIMEOUT_SECONDS",
		"FIXTURE_PATH", "METRICS_ADDR", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(name, "")
	}
	return home
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestSearchPrintsCard(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "--fixture", fixturePath, "--log-level", "error", "search", "matrix")
	if err != nil {
		t.Fatalf("search error = %v", err)
	}

	for _, want := range []string{
		"https://images.justwatch.com/poster/101/s592",
		"The Matrix (1999)",
		"Imdb: 8.7",
		"[Netflix](https://netflix.example/matrix-hd)",
		"[Amazon Prime Video](https://prime.example/matrix)",
		"[" + bot.MoreLabel + "]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<b>") {
		t.Errorf("output should not contain HTML tags:\n%s", out)
	}
}

func TestSearchListPrintsNumberedResults(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "--fixture", fixturePath, "search", "--list", "matrix")
	if err != nil {
		t.Fatalf("search --list error = %v", err)
	}

	for _, want := range []string{
		`Search results for "matrix":`,
		"1. The Matrix (1999)",
		"2. The Matrix Reloaded (2003)",
		"[1] [2]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestSearchNothingFound(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "--fixture", fixturePath, "search", "zzz")
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	if !strings.Contains(out, `Nothing found for "zzz"`) {
		t.Errorf("output = %q", out)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	isolate(t)

	if _, _, err := execute(t, "--fixture", fixturePath, "search"); err == nil {
		t.Fatal("search without a query should fail")
	}
}

func TestSearchRejectsInvalidConfig(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "--catalog", "fixture", "search", "matrix")
	if err == nil || !strings.Contains(err.Error(), "fixture_path") {
		t.Fatalf("error = %v, want fixture_path validation error", err)
	}
}

func TestSearchUnknownCatalog(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "--catalog", "nope", "search", "matrix")
	if err == nil || !strings.Contains(err.Error(), "nope") {
		t.Fatalf("error = %v, want unknown catalog error", err)
	}
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "config.json")

	cfg := config.DefaultConfig()
	cfg.LogLevel = "warn"
	cfg.Catalog = "justwatch"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	tests := []struct {
		name  string
		flags globalFlags
		want  [4]string // level, format, catalog, fixture
	}{
		{
			name:  "file values",
			flags: globalFlags{configPath: path},
			want:  [4]string{"warn", "text", "justwatch", ""},
		},
		{
			name:  "explicit flags win",
			flags: globalFlags{configPath: path, logLevel: "debug", logFormat: "json"},
			want:  [4]string{"debug", "json", "justwatch", ""},
		},
		{
			name:  "fixture implies fixture catalog",
			flags: globalFlags{configPath: path, fixturePath: "x.json"},
			want:  [4]string{"warn", "text", "fixture", "x.json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := loadConfig(&tt.flags)
			if err != nil {
				t.Fatalf("loadConfig() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, [4]string{got.LogLevel, got.LogFormat, got.Catalog, got.FixturePath}); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConfigInitAndShow(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "nested", "config.json")

	out, _, err := execute(t, "--config", path, "config", "init")
	if err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("config init output = %q", out)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	if _, _, err := execute(t, "--config", path, "config", "init"); err == nil {
		t.Error("config init should refuse to overwrite without --force")
	}
	if _, _, err := execute(t, "--config", path, "config", "init", "--force"); err != nil {
		t.Errorf("config init --force error = %v", err)
	}

	t.Setenv("API_TOKEN", "123456:secret-token")
	out, _, err = execute(t, "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	if strings.Contains(out, "secret-token") {
		t.Errorf("config show leaked the token:\n%s", out)
	}

	var shown config.Config
	if err := json.Unmarshal([]byte(out), &shown); err != nil {
		t.Fatalf("config show output is not JSON: %v", err)
	}
	if shown.APIToken != "****oken" {
		t.Errorf("masked token = %q, want %q", shown.APIToken, "****oken")
	}
	if shown.Catalog != "justwatch" {
		t.Errorf("catalog = %q, want justwatch", shown.Catalog)
	}
}

func TestMask(t *testing.T) {
	tests := map[string]string{
		"":          "",
		"abc":       "****",
		"abcdefgh":  "****efgh",
		"123:token": "****oken",
	}
	for in, want := range tests {
		if got := mask(in); got != want {
			t.Errorf("mask(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPrintReply(t *testing.T) {
	th := theme.New(theme.WithIconSet(theme.ASCIIIcons()))
	reply := bot.Reply{
		PhotoURL: "https://images.example/p.jpg",
		Text:     "<b>Tom &amp; Jerry</b> (1940)\n",
		Keyboard: [][]keyboard.Button{
			{{Text: "Netflix", URL: "https://n.example"}, {Text: "more", CallbackData: "list:tom"}},
		},
	}

	var b bytes.Buffer
	if err := printReply(&b, reply, th); err != nil {
		t.Fatalf("printReply() error = %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("printReply wrote %d lines, want 3:\n%s", len(lines), b.String())
	}
	if lines[0] != "[P] https://images.example/p.jpg" {
		t.Errorf("poster line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "Tom & Jerry") || !strings.HasSuffix(lines[1], " (1940)") {
		t.Errorf("text line = %q", lines[1])
	}
	if lines[2] != "[*] [Netflix](https://n.example) [more]" {
		t.Errorf("keyboard line = %q", lines[2])
	}
}
