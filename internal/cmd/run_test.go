package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

const siteConfig = `
log_level: info
options:
  tag: DOC
targets:
  docs:
    options:
      pick_tag: {}
    files:
      - src: src/page.html
        dest: dist/docs.html
  site:
    options:
      remove_tag: {}
      replace_tag:
        tag: DEBUG
        replacement: ""
    files:
      - src: ["src/*.html", "!src/draft.html"]
        dest: dist/site.html
`

var siteFiles = map[string]string{
	"src/page.html":  "<h1>Hi</h1>\n<!-- [DOC/] -->docs\n<!-- [/DOC] -->\n<p>[DEBUG/]x[/DEBUG]ok</p>",
	"src/draft.html": "draft",
}

func TestRunBuildsTargets(t *testing.T) {
	p := newProject(t, siteConfig, siteFiles)
	report := filepath.Join(p.dir, "report.json")

	out, _, err := execute(t, "", "run", "--config", p.config, "--report", report)
	if err != nil {
		t.Fatalf("run returned error: %v\n%s", err, out)
	}

	if got := p.read(t, "dist/docs.html"); got != "docs\n" {
		t.Errorf("docs.html = %q", got)
	}
	if got := p.read(t, "dist/site.html"); got != "<h1>Hi</h1>\n\n<p>ok</p>" {
		t.Errorf("site.html = %q", got)
	}
	if !strings.Contains(out, "=== Build Summary ===") || !strings.Contains(out, "Written: 2") {
		t.Errorf("missing summary in output:\n%s", out)
	}

	data, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	var decoded struct {
		BuildID   string `json:"build_id"`
		Succeeded bool   `json:"succeeded"`
		Targets   []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"targets"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid report: %v", err)
	}
	if decoded.BuildID == "" || !decoded.Succeeded || len(decoded.Targets) != 2 {
		t.Errorf("unexpected report: %+v", decoded)
	}
}

func TestRunSelectedTargetAndUnchanged(t *testing.T) {
	p := newProject(t, siteConfig, siteFiles)

	if _, _, err := execute(t, "", "run", "--config", p.config, "docs"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if p.exists("dist/site.html") {
		t.Error("unselected target was built")
	}

	out, _, err := execute(t, "", "run", "--config", p.config, "docs")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !strings.Contains(out, "unchanged") {
		t.Errorf("expected unchanged destination:\n%s", out)
	}
}

func TestRunDryRunDiff(t *testing.T) {
	p := newProject(t, siteConfig, siteFiles)

	out, _, err := execute(t, "", "run", "--config", p.config, "--dry-run", "--diff", "site")
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if p.exists("dist/site.html") {
		t.Error("dry run wrote a destination")
	}
	if !strings.Contains(out, "dry run") || !strings.Contains(out, "+<p>ok</p>") {
		t.Errorf("expected dry-run diff in output:\n%s", out)
	}
}

func TestRunFailsOnMissingTag(t *testing.T) {
	config := `
targets:
  strict:
    options:
      pick_tag: {tag: T1}
    files:
      - src: in.txt
        dest: out.txt
  lenient:
    options:
      pick_tag: {tag: T1, allow_errors: true}
    files:
      - src: in.txt
        dest: out2.txt
`
	p := newProject(t, config, map[string]string{"in.txt": "ABC"})

	out, _, err := execute(t, "", "run", "--config", p.config)
	if err == nil {
		t.Fatal("expected error for missing tag")
	}
	if !strings.Contains(err.Error(), "Not found tag: T1") {
		t.Errorf("unexpected error: %v", err)
	}
	if p.exists("out.txt") || p.exists("out2.txt") {
		t.Error("no destination should be written")
	}
	if !strings.Contains(out, "Tag not found: 1") || !strings.Contains(out, "Failed: 1") {
		t.Errorf("unexpected summary:\n%s", out)
	}
}

func TestRunWarnsAboutMissingSource(t *testing.T) {
	config := `
targets:
  join:
    files:
      - src: [a.txt, gone.txt, b.txt]
        dest: out.txt
`
	p := newProject(t, config, map[string]string{"a.txt": "H1", "b.txt": "H2"})

	out, _, err := execute(t, "", "run", "--config", p.config)
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if !strings.Contains(out, `Source file "gone.txt" not found.`) {
		t.Errorf("missing warning:\n%s", out)
	}
	if got := p.read(t, "out.txt"); got != "H1\nH2" {
		t.Errorf("out.txt = %q", got)
	}
}

func TestRunWritesFileLog(t *testing.T) {
	p := newProject(t, siteConfig, siteFiles)

	if _, _, err := execute(t, "", "run", "--config", p.config, "--log-dir", "logs"); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if !p.exists("logs/latest.log") || !p.exists("logs/targets/site.log") {
		t.Error("expected run and target logs under the project log dir")
	}
}

func TestRunFlagErrors(t *testing.T) {
	p := newProject(t, siteConfig, siteFiles)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"conflicting skip flags", []string{"--skip-unchanged", "--no-skip-unchanged"}, "cannot use both"},
		{"bad log level", []string{"--log-level", "loud"}, "invalid log_level"},
		{"unknown target", []string{"nope"}, `unknown target "nope"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"run", "--config", p.config}, tt.args...)
			_, _, err := execute(t, "", args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
