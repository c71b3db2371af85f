package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/serveropenmc/openmc/internal/cache"
	"github.com/serveropenmc/openmc/internal/changelog"
	"github.com/serveropenmc/openmc/internal/github"
	"github.com/serveropenmc/openmc/internal/stats"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func releasesReport() *Report {
	return &Report{
		Kind:        KindReleases,
		Source:      "ServerOpenMC/PluginV2",
		GeneratedAt: testNow,
		Releases: []changelog.ReleaseView{
			{
				Tag:        "v1.1",
				Name:       "Spring update",
				URL:        "https://github.com/ServerOpenMC/PluginV2/releases/tag/v1.1",
				Published:  testNow.Add(-48 * time.Hour),
				Prerelease: true,
				Markdown:   "Fixed by [@alice](https://github.com/alice) in [PR #4](https://github.com/ServerOpenMC/PluginV2/pull/4)",
			},
		},
	}
}

func TestGetWriter(t *testing.T) {
	for _, format := range []string{"text", "", "json", "markdown", "md", "html"} {
		if _, err := GetWriter(format); err != nil {
			t.Errorf("GetWriter(%q) error: %v", format, err)
		}
	}
	if _, err := GetWriter("sarif"); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestTextWriter_Contributors(t *testing.T) {
	report := &Report{
		Kind:   KindContributors,
		Source: "ServerOpenMC/PluginV2",
		Contributors: []github.Contributor{
			{User: github.User{Login: "alice"}, Contributions: 1234},
			{User: github.User{Login: "bob"}, Contributions: 5},
		},
	}

	var buf bytes.Buffer
	if err := (&TextWriter{}).Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Contributors — ServerOpenMC/PluginV2") {
		t.Errorf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "1,234 contributions") {
		t.Errorf("counts should use thousands separators:\n%s", out)
	}
	if !strings.Contains(out, "2. bob") {
		t.Errorf("missing second row:\n%s", out)
	}
}

func TestTextWriter_Releases(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TextWriter{}).Write(&buf, releasesReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "v1.1  Spring update (pre-release)  2 days ago") {
		t.Errorf("release header missing:\n%s", out)
	}
	if !strings.Contains(out, "  Fixed by [@alice]") {
		t.Errorf("release body should be indented:\n%s", out)
	}
}

func TestTextWriter_EmptyReleases(t *testing.T) {
	var buf bytes.Buffer
	report := &Report{Kind: KindReleases, Source: "o/r"}
	if err := (&TextWriter{}).Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if !strings.Contains(buf.String(), "No published releases.") {
		t.Errorf("output:\n%s", buf.String())
	}
}

func TestTextWriter_Lines(t *testing.T) {
	report := &Report{
		Kind:   KindLines,
		Source: "o/r",
		Lines: []stats.ContributorLines{
			{Login: "alice", Additions: 12000, Deletions: 2000, Net: 10000, HasLines: true},
			{Login: "bob", Contributions: 3},
		},
	}
	var buf bytes.Buffer
	if err := (&TextWriter{}).Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "+12,000  -2,000  (net 10,000)") {
		t.Errorf("line counts missing:\n%s", out)
	}
	if !strings.Contains(out, "bob") || !strings.Contains(out, "3 contributions") {
		t.Errorf("degraded entry missing:\n%s", out)
	}
}

func TestTextWriter_SummaryAndCache(t *testing.T) {
	var buf bytes.Buffer
	summary := &Report{Kind: KindSummary, Source: "o/r", Summary: &stats.RepoSummary{Contributors: 12, Commits: 3400, Repositories: 5, CreatedYear: 2024}}
	if err := (&TextWriter{}).Write(&buf, summary); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if !strings.Contains(buf.String(), "Commits:      3,400") || !strings.Contains(buf.String(), "Since:        2024") {
		t.Errorf("summary output:\n%s", buf.String())
	}

	buf.Reset()
	cacheReport := &Report{Kind: KindCache, Source: "file", Cache: &cache.Stats{Backend: "file", Entries: 4, Expired: 1, TotalBytes: 2048}}
	if err := (&TextWriter{}).Write(&buf, cacheReport); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if !strings.Contains(buf.String(), "Entries: 4 (1 expired)") || !strings.Contains(buf.String(), "2.0 KiB") {
		t.Errorf("cache output:\n%s", buf.String())
	}
}

func TestTextWriter_UnknownKind(t *testing.T) {
	if err := (&TextWriter{}).Write(&bytes.Buffer{}, &Report{Kind: "bogus"}); err == nil {
		t.Error("Expected error for unknown kind")
	}
}

func TestJSONWriter(t *testing.T) {
	report := &Report{
		Kind:        KindSummary,
		Source:      "o/r",
		GeneratedAt: testNow,
		Summary:     &stats.RepoSummary{Owner: "o", Repo: "r", Contributors: 2},
	}
	var buf bytes.Buffer
	if err := (&JSONWriter{}).Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["kind"] != "summary" {
		t.Errorf("kind = %v", decoded["kind"])
	}
	if _, ok := decoded["releases"]; ok {
		t.Error("empty payloads should be omitted")
	}
	summary, ok := decoded["summary"].(map[string]any)
	if !ok || summary["contributors"] != float64(2) {
		t.Errorf("summary = %v", decoded["summary"])
	}
}

func TestJSONWriter_KeepsReleaseHTML(t *testing.T) {
	report := releasesReport()
	report.Releases[0].HTML = "<p>Fixed</p>"
	var buf bytes.Buffer
	if err := (&JSONWriter{}).Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if !strings.Contains(buf.String(), `<p>Fixed</p>`) {
		t.Errorf("HTML should not be escaped:\n%s", buf.String())
	}
}

func TestMarkdownWriter_Releases(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownWriter{}).Write(&buf, releasesReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "## Releases: ServerOpenMC/PluginV2") {
		t.Errorf("heading missing:\n%s", out)
	}
	if !strings.Contains(out, "### [Spring update (v1.1)](https://github.com/ServerOpenMC/PluginV2/releases/tag/v1.1)") {
		t.Errorf("release heading missing:\n%s", out)
	}
	if !strings.Contains(out, "_Published 2025-05-30, pre-release_") {
		t.Errorf("publish line missing:\n%s", out)
	}
	if !strings.Contains(out, "[PR #4](https://github.com/ServerOpenMC/PluginV2/pull/4)") {
		t.Errorf("body missing:\n%s", out)
	}
}

func TestMarkdownWriter_CommitsEscapesPipes(t *testing.T) {
	report := &Report{
		Kind:   KindCommits,
		Source: "o/r",
		Commits: []changelog.CommitView{
			{SHA: "abc1234", Author: "alice", Date: testNow, URL: "https://github.com/o/r/commit/abc1234", Message: "a | b"},
		},
	}
	var buf bytes.Buffer
	if err := (&MarkdownWriter{}).Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if !strings.Contains(buf.String(), "| [`abc1234`](https://github.com/o/r/commit/abc1234) | alice | 2025-06-01 | a \\| b |") {
		t.Errorf("commit row:\n%s", buf.String())
	}
}

func TestMarkdownWriter_Unsupported(t *testing.T) {
	if err := (&MarkdownWriter{}).Write(&bytes.Buffer{}, &Report{Kind: KindCache}); err == nil {
		t.Error("Expected error for cache report")
	}
}

func TestHTMLWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&HTMLWriter{}).Write(&buf, releasesReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`<section class="changelog">`,
		`<a href="https://github.com/ServerOpenMC/PluginV2/releases/tag/v1.1">Spring update</a>`,
		`<span class="badge badge-prerelease">pre-release</span>`,
		`<time datetime="2025-05-30T12:00:00Z">2025-05-30</time>`,
		`class="badge badge-pr"`,
		`src="https://github.com/alice.png"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestHTMLWriter_UsesPrerenderedBody(t *testing.T) {
	report := releasesReport()
	report.Releases[0].HTML = "<p>prerendered</p>\n"
	var buf bytes.Buffer
	if err := (&HTMLWriter{}).Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if !strings.Contains(buf.String(), "<p>prerendered</p>") {
		t.Errorf("output:\n%s", buf.String())
	}
}

func TestHTMLWriter_StripsScriptFromMarkdownBody(t *testing.T) {
	report := releasesReport()
	report.Releases[0].Markdown = "Hi <script>alert(1)</script> [x](javascript:alert(2))"
	var buf bytes.Buffer
	if err := (&HTMLWriter{}).Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "<script") || strings.Contains(out, "javascript:") {
		t.Errorf("unsafe markup reached the fragment:\n%s", out)
	}
}

func TestHTMLWriter_OnlyReleases(t *testing.T) {
	if err := (&HTMLWriter{}).Write(&bytes.Buffer{}, &Report{Kind: KindContributors}); err == nil {
		t.Error("Expected error for non-release report")
	}
}

func TestWriteReport_ToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "changelog.md")
	if err := WriteReport(releasesReport(), "markdown", path); err != nil {
		t.Fatalf("WriteReport error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Spring update") {
		t.Errorf("file content:\n%s", data)
	}
}
