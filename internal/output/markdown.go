package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
)

// MarkdownWriter outputs tables and release notes as markdown.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *Report) error {
	ew := &errWriter{w: w}

	ew.printf("## %s: %s\n\n", title(report.Kind), report.Source)

	switch report.Kind {
	case KindReleases:
		if len(report.Releases) == 0 {
			ew.println("No published releases.")
		}
		for _, r := range report.Releases {
			heading := r.Name
			if r.Tag != "" && r.Tag != r.Name {
				heading += " (" + r.Tag + ")"
			}
			ew.printf("### [%s](%s)\n\n", mdEscape(heading), r.URL)
			if !r.Published.IsZero() {
				ew.printf("_Published %s", r.Published.Format("2006-01-02"))
				if r.Prerelease {
					ew.printf(", pre-release")
				}
				ew.printf("_\n\n")
			}
			ew.printf("%s\n\n", r.Markdown)
		}
	case KindContributors:
		ew.println("| # | Contributor | Contributions |")
		ew.println("|---|-------------|---------------|")
		for i, c := range report.Contributors {
			ew.printf("| %d | [@%s](https://github.com/%s) | %s |\n", i+1, c.Login, c.Login, humanize.Comma(int64(c.Contributions)))
		}
	case KindCommits:
		ew.println("| Commit | Author | Date | Message |")
		ew.println("|--------|--------|------|---------|")
		for _, c := range report.Commits {
			ew.printf("| [`%s`](%s) | %s | %s | %s |\n", c.SHA, c.URL, c.Author, c.Date.Format("2006-01-02"), mdEscape(c.Message))
		}
	case KindLines:
		ew.println("| Contributor | Additions | Deletions | Net |")
		ew.println("|-------------|-----------|-----------|-----|")
		for _, l := range report.Lines {
			if !l.HasLines {
				ew.printf("| @%s | - | - | - |\n", l.Login)
				continue
			}
			ew.printf("| @%s | %s | %s | %s |\n", l.Login,
				humanize.Comma(int64(l.Additions)), humanize.Comma(int64(l.Deletions)), humanize.Comma(int64(l.Net)))
		}
	case KindSummary:
		s := report.Summary
		if s == nil {
			break
		}
		ew.println("| Metric | Value |")
		ew.println("|--------|-------|")
		ew.printf("| Contributors | %s |\n", humanize.Comma(int64(s.Contributors)))
		ew.printf("| Commits | %s |\n", humanize.Comma(int64(s.Commits)))
		ew.printf("| Repositories | %s |\n", humanize.Comma(int64(s.Repositories)))
		ew.printf("| Stars | %s |\n", humanize.Comma(int64(s.Stars)))
		if s.CreatedYear > 0 {
			ew.printf("| Since | %d |\n", s.CreatedYear)
		}
	default:
		return fmt.Errorf("markdown output does not support %s reports", report.Kind)
	}

	return ew.err
}

// mdEscape keeps a value from breaking a table cell or link text.
func mdEscape(s string) string {
	r := strings.NewReplacer("|", `\|`, "[", `\[`, "]", `\]`)
	return r.Replace(s)
}
