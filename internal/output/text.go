package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/serveropenmc/openmc/internal/changelog"
)

// TextWriter outputs a human-readable text report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, report *Report) error {
	ew := &errWriter{w: w}
	now := report.now()

	ew.printf("%s — %s\n", title(report.Kind), report.Source)
	ew.println(strings.Repeat("─", 60))

	switch report.Kind {
	case KindContributors:
		if len(report.Contributors) == 0 {
			ew.println("No contributors.")
		}
		for i, c := range report.Contributors {
			ew.printf("%3d. %-24s %s contributions\n", i+1, c.Login, humanize.Comma(int64(c.Contributions)))
		}
	case KindRepository:
		r := report.Repository
		if r == nil {
			break
		}
		ew.printf("%s\n", r.FullName)
		if r.Description != "" {
			for _, line := range wrapText(r.Description, 70) {
				ew.printf("  %s\n", line)
			}
		}
		ew.printf("Language: %s\n", r.Language)
		ew.printf("Stars: %s | Forks: %s | Open issues: %s\n",
			humanize.Comma(int64(r.StargazersCount)), humanize.Comma(int64(r.ForksCount)), humanize.Comma(int64(r.OpenIssuesCount)))
		ew.printf("Created %s, last push %s\n",
			changelog.RelativeTime(r.CreatedAt, now), changelog.RelativeTime(r.PushedAt, now))
	case KindStats:
		for _, s := range report.Stats {
			login := "(unknown)"
			if s.Author != nil {
				login = s.Author.Login
			}
			ew.printf("%-24s %6d commits  +%s  -%s\n", login, s.Total,
				humanize.Comma(int64(s.Additions())), humanize.Comma(int64(s.Deletions())))
		}
	case KindCommits:
		for _, c := range report.Commits {
			ew.printf("%s  %-16s %-14s %s\n", c.SHA, c.Author, changelog.RelativeTime(c.Date, now), c.Message)
		}
	case KindReleases:
		if len(report.Releases) == 0 {
			ew.println("No published releases.")
		}
		for _, r := range report.Releases {
			label := r.Name
			if r.Prerelease {
				label += " (pre-release)"
			}
			ew.printf("\n%s  %s  %s\n", r.Tag, label, changelog.RelativeTime(r.Published, now))
			ew.println(strings.Repeat("─", 40))
			for _, line := range strings.Split(r.Markdown, "\n") {
				ew.printf("  %s\n", line)
			}
		}
	case KindOrgRepos:
		for _, r := range report.OrgRepos {
			flags := ""
			if r.Archived {
				flags = " [archived]"
			} else if r.Fork {
				flags = " [fork]"
			}
			ew.printf("%-30s %5s stars%s\n", r.Name, humanize.Comma(int64(r.StargazersCount)), flags)
		}
	case KindSummary:
		s := report.Summary
		if s == nil {
			break
		}
		ew.printf("Contributors: %s\n", humanize.Comma(int64(s.Contributors)))
		ew.printf("Commits:      %s\n", humanize.Comma(int64(s.Commits)))
		ew.printf("Repositories: %s\n", humanize.Comma(int64(s.Repositories)))
		ew.printf("Stars:        %s\n", humanize.Comma(int64(s.Stars)))
		if s.CreatedYear > 0 {
			ew.printf("Since:        %d\n", s.CreatedYear)
		}
	case KindLines:
		for i, l := range report.Lines {
			if !l.HasLines {
				ew.printf("%3d. %-24s %s contributions\n", i+1, l.Login, humanize.Comma(int64(l.Contributions)))
				continue
			}
			ew.printf("%3d. %-24s +%s  -%s  (net %s)\n", i+1, l.Login,
				humanize.Comma(int64(l.Additions)), humanize.Comma(int64(l.Deletions)), humanize.Comma(int64(l.Net)))
		}
	case KindCache:
		c := report.Cache
		if c == nil {
			break
		}
		ew.printf("Backend: %s\n", c.Backend)
		ew.printf("Entries: %d (%d expired)\n", c.Entries, c.Expired)
		ew.printf("Size:    %s\n", humanize.IBytes(uint64(c.TotalBytes)))
	default:
		return fmt.Errorf("text output: unknown report kind %q", report.Kind)
	}

	return ew.err
}

func title(k Kind) string {
	switch k {
	case KindContributors:
		return "Contributors"
	case KindRepository:
		return "Repository"
	case KindStats:
		return "Contributor statistics"
	case KindCommits:
		return "Recent commits"
	case KindReleases:
		return "Releases"
	case KindOrgRepos:
		return "Organization repositories"
	case KindSummary:
		return "Summary"
	case KindLines:
		return "Lines per contributor"
	case KindCache:
		return "Cache"
	default:
		return string(k)
	}
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	words := strings.Fields(text)
	var current strings.Builder
	for _, word := range words {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
