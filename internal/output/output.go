package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/serveropenmc/openmc/internal/cache"
	"github.com/serveropenmc/openmc/internal/changelog"
	"github.com/serveropenmc/openmc/internal/github"
	"github.com/serveropenmc/openmc/internal/stats"
)

// Kind names the payload a Report carries.
type Kind string

const (
	KindContributors Kind = "contributors"
	KindRepository   Kind = "repository"
	KindStats        Kind = "stats"
	KindCommits      Kind = "commits"
	KindReleases     Kind = "releases"
	KindOrgRepos     Kind = "org-repos"
	KindSummary      Kind = "summary"
	KindLines        Kind = "lines"
	KindCache        Kind = "cache"
)

// Report is the result of one command. Only the field matching Kind is set.
type Report struct {
	Kind        Kind      `json:"kind"`
	Source      string    `json:"source"`
	GeneratedAt time.Time `json:"generatedAt"`

	Contributors []github.Contributor     `json:"contributors,omitempty"`
	Repository   *github.Repository       `json:"repository,omitempty"`
	Stats        []github.ContributorStat `json:"stats,omitempty"`
	Commits      []changelog.CommitView   `json:"commits,omitempty"`
	Releases     []changelog.ReleaseView  `json:"releases,omitempty"`
	OrgRepos     []github.OrgRepository   `json:"orgRepos,omitempty"`
	Summary      *stats.RepoSummary       `json:"summary,omitempty"`
	Lines        []stats.ContributorLines `json:"lines,omitempty"`
	Cache        *cache.Stats             `json:"cache,omitempty"`
}

// Writer writes a report in a specific format.
type Writer interface {
	Write(w io.Writer, report *Report) error
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "text", "":
		return &TextWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "markdown", "md":
		return &MarkdownWriter{}, nil
	case "html":
		return &HTMLWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteReport writes the report to the specified output (file path or stdout).
func WriteReport(report *Report, format, outPath string) error {
	writer, err := GetWriter(format)
	if err != nil {
		return err
	}

	var w io.Writer
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
	}

	return writer.Write(w, report)
}

// now is the reference time for relative dates.
func (r *Report) now() time.Time {
	if r.GeneratedAt.IsZero() {
		return time.Now()
	}
	return r.GeneratedAt
}
