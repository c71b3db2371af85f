package output

import (
	"fmt"
	"html"
	"io"

	"github.com/serveropenmc/openmc/internal/changelog"
)

// HTMLWriter outputs release notes as an HTML fragment for the changelog
// page. Release bodies are rendered here when the report did not carry
// pre-rendered HTML.
type HTMLWriter struct{}

func (h *HTMLWriter) Write(w io.Writer, report *Report) error {
	if report.Kind != KindReleases {
		return fmt.Errorf("html output does not support %s reports", report.Kind)
	}
	ew := &errWriter{w: w}

	ew.println(`<section class="changelog">`)
	for _, r := range report.Releases {
		body := r.HTML
		if body == "" {
			body = string(changelog.Render(r.Markdown))
		}
		ew.println(`<article class="release">`)
		ew.printf(`<header><h2 class="release-title"><a href="%s">%s</a></h2>`,
			html.EscapeString(r.URL), html.EscapeString(r.Name))
		ew.printf(`<span class="release-tag">%s</span>`, html.EscapeString(r.Tag))
		if r.Prerelease {
			ew.printf(`<span class="badge badge-prerelease">pre-release</span>`)
		}
		if !r.Published.IsZero() {
			ew.printf(`<time datetime="%s">%s</time>`,
				r.Published.UTC().Format("2006-01-02T15:04:05Z"), r.Published.Format("2006-01-02"))
		}
		ew.println("</header>")
		ew.printf("<div class=\"release-body\">\n%s</div>\n", body)
		ew.println("</article>")
	}
	ew.println("</section>")

	return ew.err
}
