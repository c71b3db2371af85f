package changelog

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/serveropenmc/openmc/internal/github"
)

// DefaultTruncate is the commit message length used when Truncate gets a
// non-positive max.
const DefaultTruncate = 100

// ReleaseView is a release prepared for display.
type ReleaseView struct {
	Tag        string    `json:"tag"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Published  time.Time `json:"published"`
	Prerelease bool      `json:"prerelease"`
	Markdown   string    `json:"markdown"`
	HTML       string    `json:"html,omitempty"`
}

// Releases converts releases to views, skipping drafts. HTML is only
// rendered when withHTML is set.
func Releases(releases []github.Release, labels Labels, withHTML bool) []ReleaseView {
	views := make([]ReleaseView, 0, len(releases))
	for _, r := range releases {
		if r.Draft {
			continue
		}
		name := r.Name
		if name == "" {
			name = r.TagName
		}
		v := ReleaseView{
			Tag:        r.TagName,
			Name:       name,
			URL:        r.HTMLURL,
			Published:  r.PublishedAt,
			Prerelease: r.Prerelease,
			Markdown:   Transform(r.Body, labels),
		}
		if withHTML {
			v.HTML = string(Render(v.Markdown))
		}
		views = append(views, v)
	}
	return views
}

// CommitView is a commit prepared for display.
type CommitView struct {
	SHA     string    `json:"sha"`
	Message string    `json:"message"`
	Author  string    `json:"author"`
	Avatar  string    `json:"avatar,omitempty"`
	Date    time.Time `json:"date"`
	URL     string    `json:"url"`
}

// Commits converts commits to views with short SHAs and one-line messages.
func Commits(commits []github.Commit, max int) []CommitView {
	views := make([]CommitView, 0, len(commits))
	for _, c := range commits {
		v := CommitView{
			SHA:     shortSHA(c.SHA),
			Message: Truncate(c.Commit.Message, max),
			Author:  c.Commit.Author.Name,
			Date:    c.Commit.Author.Date,
			URL:     c.HTMLURL,
		}
		if c.Author != nil {
			v.Author = c.Author.Login
			v.Avatar = c.Author.AvatarURL
		}
		views = append(views, v)
	}
	return views
}

// Truncate returns the first line of msg, cut to max runes with a "..."
// suffix when longer.
func Truncate(msg string, max int) string {
	if max <= 0 {
		max = DefaultTruncate
	}
	line, _, _ := strings.Cut(msg, "\n")
	line = strings.TrimSpace(line)
	if utf8.RuneCountInString(line) <= max {
		return line
	}
	runes := []rune(line)
	return strings.TrimRight(string(runes[:max]), " ") + "..."
}

// RelativeTime formats t relative to now, e.g. "3 hours ago".
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
