package changelog

import (
	"regexp"
	"strings"
)

// LinkKind is how a rendered link is presented.
type LinkKind int

const (
	LinkExternal LinkKind = iota
	LinkProfile
	LinkPullRequest
	LinkCompare
)

func (k LinkKind) String() string {
	switch k {
	case LinkProfile:
		return "profile"
	case LinkPullRequest:
		return "pull-request"
	case LinkCompare:
		return "compare"
	default:
		return "external"
	}
}

// Link is a classified link destination.
type Link struct {
	Kind LinkKind
	Href string
	// Username is set for LinkProfile.
	Username string
	// Number is set for LinkPullRequest; "?" when the URL carries none.
	Number string
}

var profileRe = regexp.MustCompile(`github\.com/([^/?#\s]+)/?$`)

// Classify determines how href should be rendered.
func Classify(href string) Link {
	l := Link{Kind: LinkExternal, Href: href}
	if !strings.Contains(href, "github.com") {
		return l
	}
	if m := profileRe.FindStringSubmatch(href); m != nil {
		l.Kind = LinkProfile
		l.Username = m[1]
		return l
	}
	if _, after, ok := strings.Cut(href, "/pull/"); ok {
		l.Kind = LinkPullRequest
		l.Number = "?"
		if i := strings.IndexAny(after, "/?#"); i >= 0 {
			after = after[:i]
		}
		if after != "" {
			l.Number = after
		}
		return l
	}
	if strings.Contains(href, "/compare/") {
		l.Kind = LinkCompare
	}
	return l
}
