package changelog

import (
	"regexp"
	"strings"
)

// Labels holds the localized strings produced by the transform.
type Labels struct {
	FullChangelog string
	NoDescription string
}

var (
	// English labels, the default.
	English = Labels{FullChangelog: "Full changelog", NoDescription: "No description available"}
	// French labels.
	French = Labels{FullChangelog: "Changelog complet", NoDescription: "Aucune description disponible"}
)

// LabelsFor returns the labels for a locale such as "fr" or "en-US".
// Unknown locales get English.
func LabelsFor(locale string) Labels {
	if strings.HasPrefix(strings.ToLower(locale), "fr") {
		return French
	}
	return English
}

var (
	generatorMarkerRe = regexp.MustCompile(`<!-- Release notes generated using configuration in \.github/release\.yml at \w+ -->`)
	htmlCommentRe     = regexp.MustCompile(`(?s)<!--.*?-->\s*`)
	githubURLRe       = regexp.MustCompile(`https://github\.com/([^/\s]+)/([^/\s]+)/(pull|compare)/([^\s)]+)`)
	mentionRe         = regexp.MustCompile(`@([A-Za-z0-9_-]+)`)
	leadingDigitsRe   = regexp.MustCompile(`^[0-9]+`)
)

// CleanBody removes the release-notes generator marker and every HTML
// comment together with the whitespace that follows it, then trims the
// result.
func CleanBody(body string) string {
	body = generatorMarkerRe.ReplaceAllString(body, "")
	// Removing one comment can join the halves of another.
	for {
		next := htmlCommentRe.ReplaceAllString(body, "")
		if next == body {
			break
		}
		body = next
	}
	return strings.TrimSpace(body)
}

// LinkifyURLs rewrites bare GitHub pull-request URLs to [PR #N](url) and
// compare URLs to [labels.FullChangelog](url). URLs that are already part
// of a link are left alone.
func LinkifyURLs(text string, labels Labels) string {
	var sb strings.Builder
	last := 0
	for _, m := range githubURLRe.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]
		if insideLink(text, start) {
			continue
		}
		// Sentence punctuation after a URL is not part of it.
		url := strings.TrimRight(text[start:end], ".,;:!?'\"")
		end = start + len(url)

		var label string
		switch text[m[6]:m[7]] {
		case "pull":
			label = "PR #" + prNumber(text[m[8]:end])
		case "compare":
			label = labels.FullChangelog
		}
		sb.WriteString(text[last:start])
		sb.WriteString("[" + label + "](" + url + ")")
		last = end
	}
	sb.WriteString(text[last:])
	return sb.String()
}

// LinkifyMentions rewrites @name to a link to the GitHub profile. Mentions
// already used as link text, and @ signs inside words such as e-mail
// addresses, are skipped.
func LinkifyMentions(text string) string {
	var sb strings.Builder
	last := 0
	for _, m := range mentionRe.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]
		if start > 0 && isWordByte(text[start-1]) {
			continue
		}
		if strings.HasPrefix(text[end:], "](") {
			continue
		}
		name := text[m[2]:m[3]]
		sb.WriteString(text[last:start])
		sb.WriteString("[@" + name + "](https://github.com/" + name + ")")
		last = end
	}
	sb.WriteString(text[last:])
	return sb.String()
}

// Transform prepares a release body for display. An empty body becomes
// labels.NoDescription.
func Transform(body string, labels Labels) string {
	cleaned := CleanBody(body)
	if cleaned == "" {
		return labels.NoDescription
	}
	return LinkifyMentions(LinkifyURLs(cleaned, labels))
}

// prNumber returns the leading digits of a pull-request path segment, or
// "?" when there are none.
func prNumber(id string) string {
	if n := leadingDigitsRe.FindString(id); n != "" {
		return n
	}
	return "?"
}

// insideLink reports whether position i starts a link destination, link
// text or autolink.
func insideLink(text string, i int) bool {
	if strings.HasSuffix(text[:i], "](") {
		return true
	}
	return i > 0 && (text[i-1] == '[' || text[i-1] == '<')
}

func isWordByte(b byte) bool {
	return b == '_' || b == '-' || b == '.' || b == '/' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
