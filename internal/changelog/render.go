package changelog

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/russross/blackfriday/v2"
)

// htmlRenderer is the blackfriday HTML renderer with link and block
// overrides for release notes. Raw HTML in the source is dropped and
// links or images with an untrusted scheme are rendered as plain text.
type htmlRenderer struct {
	*blackfriday.HTMLRenderer
}

func newHTMLRenderer() *htmlRenderer {
	return &htmlRenderer{
		HTMLRenderer: blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
			Flags: blackfriday.CommonHTMLFlags | blackfriday.SkipHTML | blackfriday.Safelink,
		}),
	}
}

// Render converts release-note markdown to HTML.
func Render(markdown string) []byte {
	return blackfriday.Run([]byte(markdown),
		blackfriday.WithRenderer(newHTMLRenderer()),
		blackfriday.WithExtensions(blackfriday.CommonExtensions),
	)
}

// RenderRelease runs Transform on body and renders the result.
func RenderRelease(body string, labels Labels) []byte {
	return Render(Transform(body, labels))
}

func (r *htmlRenderer) RenderNode(w io.Writer, node *blackfriday.Node, entering bool) blackfriday.WalkStatus {
	switch node.Type {
	case blackfriday.Link:
		if entering {
			r.renderLink(w, node)
		}
		return blackfriday.SkipChildren
	case blackfriday.Image:
		if !isSafeLink(string(node.LinkData.Destination)) {
			if entering {
				io.WriteString(w, html.EscapeString(linkText(node)))
			}
			return blackfriday.SkipChildren
		}
	case blackfriday.Heading:
		if entering {
			fmt.Fprintf(w, `<h%d class="changelog-heading"`, node.Level)
			if node.HeadingID != "" {
				fmt.Fprintf(w, ` id="%s"`, html.EscapeString(r.HeadingIDPrefix+node.HeadingID+r.HeadingIDSuffix))
			}
			io.WriteString(w, ">")
		} else {
			fmt.Fprintf(w, "</h%d>\n", node.Level)
		}
		return blackfriday.GoToNext
	case blackfriday.List:
		tag := "ul"
		if node.ListFlags&blackfriday.ListTypeOrdered != 0 {
			tag = "ol"
		}
		if entering {
			fmt.Fprintf(w, "<%s class=\"changelog-list\">\n", tag)
		} else {
			fmt.Fprintf(w, "</%s>\n", tag)
		}
		return blackfriday.GoToNext
	case blackfriday.Code:
		io.WriteString(w, `<code class="changelog-code">`)
		io.WriteString(w, html.EscapeString(string(node.Literal)))
		io.WriteString(w, "</code>")
		return blackfriday.GoToNext
	case blackfriday.BlockQuote:
		if entering {
			io.WriteString(w, "<blockquote class=\"changelog-quote\">\n")
		} else {
			io.WriteString(w, "</blockquote>\n")
		}
		return blackfriday.GoToNext
	}
	return r.HTMLRenderer.RenderNode(w, node, entering)
}

func (r *htmlRenderer) renderLink(w io.Writer, node *blackfriday.Node) {
	dest := string(node.LinkData.Destination)
	if !isSafeLink(dest) {
		io.WriteString(w, html.EscapeString(linkText(node)))
		return
	}
	link := Classify(dest)
	href := html.EscapeString(link.Href)

	switch link.Kind {
	case LinkProfile:
		user := html.EscapeString(link.Username)
		fmt.Fprintf(w, `<span class="mention">`+
			`<a href="%s" target="_blank" rel="noopener noreferrer">@%s</a>`+
			`<span class="mention-card">`+
			`<img class="avatar" src="https://github.com/%s.png" alt="%s">`+
			`<span class="mention-name">@%s</span>`+
			`</span></span>`, href, user, user, user, user)
	case LinkPullRequest:
		fmt.Fprintf(w, `<a class="badge badge-pr" href="%s" target="_blank" rel="noopener noreferrer">PR #%s</a>`,
			href, html.EscapeString(link.Number))
	default:
		fmt.Fprintf(w, `<a class="link-button link-%s" href="%s" target="_blank" rel="noopener noreferrer">%s</a>`,
			link.Kind, href, html.EscapeString(linkText(node)))
	}
}

// safeLinkPrefixes are the destinations a rendered link or image may use.
var safeLinkPrefixes = []string{"http://", "https://", "ftp://", "mailto:", "/", "./", "../", "#"}

// isSafeLink reports whether dest uses a trusted scheme or is a relative
// reference, matching blackfriday's Safelink rule.
func isSafeLink(dest string) bool {
	lower := strings.ToLower(strings.TrimSpace(dest))
	for _, prefix := range safeLinkPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// linkText flattens the text content of a link's children.
func linkText(node *blackfriday.Node) string {
	var buf bytes.Buffer
	node.Walk(func(n *blackfriday.Node, entering bool) blackfriday.WalkStatus {
		if entering && (n.Type == blackfriday.Text || n.Type == blackfriday.Code) {
			buf.Write(n.Literal)
		}
		return blackfriday.GoToNext
	})
	if buf.Len() == 0 {
		return string(node.LinkData.Destination)
	}
	return buf.String()
}
