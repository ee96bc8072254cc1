package dto

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	messagePolicy = newMessagePolicy()
	linkPattern   = regexp.MustCompile(`https?://[^\s<>"']+`)
)

// newMessagePolicy admits only line breaks and http(s) links that open in a new tab.
func newMessagePolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("br")
	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https")
	p.RequireParseableURLs(true)
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// MessageHTML renders a plain-text chat body as markup that is safe to embed in a page.
func MessageHTML(body string) string {
	escaped := html.EscapeString(body)
	linked := linkPattern.ReplaceAllString(escaped, `<a href="$0">$0</a>`)
	return messagePolicy.Sanitize(strings.ReplaceAll(linked, "\n", "<br>"))
}
