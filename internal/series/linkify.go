package series

import (
	"html"
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`https?://[^\s\p{Z};]+`)

// Linkify escapes text for HTML and wraps every http(s) URL in an anchor that
// opens in a new tab without sending a referrer. URLs end at whitespace,
// Unicode separators such as a no-break space, or a semicolon.
func Linkify(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	last := 0
	for _, loc := range urlPattern.FindAllStringIndex(text, -1) {
		b.WriteString(html.EscapeString(text[last:loc[0]]))
		u := html.EscapeString(text[loc[0]:loc[1]])
		b.WriteString(`<a href="`)
		b.WriteString(u)
		b.WriteString(`" target="_blank" rel="noopener noreferrer">`)
		b.WriteString(u)
		b.WriteString(`</a>`)
		last = loc[1]
	}
	b.WriteString(html.EscapeString(text[last:]))
	return b.String()
}
