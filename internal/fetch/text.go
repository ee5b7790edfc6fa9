package fetch

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// maxTextBytes caps the readable text kept per page.
const maxTextBytes = 10 * 1024

// nonContentTags are skipped entirely during text extraction.
var nonContentTags = map[string]bool{
	"script": true, "style": true, "nav": true,
	"header": true, "footer": true, "aside": true,
	"noscript": true, "iframe": true,
}

// ExtractText reduces HTML to readable text for prompt inclusion: chrome and
// script tags dropped, block elements separated, whitespace collapsed,
// output capped.
func ExtractText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && nonContentTags[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				sb.WriteString(text)
				sb.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "div", "h1", "h2", "h3", "h4", "h5", "h6", "li", "br", "tr":
				sb.WriteString("\n")
			}
		}
	}
	walk(doc)

	result := strings.Join(strings.Fields(sb.String()), " ")
	if len(result) > maxTextBytes {
		// Back off to a rune boundary so the cap never splits a multi-byte
		// sequence.
		cut := maxTextBytes
		for cut > 0 && !utf8.RuneStart(result[cut]) {
			cut--
		}
		result = result[:cut] + "..."
	}
	return strings.TrimSpace(result)
}
