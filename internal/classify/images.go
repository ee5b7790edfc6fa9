package classify

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// ImageRef is one <img> found in a page, with the caption context needed to
// classify it and name the person.
type ImageRef struct {
	Src     string // absolute URL when baseURL resolves
	Alt     string
	Caption string
}

// ExtractImages walks the page and returns every img tag with its alt text
// and the nearest caption (figcaption, or a heading/paragraph sibling).
// Relative sources are resolved against baseURL.
func ExtractImages(htmlContent, baseURL string) []ImageRef {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil
	}
	base, _ := url.Parse(baseURL)

	var refs []ImageRef
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "img" {
			src := attr(n, "src")
			if src != "" {
				refs = append(refs, ImageRef{
					Src:     resolve(base, src),
					Alt:     attr(n, "alt"),
					Caption: nearbyCaption(n),
				})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return refs
}

// PersonInfo extracts a person name and title from alt text or a caption.
// Captions in "Name - Title" form are split; otherwise the whole string is
// the name.
func PersonInfo(alt, caption string) (name, title string) {
	text := strings.TrimSpace(caption)
	if text == "" {
		text = strings.TrimSpace(alt)
	}
	if text == "" {
		return "", ""
	}
	if before, after, found := strings.Cut(text, " - "); found {
		return strings.TrimSpace(before), strings.TrimSpace(after)
	}
	return text, ""
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func resolve(base *url.URL, src string) string {
	if base == nil {
		return src
	}
	ref, err := url.Parse(src)
	if err != nil {
		return src
	}
	return base.ResolveReference(ref).String()
}

// nearbyCaption looks for a figcaption under the image's parent, then the
// first heading or paragraph sibling.
func nearbyCaption(img *html.Node) string {
	parent := img.Parent
	if parent == nil {
		return ""
	}

	if fc := findChild(parent, "figcaption"); fc != nil {
		return textOf(fc)
	}
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c == img {
			continue
		}
		switch c.Data {
		case "h2", "h3", "h4", "p":
			if text := textOf(c); text != "" {
				return text
			}
		}
	}
	return ""
}

func findChild(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
	}
	return nil
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(strings.Join(strings.Fields(sb.String()), " "))
}
