package store

import (
	"net/url"
	"strings"
)

// NormalizeURL reduces a URL to its identity for explored-source matching:
// lowercase scheme and host, default ports stripped, query string and
// fragment dropped, trailing slash trimmed on non-root paths. Query strings
// on marketing sites are overwhelmingly tracking parameters; treating them
// as distinct pages would re-explore the same content.
//
// Non-URL sources (e.g. "LinkedIn: Acme Co") are lowercased and trimmed.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.ToLower(raw)
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Host)
	switch scheme {
	case "http":
		host = strings.TrimSuffix(host, ":80")
	case "https":
		host = strings.TrimSuffix(host, ":443")
	}

	path := u.EscapedPath()
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}
	if path == "/" {
		path = ""
	}

	return scheme + "://" + host + path
}
