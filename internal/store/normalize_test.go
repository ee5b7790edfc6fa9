package store

import "testing"

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://acme.test/about", "https://acme.test/about"},
		{"https://acme.test/about/", "https://acme.test/about"},
		{"HTTPS://Acme.Test/about", "https://acme.test/about"},
		{"https://acme.test:443/about", "https://acme.test/about"},
		{"http://acme.test:80/", "http://acme.test"},
		{"https://acme.test/about?utm_source=newsletter", "https://acme.test/about"},
		{"https://acme.test/about#team", "https://acme.test/about"},
		{"https://acme.test", "https://acme.test"},
		{"https://acme.test/", "https://acme.test"},
		{"  https://acme.test/about  ", "https://acme.test/about"},
		{"LinkedIn: Acme Co", "linkedin: acme co"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := NormalizeURL(tc.in); got != tc.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeURL_DistinctStayDistinct(t *testing.T) {
	a := NormalizeURL("https://acme.test/about")
	b := NormalizeURL("https://acme.test/team")
	if a == b {
		t.Errorf("distinct paths normalized to the same key: %q", a)
	}
}
