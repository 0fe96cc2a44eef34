// Package urlutil decides whether a copied string is a link.
//
// The rules are deliberately stricter than substring detection: the entire
// candidate (after sanitizing) must be a single http/https URL or a bare
// domain with a recognizable TLD. Plain text that merely contains a URL
// stays plain text.
package urlutil

import (
	"net/url"
	"regexp"
	"strings"
)

// bareDomain matches strings like "example.com", "www.foo.co.uk/path?q=1".
// A dot-separated label sequence ending in an alphabetic TLD of length >= 2,
// optionally followed by a path/query/fragment. Anchored on both ends so a
// URL inside a sentence never matches.
var bareDomain = regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?[A-Za-z0-9.-]+\.[A-Za-z]{2,}(?:/[^\s]*)?$`)

// Sanitize strips the noise people copy along with links: surrounding
// whitespace, matching quote or angle-bracket wrappers, and trailing
// punctuation such as ")." or ";".
func Sanitize(s string) string {
	s = strings.TrimSpace(s)
	for _, pair := range [][2]string{{`"`, `"`}, {`'`, `'`}, {"<", ">"}} {
		if len(s) >= 2 && strings.HasPrefix(s, pair[0]) && strings.HasSuffix(s, pair[1]) {
			s = s[1 : len(s)-1]
		}
	}
	s = strings.TrimRight(s, ").,;:]}")
	return strings.TrimSpace(s)
}

// Normalize reports whether s is a link and returns its absolute form.
// Bare domains are given an https:// scheme. Non-http(s) schemes, hostnames
// without a dotted TLD (localhost:3000) and partial matches are rejected.
func Normalize(s string) (string, bool) {
	s = Sanitize(s)
	if s == "" || strings.ContainsAny(s, " \t\r\n") {
		return "", false
	}

	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		u, err := url.Parse(s)
		if err != nil || u.Host == "" {
			return "", false
		}
		// Reject bare hostnames without a TLD, ports notwithstanding.
		if !strings.Contains(u.Hostname(), ".") {
			return "", false
		}
		return u.String(), true
	}

	// Any other explicit scheme (ftp://, mailto:, file://...) is not a link
	// for our purposes.
	if u, err := url.Parse(s); err == nil && u.Scheme != "" && u.Host != "" {
		return "", false
	}

	if bareDomain.MatchString(s) {
		return "https://" + s, true
	}
	return "", false
}

// IsURL reports whether s classifies as a link.
func IsURL(s string) bool {
	_, ok := Normalize(s)
	return ok
}
