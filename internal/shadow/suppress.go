package shadow

import (
	"net/url"
	"strings"

	"github.com/okkema/linkshade/pkg/chat"
)

// ShouldSuppress decides whether the source message's native link
// previews should be hidden: true iff at least one preview exists and
// every preview's URL, after normalization, matches one of the extracted
// file URLs. A single unmatched preview blocks suppression so unrelated
// previews stay visible.
func ShouldSuppress(previews []chat.Embed, extractedURLs []string) bool {
	if len(previews) == 0 {
		return false
	}

	known := make(map[string]struct{}, len(extractedURLs))
	for _, u := range extractedURLs {
		known[normalizeURL(u)] = struct{}{}
	}

	for _, p := range previews {
		if _, ok := known[normalizeURL(p.URL)]; !ok {
			return false
		}
	}
	return true
}

// normalizeURL canonicalizes a URL for comparison: https scheme,
// lowercased host, explicit default port stripped, query and fragment
// dropped. Unparseable input is returned as-is so it simply never
// matches.
func normalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}

	u.Scheme = "https"
	host := strings.ToLower(u.Host)
	host = strings.TrimSuffix(host, ":443")
	host = strings.TrimSuffix(host, ":80")
	u.Host = host
	u.RawQuery = ""
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}
