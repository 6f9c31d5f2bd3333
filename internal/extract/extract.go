// Package extract parses message text into ordered Google Drive file
// references. It matches sharing URLs whose path contains a d, e, or
// folders segment followed by a file identifier.
package extract

import "regexp"

// FileRef is one extracted sharing link: the URL as it appeared in the
// text (minus trailing punctuation) and the file identifier inside it.
type FileRef struct {
	URL    string
	FileID string
}

// candidatePattern finds URL-shaped runs of text on a Drive host.
var candidatePattern = regexp.MustCompile(`https?://(?:drive|docs)\.google\.com/[^\s<>"']+`)

// idPattern extracts the file identifier from a candidate URL path.
// Drive file ids are at least 25 URL-safe characters.
var idPattern = regexp.MustCompile(`/(?:d|e|folders)/([A-Za-z0-9_-]{25,})`)

// trailingJunk matches punctuation, quotes, and closing brackets that
// commonly trail a pasted URL but are not part of it.
var trailingJunk = regexp.MustCompile("[.,;:!?)\\]}'\"`>]+$")

// FileRefs returns all Drive file references in text, in appearance order.
// Duplicates are preserved. Candidates without a well-formed identifier
// segment are skipped.
func FileRefs(text string) []FileRef {
	var refs []FileRef
	for _, raw := range candidatePattern.FindAllString(text, -1) {
		url := trailingJunk.ReplaceAllString(raw, "")
		m := idPattern.FindStringSubmatch(url)
		if m == nil {
			continue
		}
		refs = append(refs, FileRef{URL: url, FileID: m[1]})
	}
	return refs
}

// FileIDs returns just the identifiers of FileRefs(text), in order.
func FileIDs(refs []FileRef) []string {
	ids := make([]string, len(refs))
	for i, r := range refs {
		ids[i] = r.FileID
	}
	return ids
}

// URLs returns just the URLs of refs, in order.
func URLs(refs []FileRef) []string {
	urls := make([]string, len(refs))
	for i, r := range refs {
		urls[i] = r.URL
	}
	return urls
}
