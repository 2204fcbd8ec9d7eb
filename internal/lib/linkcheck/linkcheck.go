package linkcheck

import (
	"regexp"
	"strings"
)

// linkPattern matches http(s) URLs with a dotted host and an optional
// path or query. Fragments are rejected along with everything else
// outside that grammar. Bare hosts without a tld are rejected on purpose:
// a submission like "http://localhost" is almost certainly a mistake here.
var linkPattern = regexp.MustCompile(`^https?://(www\.)?[A-Za-z0-9][A-Za-z0-9-]*(\.[A-Za-z0-9][A-Za-z0-9-]*)+(:[0-9]+)?(/[^\s?#]*)?(\?[^\s#]*)?$`)

// IsValid reports whether the candidate is a well-formed video link.
func IsValid(candidate string) bool {
	if candidate == "" {
		return false
	}
	return linkPattern.MatchString(candidate)
}

// SplitBatch splits a whitespace-delimited submission into tokens and
// partitions them into valid links and invalid tokens. The caller treats
// any invalid token as a rejection of the whole batch.
func SplitBatch(text string) (links []string, invalid []string) {
	for _, token := range strings.Fields(text) {
		if IsValid(token) {
			links = append(links, token)
		} else {
			invalid = append(invalid, token)
		}
	}
	return links, invalid
}
