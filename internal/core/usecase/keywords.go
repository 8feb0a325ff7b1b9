package usecase

import "strings"

const maxQueryKeywords = 3

var keywordStopWords = map[string]struct{}{
	"the": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
}

// extractKeywords derives up to three significant keywords from a query:
// lower-case, strip punctuation, split on whitespace, discard tokens of
// length <= 2 and stop words, keep the first survivors in original order.
// It is a pure function of the query string.
func extractKeywords(query string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return ' '
	}, strings.ToLower(query))

	keywords := make([]string, 0, maxQueryKeywords)
	for _, token := range strings.Fields(cleaned) {
		if len(token) <= 2 {
			continue
		}
		if _, stop := keywordStopWords[token]; stop {
			continue
		}
		keywords = append(keywords, token)
		if len(keywords) == maxQueryKeywords {
			break
		}
	}
	return keywords
}
