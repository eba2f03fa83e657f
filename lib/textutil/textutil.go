package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// CompactName strips leading/trailing whitespace and removes any whitespace
// remaining inside the string, so "Open AI / gpt" becomes "OpenAI/gpt".
func CompactName(name string) string {
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// NormalizeName is CompactName plus lowercasing, for case-insensitive
// comparison of repository names.
func NormalizeName(name string) string {
	return strings.ToLower(CompactName(name))
}

func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, m := range matchers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}
