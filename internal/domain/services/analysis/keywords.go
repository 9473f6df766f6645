package analysis

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxKeywords caps the keyword list. Extra keywords are dropped, not ranked.
const MaxKeywords = 20

var stopWords = map[string]struct{}{
	"the": {}, "is": {}, "at": {}, "which": {}, "on": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "with": {}, "to": {}, "for": {}, "of": {}, "from": {}, "by": {}, "as": {}, "be": {}, "been": {},
	"have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {}, "will": {}, "would": {}, "could": {},
	"should": {}, "may": {}, "might": {}, "can": {}, "i": {}, "you": {}, "he": {}, "she": {}, "it": {}, "we": {},
	"they": {}, "me": {}, "him": {}, "her": {}, "us": {}, "them": {}, "my": {}, "your": {}, "his": {}, "its": {},
}

var (
	wordPattern   = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	emailPattern  = regexp.MustCompile(`[a-z0-9._%+-]+@[a-z0-9.-]+`)
	phonePattern  = regexp.MustCompile(`\+?\d{1,3}-?\d{4,5}-?\d{4,5}`)
	amountPattern = regexp.MustCompile(`(?:rs|₹)?\s*\d+(?:,\d{3})*(?:\.\d{2})?`)
	urlPattern    = regexp.MustCompile(`https?://(?:[a-zA-Z]|[0-9]|[$-_@.&+]|[!*\\(\\),]|(?:%[0-9a-fA-F][0-9a-fA-F]))+`)

	entityPatterns = []*regexp.Regexp{emailPattern, phonePattern, amountPattern, urlPattern}
)

// ExtractKeywords returns up to MaxKeywords distinct keywords from text: word
// tokens longer than three characters that are not stop words, followed by any
// email, phone, amount and URL matches. Order is first-seen.
func ExtractKeywords(text string) []string {
	keywords := make([]string, 0, MaxKeywords)
	if text == "" {
		return keywords
	}

	lower := strings.ToLower(text)
	seen := make(map[string]struct{})
	add := func(kw string) bool {
		if kw == "" {
			return true
		}
		if _, ok := seen[kw]; ok {
			return true
		}
		seen[kw] = struct{}{}
		keywords = append(keywords, kw)
		return len(keywords) < MaxKeywords
	}

	for _, word := range wordPattern.FindAllString(lower, -1) {
		if _, stop := stopWords[word]; stop || utf8.RuneCountInString(word) <= 3 {
			continue
		}
		if !add(word) {
			return keywords
		}
	}

	for _, re := range entityPatterns {
		for _, match := range re.FindAllString(lower, -1) {
			if !add(strings.TrimSpace(match)) {
				return keywords
			}
		}
	}

	return keywords
}
