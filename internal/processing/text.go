package processing

import (
	"crypto/sha1"
	"encoding/hex"
	"html"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var urlRegex = regexp.MustCompile(`https?://[^\s]+`)

var (
	whitespace  = regexp.MustCompile(`\s+`)
	punctuation = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	htmlTag     = regexp.MustCompile(`<[^>]*>`)
)

var stopwords = map[string]struct{}{
	"a": {}, "about": {}, "after": {}, "also": {}, "amid": {}, "an": {},
	"and": {}, "are": {}, "as": {}, "at": {}, "been": {}, "before": {},
	"being": {}, "between": {}, "both": {}, "but": {}, "by": {},
	"could": {}, "down": {}, "during": {}, "for": {}, "from": {},
	"has": {}, "have": {}, "her": {}, "his": {}, "how": {}, "in": {},
	"into": {}, "its": {}, "more": {}, "most": {}, "news": {}, "not": {},
	"of": {}, "off": {}, "on": {}, "or": {}, "our": {}, "over": {},
	"said": {}, "says": {}, "she": {}, "some": {}, "than": {},
	"that": {}, "the": {}, "their": {}, "them": {}, "then": {},
	"there": {}, "these": {}, "they": {}, "this": {}, "those": {},
	"to": {}, "under": {}, "until": {}, "was": {}, "were": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "while": {},
	"who": {}, "why": {}, "will": {}, "with": {}, "would": {}, "your": {},
}

// StripTags removes markup and entities but keeps sentence punctuation.
func StripTags(input string) string {
	if input == "" {
		return ""
	}
	out := htmlTag.ReplaceAllString(input, " ")
	out = html.UnescapeString(out)
	out = whitespace.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// RemoveURLs removes all URLs from the input text.
func RemoveURLs(input string) string {
	return urlRegex.ReplaceAllString(input, " ")
}

// CleanText strips markup, entities, URLs, and punctuation, and squeezes
// whitespace.
func CleanText(input string) string {
	if input == "" {
		return ""
	}
	decoded := html.UnescapeString(htmlTag.ReplaceAllString(input, " "))
	decoded = RemoveURLs(decoded)
	decoded = punctuation.ReplaceAllString(decoded, " ")
	decoded = whitespace.ReplaceAllString(decoded, " ")
	return strings.TrimSpace(decoded)
}

// ExtractKeywords returns the most frequent words that are not stop-words.
func ExtractKeywords(text string, limit, minLen int) []string {
	clean := strings.ToLower(CleanText(text))
	if clean == "" {
		return nil
	}

	freq := make(map[string]int)
	for _, token := range strings.Fields(clean) {
		token = strings.TrimFunc(token, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if len([]rune(token)) < minLen {
			continue
		}
		if _, skip := stopwords[token]; skip {
			continue
		}
		freq[token]++
	}

	if len(freq) == 0 {
		return nil
	}

	type kv struct {
		word  string
		count int
	}

	pairs := make([]kv, 0, len(freq))
	for word, count := range freq {
		pairs = append(pairs, kv{word: word, count: count})
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count == pairs[j].count {
			return pairs[i].word < pairs[j].word
		}
		return pairs[i].count > pairs[j].count
	})

	max := limit
	if max <= 0 || max > len(pairs) {
		max = len(pairs)
	}

	keywords := make([]string, 0, max)
	for i := 0; i < max; i++ {
		keywords = append(keywords, pairs[i].word)
	}

	return keywords
}

// BuildArticleID hashes the most stable fields to form deterministic IDs.
func BuildArticleID(title, link string) string {
	s := sha1.Sum([]byte(title + "|" + link))
	return hex.EncodeToString(s[:])
}

// Domain extracts the bare host from a URL with any www. prefix removed.
func Domain(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// GenerateTitleFromText creates a title from the first sentence or first N
// words of text. Returns empty string if text is empty.
func GenerateTitleFromText(text string, maxWords int) string {
	if text == "" {
		return ""
	}

	textWithoutURLs := RemoveURLs(text)

	sentenceEnd := strings.IndexAny(textWithoutURLs, ".!?")
	var firstSentence string
	if sentenceEnd > 0 {
		firstSentence = strings.TrimSpace(textWithoutURLs[:sentenceEnd])
	} else {
		firstSentence = textWithoutURLs
	}

	words := strings.Fields(firstSentence)
	if len(words) == 0 {
		return ""
	}

	if maxWords > 0 && len(words) > maxWords {
		words = words[:maxWords]
		return strings.Join(words, " ") + "..."
	}

	return strings.Join(words, " ")
}
