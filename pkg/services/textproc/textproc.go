package textproc

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
)

// MinKeywordLength is the shortest token counted as a keyword.
const MinKeywordLength = 4

var punctuation = regexp.MustCompile(`[^\p{L}\p{N}_\s]+`)

// Stopwords are excluded from keyword extraction. Besides common English words the set holds
// domain words that appear in nearly every travel review.
var Stopwords = map[string]struct{}{
	"the": {}, "and": {}, "was": {}, "were": {}, "this": {}, "that": {}, "with": {}, "for": {},
	"they": {}, "have": {}, "has": {}, "had": {}, "but": {}, "not": {}, "are": {}, "you": {},
	"your": {}, "very": {}, "just": {}, "from": {}, "service": {}, "experience": {}, "flight": {},
	"hotel": {}, "room": {}, "staff": {}, "food": {}, "time": {}, "make": {}, "trip": {},
}

// CleanText lowercases the text and strips everything that is neither a word character
// nor whitespace.
func CleanText(text string) string {
	return punctuation.ReplaceAllString(strings.ToLower(text), "")
}

// Tokenize splits text into lowercase word tokens.
func Tokenize(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return strings.Fields(strings.ToLower(text))
	}

	tokens := make([]string, 0, len(doc.Tokens()))
	for _, tok := range doc.Tokens() {
		word := strings.ToLower(strings.TrimSpace(tok.Text))
		if word != "" {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

// Keywords returns the tokens of cleaned text that are long enough, not stopwords and not numbers.
func Keywords(cleanText string) []string {
	var keywords []string
	for _, tok := range Tokenize(cleanText) {
		if !isWord(tok) || len([]rune(tok)) < MinKeywordLength || isDigits(tok) {
			continue
		}
		if _, stop := Stopwords[tok]; stop {
			continue
		}
		keywords = append(keywords, tok)
	}
	return keywords
}

func isWord(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return s != ""
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
