package usecase

import (
	"strings"
	"unicode"

	"github.com/WinLike-dev/Worker-Server/internal/core/ports"
)

// NounExtractor pulls proper nouns out of free text via part-of-speech
// tagging and a fixed exclusion list.
type NounExtractor struct {
	tagger   ports.PartOfSpeechTagger
	excluded map[string]struct{}
}

func NewNounExtractor(tagger ports.PartOfSpeechTagger, excludeWords []string) *NounExtractor {
	excluded := make(map[string]struct{}, len(excludeWords))
	for _, word := range excludeWords {
		excluded[strings.ToLower(word)] = struct{}{}
	}
	return &NounExtractor{tagger: tagger, excluded: excluded}
}

// Extract returns the lower-cased proper nouns of text in first-occurrence
// order, duplicates included: repeated mentions amplify a term's presence
// and downstream counts rely on that. Blank input and tagger failures both
// yield an empty result; extraction never fails the surrounding record.
func (e *NounExtractor) Extract(text string) []string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	if text == "" {
		return []string{}
	}

	tokens, err := e.tagger.Tag(text)
	if err != nil {
		return []string{}
	}

	nouns := make([]string, 0, len(tokens)/8+1)
	for _, tok := range tokens {
		if !isProperNoun(tok) {
			continue
		}
		word := strings.ToLower(tok.Text)
		if len([]rune(word)) <= 1 || allDigits(word) {
			continue
		}
		if _, banned := e.excluded[word]; banned {
			continue
		}
		nouns = append(nouns, word)
	}
	return nouns
}

// isProperNoun accepts NNP/NNPS tokens plus common nouns written in brand
// casing ("iPhone", "eBay"): taggers file those under NN because of the
// lowercase initial, but they name products, not things.
func isProperNoun(tok ports.TaggedToken) bool {
	switch tok.Tag {
	case "NNP", "NNPS":
		return true
	case "NN", "NNS":
		return hasBrandCasing(tok.Text)
	default:
		return false
	}
}

// hasBrandCasing reports a lowercase initial letter followed by an uppercase
// rune somewhere inside the word.
func hasBrandCasing(word string) bool {
	runes := []rune(word)
	if len(runes) < 2 || !unicode.IsLower(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
