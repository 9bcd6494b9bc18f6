// Package prosetag tags text with Penn Treebank part-of-speech labels using
// the prose NLP toolkit.
package prosetag

import (
	"fmt"

	prose "github.com/jdkato/prose/v2"

	"github.com/WinLike-dev/Worker-Server/internal/core/ports"
)

type Tagger struct{}

func New() *Tagger {
	return &Tagger{}
}

func (Tagger) Tag(text string) ([]ports.TaggedToken, error) {
	doc, err := prose.NewDocument(text,
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return nil, fmt.Errorf("pos tagging: %w", err)
	}

	tokens := doc.Tokens()
	out := make([]ports.TaggedToken, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, ports.TaggedToken{Text: tok.Text, Tag: tok.Tag})
	}
	return out, nil
}
