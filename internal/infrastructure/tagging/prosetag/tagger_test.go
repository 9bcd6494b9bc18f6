package prosetag

import (
	"slices"
	"testing"

	"github.com/WinLike-dev/Worker-Server/internal/core/usecase"
)

func TestTagReturnsPennTreebankTags(t *testing.T) {
	tokens, err := New().Tag("Apple opened a store in London")
	if err != nil {
		t.Fatalf("Tag() error = %v", err)
	}
	if len(tokens) == 0 {
		t.Fatalf("Tag() returned no tokens")
	}

	byText := map[string]string{}
	for _, tok := range tokens {
		byText[tok.Text] = tok.Tag
	}
	if byText["Apple"] != "NNP" {
		t.Fatalf("Apple tagged %q, want NNP", byText["Apple"])
	}
	if byText["London"] != "NNP" {
		t.Fatalf("London tagged %q, want NNP", byText["London"])
	}
}

func TestExtractionOverRealTagger(t *testing.T) {
	extractor := usecase.NewNounExtractor(New(), []string{"new"})

	got := extractor.Extract("Apple Unveils New iPhone in London")
	for _, want := range []string{"apple", "iphone", "london"} {
		if !slices.Contains(got, want) {
			t.Fatalf("Extract() = %v, missing %q", got, want)
		}
	}
	if slices.Contains(got, "new") {
		t.Fatalf("Extract() = %v, excluded word leaked through", got)
	}
}
