package usecase

import (
	"slices"
	"strings"
)

// TagParser normalizes a raw delimited tag string such as "['Tech', 'Sports']".
type TagParser struct {
	defaults []string
}

func NewTagParser(defaults []string) *TagParser {
	return &TagParser{defaults: defaults}
}

var tagQuoteStripper = strings.NewReplacer(`'`, "", `"`, "")

// Parse splits a bracketed, quoted, comma-delimited tag string into
// lower-cased tags, keeping order and duplicates. Blank input yields the
// configured default list.
func (p *TagParser) Parse(raw string) []string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return p.defaultTags()
	}

	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	s = tagQuoteStripper.Replace(s)
	if strings.TrimSpace(s) == "" {
		return p.defaultTags()
	}

	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		tag := strings.ToLower(strings.TrimSpace(part))
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func (p *TagParser) defaultTags() []string {
	if len(p.defaults) == 0 {
		return []string{}
	}
	return slices.Clone(p.defaults)
}
