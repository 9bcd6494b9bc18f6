package usecase

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/WinLike-dev/Worker-Server/internal/core/domain"
)

// DocumentBuilder maps one raw record into a persistence-ready document
// using the deployment-time column mapping.
type DocumentBuilder struct {
	columns domain.ColumnMapping
}

func NewDocumentBuilder(columns domain.ColumnMapping) *DocumentBuilder {
	return &DocumentBuilder{columns: columns}
}

// ValidateHeaders fails fast with a named-column error when a required
// source column is absent from a file's header row. The record-id column is
// optional: the row index substitutes for it.
func (b *DocumentBuilder) ValidateHeaders(headers []string) error {
	present := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		present[strings.TrimSpace(h)] = struct{}{}
	}

	var missing []string
	for _, required := range []string{b.columns.Heading, b.columns.Body, b.columns.Date, b.columns.Tags} {
		if _, ok := present[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return domain.WrapError(domain.ErrLoad, "validate columns",
			fmt.Errorf("missing required columns: %s", strings.Join(missing, ", ")))
	}
	return nil
}

// SourceText is the text blob fed to noun extraction: heading and body
// joined with a space.
func (b *DocumentBuilder) SourceText(record domain.RawRecord) string {
	return record.Field(b.columns.Heading) + " " + record.Field(b.columns.Body)
}

// RawTags returns the unparsed tag cell of a record.
func (b *DocumentBuilder) RawTags(record domain.RawRecord) string {
	return record.Field(b.columns.Tags)
}

// Build applies field defaults and date coercion. A record with neither a
// usable heading nor usable body text is rejected with a record-level error
// that skips only that record.
func (b *DocumentBuilder) Build(record domain.RawRecord, nouns, tags []string, prov domain.Provenance) (domain.Document, error) {
	heading := strings.TrimSpace(record.Field(b.columns.Heading))
	body := strings.TrimSpace(record.Field(b.columns.Body))
	if heading == "" && body == "" {
		return domain.Document{}, domain.WrapError(domain.ErrRecord, "build document",
			fmt.Errorf("row %d has no heading and no body text", record.Index))
	}

	if nouns == nil {
		nouns = []string{}
	}
	if tags == nil {
		tags = []string{}
	}
	return domain.Document{
		RecordID:   b.recordID(record),
		Heading:    heading,
		Body:       body,
		Date:       parseDate(record.Field(b.columns.Date)),
		Tags:       tags,
		Nouns:      nouns,
		NounCount:  len(nouns),
		Provenance: prov,
	}, nil
}

func (b *DocumentBuilder) recordID(record domain.RawRecord) int {
	if b.columns.RecordID != "" {
		if raw := strings.TrimSpace(record.Field(b.columns.RecordID)); raw != "" {
			if id, err := strconv.Atoi(raw); err == nil {
				return id
			}
		}
	}
	return record.Index
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"January 2, 2006",
	"2 January 2006",
}

// parseDate coerces a raw date cell to an ISO calendar-date string, nil when
// no known layout matches. It never fails a record.
func parseDate(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			iso := t.Format("2006-01-02")
			return &iso
		}
	}
	return nil
}
