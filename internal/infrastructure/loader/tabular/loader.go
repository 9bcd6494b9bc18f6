package tabular

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/WinLike-dev/Worker-Server/internal/core/domain"
)

// Loader reads CSV and XLSX source files into ordered raw records. CSV files
// are decoded as UTF-8 first and retried once as EUC-KR, the regional
// encoding of the archive's older exports.
type Loader struct{}

func New() *Loader {
	return &Loader{}
}

func (l *Loader) Load(ctx context.Context, path string) (domain.RecordSet, error) {
	if err := ctx.Err(); err != nil {
		return domain.RecordSet{}, err
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return l.loadXLSX(path)
	}
	return l.loadCSV(path)
}

// toRecordSet turns header+data rows into raw records. Row order and the
// original header names are preserved; rows shorter than the header leave
// the trailing cells blank, surplus cells are dropped.
func toRecordSet(rows [][]string) domain.RecordSet {
	if len(rows) == 0 {
		return domain.RecordSet{Headers: []string{}, Records: []domain.RawRecord{}}
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	records := make([]domain.RawRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		fields := make(map[string]string, len(headers))
		for j, header := range headers {
			if j < len(row) {
				fields[header] = row[j]
			} else {
				fields[header] = ""
			}
		}
		records = append(records, domain.RawRecord{Index: i, Fields: fields})
	}
	return domain.RecordSet{Headers: headers, Records: records}
}
