package tabular

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/xuri/excelize/v2"

	"github.com/WinLike-dev/Worker-Server/internal/core/domain"
)

// loadXLSX reads the first sheet of a workbook; the first row is the header.
func (l *Loader) loadXLSX(path string) (domain.RecordSet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.RecordSet{}, domain.WrapError(domain.ErrFileMissing, "load file", fmt.Errorf("%s", path))
		}
		return domain.RecordSet{}, domain.WrapError(domain.ErrLoad, "open workbook", fmt.Errorf("%s: %w", path, err))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return domain.RecordSet{}, domain.WrapError(domain.ErrLoad, "open workbook", fmt.Errorf("%s has no sheets", path))
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return domain.RecordSet{}, domain.WrapError(domain.ErrLoad, "read sheet", fmt.Errorf("%s: %w", path, err))
	}
	return toRecordSet(rows), nil
}
