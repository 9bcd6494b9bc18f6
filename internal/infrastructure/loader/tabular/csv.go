package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"github.com/WinLike-dev/Worker-Server/internal/core/domain"
)

func (l *Loader) loadCSV(path string) (domain.RecordSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.RecordSet{}, domain.WrapError(domain.ErrFileMissing, "load file", fmt.Errorf("%s", path))
		}
		return domain.RecordSet{}, domain.WrapError(domain.ErrLoad, "load file", err)
	}

	text, err := decodeText(raw)
	if err != nil {
		return domain.RecordSet{}, domain.WrapError(domain.ErrLoad, "decode file", fmt.Errorf("%s: %w", path, err))
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return domain.RecordSet{}, domain.WrapError(domain.ErrLoad, "parse csv", fmt.Errorf("%s: %w", path, err))
	}
	return toRecordSet(rows), nil
}

// decodeText accepts UTF-8 input as-is and retries once with EUC-KR before
// giving up on the file. The EUC-KR decoder never errors on bad bytes, it
// emits U+FFFD instead; any replacement rune in the output means the file is
// readable in neither encoding.
func decodeText(raw []byte) (string, error) {
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	decoded, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), raw)
	if err != nil {
		return "", fmt.Errorf("not valid UTF-8 and EUC-KR decode failed: %w", err)
	}
	if bytes.ContainsRune(decoded, utf8.RuneError) {
		return "", fmt.Errorf("not valid UTF-8 and not valid EUC-KR")
	}
	return string(decoded), nil
}
