package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrFileMissing and ErrLoad fail a single file; the run continues with
	// the remaining files.
	ErrFileMissing = errors.New("source file missing")
	ErrLoad        = errors.New("file load failed")

	// ErrRecord fails a single record; the file continues with its siblings.
	ErrRecord = errors.New("record rejected")

	// ErrStore fails the whole file: partial per-document success within one
	// bulk insert is not guaranteed by the store.
	ErrStore = errors.New("store insert failed")

	// ErrConnect aborts the entire run before any file is processed.
	ErrConnect = errors.New("store connection failed")

	// ErrBusy rejects a trigger while a run is already in progress.
	ErrBusy = errors.New("rebuild already running")

	// ErrTemporary marks transient notifier transport failures.
	ErrTemporary = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
