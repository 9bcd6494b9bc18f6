package ports

import (
	"context"

	"github.com/WinLike-dev/Worker-Server/internal/core/domain"
)

// RebuildRunner is the inbound contract for one full ingestion run. The
// returned error is non-nil only when the run could not execute at all:
// domain.ErrBusy when another run holds the lock, or domain.ErrConnect when
// the store handle could not be acquired (the result still reports overall
// failure with zero files attempted).
type RebuildRunner interface {
	Run(ctx context.Context) (domain.RunResult, error)
}
