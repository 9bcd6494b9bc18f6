package usecase

import (
	"context"

	"github.com/WinLike-dev/Worker-Server/internal/core/domain"
	"github.com/WinLike-dev/Worker-Server/internal/core/ports"
)

// BatchWriter buffers built documents per file and issues one bulk insert
// per file.
type BatchWriter struct{}

// Flush writes all documents of one file in a single bulk insert and returns
// the number written. An empty buffer is a no-op. Partial per-document
// success within one bulk insert is not assumed: any insert error fails the
// whole file.
func (BatchWriter) Flush(ctx context.Context, collection ports.DocumentCollection, docs []domain.Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	return collection.InsertMany(ctx, docs)
}
