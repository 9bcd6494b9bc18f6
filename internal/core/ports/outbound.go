package ports

import (
	"context"
	"time"

	"github.com/WinLike-dev/Worker-Server/internal/core/domain"
)

// RecordLoader reads one tabular source file into ordered raw records,
// preserving row order and original column headers.
type RecordLoader interface {
	Load(ctx context.Context, path string) (domain.RecordSet, error)
}

// TaggedToken is one token with its Penn Treebank part-of-speech tag.
type TaggedToken struct {
	Text string
	Tag  string
}

// PartOfSpeechTagger tokenizes and tags a text blob.
type PartOfSpeechTagger interface {
	Tag(text string) ([]TaggedToken, error)
}

// DocumentCollection is a named destination for bulk document inserts.
type DocumentCollection interface {
	// InsertMany writes all documents in a single bulk insert and returns
	// the number written. An empty batch is a no-op returning 0.
	InsertMany(ctx context.Context, docs []domain.Document) (int, error)
}

// DocumentStore is a connected handle to the shared document store. A handle
// is exclusively owned by one run and must be closed on every exit path.
type DocumentStore interface {
	Collection(name string) DocumentCollection
	Ping(ctx context.Context) error
	Close() error
}

// StoreConnector opens a fresh store handle for one run.
type StoreConnector interface {
	Connect(ctx context.Context) (DocumentStore, error)
}

// CompletionNotifier delivers the final run outcome out of band.
type CompletionNotifier interface {
	NotifyCompletion(ctx context.Context, result domain.RunResult) error
}

// IngestionMetrics records pipeline progress for observability.
type IngestionMetrics interface {
	RunStarted()
	RunFinished(status string, elapsed time.Duration)
	FileProcessed(status string)
	RecordsProcessed(n int)
	RecordsSkipped(n int)
	DocumentsWritten(n int)
}
