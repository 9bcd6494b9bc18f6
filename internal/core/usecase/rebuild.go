package usecase

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/WinLike-dev/Worker-Server/internal/core/domain"
	"github.com/WinLike-dev/Worker-Server/internal/core/ports"
)

// IngestionController orchestrates one rebuild run: per-file loading,
// per-record extraction and construction, and one bulk insert per file.
// Files are fully independent: a failed file never blocks its siblings, and
// only a store connection failure aborts the run. Runs are serialized with
// an explicit try-lock; inserts are at-least-once (reruns write duplicates).
type IngestionController struct {
	workerID   string
	files      []string
	collection string

	connector ports.StoreConnector
	loader    ports.RecordLoader
	extractor *NounExtractor
	tagParser *TagParser
	builder   *DocumentBuilder
	writer    BatchWriter

	metrics ports.IngestionMetrics
	logger  *slog.Logger

	running atomic.Bool
}

func NewIngestionController(
	workerID string,
	files []string,
	collection string,
	connector ports.StoreConnector,
	loader ports.RecordLoader,
	extractor *NounExtractor,
	tagParser *TagParser,
	builder *DocumentBuilder,
	metrics ports.IngestionMetrics,
	logger *slog.Logger,
) *IngestionController {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestionController{
		workerID:   workerID,
		files:      files,
		collection: collection,
		connector:  connector,
		loader:     loader,
		extractor:  extractor,
		tagParser:  tagParser,
		builder:    builder,
		metrics:    metrics,
		logger:     logger,
	}
}

// Run executes the full ingestion run and blocks until it completes. A
// second concurrent call fails fast with domain.ErrBusy instead of racing on
// the store.
func (c *IngestionController) Run(ctx context.Context) (domain.RunResult, error) {
	if !c.running.CompareAndSwap(false, true) {
		return domain.RunResult{}, domain.WrapError(domain.ErrBusy, "start rebuild",
			errors.New("another rebuild run is in progress"))
	}
	defer c.running.Store(false)

	if c.metrics != nil {
		c.metrics.RunStarted()
	}
	started := time.Now()
	result := domain.RunResult{
		WorkerID:      c.workerID,
		Files:         []domain.FileReport{},
		OverallStatus: domain.RunSucceeded,
	}

	if len(c.files) == 0 {
		// Coordinator identity or unrecognized worker: trivial success.
		c.logger.Info("no files assigned, skipping run", "worker", c.workerID)
		return c.finish(result, started, nil)
	}

	c.logger.Info("rebuild run started", "worker", c.workerID, "files", len(c.files))

	store, err := c.connector.Connect(ctx)
	if err != nil {
		c.logger.Error("store connection failed, aborting run", "worker", c.workerID, "error", err)
		result.OverallStatus = domain.RunFailed
		result.Error = err.Error()
		return c.finish(result, started, err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			c.logger.Warn("store close failed", "error", closeErr)
		}
	}()

	collection := store.Collection(c.collection)
	for _, file := range c.files {
		report := c.processFile(ctx, collection, file)
		result.Files = append(result.Files, report)
		if report.Status == domain.FileFailed {
			result.OverallStatus = domain.RunFailed
		}
		if c.metrics != nil {
			c.metrics.FileProcessed(string(report.Status))
		}
	}
	return c.finish(result, started, nil)
}

func (c *IngestionController) finish(result domain.RunResult, started time.Time, err error) (domain.RunResult, error) {
	result.ElapsedSeconds = time.Since(started).Seconds()
	if c.metrics != nil {
		c.metrics.RunFinished(string(result.OverallStatus), time.Since(started))
	}
	c.logger.Info("rebuild run finished",
		"worker", c.workerID,
		"status", result.OverallStatus,
		"files", len(result.Files),
		"documents", result.DocumentsWritten(),
		"elapsed_s", result.ElapsedSeconds,
	)
	return result, err
}

func (c *IngestionController) processFile(ctx context.Context, collection ports.DocumentCollection, file string) domain.FileReport {
	report := domain.FileReport{File: file}

	set, err := c.loader.Load(ctx, file)
	if err != nil {
		c.logger.Warn("file load failed", "file", file, "error", err)
		report.Status = domain.FileFailed
		report.Error = err.Error()
		return report
	}
	if err := c.builder.ValidateHeaders(set.Headers); err != nil {
		c.logger.Warn("file schema invalid", "file", file, "error", err)
		report.Status = domain.FileFailed
		report.Error = err.Error()
		return report
	}

	prov := domain.Provenance{WorkerID: c.workerID, SourceFile: filepath.Base(file)}
	docs := make([]domain.Document, 0, len(set.Records))
	skipped := 0
	for _, record := range set.Records {
		nouns := c.extractor.Extract(c.builder.SourceText(record))
		tags := c.tagParser.Parse(c.builder.RawTags(record))

		doc, err := c.builder.Build(record, nouns, tags, prov)
		if err != nil {
			c.logger.Warn("record skipped", "file", file, "row", record.Index, "error", err)
			skipped++
			continue
		}
		docs = append(docs, doc)
	}
	if c.metrics != nil {
		c.metrics.RecordsProcessed(len(docs))
		c.metrics.RecordsSkipped(skipped)
	}

	written, err := c.writer.Flush(ctx, collection, docs)
	if err != nil {
		c.logger.Warn("bulk insert failed", "file", file, "error", err)
		report.Status = domain.FileFailed
		report.Error = err.Error()
		return report
	}
	if c.metrics != nil {
		c.metrics.DocumentsWritten(written)
	}

	report.Status = domain.FileSucceeded
	report.DocumentsWritten = written
	c.logger.Info("file ingested", "file", file, "documents", written, "skipped", skipped)
	return report
}
