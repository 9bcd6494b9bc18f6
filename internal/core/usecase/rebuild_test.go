package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/WinLike-dev/Worker-Server/internal/core/domain"
	"github.com/WinLike-dev/Worker-Server/internal/core/ports"
)

type loadedFile struct {
	set domain.RecordSet
	err error
}

type loaderFake struct {
	files   map[string]loadedFile
	entered chan struct{} // signalled when Load is reached
	release chan struct{} // when set, Load blocks until closed
}

func (f *loaderFake) Load(_ context.Context, path string) (domain.RecordSet, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	loaded, ok := f.files[path]
	if !ok {
		return domain.RecordSet{}, domain.WrapError(domain.ErrFileMissing, "load file", errors.New(path))
	}
	return loaded.set, loaded.err
}

type collectionFake struct {
	mu        sync.Mutex
	inserted  []domain.Document
	failPaths map[string]bool // source files whose batches fail
	err       error
}

func (f *collectionFake) InsertMany(_ context.Context, docs []domain.Document) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(docs) > 0 && f.failPaths[docs[0].Provenance.SourceFile] {
		return 0, domain.WrapError(domain.ErrStore, "bulk insert", errors.New("write concern violated"))
	}
	if f.err != nil {
		return 0, f.err
	}
	f.inserted = append(f.inserted, docs...)
	return len(docs), nil
}

type storeFake struct {
	collection *collectionFake
	closed     bool
}

func (f *storeFake) Collection(string) ports.DocumentCollection { return f.collection }
func (f *storeFake) Ping(context.Context) error                 { return nil }
func (f *storeFake) Close() error {
	f.closed = true
	return nil
}

type connectorFake struct {
	store *storeFake
	err   error
}

func (f *connectorFake) Connect(context.Context) (ports.DocumentStore, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.store, nil
}

func passthroughTagger() *taggerFake {
	// Every capitalized-looking token is irrelevant here; the controller
	// tests exercise orchestration, not tagging.
	return &taggerFake{tokens: []ports.TaggedToken{{Text: "Seoul", Tag: "NNP"}}}
}

func recordsFor(titles ...string) domain.RecordSet {
	set := domain.RecordSet{Headers: []string{"title", "text", "timestamp", "tags"}}
	for i, title := range titles {
		set.Records = append(set.Records, domain.RawRecord{
			Index: i,
			Fields: map[string]string{
				"title":     title,
				"text":      "body of " + title,
				"timestamp": "2019-01-02",
				"tags":      "['News']",
			},
		})
	}
	return set
}

func newController(files []string, connector ports.StoreConnector, loader ports.RecordLoader) *IngestionController {
	return NewIngestionController(
		"Worker-1",
		files,
		"file_noun_records",
		connector,
		loader,
		NewNounExtractor(passthroughTagger(), nil),
		NewTagParser(nil),
		NewDocumentBuilder(testColumns),
		nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func TestRunMissingMiddleFileIsolatesFailure(t *testing.T) {
	loader := &loaderFake{files: map[string]loadedFile{
		"data/2014.csv": {set: recordsFor("a", "b")},
		"data/2016.csv": {set: recordsFor("c")},
	}}
	collection := &collectionFake{}
	store := &storeFake{collection: collection}
	controller := newController(
		[]string{"data/2014.csv", "data/2015.csv", "data/2016.csv"},
		&connectorFake{store: store},
		loader,
	)

	result, err := controller.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.OverallStatus != domain.RunFailed {
		t.Fatalf("overall status = %s, want failed", result.OverallStatus)
	}
	if len(result.Files) != 3 {
		t.Fatalf("file reports = %d, want 3", len(result.Files))
	}
	wantStatuses := []domain.FileStatus{domain.FileSucceeded, domain.FileFailed, domain.FileSucceeded}
	for i, want := range wantStatuses {
		if result.Files[i].Status != want {
			t.Fatalf("file %d status = %s, want %s", i, result.Files[i].Status, want)
		}
	}
	if result.Files[1].Error == "" {
		t.Fatalf("failed file carries no error message")
	}
	if got := len(collection.inserted); got != 3 {
		t.Fatalf("documents written = %d, want 3 from surviving files", got)
	}
	if !store.closed {
		t.Fatalf("store handle not closed")
	}
}

func TestRunConnectFailureAbortsBeforeAnyFile(t *testing.T) {
	connectErr := domain.WrapError(domain.ErrConnect, "ping store", errors.New("no route to host"))
	controller := newController(
		[]string{"data/2014.csv"},
		&connectorFake{err: connectErr},
		&loaderFake{},
	)

	result, err := controller.Run(context.Background())
	if !domain.IsKind(err, domain.ErrConnect) {
		t.Fatalf("expected ErrConnect, got %v", err)
	}
	if result.OverallStatus != domain.RunFailed {
		t.Fatalf("overall status = %s, want failed", result.OverallStatus)
	}
	if len(result.Files) != 0 {
		t.Fatalf("files attempted = %d, want 0", len(result.Files))
	}
	if result.ElapsedSeconds > 1 {
		t.Fatalf("elapsed = %f, want near zero", result.ElapsedSeconds)
	}
	if result.Error == "" {
		t.Fatalf("aborted run carries no error text")
	}
}

func TestRunSkipsBadRecordsWithoutFailingFile(t *testing.T) {
	set := recordsFor("good one")
	set.Records = append(set.Records, domain.RawRecord{
		Index:  1,
		Fields: map[string]string{"title": "", "text": "", "timestamp": "", "tags": ""},
	})
	loader := &loaderFake{files: map[string]loadedFile{"data/2014.csv": {set: set}}}
	collection := &collectionFake{}
	controller := newController(
		[]string{"data/2014.csv"},
		&connectorFake{store: &storeFake{collection: collection}},
		loader,
	)

	result, err := controller.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.OverallStatus != domain.RunSucceeded {
		t.Fatalf("overall status = %s, want succeeded", result.OverallStatus)
	}
	if result.Files[0].DocumentsWritten != 1 {
		t.Fatalf("documents written = %d, want 1", result.Files[0].DocumentsWritten)
	}
}

func TestRunStoreErrorFailsOnlyThatFile(t *testing.T) {
	loader := &loaderFake{files: map[string]loadedFile{
		"data/2014.csv": {set: recordsFor("a")},
		"data/2015.csv": {set: recordsFor("b")},
	}}
	collection := &collectionFake{failPaths: map[string]bool{"2014.csv": true}}
	controller := newController(
		[]string{"data/2014.csv", "data/2015.csv"},
		&connectorFake{store: &storeFake{collection: collection}},
		loader,
	)

	result, err := controller.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Files[0].Status != domain.FileFailed {
		t.Fatalf("file 0 status = %s, want failed", result.Files[0].Status)
	}
	if result.Files[1].Status != domain.FileSucceeded {
		t.Fatalf("file 1 status = %s, want succeeded", result.Files[1].Status)
	}
	if result.OverallStatus != domain.RunFailed {
		t.Fatalf("overall status = %s, want failed", result.OverallStatus)
	}
}

func TestRunMissingColumnsFailsFileFast(t *testing.T) {
	set := domain.RecordSet{
		Headers: []string{"headline", "content"},
		Records: []domain.RawRecord{{Index: 0, Fields: map[string]string{"headline": "x"}}},
	}
	loader := &loaderFake{files: map[string]loadedFile{"data/2014.csv": {set: set}}}
	collection := &collectionFake{}
	controller := newController(
		[]string{"data/2014.csv"},
		&connectorFake{store: &storeFake{collection: collection}},
		loader,
	)

	result, _ := controller.Run(context.Background())
	if result.Files[0].Status != domain.FileFailed {
		t.Fatalf("file status = %s, want failed on schema mismatch", result.Files[0].Status)
	}
	if len(collection.inserted) != 0 {
		t.Fatalf("documents written despite schema failure")
	}
}

func TestRunNoAssignedFilesIsTrivialSuccess(t *testing.T) {
	controller := newController(nil, &connectorFake{err: errors.New("must not connect")}, &loaderFake{})

	result, err := controller.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.OverallStatus != domain.RunSucceeded {
		t.Fatalf("overall status = %s, want succeeded", result.OverallStatus)
	}
	if len(result.Files) != 0 {
		t.Fatalf("files = %d, want 0", len(result.Files))
	}
}

func TestRunRejectsConcurrentInvocation(t *testing.T) {
	loader := &loaderFake{
		files:   map[string]loadedFile{"data/2014.csv": {set: recordsFor("a")}},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	collection := &collectionFake{}
	controller := newController(
		[]string{"data/2014.csv"},
		&connectorFake{store: &storeFake{collection: collection}},
		loader,
	)

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		if _, err := controller.Run(context.Background()); err != nil {
			t.Errorf("first Run() error = %v", err)
		}
	}()

	// Wait until the first run holds the lock inside Load.
	<-loader.entered

	_, err := controller.Run(context.Background())
	if !domain.IsKind(err, domain.ErrBusy) {
		t.Fatalf("expected ErrBusy for concurrent run, got %v", err)
	}

	close(loader.release)
	<-firstDone
}

func TestRunRerunWritesDuplicates(t *testing.T) {
	// No dedup key exists: ingesting the same file twice doubles the
	// documents. Documented at-least-once behavior, not a bug.
	loader := &loaderFake{files: map[string]loadedFile{"data/2014.csv": {set: recordsFor("a", "b")}}}
	collection := &collectionFake{}
	controller := newController(
		[]string{"data/2014.csv"},
		&connectorFake{store: &storeFake{collection: collection}},
		loader,
	)

	for i := 0; i < 2; i++ {
		if _, err := controller.Run(context.Background()); err != nil {
			t.Fatalf("Run() #%d error = %v", i+1, err)
		}
	}
	if got := len(collection.inserted); got != 4 {
		t.Fatalf("documents after rerun = %d, want 4", got)
	}
}

func TestFlushEmptyBufferIsNoOp(t *testing.T) {
	collection := &collectionFake{err: errors.New("must not be called")}
	written, err := BatchWriter{}.Flush(context.Background(), collection, nil)
	if err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if written != 0 {
		t.Fatalf("Flush() = %d, want 0", written)
	}
}
