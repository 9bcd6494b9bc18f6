package domain

import (
	"strings"
	"testing"
)

func TestSummarySuccess(t *testing.T) {
	result := RunResult{
		WorkerID:      "Worker-1",
		OverallStatus: RunSucceeded,
		Files: []FileReport{
			{File: "data/2014.csv", Status: FileSucceeded, DocumentsWritten: 10},
			{File: "data/2015.csv", Status: FileSucceeded, DocumentsWritten: 5},
		},
	}
	want := "Data rebuild completed successfully. Worker: Worker-1 (2 files, 15 documents written)"
	if got := result.Summary(); got != want {
		t.Fatalf("Summary() = %q, want %q", got, want)
	}
}

func TestSummaryPartialFailureNamesFirstError(t *testing.T) {
	result := RunResult{
		WorkerID:      "Worker-2",
		OverallStatus: RunFailed,
		Files: []FileReport{
			{File: "data/2017.csv", Status: FileFailed, Error: "load file: data/2017.csv"},
			{File: "data/2018.csv", Status: FileSucceeded, DocumentsWritten: 3},
		},
	}
	got := result.Summary()
	if !strings.Contains(got, "1 of 2 files failed") {
		t.Fatalf("Summary() = %q", got)
	}
	if !strings.Contains(got, "load file: data/2017.csv") {
		t.Fatalf("Summary() = %q, missing first error", got)
	}
}

func TestSummaryFatalAbort(t *testing.T) {
	result := RunResult{
		WorkerID:      "Worker-3",
		OverallStatus: RunFailed,
		Error:         "ping store: connection refused",
	}
	got := result.Summary()
	if !strings.Contains(got, "ping store: connection refused") {
		t.Fatalf("Summary() = %q, missing abort reason", got)
	}
}

func TestWrapErrorKind(t *testing.T) {
	err := WrapError(ErrStore, "bulk insert", ErrConnect)
	if !IsKind(err, ErrStore) {
		t.Fatalf("IsKind(err, ErrStore) = false")
	}
	if IsKind(err, ErrBusy) {
		t.Fatalf("IsKind(err, ErrBusy) = true")
	}
	if IsKind(nil, ErrStore) {
		t.Fatalf("IsKind(nil, ...) = true")
	}
}
