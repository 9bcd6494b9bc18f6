package httpcallback

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/WinLike-dev/Worker-Server/internal/core/domain"
)

func successResult() domain.RunResult {
	return domain.RunResult{
		WorkerID:      "Worker-1",
		OverallStatus: domain.RunSucceeded,
		Files: []domain.FileReport{
			{File: "data/2014.csv", Status: domain.FileSucceeded, DocumentsWritten: 7},
		},
	}
}

func TestNotifyCompletionPostsToMaster(t *testing.T) {
	var got payload
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := New(server.URL, time.Second, nil)
	if err := notifier.NotifyCompletion(context.Background(), successResult()); err != nil {
		t.Fatalf("NotifyCompletion() error = %v", err)
	}

	if path != "/worker_notification" {
		t.Fatalf("path = %q, want /worker_notification", path)
	}
	if got.WorkerName != "Worker-1" {
		t.Fatalf("worker_name = %q", got.WorkerName)
	}
	if got.Status != "SUCCESS" {
		t.Fatalf("status = %q, want SUCCESS", got.Status)
	}
	if got.Message == "" {
		t.Fatalf("message is empty")
	}
}

func TestNotifyCompletionReportsFailureStatus(t *testing.T) {
	var got payload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	result := domain.RunResult{
		WorkerID:      "Worker-2",
		OverallStatus: domain.RunFailed,
		Files: []domain.FileReport{
			{File: "data/2017.csv", Status: domain.FileFailed, Error: "load file: data/2017.csv"},
		},
	}
	notifier := New(server.URL, time.Second, nil)
	if err := notifier.NotifyCompletion(context.Background(), result); err != nil {
		t.Fatalf("NotifyCompletion() error = %v", err)
	}
	if got.Status != "FAILURE" {
		t.Fatalf("status = %q, want FAILURE", got.Status)
	}
}

func TestNotifyCompletionRejectedByMaster(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	notifier := New(server.URL, time.Second, nil)
	if err := notifier.NotifyCompletion(context.Background(), successResult()); err == nil {
		t.Fatalf("expected error for 500 response")
	}
}

func TestNotifyCompletionUnreachableMaster(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	server.Close()

	notifier := New(server.URL, 200*time.Millisecond, nil)
	if err := notifier.NotifyCompletion(context.Background(), successResult()); err == nil {
		t.Fatalf("expected error for unreachable master")
	}
}

func TestClassifyCallbackError(t *testing.T) {
	if classifyCallbackError(nil).Retryable {
		t.Fatalf("nil error classified retryable")
	}
	if classifyCallbackError(context.Canceled).Retryable {
		t.Fatalf("cancellation classified retryable")
	}
}
