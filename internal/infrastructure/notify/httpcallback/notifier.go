// Package httpcallback reports run completion to the master's notification
// endpoint over HTTP, the contract the master-side orchestrator listens on.
package httpcallback

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/WinLike-dev/Worker-Server/internal/core/domain"
	"github.com/WinLike-dev/Worker-Server/internal/infrastructure/resilience"
)

type Notifier struct {
	endpoint string
	client   *http.Client
	executor *resilience.Executor
}

func New(masterURL string, timeout time.Duration, executor *resilience.Executor) *Notifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Notifier{
		endpoint: strings.TrimRight(masterURL, "/") + "/worker_notification",
		client:   &http.Client{Timeout: timeout},
		executor: executor,
	}
}

type payload struct {
	WorkerName string `json:"worker_name"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

func (n *Notifier) NotifyCompletion(ctx context.Context, result domain.RunResult) error {
	status := "SUCCESS"
	if !result.Succeeded() {
		status = "FAILURE"
	}
	body, err := json.Marshal(payload{
		WorkerName: result.WorkerID,
		Status:     status,
		Message:    result.Summary(),
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	call := func(callCtx context.Context) error {
		req, err := http.NewRequestWithContext(callCtx, http.MethodPost, n.endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("build notification request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.client.Do(req)
		if err != nil {
			return fmt.Errorf("post notification: %w", err)
		}
		defer func() {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}()
		if resp.StatusCode >= http.StatusBadRequest {
			return fmt.Errorf("notification rejected: status %d", resp.StatusCode)
		}
		return nil
	}

	if n.executor == nil {
		return call(ctx)
	}
	err = n.executor.Execute(ctx, "notify.master", call, classifyCallbackError)
	if err != nil && classifyCallbackError(err).Retryable {
		return domain.WrapError(domain.ErrTemporary, "notify master", err)
	}
	return err
}

func classifyCallbackError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	// Connection-level failures surface as *url.Error without a usable
	// sentinel; treat any transport error as retryable.
	if strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "post notification") {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{RecordFailure: true}
}
