package httpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/WinLike-dev/Worker-Server/internal/core/domain"
	"github.com/WinLike-dev/Worker-Server/internal/core/ports"
)

// Router exposes the worker's trigger surface. The rebuild endpoint blocks
// for the full run in synchronous mode; in asynchronous mode it answers 202
// immediately and the completion notifier reports the outcome out of band.
type Router struct {
	runner     ports.RebuildRunner
	notifier   ports.CompletionNotifier
	workerName string
	async      bool

	limiter        *rate.Limiter
	metricsHandler http.Handler
	metricsWrap    func(http.Handler) http.Handler
	logger         *slog.Logger
}

type Options struct {
	Runner     ports.RebuildRunner
	Notifier   ports.CompletionNotifier
	WorkerName string
	Async      bool

	RateLimitRPS   int
	RateLimitBurst int

	MetricsHandler    http.Handler
	MetricsMiddleware func(http.Handler) http.Handler
	Logger            *slog.Logger
}

func NewRouter(opts Options) *Router {
	rps := opts.RateLimitRPS
	if rps <= 0 {
		rps = 1
	}
	burst := opts.RateLimitBurst
	if burst <= 0 {
		burst = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		runner:         opts.Runner,
		notifier:       opts.Notifier,
		workerName:     opts.WorkerName,
		async:          opts.Async,
		limiter:        rate.NewLimiter(rate.Limit(rps), burst),
		metricsHandler: opts.MetricsHandler,
		metricsWrap:    opts.MetricsMiddleware,
		logger:         logger,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/status", rt.status)
	mux.HandleFunc("/rebuild", rt.rebuild)
	if rt.metricsHandler != nil {
		mux.Handle("/metrics", rt.metricsHandler)
	}

	var handler http.Handler = mux
	if rt.metricsWrap != nil {
		handler = rt.metricsWrap(handler)
	}
	return requestIDMiddleware(accessLogMiddleware(rt.logger, handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":      "Ready",
		"worker_name": rt.workerName,
		"message":     "Data processing completed. Waiting for master commands.",
	})
}

// triggerResponse is the completion report contract with the master.
type triggerResponse struct {
	Status         string  `json:"status"`
	WorkerName     string  `json:"worker_name,omitempty"`
	Message        string  `json:"message"`
	ProcessingTime float64 `json:"processing_time"`
}

func (rt *Router) rebuild(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if !rt.limiter.Allow() {
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many rebuild requests"})
		return
	}

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			rt.logger.Error("rebuild panicked", "panic", fmt.Sprintf("%v", rec))
			writeJSON(w, http.StatusInternalServerError, triggerResponse{
				Status:         "CRITICAL_ERROR",
				Message:        fmt.Sprintf("unexpected error: %v", rec),
				ProcessingTime: time.Since(start).Seconds(),
			})
		}
	}()

	rt.logger.Info("rebuild request received", "worker", rt.workerName, "async", rt.async)

	if rt.async {
		go rt.runAndNotify()
		writeJSON(w, http.StatusAccepted, triggerResponse{
			Status:         "Accepted",
			WorkerName:     rt.workerName,
			Message:        "Request received successfully. Data rebuild started in background.",
			ProcessingTime: time.Since(start).Seconds(),
		})
		return
	}

	result, err := rt.runner.Run(r.Context())
	switch {
	case err != nil && domain.IsKind(err, domain.ErrBusy):
		writeJSON(w, http.StatusConflict, triggerResponse{
			Status:         "FAILED",
			WorkerName:     rt.workerName,
			Message:        err.Error(),
			ProcessingTime: time.Since(start).Seconds(),
		})
	case !result.Succeeded():
		writeJSON(w, http.StatusInternalServerError, triggerResponse{
			Status:         "FAILED",
			WorkerName:     rt.workerName,
			Message:        result.Summary(),
			ProcessingTime: result.ElapsedSeconds,
		})
	default:
		writeJSON(w, http.StatusOK, triggerResponse{
			Status:         "COMPLETED",
			WorkerName:     rt.workerName,
			Message:        result.Summary(),
			ProcessingTime: result.ElapsedSeconds,
		})
	}
}

// runAndNotify executes the run detached from the trigger request and
// reports the outcome through the configured notifier.
func (rt *Router) runAndNotify() {
	result, err := rt.runner.Run(context.Background())
	if err != nil {
		if domain.IsKind(err, domain.ErrBusy) {
			rt.logger.Warn("background rebuild rejected", "error", err)
			return
		}
		rt.logger.Error("background rebuild aborted", "error", err)
	}

	if rt.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if nerr := rt.notifier.NotifyCompletion(ctx, result); nerr != nil {
		rt.logger.Error("completion notification failed", "error", nerr)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
