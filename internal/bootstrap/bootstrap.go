package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/WinLike-dev/Worker-Server/internal/config"
	"github.com/WinLike-dev/Worker-Server/internal/core/ports"
	"github.com/WinLike-dev/Worker-Server/internal/core/usecase"
	"github.com/WinLike-dev/Worker-Server/internal/infrastructure/loader/tabular"
	"github.com/WinLike-dev/Worker-Server/internal/infrastructure/notify/httpcallback"
	"github.com/WinLike-dev/Worker-Server/internal/infrastructure/notify/natspub"
	"github.com/WinLike-dev/Worker-Server/internal/infrastructure/repository/postgres"
	"github.com/WinLike-dev/Worker-Server/internal/infrastructure/resilience"
	"github.com/WinLike-dev/Worker-Server/internal/infrastructure/tagging/prosetag"
	"github.com/WinLike-dev/Worker-Server/internal/observability/logging"
	"github.com/WinLike-dev/Worker-Server/internal/observability/metrics"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Runner   ports.RebuildRunner
	Notifier ports.CompletionNotifier

	WorkerMetrics *metrics.WorkerMetrics
	HTTPMetrics   *metrics.HTTPMetrics

	closeFn func()
}

func New(cfg config.Config) (*App, error) {
	logger := logging.NewJSONLogger("ingest-worker", cfg.WorkerName, cfg.LogLevel)
	slog.SetDefault(logger)

	assignments, err := config.LoadAssignments(cfg.AssignmentsFile)
	if err != nil {
		return nil, fmt.Errorf("load assignments: %w", err)
	}
	files := assignments.Resolve(cfg.WorkerName)

	workerMetrics := metrics.NewWorkerMetrics(cfg.WorkerName)
	httpMetrics := metrics.NewHTTPMetrics(workerMetrics, cfg.WorkerName)

	controller := usecase.NewIngestionController(
		cfg.WorkerName,
		files,
		cfg.CollectionName,
		postgres.NewConnector(cfg.PostgresDSN, cfg.ConnectTimeout),
		tabular.New(),
		usecase.NewNounExtractor(prosetag.New(), assignments.ExcludeWords),
		usecase.NewTagParser(assignments.DefaultTags),
		usecase.NewDocumentBuilder(assignments.Columns),
		workerMetrics,
		logger,
	)

	notifier, closeFn, err := buildNotifier(cfg)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:        cfg,
		Logger:        logger,
		Runner:        controller,
		Notifier:      notifier,
		WorkerMetrics: workerMetrics,
		HTTPMetrics:   httpMetrics,
		closeFn:       closeFn,
	}, nil
}

func buildNotifier(cfg config.Config) (ports.CompletionNotifier, func(), error) {
	switch cfg.NotifierMode {
	case "http":
		if cfg.MasterURL == "" {
			return nil, nil, fmt.Errorf("NOTIFIER_MODE=http requires MASTER_URL")
		}
		executor := resilience.NewExecutor(resilience.DefaultConfig())
		return httpcallback.New(cfg.MasterURL, cfg.NotifyTimeout, executor), nil, nil
	case "nats":
		executor := resilience.NewExecutor(resilience.DefaultConfig())
		notifier, err := natspub.New(cfg.NATSURL, cfg.NATSSubject, executor)
		if err != nil {
			return nil, nil, fmt.Errorf("init nats notifier: %w", err)
		}
		return notifier, notifier.Close, nil
	case "", "none":
		return nil, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown NOTIFIER_MODE %q", cfg.NotifierMode)
	}
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
