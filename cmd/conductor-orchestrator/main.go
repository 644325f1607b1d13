// Conductor Orchestrator — выполняет workflow-запуски.
//
// Orchestrator:
//   - Получает новые runs из RabbitMQ (плюс polling fallback)
//   - Прогоняет каждый run через engine: оракул решает, какой воркер
//     следующий, движок исполняет и чекпоинтит
//   - Финализирует runs (COMPLETED/FAILED) и публикует run.completed
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/impactrealty/conductor/internal/agents"
	"github.com/impactrealty/conductor/internal/engine"
	"github.com/impactrealty/conductor/internal/llm"
	"github.com/impactrealty/conductor/internal/mq"
	"github.com/impactrealty/conductor/internal/oracle"
	"github.com/impactrealty/conductor/internal/orchestrator"
	"github.com/impactrealty/conductor/internal/repo"
	"github.com/impactrealty/conductor/internal/telemetry"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting conductor-orchestrator")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// DB pool
	pool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	// Создаём репозитории
	runRepo := repo.NewRunRepo(pool)
	traceRepo := repo.NewTraceRepo(pool)

	// RabbitMQ
	var publisher *mq.Publisher
	var mqConn *mq.Connection

	mqConn, err = mq.Connect(mq.DefaultURL(), logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, running in polling-only mode", "error", err)
		mqConn = nil
	} else {
		defer mqConn.Close()
		logger.Info("RabbitMQ connected")

		// Создаём топологию
		if err := mq.SetupTopology(ctx, mqConn); err != nil {
			logger.Warn("failed to setup topology", "error", err)
		} else {
			logger.Debug("topology ready", "layout", mq.TopologyInfo())
		}

		publisher = mq.NewPublisher(mqConn, logger)
	}

	// LLM-клиент: без LLM_BASE_URL (или с MOCK_MODE=true) агенты
	// и оракул работают в mock-режиме
	var llmClient llm.Client
	if os.Getenv("MOCK_MODE") == "true" {
		logger.Info("MOCK_MODE enabled, agents run in mock mode")
	} else if c := llm.FromEnv(); c != nil {
		llmClient = c
		logger.Info("LLM client configured")
	} else {
		logger.Info("no LLM configured, agents run in mock mode")
	}

	// Воркеры и оракул
	registry := agents.DefaultRegistry(llmClient)

	var routingOracle engine.Oracle
	if llmClient != nil {
		routingOracle = oracle.NewLLM(llmClient, registry.IDs())
	} else {
		routingOracle = oracle.NewRule()
	}

	// Бюджет итераций и wall-clock лимит настраиваются из окружения
	maxSteps := 0
	if v := os.Getenv("MAX_WORKFLOW_STEPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			maxSteps = n
		}
	}

	var runTimeout time.Duration
	if v := os.Getenv("WORKFLOW_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			runTimeout = d
		}
	}

	// Движок выполнения
	eng, err := engine.New(engine.Config{
		Oracle:      routingOracle,
		Workers:     registry,
		Checkpoints: repo.NewCheckpointRepo(pool),
		Records:     repo.NewRecordStore(runRepo, traceRepo),
		Logger:      logger,
		MaxSteps:    maxSteps,
	})
	if err != nil {
		logger.Error("failed to create engine", "error", err)
		os.Exit(1)
	}

	// Создаём orchestrator
	orch := orchestrator.New(orchestrator.Config{
		Engine:     eng,
		RunRepo:    runRepo,
		Publisher:  publisher,
		Conn:       mqConn,
		RunTimeout: runTimeout,
		Logger:     logger,
	})

	// Метрика активных запусков
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "conductor_orchestrator_active_runs",
		Help: "Number of runs currently being executed by this process",
	}, func() float64 {
		return float64(orch.ActiveRunsCount())
	})

	// Запускаем orchestrator
	if err := orch.Start(ctx); err != nil {
		logger.Error("failed to start orchestrator", "error", err)
		os.Exit(1)
	}

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8083"
	if v := os.Getenv("ORCH_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()

	// Останавливаем orchestrator
	orch.Stop()
	logger.Info("conductor-orchestrator stopped")
}
