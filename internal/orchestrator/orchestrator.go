package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/impactrealty/conductor/internal/engine"
	"github.com/impactrealty/conductor/internal/mq"
	"github.com/impactrealty/conductor/internal/repo"
)

// Default configuration values.
const (
	defaultPollInterval      = 10 * time.Second
	defaultBatchSize         = 50
	defaultMaxConcurrent     = 4
	defaultRunTimeout        = 10 * time.Minute
	defaultReconcileInterval = time.Minute
	defaultStaleAfter        = 30 * time.Minute
)

// Orchestrator — демон выполнения workflow-запусков.
//
// Orchestrator:
//   - Получает новые запуски из очереди RabbitMQ (event-driven)
//   - Периодически проверяет pending запуски в БД (polling fallback)
//   - Атомарно забирает запуск (ClaimPending) и прогоняет его через Engine
//   - Ограничивает число одновременных запусков семафором
//   - Публикует run.completed по завершении
//   - Переводит зависшие RUNNING запуски в FAILED (reconcile)
type Orchestrator struct {
	engine *engine.Engine
	runs   *repo.RunRepo

	publisher *mq.Publisher
	conn      *mq.Connection
	consumer  *mq.Consumer

	// Активные запуски этого процесса (runID → занят).
	activeRuns map[uuid.UUID]struct{}
	mu         sync.RWMutex

	// Семафор ограничения параллелизма.
	sem chan struct{}

	pollInterval      time.Duration
	batchSize         int
	runTimeout        time.Duration
	reconcileInterval time.Duration
	staleAfter        time.Duration

	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopped    bool
	stoppedMu  sync.RWMutex
}

// Config — конфигурация Orchestrator.
type Config struct {
	Engine  *engine.Engine
	RunRepo *repo.RunRepo

	Publisher *mq.Publisher
	Conn      *mq.Connection

	// PollInterval — интервал polling fallback (default: 10s).
	PollInterval time.Duration

	// BatchSize — количество pending запусков за один poll (default: 50).
	BatchSize int

	// MaxConcurrent — максимум одновременных запусков (default: 4).
	MaxConcurrent int

	// RunTimeout — wall-clock лимит одного запуска (default: 10m).
	RunTimeout time.Duration

	// ReconcileInterval — интервал поиска зависших запусков (default: 1m).
	ReconcileInterval time.Duration

	// StaleAfter — возраст RUNNING запуска, после которого он
	// считается зависшим (default: 30m).
	StaleAfter time.Duration

	Logger *slog.Logger
}

// New создаёт новый Orchestrator.
func New(cfg Config) *Orchestrator {
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}

	runTimeout := cfg.RunTimeout
	if runTimeout <= 0 {
		runTimeout = defaultRunTimeout
	}

	reconcileInterval := cfg.ReconcileInterval
	if reconcileInterval <= 0 {
		reconcileInterval = defaultReconcileInterval
	}

	staleAfter := cfg.StaleAfter
	if staleAfter <= 0 {
		staleAfter = defaultStaleAfter
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		engine:            cfg.Engine,
		runs:              cfg.RunRepo,
		publisher:         cfg.Publisher,
		conn:              cfg.Conn,
		activeRuns:        make(map[uuid.UUID]struct{}),
		sem:               make(chan struct{}, maxConcurrent),
		pollInterval:      pollInterval,
		batchSize:         batchSize,
		runTimeout:        runTimeout,
		reconcileInterval: reconcileInterval,
		staleAfter:        staleAfter,
		logger:            logger,
	}
}

// Start запускает Orchestrator.
//
// Запускает:
//   - Consumer для runs.requested
//   - Polling горутину для fallback
//   - Reconcile горутину для зависших запусков
func (o *Orchestrator) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	o.cancelFunc = cancel

	o.logger.Info("starting orchestrator",
		"poll_interval", o.pollInterval,
		"batch_size", o.batchSize,
		"max_concurrent", cap(o.sem),
		"run_timeout", o.runTimeout,
	)

	if o.conn != nil {
		o.consumer = mq.NewConsumer(o.conn, mq.ConsumerConfig{
			Queue:    mq.QueueRunsRequested,
			Handler:  o.handleRunRequested,
			Prefetch: cap(o.sem),
		}, o.logger)

		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			if err := o.consumer.Start(ctx); err != nil {
				o.logger.Error("run consumer error", "error", err)
			}
		}()
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.pollLoop(ctx)
	}()

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.reconcileLoop(ctx)
	}()

	o.logger.Info("orchestrator started")
	return nil
}

// Stop останавливает Orchestrator и дожидается активных запусков.
func (o *Orchestrator) Stop() {
	o.stoppedMu.Lock()
	o.stopped = true
	o.stoppedMu.Unlock()

	o.logger.Info("stopping orchestrator...")

	if o.cancelFunc != nil {
		o.cancelFunc()
	}

	o.wg.Wait()

	o.logger.Info("orchestrator stopped")
}

// IsStopped проверяет, остановлен ли Orchestrator.
func (o *Orchestrator) IsStopped() bool {
	o.stoppedMu.RLock()
	defer o.stoppedMu.RUnlock()
	return o.stopped
}

// pollLoop — цикл polling для fallback.
func (o *Orchestrator) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()

	// Первый poll сразу при старте: подхватываем запуски,
	// созданные пока процесс был выключен.
	o.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.poll(ctx)
		}
	}
}

// poll выполняет один цикл polling.
func (o *Orchestrator) poll(ctx context.Context) {
	runs, err := o.runs.ListPending(ctx, o.batchSize)
	if err != nil {
		o.logger.Error("failed to list pending runs", "error", err)
		return
	}

	if len(runs) == 0 {
		return
	}

	o.logger.Debug("poll found pending runs", "count", len(runs))

	for i := range runs {
		if err := o.dispatch(ctx, runs[i].ID); err != nil {
			if isBenignDispatchError(err) {
				continue
			}
			o.logger.Error("failed to dispatch run from poll",
				"run_id", runs[i].ID,
				"error", err,
			)
		}
	}
}

// reconcileLoop периодически переводит зависшие запуски в FAILED.
func (o *Orchestrator) reconcileLoop(ctx context.Context) {
	ticker := time.NewTicker(o.reconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.reconcile(ctx)
		}
	}
}

// reconcile помечает RUNNING запуски старше staleAfter как FAILED.
// Ловит запуски, чей процесс умер, не успев финализировать запись.
func (o *Orchestrator) reconcile(ctx context.Context) {
	ids, err := o.runs.FailStale(ctx, o.staleAfter)
	if err != nil {
		o.logger.Error("failed to reconcile stale runs", "error", err)
		return
	}

	for _, id := range ids {
		o.logger.Warn("stale run marked as failed", "run_id", id)
	}
}

// isRunActive проверяет, выполняется ли запуск в этом процессе.
func (o *Orchestrator) isRunActive(runID uuid.UUID) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, exists := o.activeRuns[runID]
	return exists
}

// addActiveRun регистрирует запуск как активный.
func (o *Orchestrator) addActiveRun(runID uuid.UUID) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, exists := o.activeRuns[runID]; exists {
		return ErrRunAlreadyActive
	}

	o.activeRuns[runID] = struct{}{}
	return nil
}

// removeActiveRun снимает запуск с учёта.
func (o *Orchestrator) removeActiveRun(runID uuid.UUID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.activeRuns, runID)
}

// ActiveRunsCount возвращает количество активных запусков.
func (o *Orchestrator) ActiveRunsCount() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.activeRuns)
}
