// Conductor Scheduler — создаёт runs по расписаниям.
//
// Scheduler раз в секунду проверяет due schedules и создаёт PENDING
// runs с ключом идемпотентности. В кластере работает только лидер:
// лидерство берётся через pg_try_advisory_lock.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/impactrealty/conductor/internal/mq"
	"github.com/impactrealty/conductor/internal/repo"
	"github.com/impactrealty/conductor/internal/scheduler"
	"github.com/impactrealty/conductor/internal/telemetry"
)

const schedLockKey int64 = 424242

var tickTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "conductor_scheduler_ticks_total",
	Help: "Total scheduler ticks executed as leader",
})

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting conductor-scheduler")

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

	// RabbitMQ (опционально)
	var publisher *mq.Publisher
	mqConn, err := mq.Connect(mq.DefaultURL(), logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, runs will be picked up by polling", "error", err)
	} else {
		defer mqConn.Close()
		logger.Info("RabbitMQ connected")
		publisher = mq.NewPublisher(mqConn, logger)
	}

	sched := scheduler.New(scheduler.Config{
		ScheduleRepo: repo.NewScheduleRepo(pool),
		RunRepo:      repo.NewRunRepo(pool),
		Publisher:    publisher,
		Logger:       logger,
	})

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	// scheduler loop
	go func() {
		tk := time.NewTicker(1 * time.Second)
		defer tk.Stop()

		var hasLock bool
		defer func() {
			if hasLock {
				_, _ = pool.Exec(context.Background(), "select pg_advisory_unlock($1)", schedLockKey)
			}
		}()

		for {
			select {
			case <-tk.C:
				// пытаемся стать лидером (или подтвердить лидерство)
				if !hasLock {
					var ok bool
					if err := pool.QueryRow(ctx, "select pg_try_advisory_lock($1)", schedLockKey).Scan(&ok); err != nil {
						logger.Error("advisory lock failed", "error", err)
						continue
					}
					hasLock = ok
					if hasLock {
						logger.Info("became scheduler leader")
					}
				}

				if !hasLock {
					// не лидер — пропускаем тик
					continue
				}

				tickTotal.Inc()
				if err := sched.Tick(ctx); err != nil {
					logger.Error("scheduler tick failed", "error", err)
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	// serve
	port := ":8081"
	if v := os.Getenv("SCHED_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("conductor-scheduler stopped")
}
