package scheduler

import (
	"testing"
	"time"

	"github.com/impactrealty/conductor/internal/domain"
)

func TestCalculateNextDue_Interval(t *testing.T) {
	sched := &domain.Schedule{
		IntervalSec: 3600,
		Timezone:    "UTC",
	}
	from := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("CalculateNextDue: %v", err)
	}

	want := from.Add(time.Hour)
	if !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestCalculateNextDue_Cron(t *testing.T) {
	sched := &domain.Schedule{
		CronExpr: "0 9 * * 1", // каждый понедельник в 09:00
		Timezone: "UTC",
	}
	from := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC) // понедельник после 09:00

	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("CalculateNextDue: %v", err)
	}

	want := time.Date(2025, 6, 9, 9, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestCalculateNextDue_InvalidTimezoneFallsBackToUTC(t *testing.T) {
	sched := &domain.Schedule{
		IntervalSec: 60,
		Timezone:    "Mars/Olympus_Mons",
	}
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("CalculateNextDue: %v", err)
	}
	if !next.Equal(from.Add(time.Minute)) {
		t.Errorf("next = %v, want %v", next, from.Add(time.Minute))
	}
}

func TestCalculateNextDue_NeitherCronNorInterval(t *testing.T) {
	sched := &domain.Schedule{Timezone: "UTC"}

	if _, err := CalculateNextDue(sched, time.Now()); err == nil {
		t.Fatal("expected error for schedule without cron_expr and interval_sec")
	}
}

func TestValidateCronExpr(t *testing.T) {
	if err := ValidateCronExpr("*/5 * * * *"); err != nil {
		t.Errorf("valid expression rejected: %v", err)
	}
	if err := ValidateCronExpr("not a cron"); err == nil {
		t.Error("invalid expression accepted")
	}
}
