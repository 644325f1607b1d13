package orchestrator

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestNew_Defaults(t *testing.T) {
	o := New(Config{})

	if o.pollInterval != defaultPollInterval {
		t.Errorf("pollInterval = %v, want %v", o.pollInterval, defaultPollInterval)
	}
	if o.batchSize != defaultBatchSize {
		t.Errorf("batchSize = %d, want %d", o.batchSize, defaultBatchSize)
	}
	if cap(o.sem) != defaultMaxConcurrent {
		t.Errorf("sem cap = %d, want %d", cap(o.sem), defaultMaxConcurrent)
	}
	if o.runTimeout != defaultRunTimeout {
		t.Errorf("runTimeout = %v, want %v", o.runTimeout, defaultRunTimeout)
	}
}

func TestActiveRunBookkeeping(t *testing.T) {
	o := New(Config{})
	id := uuid.New()

	if o.isRunActive(id) {
		t.Fatal("run should not be active initially")
	}

	if err := o.addActiveRun(id); err != nil {
		t.Fatalf("addActiveRun: %v", err)
	}
	if !o.isRunActive(id) {
		t.Fatal("run should be active after add")
	}
	if o.ActiveRunsCount() != 1 {
		t.Errorf("ActiveRunsCount = %d, want 1", o.ActiveRunsCount())
	}

	if err := o.addActiveRun(id); !errors.Is(err, ErrRunAlreadyActive) {
		t.Errorf("second add: got %v, want ErrRunAlreadyActive", err)
	}

	o.removeActiveRun(id)
	if o.isRunActive(id) {
		t.Fatal("run should not be active after remove")
	}
}

func TestIsBenignDispatchError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{ErrRunNotPending, true},
		{ErrRunAlreadyActive, true},
		{ErrRunNotFound, false},
		{errors.New("db down"), false},
		{nil, false},
	}

	for _, tc := range cases {
		if got := isBenignDispatchError(tc.err); got != tc.want {
			t.Errorf("isBenignDispatchError(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
