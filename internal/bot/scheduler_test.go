package bot

import (
	"context"
	"testing"
	"time"
)

func TestSchedulerRunsImmediatelyThenStops(t *testing.T) {
	h := newHarness(t, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		NewScheduler(h.bot, time.Hour).Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}

	// The first cycle runs before the ticker fires, even under cancellation.
	st, err := NewStatusFile(h.bot.cfg.History.StatusPath).Read()
	if err != nil {
		t.Fatal(err)
	}
	if st.TotalCycles != 1 {
		t.Errorf("TotalCycles = %d, want 1 immediate cycle", st.TotalCycles)
	}
}
