package bot

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spacesedan/replyflow/internal/models"
)

func TestStatusFileAggregatesOutcomes(t *testing.T) {
	sf := NewStatusFile(filepath.Join(t.TempDir(), "status.json"))

	outcomes := []models.Outcome{
		models.OutcomePosted,
		models.OutcomeLogged,
		models.OutcomeSkipped,
		models.OutcomeSkipped,
		models.OutcomeFailed,
	}
	for i, outcome := range outcomes {
		result := models.CycleResult{
			CycleID:    "c" + string(rune('0'+i)),
			Outcome:    outcome,
			FinishedAt: testTime,
		}
		if err := sf.Record(result, i+1); err != nil {
			t.Fatal(err)
		}
	}

	st, err := sf.Read()
	if err != nil {
		t.Fatal(err)
	}
	if st.TotalCycles != 5 {
		t.Errorf("TotalCycles = %d, want 5", st.TotalCycles)
	}
	if st.Posted != 1 || st.Logged != 1 || st.Skipped != 2 || st.Failed != 1 {
		t.Errorf("counts = %d/%d/%d/%d", st.Posted, st.Logged, st.Skipped, st.Failed)
	}
	if st.HistorySize != 5 {
		t.Errorf("HistorySize = %d, want 5", st.HistorySize)
	}
	if st.LastCycle == nil || st.LastCycle.Outcome != models.OutcomeFailed {
		t.Error("LastCycle should hold the most recent result")
	}
}

func TestStatusFileReadEmpty(t *testing.T) {
	sf := NewStatusFile(filepath.Join(t.TempDir(), "status.json"))

	st, err := sf.Read()
	if err != nil {
		t.Fatal(err)
	}
	if st.TotalCycles != 0 || st.LastCycle != nil {
		t.Errorf("empty status = %+v", st)
	}
}

func TestResponseLoggerRecentCutoff(t *testing.T) {
	rl, err := NewResponseLogger(filepath.Join(t.TempDir(), "responses.jsonl"))
	if err != nil {
		t.Fatal(err)
	}

	old := LogEntry{Timestamp: testTime.Add(-48 * time.Hour), PostID: "old"}
	fresh := LogEntry{Timestamp: testTime, PostID: "fresh"}
	for _, e := range []LogEntry{old, fresh} {
		if err := rl.Log(e); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := rl.Recent(testTime.Add(-24 * time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("Recent() returned %d entries, want 1", len(entries))
	}
	if entries[0].PostID != "fresh" {
		t.Errorf("Recent() kept %q", entries[0].PostID)
	}
}

func TestResponseLoggerRecentMissingFile(t *testing.T) {
	rl, err := NewResponseLogger(filepath.Join(t.TempDir(), "responses.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	entries, err := rl.Recent(testTime)
	if err != nil {
		t.Fatal(err)
	}
	if entries != nil {
		t.Errorf("Recent() on missing file = %v, want nil", entries)
	}
}
