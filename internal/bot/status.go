package bot

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spacesedan/replyflow/internal/models"
)

// Status aggregates cycle outcomes across the life of the state file. The
// status command reads this instead of process memory, so it works whether
// or not a loop is currently running.
type Status struct {
	LastCycle   *models.CycleResult `json:"last_cycle,omitempty"`
	TotalCycles int                 `json:"total_cycles"`
	Posted      int                 `json:"posted"`
	Logged      int                 `json:"logged"`
	Skipped     int                 `json:"skipped"`
	Failed      int                 `json:"failed"`
	HistorySize int                 `json:"history_size"`
	LastSummary time.Time           `json:"last_summary,omitempty"`
}

// StatusFile persists Status as flat JSON next to the other state files.
type StatusFile struct {
	path string
	mu   sync.Mutex
}

func NewStatusFile(path string) *StatusFile {
	return &StatusFile{path: path}
}

// Record folds a finished cycle into the persisted status.
func (s *StatusFile) Record(result models.CycleResult, historySize int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, err := s.readLocked()
	if err != nil {
		status = &Status{}
	}

	status.LastCycle = &result
	status.TotalCycles++
	status.HistorySize = historySize
	switch result.Outcome {
	case models.OutcomePosted:
		status.Posted++
	case models.OutcomeLogged:
		status.Logged++
	case models.OutcomeSkipped:
		status.Skipped++
	case models.OutcomeFailed:
		status.Failed++
	}

	return s.writeLocked(status)
}

// MarkSummaryPosted stamps the daily-summary marker so a restart within the
// same day never repeats the recap.
func (s *StatusFile) MarkSummaryPosted(t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, err := s.readLocked()
	if err != nil {
		status = &Status{}
	}
	status.LastSummary = t
	return s.writeLocked(status)
}

// Read returns the persisted status, or an empty one when no cycle has run.
func (s *StatusFile) Read() (*Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

func (s *StatusFile) writeLocked(status *Status) error {
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}

func (s *StatusFile) readLocked() (*Status, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return &Status{}, nil
	}
	if err != nil {
		return nil, err
	}

	var status Status
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("parsing status file: %w", err)
	}
	return &status, nil
}
