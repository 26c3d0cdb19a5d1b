package bot

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// LogEntry is one line of the JSONL response log. Log-mode runs record
// exactly what would have been posted, which makes dry runs reviewable.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	CycleID   string    `json:"cycle_id"`
	PostID    string    `json:"post_id"`
	Author    string    `json:"author"`
	Post      string    `json:"post"`
	Response  string    `json:"response"`
	Action    string    `json:"action"` // "reply", "quote" or "summary"
	WouldPost bool      `json:"would_post"`
	Strategy  string    `json:"strategy"`
	Score     float64   `json:"score"`
}

// ResponseLogger appends entries to a flat JSONL file.
type ResponseLogger struct {
	path string
}

func NewResponseLogger(path string) (*ResponseLogger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	return &ResponseLogger{path: path}, nil
}

func (l *ResponseLogger) Log(entry LogEntry) error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	line = append(line, '\n')
	_, err = f.Write(line)
	return err
}

// Recent returns entries newer than the cutoff, skipping unparseable lines.
func (l *ResponseLogger) Recent(cutoff time.Time) ([]LogEntry, error) {
	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entries []LogEntry
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var entry LogEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		if entry.Timestamp.After(cutoff) {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}
