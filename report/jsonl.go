package report

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JSONL appends one JSON object per event to a file.
type JSONL struct {
	mu     sync.Mutex
	file   *os.File
	seq    int64
	runID  string
	nowFn  func() time.Time
	failed error
}

type jsonlEntry struct {
	Seq       int64  `json:"seq"`
	Timestamp string `json:"ts"`
	RunID     string `json:"run"`
	Event
}

// OpenJSONL opens (or creates) path for appending. Every line written by the
// returned sink carries the same freshly generated run ID.
func OpenJSONL(path string) (*JSONL, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("report: open events file: %w", err)
	}
	return &JSONL{file: f, runID: uuid.NewString(), nowFn: time.Now}, nil
}

// RunID identifies the lines written by this sink.
func (j *JSONL) RunID() string {
	return j.runID
}

func (j *JSONL) Emit(e Event) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return
	}

	j.seq++
	data, err := json.Marshal(jsonlEntry{
		Seq:       j.seq,
		Timestamp: j.nowFn().Format(time.RFC3339Nano),
		RunID:     j.runID,
		Event:     e,
	})
	if err != nil {
		j.failed = err
		return
	}
	data = append(data, '\n')
	if _, err := j.file.Write(data); err != nil && j.failed == nil {
		j.failed = err
	}
}

// Err reports the first write failure, if any.
func (j *JSONL) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.failed
}

// Close closes the underlying file.
func (j *JSONL) Close() error {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return nil
	}
	err := j.file.Close()
	j.file = nil
	return err
}
