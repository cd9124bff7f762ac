// Package export moves tasks in and out of the store as JSON backups and
// iCalendar files.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"

	"github.com/nhle/task-recurrence/internal/model"
)

// MarshalTasks encodes tasks as an indented JSON array. Absent optional
// fields are omitted.
func MarshalTasks(tasks []model.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding tasks: %w", err)
	}
	return append(data, '\n'), nil
}

// UnmarshalTasks decodes a JSON array of tasks. Comments and trailing commas
// are accepted. Every task is normalized, so isRecurring always matches the
// presence of a pattern.
func UnmarshalTasks(data []byte) ([]model.Task, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONC: %w", err)
	}

	var tasks []model.Task
	if err := json.Unmarshal(standardized, &tasks); err != nil {
		return nil, fmt.Errorf("decoding tasks: %w", err)
	}

	for i, t := range tasks {
		tasks[i] = t.Normalize()
	}
	return tasks, nil
}

// ReadFile loads tasks from a JSON backup.
func ReadFile(path string) ([]model.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	tasks, err := UnmarshalTasks(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tasks, nil
}

// WriteFile replaces path with data atomically.
func WriteFile(path string, data []byte) error {
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
