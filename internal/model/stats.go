package model

import "time"

// TaskStats summarizes a task collection.
type TaskStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Overdue   int `json:"overdue"`

	// CompletionRate is Completed/Total as a percentage, 0 when empty.
	CompletionRate float64 `json:"completionRate"`
}

// ComputeStats counts tasks by state as of now.
func ComputeStats(tasks []Task, now time.Time) TaskStats {
	var st TaskStats
	st.Total = len(tasks)
	for _, t := range tasks {
		switch {
		case t.Completed:
			st.Completed++
		case t.IsOverdue(now):
			st.Overdue++
			st.Pending++
		default:
			st.Pending++
		}
	}
	if st.Total > 0 {
		st.CompletionRate = float64(st.Completed) / float64(st.Total) * 100
	}
	return st
}
