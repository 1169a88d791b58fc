package indexer

import (
	"fmt"
	"time"

	"github.com/rflorenc/azure-search-workbench/wire"
)

// Overall indexer states.
const (
	StatusUnknown = "unknown"
	StatusError   = "error"
	StatusRunning = "running"
)

// Execution result states.
const (
	ResultInProgress        = "inProgress"
	ResultSuccess           = "success"
	ResultTransientFailure  = "transientFailure"
	ResultPersistentFailure = "persistentFailure"
	ResultReset             = "reset"
)

// ExecutionResult is one indexer run as reported by the status endpoint.
type ExecutionResult struct {
	Status         string
	ErrorMessage   string
	StartTime      *time.Time
	EndTime        *time.Time
	ItemsProcessed int
	ItemsFailed    int
	Errors         []map[string]any
	Warnings       []map[string]any
}

// Finished reports whether the run has reached a terminal state.
func (r *ExecutionResult) Finished() bool {
	return r != nil && r.Status != ResultInProgress
}

// Failed reports whether the run ended in a failure state.
func (r *ExecutionResult) Failed() bool {
	return r != nil && (r.Status == ResultTransientFailure || r.Status == ResultPersistentFailure)
}

// Status is a typed view over GET /indexers/<name>/status.
type Status struct {
	Status           string
	LastResult       *ExecutionResult
	ExecutionHistory []ExecutionResult
	Limits           map[string]any
}

// Idle reports whether no run is currently in progress.
func (s *Status) Idle() bool {
	return s.LastResult == nil || s.LastResult.Finished()
}

// FinishedAfter reports whether the last run has finished and is newer than
// a run that started at prev. A nil prev accepts any finished run.
func (s *Status) FinishedAfter(prev *time.Time) bool {
	last := s.LastResult
	if !last.Finished() {
		return false
	}
	if prev == nil {
		return true
	}
	return last.StartTime != nil && last.StartTime.After(*prev)
}

// ParseStatus decodes a status payload. Unknown attributes are ignored.
func ParseStatus(data any) (*Status, error) {
	f, err := wire.Load("indexer status", data)
	if err != nil {
		return nil, err
	}
	st := &Status{
		Status: f.String("status"),
		Limits: f.Map("limits"),
	}
	if m := f.Map("last_result"); m != nil {
		r, err := parseResult(m)
		if err != nil {
			return nil, err
		}
		st.LastResult = &r
	}
	for i, m := range f.Maps("execution_history") {
		r, err := parseResult(m)
		if err != nil {
			return nil, fmt.Errorf("execution history %d: %w", i, err)
		}
		st.ExecutionHistory = append(st.ExecutionHistory, r)
	}
	if err := f.Err(); err != nil {
		return nil, err
	}
	return st, nil
}

func parseResult(m map[string]any) (ExecutionResult, error) {
	f := wire.NewFields("execution result", m)
	r := ExecutionResult{
		Status:       f.String("status"),
		ErrorMessage: f.String("error_message"),
		StartTime:    f.Time("start_time"),
		EndTime:      f.Time("end_time"),
		Errors:       f.Maps("errors"),
		Warnings:     f.Maps("warnings"),
	}
	if n := f.IntPtr("items_processed"); n != nil {
		r.ItemsProcessed = *n
	}
	if n := f.IntPtr("items_failed"); n != nil {
		r.ItemsFailed = *n
	}
	return r, f.Err()
}
