package domain

// MaxHistoryEntries bounds the number of executions kept per task.
const MaxHistoryEntries = 3

// TaskHistory is the bounded, most-recent-first list of a task's executions.
type TaskHistory struct {
	executions []*ExecutionRecord
}

// NewTaskHistory builds a history from executions ordered most recent first.
// Entries beyond MaxHistoryEntries are dropped.
func NewTaskHistory(executions ...*ExecutionRecord) *TaskHistory {
	h := &TaskHistory{}
	for i := len(executions) - 1; i >= 0; i-- {
		h.Prepend(executions[i])
	}
	return h
}

// Executions returns the recorded executions, most recent first.
func (h *TaskHistory) Executions() []*ExecutionRecord {
	out := make([]*ExecutionRecord, len(h.executions))
	copy(out, h.executions)
	return out
}

// Len returns the number of recorded executions.
func (h *TaskHistory) Len() int {
	return len(h.executions)
}

// Prepend inserts rec as the most recent execution and drops the oldest
// entries beyond MaxHistoryEntries.
func (h *TaskHistory) Prepend(rec *ExecutionRecord) {
	next := make([]*ExecutionRecord, 0, MaxHistoryEntries)
	next = append(next, rec)
	for _, e := range h.executions {
		if len(next) == MaxHistoryEntries {
			break
		}
		next = append(next, e)
	}
	h.executions = next
}

// BestMatch selects the execution most comparable to current.
//
// With no current outputs, the first execution that also has no outputs wins
// immediately. Otherwise the execution sharing the most output files wins;
// ties go to the more recent one, and a full overlap ends the scan early.
// No execution is selected when none shares at least one output.
func (h *TaskHistory) BestMatch(current *ExecutionRecord) Option[*ExecutionRecord] {
	want := current.OutputFiles.Len()

	var best *ExecutionRecord
	bestOverlap := 0

	for _, e := range h.executions {
		if want == 0 {
			if e.OutputFiles.IsEmpty() {
				return Some(e)
			}
			continue
		}

		overlap := current.OutputFiles.Overlap(e.OutputFiles)
		if overlap > bestOverlap {
			best = e
			bestOverlap = overlap
		}
		if overlap == want {
			break
		}
	}

	if best == nil {
		return None[*ExecutionRecord]()
	}
	return Some(best)
}
