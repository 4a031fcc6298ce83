package tasks

import (
	"context"
	"fmt"
)

// ProgressUpdate represents a progress event during a sync run.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	PhaseLoad Phase = iota
	PhaseFetch
	PhasePlan
	PhaseInsert
)

func (p Phase) String() string {
	switch p {
	case PhaseLoad:
		return "load_source"
	case PhaseFetch:
		return "fetch_existing"
	case PhasePlan:
		return "plan"
	case PhaseInsert:
		return "insert"
	default:
		return ""
	}
}

// sendProgress delivers update unless ctx ends first. A nil channel discards updates.
func sendProgress(ctx context.Context, progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	case <-ctx.Done():
	}
}

func readingSourceUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseLoad,
		Step:    1,
		Total:   2,
		Message: fmt.Sprintf("Reading TSV: %s", path),
	}
}

func loadedSourceUpdate(rows int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseLoad,
		Step:    2,
		Total:   2,
		Message: fmt.Sprintf("Loaded %d rows.", rows),
		Data:    rows,
	}
}

func fetchingExistingUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseFetch,
		Step:    0,
		Total:   1,
		Message: "Fetching existing videos in destination playlist (to avoid duplicates)...",
	}
}

func fetchedPageUpdate(page, ids int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseFetch,
		Step:    page,
		Message: fmt.Sprintf("Fetched page %d (%d ids so far)", page, ids),
	}
}

func existingUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseFetch,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Destination already contains %d videos.", count),
		Data:    count,
	}
}

func plannedUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhasePlan,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("%d videos to add after de-duplication.", count),
		Data:    count,
	}
}

func addedUpdate(added, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseInsert,
		Step:    added,
		Total:   total,
		Message: fmt.Sprintf("Added %d so far...", added),
	}
}

func limitReachedUpdate(limit, remaining int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseInsert,
		Step:    limit,
		Total:   limit,
		Message: fmt.Sprintf("Reached daily limit of %d. Stopping for today.", limit),
		Data:    remaining,
	}
}
