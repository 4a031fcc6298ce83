package tasks

import "github.com/desertthunder/plsync/internal/models"

// PlanOpts selects the planner behaviour.
type PlanOpts struct {
	// Dedupe drops ids that repeat in the source list once the first occurrence is queued.
	Dedupe bool
}

// Plan returns the entries whose ids are not in existing, in source order.
//
// With Dedupe unset, repeated ids are kept and each will be attempted.
func Plan(entries []models.PlaylistEntry, existing ExistingSet, opts PlanOpts) []models.WorkItem {
	items := make([]models.WorkItem, 0, len(entries))
	queued := make(map[string]bool)

	for _, e := range entries {
		if existing.Has(e.VideoID) {
			continue
		}
		if opts.Dedupe {
			if queued[e.VideoID] {
				continue
			}
			queued[e.VideoID] = true
		}
		items = append(items, models.WorkItem{VideoID: e.VideoID, Title: e.Title})
	}
	return items
}
