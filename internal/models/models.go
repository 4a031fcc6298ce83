package models

import (
	"fmt"
	"time"
)

// Model defines the base interface for persistent models.
type Model interface {
	GetID() string   // GetID returns the unique identifier for this model
	Validate() error // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// PlaylistEntry is one row of the source list. Order in the source list is insertion priority.
type PlaylistEntry struct {
	VideoID string
	Title   string // display only
}

// WorkItem is a video selected for an insert attempt.
type WorkItem struct {
	VideoID string
	Title   string
}

// Failure records a video that could not be inserted.
type Failure struct {
	VideoID string `json:"video_id"`
	Reason  string `json:"reason"`
}

// RunOutcome accumulates the results of the insert phase.
//
// Added + len(Failures) == Attempted always holds.
type RunOutcome struct {
	Added        int
	Attempted    int
	Failures     []Failure
	LimitReached bool
}

// Succeed records a successful insert.
func (o *RunOutcome) Succeed() {
	o.Attempted++
	o.Added++
}

// Fail records a rejected insert.
func (o *RunOutcome) Fail(videoID, reason string) {
	o.Attempted++
	o.Failures = append(o.Failures, Failure{VideoID: videoID, Reason: reason})
}

// Failed returns the number of failed attempts.
func (o *RunOutcome) Failed() int {
	return len(o.Failures)
}

// Run is the persisted record of a completed sync run.
type Run struct {
	ID           string    `json:"id"`
	PlaylistID   string    `json:"playlist_id"`
	SourcePath   string    `json:"source_path"`
	Loaded       int       `json:"loaded"`   // rows read from the source list
	Existing     int       `json:"existing"` // ids already in the playlist at start
	Planned      int       `json:"planned"`  // work items after filtering
	Attempted    int       `json:"attempted"`
	Added        int       `json:"added"`
	Failed       int       `json:"failed"`
	DailyLimit   int       `json:"daily_limit"`
	LimitReached bool      `json:"limit_reached"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	Failures     []Failure `json:"failures,omitempty"`
}

// GetID returns the run identifier.
func (r *Run) GetID() string {
	return r.ID
}

// Duration is the wall time the run took.
func (r *Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Validate checks the run's required fields and counter invariants.
func (r *Run) Validate() error {
	switch {
	case r.ID == "":
		return fmt.Errorf("run id is required")
	case r.PlaylistID == "":
		return fmt.Errorf("playlist id is required")
	case r.Added+r.Failed != r.Attempted:
		return fmt.Errorf("added (%d) + failed (%d) must equal attempted (%d)", r.Added, r.Failed, r.Attempted)
	case r.Attempted > r.Planned:
		return fmt.Errorf("attempted (%d) exceeds planned (%d)", r.Attempted, r.Planned)
	case r.FinishedAt.Before(r.StartedAt):
		return fmt.Errorf("finished_at is before started_at")
	}
	return nil
}
