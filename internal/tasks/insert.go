package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plsync/internal/models"
	"github.com/desertthunder/plsync/internal/services"
	"golang.org/x/time/rate"
)

// DefaultProgressEvery is how many successful inserts pass between progress updates.
const DefaultProgressEvery = 25

// Inserter adds work items to a playlist one at a time until the items run out
// or DailyLimit successful inserts have been made.
type Inserter struct {
	Service       services.Service
	DailyLimit    int           // successes allowed this run; <= 0 attempts nothing
	Sleep         time.Duration // minimum spacing between attempts; <= 0 disables pacing
	ProgressEvery int           // defaults to [DefaultProgressEvery]
	Progress      chan<- ProgressUpdate
	Logger        *log.Logger
}

// Insert attempts items in order and returns the outcome. Per-item errors are recorded, never returned.
//
// The limit check runs before every attempt and counts successes only, so failed attempts do not
// use up the limit. The run stops early only if ctx is done.
func (in *Inserter) Insert(ctx context.Context, playlistID string, items []models.WorkItem) *models.RunOutcome {
	outcome := &models.RunOutcome{}
	every := in.ProgressEvery
	if every <= 0 {
		every = DefaultProgressEvery
	}

	quotaSpent := false
	var limiter *rate.Limiter
	if in.Sleep > 0 {
		limiter = rate.NewLimiter(rate.Every(in.Sleep), 1)
	}

	for i, item := range items {
		if outcome.Added >= in.DailyLimit {
			outcome.LimitReached = true
			sendProgress(ctx, in.Progress, limitReachedUpdate(in.DailyLimit, len(items)-i))
			break
		}

		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				in.logger().Warn("insert loop interrupted", "error", err)
				break
			}
		} else if ctx.Err() != nil {
			break
		}

		err := in.Service.InsertPlaylistItem(ctx, playlistID, item.VideoID)
		if err != nil {
			reason := failureReason(err)
			outcome.Fail(item.VideoID, reason)
			in.logger().Warn("failed to add video", "id", item.VideoID, "title", item.Title, "reason", reason)
			if !quotaSpent && quotaExceeded(err) {
				quotaSpent = true
				in.logger().Warn("daily API quota is spent; remaining inserts will fail until it resets", "remaining", len(items)-i-1)
			}
			continue
		}

		outcome.Succeed()
		in.logger().Debug("added video", "id", item.VideoID, "title", item.Title)
		if outcome.Added%every == 0 {
			sendProgress(ctx, in.Progress, addedUpdate(outcome.Added, len(items)))
		}
	}

	return outcome
}

func (in *Inserter) logger() *log.Logger {
	if in.Logger == nil {
		return log.Default()
	}
	return in.Logger
}

// failureReason renders err for the failure log: "HTTP <status> <message>" for service errors,
// the error text otherwise.
func failureReason(err error) string {
	var apiErr *services.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return err.Error()
}

func quotaExceeded(err error) bool {
	var apiErr *services.APIError
	return errors.As(err, &apiErr) && apiErr.QuotaExceeded()
}
