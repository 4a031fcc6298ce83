// package services defines interface Service for the remote playlist API and implements it for the YouTube Data API
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
)

// Service defines the playlist operations a sync run needs from the remote platform.
type Service interface {
	// ListPlaylistItems returns one page of video ids in the playlist.
	// An empty pageToken requests the first page; an empty NextPageToken in the result marks the last page.
	ListPlaylistItems(ctx context.Context, playlistID, pageToken string, pageSize int64) (*ItemPage, error)

	// InsertPlaylistItem appends a video to the playlist.
	InsertPlaylistItem(ctx context.Context, playlistID, videoID string) error

	// Name returns the name of the service (e.g., "YouTube")
	Name() string
}

// ItemPage is one page of a playlist listing.
type ItemPage struct {
	VideoIDs      []string
	NextPageToken string
}

// APIError is a request the remote service answered with an error status.
type APIError struct {
	Code    int    // HTTP status
	Message string // service-provided message
	Reason  string // machine-readable reason, e.g. "videoNotFound" or "quotaExceeded"
	Err     error
}

// Error renders the error as "HTTP <status> <message>".
func (e *APIError) Error() string {
	return strings.TrimSpace(fmt.Sprintf("HTTP %d %s", e.Code, e.Message))
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// QuotaExceeded reports whether the service refused the call because the daily quota is spent.
func (e *APIError) QuotaExceeded() bool {
	return e.Code == 403 && (e.Reason == "quotaExceeded" || e.Reason == "dailyLimitExceeded")
}

// classifyError converts a [googleapi.Error] into an [APIError]; other errors pass through unchanged.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	apiErr := &APIError{Code: gerr.Code, Message: gerr.Message, Err: err}
	if len(gerr.Errors) > 0 {
		apiErr.Reason = gerr.Errors[0].Reason
		if apiErr.Message == "" {
			apiErr.Message = gerr.Errors[0].Message
		}
	}
	return apiErr
}
