package tasks

import (
	"context"
	"fmt"
	"iter"

	"github.com/desertthunder/plsync/internal/services"
	"github.com/desertthunder/plsync/internal/shared"
)

// ExistingSet is the snapshot of video ids present in the destination playlist at run start.
type ExistingSet map[string]struct{}

// Has reports whether id is in the set.
func (s ExistingSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Pages lazily walks the playlist listing, following continuation tokens until the service returns none.
//
// A failed call is yielded as the final element. pageSize is clamped to 1..[shared.MaxPageSize].
func Pages(ctx context.Context, svc services.Service, playlistID string, pageSize int64) iter.Seq2[*services.ItemPage, error] {
	pageSize = max(1, min(pageSize, shared.MaxPageSize))

	return func(yield func(*services.ItemPage, error) bool) {
		seen := map[string]bool{}
		token := ""
		for {
			page, err := svc.ListPlaylistItems(ctx, playlistID, token, pageSize)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(page, nil) || page.NextPageToken == "" {
				return
			}
			if seen[page.NextPageToken] {
				yield(nil, fmt.Errorf("page token %q repeated", page.NextPageToken))
				return
			}
			seen[page.NextPageToken] = true
			token = page.NextPageToken
		}
	}
}

// FetchExisting drains [Pages] into an [ExistingSet].
//
// Any failure discards the partial set and returns an error wrapping [shared.ErrFetchExisting].
func FetchExisting(ctx context.Context, svc services.Service, playlistID string, pageSize int64) (ExistingSet, error) {
	return fetchExisting(ctx, nil, svc, playlistID, pageSize)
}

func fetchExisting(ctx context.Context, progress chan<- ProgressUpdate, svc services.Service, playlistID string, pageSize int64) (ExistingSet, error) {
	existing := ExistingSet{}
	n := 0
	for page, err := range Pages(ctx, svc, playlistID, pageSize) {
		n++
		if err != nil {
			return nil, fmt.Errorf("%w: playlist %s page %d: %w", shared.ErrFetchExisting, playlistID, n, err)
		}
		for _, id := range page.VideoIDs {
			existing[id] = struct{}{}
		}
		sendProgress(ctx, progress, fetchedPageUpdate(n, len(existing)))
	}
	return existing, nil
}
