// YouTube Data API v3 implementation of [Service]
//
// Quota costs: playlistItems.list is 1 unit per page, playlistItems.insert is 50 units.
package services

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const videoKind = "youtube#video"

// YouTubeService implements the Service interface on top of the generated Data API client.
type YouTubeService struct {
	service *youtube.Service
}

// NewYouTubeService creates a YouTube service that sends requests through client.
//
// client is expected to carry OAuth credentials (see [GoogleAuth.Client]). Extra options are
// appended after the client, which lets tests point the service at a local endpoint.
func NewYouTubeService(ctx context.Context, client *http.Client, opts ...option.ClientOption) (*YouTubeService, error) {
	if client == nil {
		return nil, fmt.Errorf("http client is required")
	}

	opts = append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	return &YouTubeService{service: svc}, nil
}

// Name returns the service name.
func (y *YouTubeService) Name() string {
	return "YouTube"
}

// ListPlaylistItems fetches one page of the playlist's contents, requesting only contentDetails.
func (y *YouTubeService) ListPlaylistItems(ctx context.Context, playlistID, pageToken string, pageSize int64) (*ItemPage, error) {
	call := y.service.PlaylistItems.List([]string{"contentDetails"}).
		PlaylistId(playlistID).
		MaxResults(pageSize).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, classifyError(err)
	}

	page := &ItemPage{
		VideoIDs:      make([]string, 0, len(resp.Items)),
		NextPageToken: resp.NextPageToken,
	}
	for _, item := range resp.Items {
		if item.ContentDetails == nil || item.ContentDetails.VideoId == "" {
			continue
		}
		page.VideoIDs = append(page.VideoIDs, item.ContentDetails.VideoId)
	}

	return page, nil
}

// InsertPlaylistItem appends videoID to the end of the playlist.
func (y *YouTubeService) InsertPlaylistItem(ctx context.Context, playlistID, videoID string) error {
	item := &youtube.PlaylistItem{
		Snippet: &youtube.PlaylistItemSnippet{
			PlaylistId: playlistID,
			ResourceId: &youtube.ResourceId{
				Kind:    videoKind,
				VideoId: videoID,
			},
		},
	}

	if _, err := y.service.PlaylistItems.Insert([]string{"snippet"}, item).Context(ctx).Do(); err != nil {
		return classifyError(err)
	}
	return nil
}
