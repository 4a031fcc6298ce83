package tasks

import (
	"context"
	"time"

	"github.com/desertthunder/plsync/internal/services"
)

// timeoutService bounds every remote call by d.
type timeoutService struct {
	services.Service
	d time.Duration
}

// WithCallTimeout wraps svc so each call runs under its own deadline. d <= 0 returns svc unchanged.
func WithCallTimeout(svc services.Service, d time.Duration) services.Service {
	if d <= 0 {
		return svc
	}
	return &timeoutService{Service: svc, d: d}
}

func (s *timeoutService) ListPlaylistItems(ctx context.Context, playlistID, pageToken string, pageSize int64) (*services.ItemPage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.d)
	defer cancel()
	return s.Service.ListPlaylistItems(ctx, playlistID, pageToken, pageSize)
}

func (s *timeoutService) InsertPlaylistItem(ctx context.Context, playlistID, videoID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.d)
	defer cancel()
	return s.Service.InsertPlaylistItem(ctx, playlistID, videoID)
}
