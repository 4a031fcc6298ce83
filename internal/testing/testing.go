// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"testing"

	"github.com/desertthunder/plsync/internal/services"
)

// FakePlaylist is an in-memory [services.Service] holding the server-side state of one playlist.
//
// Successful inserts are appended to Items, so a second run observes the first run's additions.
type FakePlaylist struct {
	Items      []string         // video ids currently in the playlist
	InsertErrs map[string]error // per-video insert failures
	ListErr    error            // returned by the listing call for page FailPage
	FailPage   int              // 1-based page that fails with ListErr; 0 never fails

	mu        sync.Mutex
	listCalls []string // page tokens requested
	inserted  []string // every insert attempt, in order
}

// NewFakePlaylist returns a fake playlist containing ids.
func NewFakePlaylist(ids ...string) *FakePlaylist {
	return &FakePlaylist{Items: ids, InsertErrs: map[string]error{}}
}

func (f *FakePlaylist) Name() string { return "fake" }

// ListPlaylistItems pages through Items. Page tokens are the decimal offset of the next page.
func (f *FakePlaylist) ListPlaylistItems(ctx context.Context, playlistID, pageToken string, pageSize int64) (*services.ItemPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listCalls = append(f.listCalls, pageToken)
	if f.FailPage > 0 && len(f.listCalls) == f.FailPage {
		return nil, f.ListErr
	}

	offset := 0
	if pageToken != "" {
		n, err := strconv.Atoi(pageToken)
		if err != nil {
			return nil, fmt.Errorf("bad page token %q", pageToken)
		}
		offset = n
	}
	if pageSize <= 0 {
		pageSize = 50
	}

	end := min(offset+int(pageSize), len(f.Items))
	page := &services.ItemPage{VideoIDs: append([]string(nil), f.Items[offset:end]...)}
	if end < len(f.Items) {
		page.NextPageToken = strconv.Itoa(end)
	}
	return page, nil
}

// InsertPlaylistItem records the attempt and appends videoID unless InsertErrs names it.
func (f *FakePlaylist) InsertPlaylistItem(ctx context.Context, playlistID, videoID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.inserted = append(f.inserted, videoID)
	if err := f.InsertErrs[videoID]; err != nil {
		return err
	}
	f.Items = append(f.Items, videoID)
	return nil
}

// ListCalls returns the page tokens passed to the listing call.
func (f *FakePlaylist) ListCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.listCalls...)
}

// Attempts returns every video id passed to an insert call.
func (f *FakePlaylist) Attempts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.inserted...)
}

// Reset clears recorded calls, keeping Items.
func (f *FakePlaylist) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = nil
	f.inserted = nil
}

// SequentialIDs returns n ids of the form prefix0000.
func SequentialIDs(prefix string, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s%04d", prefix, i)
	}
	return ids
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites int, target io.Writer) *LimitedWriter {
	return &LimitedWriter{maxWrites: maxWrites, target: target}
}

// WriteFile writes content to path, failing the test on error.
func WriteFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
	return path
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertNoFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("File should not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}
