package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/plsync/internal/models"
	"github.com/desertthunder/plsync/internal/shared"
)

func TestParseTSV(t *testing.T) {
	tc := []struct {
		name  string
		input string
		want  []models.PlaylistEntry
	}{
		{
			name:  "id and title",
			input: "A1\tSong A\nA2\tSong B\n",
			want: []models.PlaylistEntry{
				{VideoID: "A1", Title: "Song A"},
				{VideoID: "A2", Title: "Song B"},
			},
		},
		{
			name:  "blank lines skipped and order kept",
			input: "A1\tSong A\nA2\tSong B\n\nA1\tDup\n",
			want: []models.PlaylistEntry{
				{VideoID: "A1", Title: "Song A"},
				{VideoID: "A2", Title: "Song B"},
				{VideoID: "A1", Title: "Dup"},
			},
		},
		{
			name:  "missing title column",
			input: "A1\nA2\t\n",
			want: []models.PlaylistEntry{
				{VideoID: "A1", Title: ""},
				{VideoID: "A2", Title: ""},
			},
		},
		{
			name:  "whitespace trimmed",
			input: "  A1  \t  Song A  \n",
			want:  []models.PlaylistEntry{{VideoID: "A1", Title: "Song A"}},
		},
		{
			name:  "CRLF line endings",
			input: "A1\tSong A\r\nA2\tSong B\r\n",
			want: []models.PlaylistEntry{
				{VideoID: "A1", Title: "Song A"},
				{VideoID: "A2", Title: "Song B"},
			},
		},
		{
			name:  "extra columns ignored",
			input: "A1\tSong A\t3:45\textra\n",
			want:  []models.PlaylistEntry{{VideoID: "A1", Title: "Song A"}},
		},
		{
			name:  "whitespace-only line and empty id skipped",
			input: "   \n\tOrphan title\nA1\n",
			want:  []models.PlaylistEntry{{VideoID: "A1"}},
		},
		{
			name:  "byte order mark stripped",
			input: "\ufeffA1\tSong A\n",
			want:  []models.PlaylistEntry{{VideoID: "A1", Title: "Song A"}},
		},
		{
			name:  "no trailing newline",
			input: "A1\tSong A",
			want:  []models.PlaylistEntry{{VideoID: "A1", Title: "Song A"}},
		},
		{
			name:  "ids are not validated",
			input: "not a real id!\tWhatever\n",
			want:  []models.PlaylistEntry{{VideoID: "not a real id!", Title: "Whatever"}},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTSV(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d entries, got %d: %+v", len(tt.want), len(got), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("entry %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLoadTSV(t *testing.T) {
	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "playlist.tsv")
		if err := os.WriteFile(path, []byte("A1\tSong A\nA2\tSong B\n"), 0644); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}

		entries, err := LoadTSV(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries[1].VideoID != "A2" {
			t.Errorf("expected second id A2, got %s", entries[1].VideoID)
		}
	})

	t.Run("unreadable path", func(t *testing.T) {
		_, err := LoadTSV(filepath.Join(t.TempDir(), "missing.tsv"))
		if !errors.Is(err, shared.ErrInputFile) {
			t.Errorf("expected ErrInputFile, got %v", err)
		}
	})

	t.Run("directory is not readable as a list", func(t *testing.T) {
		_, err := LoadTSV(t.TempDir())
		if !errors.Is(err, shared.ErrInputFile) {
			t.Errorf("expected ErrInputFile, got %v", err)
		}
	})
}
