// package source loads the list of videos to sync from a tab-separated file.
//
// Each line is `<video_id>\t<title>`. The title column is optional and only used for display.
// Blank lines are skipped and surrounding whitespace is trimmed from both columns.
// Video ids are not validated here; the remote service rejects malformed ids at insert time.
package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/desertthunder/plsync/internal/models"
	"github.com/desertthunder/plsync/internal/shared"
)

const (
	separator   = "\t"
	bom         = "\ufeff"
	maxLineSize = 1 << 20
)

// LoadTSV reads the source list at path.
func LoadTSV(path string) ([]models.PlaylistEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInputFile, err)
	}
	defer f.Close()

	entries, err := ParseTSV(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrInputFile, path, err)
	}
	return entries, nil
}

// ParseTSV parses tab-separated rows from r, preserving their order.
func ParseTSV(r io.Reader) ([]models.PlaylistEntry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var entries []models.PlaylistEntry
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			line = strings.TrimPrefix(line, bom)
			first = false
		}

		entry, ok := parseLine(line)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// parseLine splits a row into id and title. Rows without an id are reported as not ok.
func parseLine(line string) (models.PlaylistEntry, bool) {
	line = strings.TrimRight(line, "\r")
	if strings.TrimSpace(line) == "" {
		return models.PlaylistEntry{}, false
	}

	fields := strings.Split(line, separator)
	id := strings.TrimSpace(fields[0])
	if id == "" {
		return models.PlaylistEntry{}, false
	}

	var title string
	if len(fields) > 1 {
		title = strings.TrimSpace(fields[1])
	}
	return models.PlaylistEntry{VideoID: id, Title: title}, true
}
