// package formatter renders run outcomes: the console summary, the failure log, and exports of run history
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/plsync/internal/models"
)

// FormatFailures renders failures as "<video_id>\t<reason>" lines.
//
// Runs of whitespace in a reason, tabs and newlines included, collapse to a single space
// so each failure stays on one line.
func FormatFailures(failures []models.Failure) []byte {
	var buf bytes.Buffer
	for _, f := range failures {
		buf.WriteString(f.VideoID)
		buf.WriteByte('\t')
		buf.WriteString(strings.Join(strings.Fields(f.Reason), " "))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// WriteFailureLog truncates path and writes one line per failure.
func WriteFailureLog(path string, failures []models.Failure) error {
	if path == "" {
		return fmt.Errorf("failure log path is empty")
	}
	if err := os.WriteFile(path, FormatFailures(failures), 0644); err != nil {
		return fmt.Errorf("failed to write failure log: %w", err)
	}
	return nil
}

// WriteSummary prints the end-of-run summary. The failure line only appears when something failed.
func WriteSummary(w io.Writer, outcome *models.RunOutcome, logPath string) error {
	if _, err := fmt.Fprintf(w, "\nDone. Successfully added: %d\n", outcome.Added); err != nil {
		return err
	}
	if n := outcome.Failed(); n > 0 {
		if _, err := fmt.Fprintf(w, "Failures: %d (see %s)\n", n, logPath); err != nil {
			return err
		}
	}
	return nil
}

// ExportRunToText renders one run with its failures for `history show`.
func ExportRunToText(run *models.Run) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Run: %s\n", run.ID))
	buf.WriteString(fmt.Sprintf("Playlist: %s\n", run.PlaylistID))
	buf.WriteString(fmt.Sprintf("Source: %s\n", run.SourcePath))
	buf.WriteString(fmt.Sprintf("Started: %s\n", run.StartedAt.Local().Format(time.DateTime)))
	buf.WriteString(fmt.Sprintf("Duration: %s\n\n", run.Duration().Round(time.Millisecond)))

	buf.WriteString(fmt.Sprintf("Loaded: %d\n", run.Loaded))
	buf.WriteString(fmt.Sprintf("Already present: %d\n", run.Existing))
	buf.WriteString(fmt.Sprintf("Planned: %d\n", run.Planned))
	buf.WriteString(fmt.Sprintf("Attempted: %d\n", run.Attempted))
	buf.WriteString(fmt.Sprintf("Added: %d\n", run.Added))
	buf.WriteString(fmt.Sprintf("Failed: %d\n", run.Failed))

	limit := fmt.Sprintf("Daily limit: %d", run.DailyLimit)
	if run.LimitReached {
		limit += " (reached)"
	}
	buf.WriteString(limit + "\n")

	if len(run.Failures) > 0 {
		buf.WriteString("\nFailures:\n")
		for i, f := range run.Failures {
			buf.WriteString(fmt.Sprintf("%d. %s  %s\n", i+1, f.VideoID, f.Reason))
		}
	}

	return buf.Bytes()
}

// ExportRunToJSON renders one run, failures included, as indented JSON.
func ExportRunToJSON(run *models.Run) ([]byte, error) {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal run: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportRunsToCSV converts runs to CSV with columns: ID, Playlist, Source, Started, Loaded, Existing,
// Planned, Attempted, Added, Failed, Limit, LimitReached
func ExportRunsToCSV(runs []*models.Run) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Playlist", "Source", "Started", "Loaded", "Existing", "Planned", "Attempted", "Added", "Failed", "Limit", "LimitReached"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, run := range runs {
		record := []string{
			run.ID,
			run.PlaylistID,
			run.SourcePath,
			run.StartedAt.UTC().Format(time.RFC3339),
			strconv.Itoa(run.Loaded),
			strconv.Itoa(run.Existing),
			strconv.Itoa(run.Planned),
			strconv.Itoa(run.Attempted),
			strconv.Itoa(run.Added),
			strconv.Itoa(run.Failed),
			strconv.Itoa(run.DailyLimit),
			strconv.FormatBool(run.LimitReached),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}
