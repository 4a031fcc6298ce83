package ui

import (
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/plsync/internal/models"
	"github.com/desertthunder/plsync/internal/shared"
)

var runHeaders = []string{"ID", "Started", "Playlist", "Planned", "Added", "Failed", "Limit"}

// RunTable renders run history as a bordered table, one row per run.
func RunTable(runs []*models.Run) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(NewStyle("#626262")).
		Headers(runHeaders...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, run := range runs {
		t.Row(runRow(run)...)
	}
	return t.Render()
}

func runRow(run *models.Run) []string {
	limit := strconv.Itoa(run.DailyLimit)
	if run.LimitReached {
		limit += " (hit)"
	}
	return []string{
		shared.ShortID(run.ID),
		run.StartedAt.Local().Format(time.DateTime),
		run.PlaylistID,
		strconv.Itoa(run.Planned),
		strconv.Itoa(run.Added),
		strconv.Itoa(run.Failed),
		limit,
	}
}
