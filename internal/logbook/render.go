package logbook

import (
	"fmt"
	"strings"
	"time"

	"github.com/starford/streammark/internal/models"
)

// DefaultTimezone is used for the human-readable log view.
const DefaultTimezone = "Asia/Tokyo"

const lineTimeLayout = "2006-01-02 15:04:05"

// Render formats entries as "[YYYY-MM-DD HH:MM:SS] memo" lines in loc,
// joined with newlines.
func Render(entries []models.LogEntry, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("[%s] %s", e.Time().In(loc).Format(lineTimeLayout), e.Memo)
	}
	return strings.Join(lines, "\n")
}
