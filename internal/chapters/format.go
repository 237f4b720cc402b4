// Package chapters converts the moment log into stream-relative chapter lines.
package chapters

import (
	"fmt"
	"time"

	"github.com/starford/streammark/internal/models"
)

// FormatElapsed renders whole seconds as zero-padded HH:MM:SS. Hours grow
// past two digits when needed; non-positive input renders as 00:00:00.
func FormatElapsed(seconds int64) string {
	if seconds <= 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Elapsed returns whole seconds between start and the entry, floored, and
// clamped to zero for entries recorded at or before start.
func Elapsed(e models.LogEntry, start time.Time) int64 {
	ms := e.Timestamp - start.UnixMilli()
	if ms <= 0 {
		return 0
	}
	return ms / 1000
}

// Lines returns the chapter list: a synthetic "00:00:00 <startLabel>" line
// followed by one line per entry, in log order.
func Lines(entries []models.LogEntry, start time.Time, startLabel string) []string {
	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, FormatElapsed(0)+" "+startLabel)
	for _, e := range entries {
		lines = append(lines, FormatElapsed(Elapsed(e, start))+" "+e.Memo)
	}
	return lines
}
