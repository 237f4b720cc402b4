package chapters

import (
	"slices"
	"testing"
	"time"

	"github.com/starford/streammark/internal/models"
)

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "00:00:00"},
		{-5, "00:00:00"},
		{59, "00:00:59"},
		{60, "00:01:00"},
		{125, "00:02:05"},
		{3661, "01:01:01"},
		{86399, "23:59:59"},
		{99*3600 + 59*60 + 59, "99:59:59"},
		{100 * 3600, "100:00:00"},
	}
	for _, tt := range tests {
		if got := FormatElapsed(tt.in); got != tt.want {
			t.Errorf("FormatElapsed(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestElapsed_FloorsAndClamps(t *testing.T) {
	start := time.UnixMilli(1_000_000)
	tests := []struct {
		ts   int64
		want int64
	}{
		{1_000_000, 0},
		{999_000, 0},
		{0, 0},
		{1_000_999, 0},
		{1_001_000, 1},
		{1_061_999, 61},
	}
	for _, tt := range tests {
		if got := Elapsed(models.LogEntry{Timestamp: tt.ts}, start); got != tt.want {
			t.Errorf("Elapsed(%d) = %d, want %d", tt.ts, got, tt.want)
		}
	}
}

func TestLines(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	t0 := start.UnixMilli()
	entries := []models.LogEntry{
		{Timestamp: t0 - 30_000, Memo: "before start"},
		{Timestamp: t0 + 125_000, Memo: "面白かったところ"},
		{Timestamp: t0 + 3_661_500, Memo: "質問"},
	}
	got := Lines(entries, start, models.DefaultStartLabel)
	want := []string{
		"00:00:00 配信開始",
		"00:00:00 before start",
		"00:02:05 面白かったところ",
		"01:01:01 質問",
	}
	if !slices.Equal(got, want) {
		t.Errorf("Lines =\n%v\nwant\n%v", got, want)
	}
}

func TestLines_EmptyLog(t *testing.T) {
	got := Lines(nil, time.Now(), "start")
	if !slices.Equal(got, []string{"00:00:00 start"}) {
		t.Errorf("Lines = %v", got)
	}
}
