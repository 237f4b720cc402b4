// Package models defines the domain types for streammark.
package models

import "time"

// LogEntry is a recorded moment: the wall-clock capture time and the memo label.
type LogEntry struct {
	Timestamp int64  `json:"timestamp"` // milliseconds since epoch
	Memo      string `json:"memo"`
}

// Time returns the entry timestamp as a time.Time.
func (e LogEntry) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// DefaultMemoPatterns is used when no pattern list has been saved yet.
var DefaultMemoPatterns = []string{"チャプター1", "面白かったところ", "重要なポイント", "質問"}

// DefaultStartLabel is the memo of the synthetic first chapter line.
const DefaultStartLabel = "配信開始"
