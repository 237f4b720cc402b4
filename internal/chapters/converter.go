package chapters

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/starford/streammark/internal/apperr"
	"github.com/starford/streammark/internal/models"
	"github.com/starford/streammark/internal/telemetry"
	"github.com/starford/streammark/internal/youtube"
)

// ErrBusy is returned when a conversion is already in flight.
var ErrBusy = errors.New("chapters: conversion already in progress")

// ValidationError reports missing or malformed user input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Unwrap lets callers match apperr.ErrInvalidInput.
func (e *ValidationError) Unwrap() error { return apperr.ErrInvalidInput }

// StartTimeSource looks up when a live broadcast began.
type StartTimeSource interface {
	ActualStartTime(ctx context.Context, videoID, apiKey string) (time.Time, error)
}

// EntrySource supplies the current moment log.
type EntrySource interface {
	Entries() []models.LogEntry
}

// Request describes one conversion. URL is parsed for the video id unless
// VideoID is set directly.
type Request struct {
	URL     string
	VideoID string
	APIKey  string

	// Deliver, if set, runs with the finished result before the conversion
	// is reported. Its error fails the whole conversion.
	Deliver func(*Result) error
}

// Result is a finished conversion.
type Result struct {
	VideoID   string    `json:"video_id"`
	StartedAt time.Time `json:"started_at"`
	Lines     []string  `json:"lines"`
}

// Text joins the lines with newlines, ready to paste into a description.
func (r *Result) Text() string {
	return strings.Join(r.Lines, "\n")
}

// Hooks observe the in-flight state, e.g. to disable a trigger in a UI.
type Hooks struct {
	OnStart  func()
	OnFinish func(res *Result, err error)
}

// Converter turns the moment log into chapter lines for one video.
type Converter struct {
	log        EntrySource
	source     StartTimeSource
	startLabel string
	hooks      Hooks
	busy       atomic.Bool
}

// NewConverter creates a Converter. An empty startLabel uses the default.
func NewConverter(log EntrySource, source StartTimeSource, startLabel string, hooks Hooks) *Converter {
	if startLabel == "" {
		startLabel = models.DefaultStartLabel
	}
	return &Converter{log: log, source: source, startLabel: startLabel, hooks: hooks}
}

// Busy reports whether a conversion is in flight.
func (c *Converter) Busy() bool {
	return c.busy.Load()
}

// Convert validates req, fetches the stream start time once and maps every
// log entry to its elapsed offset. Only one conversion runs at a time.
func (c *Converter) Convert(ctx context.Context, req Request) (res *Result, err error) {
	if !c.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	if c.hooks.OnStart != nil {
		c.hooks.OnStart()
	}
	defer func() {
		c.busy.Store(false)
		telemetry.ConversionFinished(err)
		if c.hooks.OnFinish != nil {
			c.hooks.OnFinish(res, err)
		}
	}()

	videoID := strings.TrimSpace(req.VideoID)
	if videoID == "" {
		id, ok := youtube.VideoID(req.URL)
		if !ok {
			return nil, &ValidationError{Field: "url", Message: "enter a valid YouTube URL"}
		}
		videoID = id
	}
	apiKey := strings.TrimSpace(req.APIKey)
	if apiKey == "" {
		return nil, &ValidationError{Field: "api_key", Message: "enter a YouTube Data API key"}
	}

	began := time.Now()
	start, err := c.source.ActualStartTime(ctx, videoID, apiKey)
	telemetry.ObserveLookup(time.Since(began))
	if err != nil {
		return nil, fmt.Errorf("chapters: lookup start time: %w", err)
	}

	out := &Result{
		VideoID:   videoID,
		StartedAt: start,
		Lines:     Lines(c.log.Entries(), start, c.startLabel),
	}
	if req.Deliver != nil {
		if err := req.Deliver(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}
