// Package markservice coordinates the pattern list, the moment log, the
// saved API key and chapter conversion for every surface (CLI, HTTP, MCP).
package markservice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/streammark/internal/apperr"
	"github.com/starford/streammark/internal/chapters"
	"github.com/starford/streammark/internal/kv"
	"github.com/starford/streammark/internal/logbook"
	"github.com/starford/streammark/internal/models"
	"github.com/starford/streammark/internal/patterns"
	"github.com/starford/streammark/internal/settings"
	"github.com/starford/streammark/internal/sse"
	"github.com/starford/streammark/internal/storage"
	"github.com/starford/streammark/internal/telemetry"
)

// Publisher receives state redraw events.
type Publisher interface {
	Publish(event sse.Event)
}

// Options configures a Service.
type Options struct {
	KV         kv.Store
	Source     chapters.StartTimeSource
	Exports    *storage.FS
	Location   *time.Location
	StartLabel string
	Publisher  Publisher
	Logger     *slog.Logger
	Now        func() time.Time
}

// LogView is the log as both structured entries and the rendered text view.
type LogView struct {
	Entries []models.LogEntry `json:"entries"`
	Text    string            `json:"text"`
}

// ConvertRequest is a chapter conversion request. An empty APIKey falls back
// to the saved key; SaveAs, when set, names an export file.
type ConvertRequest struct {
	URL     string
	VideoID string
	APIKey  string
	SaveAs  string
}

// ConvertResult is a finished conversion.
type ConvertResult struct {
	chapters.Result
	Text    string `json:"text"`
	SavedTo string `json:"saved_to,omitempty"`
}

// ConvertState is the payload of convert.started and convert.finished events.
type ConvertState struct {
	Busy   bool           `json:"busy"`
	Result *ConvertResult `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// Service is the shared application service.
type Service struct {
	patterns  *patterns.Store
	log       *logbook.Store
	apiKey    *settings.APIKey
	converter *chapters.Converter
	exports   *storage.FS
	loc       *time.Location
	publisher Publisher
	logger    *slog.Logger
}

// New loads state from opts.KV and wires change notifications to opts.Publisher.
func New(opts Options) (*Service, error) {
	s := &Service{
		apiKey:    settings.NewAPIKey(opts.KV),
		exports:   opts.Exports,
		loc:       opts.Location,
		publisher: opts.Publisher,
		logger:    opts.Logger,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	var err error
	s.patterns, err = patterns.Load(opts.KV, s.patternsChanged)
	if err != nil {
		return nil, err
	}
	s.log, err = logbook.Load(opts.KV, opts.Now, s.logChanged)
	if err != nil {
		return nil, err
	}
	telemetry.SetLogEntries(s.log.Len())

	s.converter = chapters.NewConverter(s.log, opts.Source, opts.StartLabel, chapters.Hooks{
		OnStart: func() {
			s.publish(sse.Event{Type: sse.TypeConvertStarted, Data: ConvertState{Busy: true}})
		},
		OnFinish: func(res *chapters.Result, err error) {
			st := ConvertState{}
			if res != nil {
				st.Result = &ConvertResult{Result: *res, Text: res.Text()}
			}
			if err != nil {
				st.Error = err.Error()
			}
			s.publish(sse.Event{Type: sse.TypeConvertFinished, Data: st})
		},
	})
	return s, nil
}

// Patterns returns the memo patterns in display order.
func (s *Service) Patterns() []string {
	return s.patterns.List()
}

// AddPattern adds a memo pattern; empty and duplicate labels are ignored.
func (s *Service) AddPattern(pattern string) (bool, error) {
	return s.patterns.Add(pattern)
}

// RemovePattern removes the pattern at index; invalid indices are ignored.
func (s *Service) RemovePattern(index int) error {
	return s.patterns.Remove(index)
}

// Record stamps memo with the current time.
func (s *Service) Record(memo string) (models.LogEntry, error) {
	if strings.TrimSpace(memo) == "" {
		return models.LogEntry{}, fmt.Errorf("memo is required: %w", apperr.ErrInvalidInput)
	}
	e, err := s.log.Record(memo)
	if err != nil {
		return models.LogEntry{}, err
	}
	telemetry.RecordMoment()
	s.logger.Debug("moment recorded", slog.String("memo", e.Memo), slog.Int64("timestamp", e.Timestamp))
	return e, nil
}

// Log returns the current log.
func (s *Service) Log() LogView {
	entries := s.log.Entries()
	return LogView{Entries: entries, Text: logbook.Render(entries, s.loc)}
}

// ResetLog clears the log when c confirms.
func (s *Service) ResetLog(c logbook.Confirmer) (bool, error) {
	cleared, err := s.log.Reset(c)
	if err == nil && cleared {
		s.logger.Info("log reset")
	}
	return cleared, err
}

// APIKey returns the saved YouTube Data API key.
func (s *Service) APIKey() (string, error) {
	return s.apiKey.Get()
}

// SetAPIKey saves the YouTube Data API key.
func (s *Service) SetAPIKey(key string) error {
	return s.apiKey.Set(key)
}

// Busy reports whether a conversion is in flight.
func (s *Service) Busy() bool {
	return s.converter.Busy()
}

// Convert runs one chapter conversion and optionally exports the result.
func (s *Service) Convert(ctx context.Context, req ConvertRequest) (*ConvertResult, error) {
	key, err := s.apiKey.Resolve(req.APIKey)
	if err != nil {
		return nil, err
	}
	var savedTo string
	creq := chapters.Request{URL: req.URL, VideoID: req.VideoID, APIKey: key}
	if req.SaveAs != "" {
		creq.Deliver = func(res *chapters.Result) error {
			if s.exports == nil {
				return fmt.Errorf("export directory not configured: %w", apperr.ErrInvalidInput)
			}
			path, err := s.exports.Write(req.SaveAs, []byte(res.Text()+"\n"))
			if err != nil {
				return fmt.Errorf("export chapters: %w", err)
			}
			savedTo = path
			return nil
		}
	}
	res, err := s.converter.Convert(ctx, creq)
	if err != nil {
		return nil, err
	}
	out := &ConvertResult{Result: *res, Text: res.Text(), SavedTo: savedTo}
	s.logger.Info("chapters converted",
		slog.String("video_id", out.VideoID),
		slog.Time("started_at", out.StartedAt),
		slog.Int("lines", len(out.Lines)))
	return out, nil
}

// Exports lists exported chapter files.
func (s *Service) Exports() ([]storage.ExportedFile, error) {
	if s.exports == nil {
		return []storage.ExportedFile{}, nil
	}
	return s.exports.List()
}

// Reload re-reads both stores and publishes fresh state. It is used when
// another process wrote the database.
func (s *Service) Reload() {
	if err := s.patterns.Reload(); err != nil {
		s.logger.Warn("reload patterns failed", slog.String("error", err.Error()))
	} else {
		s.patternsChanged()
	}
	if err := s.log.Reload(); err != nil {
		s.logger.Warn("reload log failed", slog.String("error", err.Error()))
	} else {
		s.logChanged()
	}
}

// Snapshot returns the events a client needs to draw the current state.
func (s *Service) Snapshot() []sse.Event {
	conv := sse.Event{Type: sse.TypeConvertFinished, Data: ConvertState{}}
	if s.Busy() {
		conv = sse.Event{Type: sse.TypeConvertStarted, Data: ConvertState{Busy: true}}
	}
	return []sse.Event{
		{Type: sse.TypePatternsUpdated, Data: s.patterns.List()},
		{Type: sse.TypeLogUpdated, Data: s.Log()},
		conv,
	}
}

func (s *Service) patternsChanged() {
	s.publish(sse.Event{Type: sse.TypePatternsUpdated, Data: s.patterns.List()})
}

func (s *Service) logChanged() {
	telemetry.SetLogEntries(s.log.Len())
	s.publish(sse.Event{Type: sse.TypeLogUpdated, Data: s.Log()})
}

func (s *Service) publish(ev sse.Event) {
	if s.publisher != nil {
		s.publisher.Publish(ev)
	}
}
