package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/streammark/internal/markservice"
	"github.com/starford/streammark/internal/storage"
)

// AddPatternRequest is the request body for adding a memo pattern.
type AddPatternRequest struct {
	Pattern string `json:"pattern" example:"ハイライト" validate:"required"`
}

// PatternsResponse wraps the pattern list.
type PatternsResponse struct {
	Added    *bool    `json:"added,omitempty"`
	Patterns []string `json:"patterns" validate:"required"`
}

// RecordRequest is the request body for recording a moment.
type RecordRequest struct {
	Memo string `json:"memo" example:"質問" validate:"required"`
}

// Validate validates the record request.
func (r RecordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Memo, validation.Required),
	)
}

// LogResponse is the log as entries plus the rendered text view.
type LogResponse = markservice.LogView

// ResetResponse reports whether the log was cleared.
type ResetResponse struct {
	Cleared bool `json:"cleared"`
}

// APIKeyRequest is the request body for saving the YouTube API key.
type APIKeyRequest struct {
	APIKey string `json:"api_key" example:"AIza..."`
}

// APIKeyResponse describes the saved key without revealing it.
type APIKeyResponse struct {
	Configured bool   `json:"configured"`
	Masked     string `json:"masked,omitempty" example:"************WXYZ"`
}

// ConvertRequest is the request body for a chapter conversion.
type ConvertRequest struct {
	URL     string `json:"url" example:"https://www.youtube.com/live/dQw4w9WgXcQ"`
	VideoID string `json:"video_id,omitempty" example:"dQw4w9WgXcQ"`
	APIKey  string `json:"api_key,omitempty"`
	SaveAs  string `json:"save_as,omitempty" example:"2024-03-01.txt"`
}

// Validate validates the conversion request shape; URL parsing and key
// presence are checked by the converter.
func (r ConvertRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.VideoID, validation.When(r.VideoID != "", validation.Length(11, 11))),
		validation.Field(&r.SaveAs, validation.Length(0, 255)),
	)
}

// ConvertResponse is a finished conversion.
type ConvertResponse = markservice.ConvertResult

// ExportsResponse lists exported chapter files.
type ExportsResponse struct {
	Files []storage.ExportedFile `json:"files" validate:"required"`
}
