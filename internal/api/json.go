package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/streammark/internal/apperr"
	"github.com/starford/streammark/internal/chapters"
	"github.com/starford/streammark/internal/youtube"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// writeError maps domain errors to HTTP statuses with a user-facing message.
func writeError(w http.ResponseWriter, op string, err error) {
	var ve *chapters.ValidationError
	var le *youtube.LookupError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody(ve.Message))
	case errors.Is(err, apperr.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, chapters.ErrBusy):
		writeJSON(w, http.StatusTooManyRequests, errorBody("a conversion is already running"))
	case errors.Is(err, youtube.ErrVideoNotFound):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody("video not found"))
	case errors.Is(err, youtube.ErrNotLiveArchive):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody("live start time unavailable; the video may not be an archived live stream"))
	case errors.As(err, &le):
		writeJSON(w, http.StatusBadGateway, errorBody(le.Message))
	case errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusGatewayTimeout, errorBody("video lookup timed out"))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
