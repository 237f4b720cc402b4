package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/streammark/internal/logbook"
	"github.com/starford/streammark/internal/markservice"
	"github.com/starford/streammark/internal/settings"
	"github.com/starford/streammark/internal/storage"
)

const maxBodyBytes = 1 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *markservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *markservice.Service) *Handler {
	return &Handler{svc: svc}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// ListPatterns handles GET /api/patterns.
//
//	@Summary		List memo patterns
//	@Tags			patterns
//	@Produce		json
//	@Success		200	{object}	PatternsResponse
//	@Security		BearerAuth
//	@Router			/patterns [get]
func (h *Handler) ListPatterns(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, PatternsResponse{Patterns: h.svc.Patterns()})
}

// AddPattern handles POST /api/patterns. Empty and duplicate patterns are
// accepted as no-ops and reported with added=false.
//
//	@Summary		Add a memo pattern
//	@Tags			patterns
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AddPatternRequest	true	"Pattern to add"
//	@Success		200		{object}	PatternsResponse
//	@Success		201		{object}	PatternsResponse
//	@Security		BearerAuth
//	@Router			/patterns [post]
func (h *Handler) AddPattern(w http.ResponseWriter, r *http.Request) {
	var req AddPatternRequest
	if !decode(w, r, &req) {
		return
	}
	added, err := h.svc.AddPattern(req.Pattern)
	if err != nil {
		writeError(w, "add pattern", err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeJSON(w, status, PatternsResponse{Added: &added, Patterns: h.svc.Patterns()})
}

// RemovePattern handles DELETE /api/patterns/{index}.
//
//	@Summary		Remove a memo pattern by position
//	@Tags			patterns
//	@Produce		json
//	@Param			index	path		int	true	"Zero-based position"
//	@Success		200		{object}	PatternsResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/patterns/{index} [delete]
func (h *Handler) RemovePattern(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("index must be an integer"))
		return
	}
	if err := h.svc.RemovePattern(index); err != nil {
		writeError(w, "remove pattern", err)
		return
	}
	writeJSON(w, http.StatusOK, PatternsResponse{Patterns: h.svc.Patterns()})
}

// GetLog handles GET /api/log. With format=text the rendered view is
// returned as plain text.
//
//	@Summary		Get the moment log
//	@Tags			log
//	@Produce		json,plain
//	@Param			format	query		string	false	"Response format"	Enums(json, text)
//	@Success		200		{object}	LogResponse
//	@Security		BearerAuth
//	@Router			/log [get]
func (h *Handler) GetLog(w http.ResponseWriter, r *http.Request) {
	view := h.svc.Log()
	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(view.Text))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// RecordMoment handles POST /api/log.
//
//	@Summary		Record a moment now
//	@Tags			log
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RecordRequest	true	"Memo to record"
//	@Success		201		{object}	models.LogEntry
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/log [post]
func (h *Handler) RecordMoment(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	if !decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	e, err := h.svc.Record(req.Memo)
	if err != nil {
		writeError(w, "record moment", err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// ResetLog handles DELETE /api/log?confirm=true. Without confirmation the
// log is left untouched.
//
//	@Summary		Clear the moment log
//	@Tags			log
//	@Produce		json
//	@Param			confirm	query		bool	true	"Must be true"
//	@Success		200		{object}	ResetResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/log [delete]
func (h *Handler) ResetLog(w http.ResponseWriter, r *http.Request) {
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	cleared, err := h.svc.ResetLog(logbook.ConfirmFunc(func(string) bool { return confirmed }))
	if err != nil {
		writeError(w, "reset log", err)
		return
	}
	if !cleared {
		writeJSON(w, http.StatusConflict, errorBody("confirmation required: pass confirm=true"))
		return
	}
	writeJSON(w, http.StatusOK, ResetResponse{Cleared: true})
}

// GetAPIKey handles GET /api/settings/api-key.
//
//	@Summary		Show whether a YouTube API key is saved
//	@Tags			settings
//	@Produce		json
//	@Success		200	{object}	APIKeyResponse
//	@Security		BearerAuth
//	@Router			/settings/api-key [get]
func (h *Handler) GetAPIKey(w http.ResponseWriter, _ *http.Request) {
	key, err := h.svc.APIKey()
	if err != nil {
		writeError(w, "get api key", err)
		return
	}
	writeJSON(w, http.StatusOK, APIKeyResponse{Configured: key != "", Masked: settings.Mask(key)})
}

// PutAPIKey handles PUT /api/settings/api-key.
//
//	@Summary		Save the YouTube API key
//	@Tags			settings
//	@Accept			json
//	@Param			body	body	APIKeyRequest	true	"Key to save"
//	@Success		204		"Key saved"
//	@Security		BearerAuth
//	@Router			/settings/api-key [put]
func (h *Handler) PutAPIKey(w http.ResponseWriter, r *http.Request) {
	var req APIKeyRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.SetAPIKey(req.APIKey); err != nil {
		writeError(w, "save api key", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Convert handles POST /api/convert.
//
//	@Summary		Convert the log into YouTube chapter lines
//	@Tags			convert
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ConvertRequest	true	"Video and key"
//	@Success		200		{object}	ConvertResponse
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Failure		429		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/convert [post]
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if !decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	res, err := h.svc.Convert(r.Context(), markservice.ConvertRequest{
		URL:     req.URL,
		VideoID: req.VideoID,
		APIKey:  req.APIKey,
		SaveAs:  req.SaveAs,
	})
	if err != nil {
		writeError(w, "convert", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListExports handles GET /api/exports.
//
//	@Summary		List exported chapter files
//	@Tags			convert
//	@Produce		json
//	@Success		200	{object}	ExportsResponse
//	@Security		BearerAuth
//	@Router			/exports [get]
func (h *Handler) ListExports(w http.ResponseWriter, _ *http.Request) {
	files, err := h.svc.Exports()
	if err != nil {
		writeError(w, "list exports", err)
		return
	}
	if files == nil {
		files = []storage.ExportedFile{}
	}
	writeJSON(w, http.StatusOK, ExportsResponse{Files: files})
}
