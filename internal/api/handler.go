package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"speechcraft/internal/domain"
	"speechcraft/internal/feed"
	"speechcraft/internal/middleware"
	"speechcraft/internal/service/transcription"
)

// Handler serves the transcription HTTP API.
type Handler struct {
	svc    *transcription.Service
	store  domain.TranscriptionRepository
	hub    *feed.Hub
	logger *slog.Logger
}

// NewHandler creates the API handler. store backs the change-feed snapshot
// replay; hub streams subsequent changes.
func NewHandler(svc *transcription.Service, store domain.TranscriptionRepository, hub *feed.Hub, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		store:  store,
		hub:    hub,
		logger: logger.With("component", "api"),
	}
}

// Routes registers the transcription API on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", h.health)
	r.Post("/transcribe", h.submit)
	r.Get("/history/{userID}", h.history)
	r.Get("/stats/{userID}", h.stats)
	r.Get("/feed/{userID}", h.feed)
	r.Get("/{transcriptionID}/status", h.status)
	r.Delete("/{transcriptionID}", h.delete)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, "Service is healthy", map[string]string{"status": "ok"})
}

type submitBody struct {
	UserID   string `json:"userId"`
	AudioURL string `json:"audioUrl"`
	FileName string `json:"fileName"`
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var body submitBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	userID, err := h.effectiveUser(r, body.UserID)
	if err != nil {
		respondDomainError(w, err, "Failed to start transcription")
		return
	}

	result, err := h.svc.Submit(r.Context(), transcription.SubmitRequest{
		UserID:   userID,
		AudioURL: body.AudioURL,
		FileName: body.FileName,
	})
	if err != nil {
		respondDomainError(w, err, "Failed to start transcription")
		return
	}

	respondData(w, http.StatusAccepted, "Transcription started successfully", result)
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	userID, err := h.effectiveUser(r, r.URL.Query().Get("userId"))
	if err != nil {
		respondDomainError(w, err, "Failed to fetch transcription status")
		return
	}

	result, err := h.svc.GetStatus(r.Context(), chi.URLParam(r, "transcriptionID"), userID)
	if err != nil {
		respondDomainError(w, err, "Failed to fetch transcription status")
		return
	}

	message := transcription.StatusMessage(domain.Status(result.Status))
	respondData(w, http.StatusOK, message, result)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	userID, err := h.effectiveUser(r, chi.URLParam(r, "userID"))
	if err != nil {
		respondDomainError(w, err, "Failed to fetch transcription history")
		return
	}

	query := r.URL.Query()
	page, err := queryInt(query.Get("page"), 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to fetch transcription history", "page must be an integer")
		return
	}
	limit, err := queryInt(query.Get("limit"), 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to fetch transcription history", "limit must be an integer")
		return
	}

	result, err := h.svc.History(r.Context(), transcription.HistoryRequest{
		UserID: userID,
		Status: query.Get("status"),
		Search: query.Get("search"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		respondDomainError(w, err, "Failed to fetch transcription history")
		return
	}

	respondData(w, http.StatusOK, "Transcription history retrieved successfully", result)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	userID, err := h.effectiveUser(r, chi.URLParam(r, "userID"))
	if err != nil {
		respondDomainError(w, err, "Failed to fetch transcription stats")
		return
	}

	result, err := h.svc.Stats(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err, "Failed to fetch transcription stats")
		return
	}

	respondData(w, http.StatusOK, "Transcription stats retrieved successfully", result)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	userID, err := h.effectiveUser(r, r.URL.Query().Get("userId"))
	if err != nil {
		respondDomainError(w, err, "Failed to delete transcription")
		return
	}

	result, err := h.svc.Delete(r.Context(), chi.URLParam(r, "transcriptionID"), userID)
	if err != nil {
		respondDomainError(w, err, "Failed to delete transcription")
		return
	}

	respondData(w, http.StatusOK, "Transcription deleted successfully", result)
}

// effectiveUser resolves the user a request acts for. With authentication
// active the token subject is authoritative and a mismatched explicit user
// id is rejected; without it the explicit id is trusted as-is.
func (h *Handler) effectiveUser(r *http.Request, claimed string) (string, error) {
	principal, ok := middleware.UserFromContext(r.Context())
	if !ok {
		if claimed == "" {
			return "", domain.ErrValidation("userId is required")
		}
		return claimed, nil
	}
	if claimed != "" && claimed != principal {
		return "", domain.ErrAccessDenied("cannot act for another user")
	}
	return principal, nil
}

func queryInt(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
