package assistant

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vunnam-pos/vunnam-pos/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/assistant/ask", h.ask)
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

func (h *Handler) ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "question is required")
		return
	}
	answer, err := h.service.Ask(r.Context(), req.Question)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			httpx.Problem(w, http.StatusServiceUnavailable, "Assistant Unavailable", err.Error())
			return
		}
		h.logger.Error("assistant ask", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, askResponse{Answer: answer})
}
