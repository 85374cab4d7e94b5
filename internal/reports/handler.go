package reports

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

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
	r.Route("/reports", func(r chi.Router) {
		r.Get("/pnl", h.pnl)
		r.Get("/daily-revenue", h.dailyRevenue)
		r.Get("/top-products", h.topProducts)
		r.Get("/comparison", h.comparison)
	})
}

func (h *Handler) pnl(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.parseRange(w, r)
	if !ok {
		return
	}
	pnl, err := h.service.Pnl(r.Context(), from, to)
	if err != nil {
		h.logger.Error("pnl report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pnl)
}

func (h *Handler) dailyRevenue(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.parseRange(w, r)
	if !ok {
		return
	}
	out, err := h.service.DailyRevenue(r.Context(), from, to)
	if err != nil {
		h.logger.Error("daily revenue report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if out == nil {
		out = []DailyRevenue{}
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) topProducts(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.parseRange(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	out, err := h.service.TopProducts(r.Context(), from, to, limit)
	if err != nil {
		h.logger.Error("top products report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if out == nil {
		out = []TopProduct{}
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) comparison(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.parseRange(w, r)
	if !ok {
		return
	}
	cmp, err := h.service.Compare(r.Context(), from, to)
	if err != nil {
		h.logger.Error("period comparison", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cmp)
}

// parseRange reads from/to query params; both default to today.
func (h *Handler) parseRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	today := time.Now().Truncate(24 * time.Hour)
	from, to := today, today

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Range", "from must be YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Range", "to must be YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
		to = parsed
	}
	if to.Before(from) {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Range", "to must not precede from")
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}
