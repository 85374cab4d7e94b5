package ledger

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vunnam-pos/vunnam-pos/internal/platform/httpx"
)

// Handler serves the ledger book read API.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/accounts", h.listAccounts)
	r.Get("/entries", h.listEntries)
	r.Get("/stats", h.stats)
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.Accounts(r.Context())
	if err != nil {
		h.logger.Error("list accounts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, accounts)
}

type entryView struct {
	ID            int64      `json:"id"`
	Date          string     `json:"date"`
	Description   string     `json:"description"`
	Kind          EntryKind  `json:"kind"`
	ReferenceKind string     `json:"reference_kind,omitempty"`
	ReferenceID   int64      `json:"reference_id,omitempty"`
	Lines         []lineView `json:"lines"`
}

type lineView struct {
	AccountID int64   `json:"account_id"`
	Debit     float64 `json:"debit"`
	Credit    float64 `json:"credit"`
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.service.Entries(r.Context(), limit)
	if err != nil {
		h.logger.Error("list entries", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	views := make([]entryView, 0, len(entries))
	for _, e := range entries {
		v := entryView{
			ID:            e.ID,
			Date:          e.Date.Format(time.DateOnly),
			Description:   e.Description,
			Kind:          e.Kind,
			ReferenceKind: string(e.ReferenceKind),
			ReferenceID:   e.ReferenceID,
		}
		for _, l := range e.Lines {
			v.Lines = append(v.Lines, lineView{AccountID: l.AccountID, Debit: l.Debit, Credit: l.Credit})
		}
		views = append(views, v)
	}
	httpx.JSON(w, http.StatusOK, views)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.LedgerStats(r.Context())
	if err != nil {
		h.logger.Error("ledger stats", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}
