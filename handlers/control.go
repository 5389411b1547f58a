package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// controlRoutes is the test-suite API. It has no counterpart on the real
// gateway.
//
//   - POST /decline_all_cards          – every following charge is declined.
//   - POST /clear                      – reset registry, failure mode and logs.
//   - POST /clear_log                  – truncate the log file only.
//   - GET  /status                     – failure mode and entity counts.
//   - POST /transactions/{id}/settle   – mark a transaction settled.
//   - GET  /journal                    – every operation since the last clear.
func (h *Handler) controlRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(cors)
	r.Post("/decline_all_cards", h.declineAllCards)
	r.Post("/clear", h.clear)
	r.Post("/clear_log", h.clearLog)
	r.Get("/status", h.status)
	r.Post("/transactions/{id}/settle", h.settle)
	r.Get("/journal", h.journal)
	return r
}

func (h *Handler) declineAllCards(w http.ResponseWriter, r *http.Request) {
	h.gw.DeclineAllCards()
	writeJSON(w, http.StatusOK, h.gw.Stats())
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.gw.Clear(); err != nil {
		h.log.Error("clear failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to clear log state")
		return
	}
	writeJSON(w, http.StatusOK, h.gw.Stats())
}

func (h *Handler) clearLog(w http.ResponseWriter, r *http.Request) {
	if err := h.gw.ClearLog(); err != nil {
		h.log.Error("clear log failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to clear log")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.gw.Stats())
}

func (h *Handler) settle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	annotate(r, "transaction.id", id)

	tx, err := h.gw.SettleTransaction(id)
	if err != nil {
		h.writeGatewayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (h *Handler) journal(w http.ResponseWriter, r *http.Request) {
	entries, err := h.gw.Journal()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read journal")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
