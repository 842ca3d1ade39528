package ingest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/attar/internal/auth"
	"github.com/MrJamesThe3rd/attar/internal/transaction"
)

// Handler accepts transactions pushed by terminals.
type Handler struct {
	svc *transaction.Service
	now func() time.Time
}

func NewHandler(svc *transaction.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/transactions", h.pushTransaction)
}

type ingestResponse struct {
	ID      uuid.UUID          `json:"id"`
	Status  transaction.Status `json:"status"`
	Created bool               `json:"created"`
}

// pushTransaction answers 201 for a new transaction and 200 for one already held.
func (h *Handler) pushTransaction(w http.ResponseWriter, r *http.Request) {
	var tx transaction.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if tx.ID == uuid.Nil {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	if len(tx.Lines) == 0 {
		http.Error(w, "transaction has no lines", http.StatusBadRequest)
		return
	}

	if terminalID, ok := auth.TerminalID(r.Context()); ok && tx.TerminalID != terminalID {
		http.Error(w, "terminal mismatch", http.StatusForbidden)
		return
	}

	created, err := h.svc.Ingest(r.Context(), &tx, h.now().UTC())
	if err != nil {
		slog.Error("failed to ingest transaction", "id", tx.ID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(ingestResponse{ID: tx.ID, Status: transaction.StatusSynced, Created: created}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
