package handler

import (
	"fmt"
	"net/http"

	"github.com/xsoluti-sigelo/sigelo/internal/audit"
	"github.com/xsoluti-sigelo/sigelo/internal/contaazul"
	"github.com/xsoluti-sigelo/sigelo/internal/context"
	"github.com/xsoluti-sigelo/sigelo/internal/database"
	"github.com/xsoluti-sigelo/sigelo/internal/errHandler"
	"github.com/xsoluti-sigelo/sigelo/internal/response"
)

type contaAzulHandler struct {
	db         *database.DB
	errHandler *errHandler.ErrorRepository
	contaAzul  *contaazul.Client
	auditor    *AuditRecorder
}

func NewContaAzulHandler(db *database.DB, errHandler *errHandler.ErrorRepository, contaAzul *contaazul.Client, auditor *AuditRecorder) *contaAzulHandler {
	return &contaAzulHandler{
		db:         db,
		errHandler: errHandler,
		contaAzul:  contaAzul,
		auditor:    auditor,
	}
}

// HandleSyncContaAzul pushes every completed event as a Conta Azul sale.
// The sync is all-or-nothing from the caller's point of view but each
// sale is sent individually, so a mid-run failure reports how far it got.
func (h *contaAzulHandler) HandleSyncContaAzul(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	events, err := h.db.ListCompletedEvents(user.TenantID)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	synced := 0
	for i := range events {
		sale := contaazul.NewSale(
			events[i].ID,
			events[i].ClientName,
			events[i].Venue,
			events[i].BudgetCentavos,
			events[i].EndsAt,
		)

		if err := h.contaAzul.PushSale(r.Context(), sale); err != nil {
			h.auditor.RecordFailure(r, user, &audit.ActivityLog{
				ActionType: audit.ActionSyncIntegration,
				EntityType: audit.EntityIntegration,
				EntityID:   "conta-azul",
				Metadata:   audit.JSONMap{"synced": synced, "total": len(events), "failed_event": events[i].ID},
			}, fmt.Sprintf("conta azul sync stopped after %d of %d events: %v", synced, len(events), err))

			h.errHandler.ServerError(w, r, err)
			return
		}

		synced++
	}

	h.auditor.Record(r, user, &audit.ActivityLog{
		ActionType: audit.ActionSyncIntegration,
		EntityType: audit.EntityIntegration,
		EntityID:   "conta-azul",
		Metadata:   audit.JSONMap{"synced": synced},
		Success:    true,
	})

	data := map[string]int{"synced_events": synced}

	err = response.JSONOkResponse(w, data, "Conta Azul sync completed", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}
