package handler

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/xsoluti-sigelo/sigelo/internal/audit"
	"github.com/xsoluti-sigelo/sigelo/internal/context"
	"github.com/xsoluti-sigelo/sigelo/internal/database"
	"github.com/xsoluti-sigelo/sigelo/internal/errHandler"
	"github.com/xsoluti-sigelo/sigelo/internal/request"
	"github.com/xsoluti-sigelo/sigelo/internal/response"
	"github.com/xsoluti-sigelo/sigelo/internal/validator"
)

type eventHandler struct {
	db         *database.DB
	errHandler *errHandler.ErrorRepository
	auditor    *AuditRecorder
}

func NewEventHandler(db *database.DB, errHandler *errHandler.ErrorRepository, auditor *AuditRecorder) *eventHandler {
	return &eventHandler{
		db:         db,
		errHandler: errHandler,
		auditor:    auditor,
	}
}

// eventSnapshot is the before/after state recorded on audit entries,
// trimmed to the fields users actually edit.
func eventSnapshot(event *database.Event) audit.JSONMap {
	if event == nil {
		return nil
	}

	return audit.JSONMap{
		"client_name":     event.ClientName,
		"venue":           event.Venue,
		"starts_at":       event.StartsAt.Format(time.RFC3339),
		"ends_at":         event.EndsAt.Format(time.RFC3339),
		"status":          event.Status,
		"budget_centavos": event.BudgetCentavos,
	}
}

type eventInput struct {
	ClientName     string              `json:"client_name"`
	Venue          string              `json:"venue"`
	StartsAt       time.Time           `json:"starts_at"`
	EndsAt         time.Time           `json:"ends_at"`
	Status         string              `json:"status"`
	BudgetCentavos int64               `json:"budget_centavos"`
	Notes          string              `json:"notes"`
	Validator      validator.Validator `json:"-"`
}

func (input *eventInput) validate() {
	input.Validator.Check(validator.NotBlank(input.ClientName), "Client name is required")
	input.Validator.Check(validator.NotBlank(input.Venue), "Venue is required")
	input.Validator.Check(!input.StartsAt.IsZero(), "Start date is required")
	input.Validator.Check(!input.EndsAt.IsZero(), "End date is required")
	input.Validator.Check(input.EndsAt.After(input.StartsAt), "End date must come after start date")
	input.Validator.Check(input.BudgetCentavos >= 0, "Budget cannot be negative")
	input.Validator.Check(validator.In(input.Status,
		database.EventStatusDraft,
		database.EventStatusConfirmed,
		database.EventStatusInProgress,
		database.EventStatusDone,
		database.EventStatusCanceled,
	), "Unknown status")
}

func (h *eventHandler) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var input eventInput

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	if input.Status == "" {
		input.Status = database.EventStatusDraft
	}

	input.validate()
	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	user := context.ContextGetAuthenticatedUser(r)

	event := &database.Event{
		TenantID:       user.TenantID,
		ClientName:     input.ClientName,
		Venue:          input.Venue,
		StartsAt:       input.StartsAt,
		EndsAt:         input.EndsAt,
		Status:         input.Status,
		BudgetCentavos: input.BudgetCentavos,
		Notes:          sql.NullString{String: input.Notes, Valid: input.Notes != ""},
	}

	id, err := h.db.InsertEvent(event)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}
	event.ID = id

	h.auditor.Record(r, user, &audit.ActivityLog{
		ActionType: audit.ActionCreateEvent,
		EntityType: audit.EntityEvent,
		EntityID:   id,
		NewValue:   eventSnapshot(event),
		Success:    true,
	})

	err = response.JSONCreatedResponse(w, map[string]string{"id": id}, "Event created")
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *eventHandler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)
	queryValues := retrieveListQueryValues(r)

	events, err := h.db.ListEvents(user.TenantID, queryValues.Limit, queryValues.Offset)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	err = response.JSONOkResponse(w, events, "", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *eventHandler) HandleGetEvent(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	event, found, err := h.db.GetEvent(user.TenantID, r.PathValue("id"))
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if !found {
		h.errHandler.NotFound(w, r)
		return
	}

	operations, err := h.db.ListOperationsByEvent(user.TenantID, event.ID)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	data := map[string]any{
		"event":      event,
		"operations": operations,
	}

	err = response.JSONOkResponse(w, data, "", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *eventHandler) HandleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	existing, found, err := h.db.GetEvent(user.TenantID, r.PathValue("id"))
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if !found {
		h.errHandler.NotFound(w, r)
		return
	}

	var input eventInput

	err = request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	if input.Status == "" {
		input.Status = existing.Status
	}

	input.validate()
	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	oldSnapshot := eventSnapshot(existing)

	updated := *existing
	updated.ClientName = input.ClientName
	updated.Venue = input.Venue
	updated.StartsAt = input.StartsAt
	updated.EndsAt = input.EndsAt
	updated.Status = input.Status
	updated.BudgetCentavos = input.BudgetCentavos
	updated.Notes = sql.NullString{String: input.Notes, Valid: input.Notes != ""}

	if err := h.db.UpdateEvent(&updated); err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	h.auditor.Record(r, user, &audit.ActivityLog{
		ActionType: audit.ActionUpdateEvent,
		EntityType: audit.EntityEvent,
		EntityID:   updated.ID,
		OldValue:   oldSnapshot,
		NewValue:   eventSnapshot(&updated),
		Success:    true,
	})

	err = response.JSONOkResponse(w, nil, "Event updated", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *eventHandler) HandleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	existing, found, err := h.db.GetEvent(user.TenantID, r.PathValue("id"))
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if !found {
		h.errHandler.NotFound(w, r)
		return
	}

	if err := h.db.SoftDeleteEvent(user.TenantID, existing.ID); err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	h.auditor.Record(r, user, &audit.ActivityLog{
		ActionType: audit.ActionDeleteEvent,
		EntityType: audit.EntityEvent,
		EntityID:   existing.ID,
		OldValue:   eventSnapshot(existing),
		Success:    true,
	})

	err = response.JSONOkResponse(w, nil, "Event removed", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}
