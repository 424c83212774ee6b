package handler

import (
	"errors"
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

var (
	errDriverWithoutLicense = errors.New("this employee has no driver's license on file")
	errVehicleUnavailable   = errors.New("this vehicle is not available")
)

type operationHandler struct {
	db         *database.DB
	errHandler *errHandler.ErrorRepository
	auditor    *AuditRecorder
}

func NewOperationHandler(db *database.DB, errHandler *errHandler.ErrorRepository, auditor *AuditRecorder) *operationHandler {
	return &operationHandler{
		db:         db,
		errHandler: errHandler,
		auditor:    auditor,
	}
}

func operationSnapshot(op *database.Operation) audit.JSONMap {
	if op == nil {
		return nil
	}

	snapshot := audit.JSONMap{
		"description":  op.Description,
		"scheduled_at": op.ScheduledAt.Format(time.RFC3339),
		"status":       op.Status,
	}
	if op.DriverID.Valid {
		snapshot["driver_id"] = op.DriverID.String
	}
	if op.VehicleID.Valid {
		snapshot["vehicle_id"] = op.VehicleID.String
	}

	return snapshot
}

func (h *operationHandler) HandleCreateOperation(w http.ResponseWriter, r *http.Request) {
	var input struct {
		EventID     string              `json:"event_id"`
		Description string              `json:"description"`
		ScheduledAt time.Time           `json:"scheduled_at"`
		Validator   validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.EventID), "Event is required")
	input.Validator.Check(validator.NotBlank(input.Description), "Description is required")
	input.Validator.Check(!input.ScheduledAt.IsZero(), "Schedule date is required")

	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	user := context.ContextGetAuthenticatedUser(r)

	_, found, err := h.db.GetEvent(user.TenantID, input.EventID)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if !found {
		h.errHandler.NotFound(w, r)
		return
	}

	op := &database.Operation{
		TenantID:    user.TenantID,
		EventID:     input.EventID,
		Description: input.Description,
		ScheduledAt: input.ScheduledAt,
		Status:      database.OperationStatusPending,
	}

	id, err := h.db.InsertOperation(op)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}
	op.ID = id

	h.auditor.Record(r, user, &audit.ActivityLog{
		ActionType: audit.ActionCreateOperation,
		EntityType: audit.EntityOperation,
		EntityID:   id,
		NewValue:   operationSnapshot(op),
		Success:    true,
	})

	err = response.JSONCreatedResponse(w, map[string]string{"id": id}, "Operation created")
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *operationHandler) HandleUpdateOperation(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	existing, found, err := h.db.GetOperation(user.TenantID, r.PathValue("id"))
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if !found {
		h.errHandler.NotFound(w, r)
		return
	}

	var input struct {
		Description string              `json:"description"`
		ScheduledAt time.Time           `json:"scheduled_at"`
		Status      string              `json:"status"`
		Validator   validator.Validator `json:"-"`
	}

	err = request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	if input.Status == "" {
		input.Status = existing.Status
	}

	input.Validator.Check(validator.NotBlank(input.Description), "Description is required")
	input.Validator.Check(!input.ScheduledAt.IsZero(), "Schedule date is required")
	input.Validator.Check(validator.In(input.Status,
		database.OperationStatusPending,
		database.OperationStatusScheduled,
		database.OperationStatusDone,
		database.OperationStatusCanceled,
	), "Unknown status")

	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	oldSnapshot := operationSnapshot(existing)

	updated := *existing
	updated.Description = input.Description
	updated.ScheduledAt = input.ScheduledAt
	updated.Status = input.Status

	if err := h.db.UpdateOperation(&updated); err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	h.auditor.Record(r, user, &audit.ActivityLog{
		ActionType: audit.ActionUpdateOperation,
		EntityType: audit.EntityOperation,
		EntityID:   updated.ID,
		OldValue:   oldSnapshot,
		NewValue:   operationSnapshot(&updated),
		Success:    true,
	})

	err = response.JSONOkResponse(w, nil, "Operation updated", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

// HandleAssignDriver is audited as its own action type; driver and
// vehicle assignment are the operations dispatchers do all day.
func (h *operationHandler) HandleAssignDriver(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	op, found, err := h.db.GetOperation(user.TenantID, r.PathValue("id"))
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if !found {
		h.errHandler.NotFound(w, r)
		return
	}

	var input struct {
		DriverID  string              `json:"driver_id"`
		Validator validator.Validator `json:"-"`
	}

	err = request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.DriverID), "Driver is required")
	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	driver, found, err := h.db.GetEmployee(user.TenantID, input.DriverID)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if !found {
		h.errHandler.NotFound(w, r)
		return
	}

	if !driver.LicenseCategory.Valid {
		h.auditor.RecordFailure(r, user, &audit.ActivityLog{
			ActionType: audit.ActionAssignDriver,
			EntityType: audit.EntityOperation,
			EntityID:   op.ID,
			Metadata:   audit.JSONMap{"driver_id": driver.ID},
		}, errDriverWithoutLicense.Error())

		h.errHandler.BadRequest(w, r, errDriverWithoutLicense)
		return
	}

	if err := h.db.AssignOperationDriver(user.TenantID, op.ID, driver.ID); err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	h.auditor.Record(r, user, &audit.ActivityLog{
		ActionType: audit.ActionAssignDriver,
		EntityType: audit.EntityOperation,
		EntityID:   op.ID,
		Success:    true,
		Metadata:   audit.JSONMap{"driver_id": driver.ID, "driver_name": driver.Name},
	})

	err = response.JSONOkResponse(w, nil, "Driver assigned", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *operationHandler) HandleAssignVehicle(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	op, found, err := h.db.GetOperation(user.TenantID, r.PathValue("id"))
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if !found {
		h.errHandler.NotFound(w, r)
		return
	}

	var input struct {
		VehicleID string              `json:"vehicle_id"`
		Validator validator.Validator `json:"-"`
	}

	err = request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.VehicleID), "Vehicle is required")
	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	vehicle, found, err := h.db.GetVehicle(user.TenantID, input.VehicleID)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if !found {
		h.errHandler.NotFound(w, r)
		return
	}

	if vehicle.Status != database.VehicleStatusAvailable {
		h.auditor.RecordFailure(r, user, &audit.ActivityLog{
			ActionType: audit.ActionAssignVehicle,
			EntityType: audit.EntityOperation,
			EntityID:   op.ID,
			Metadata:   audit.JSONMap{"vehicle_id": vehicle.ID, "vehicle_status": vehicle.Status},
		}, errVehicleUnavailable.Error())

		h.errHandler.BadRequest(w, r, errVehicleUnavailable)
		return
	}

	if err := h.db.AssignOperationVehicle(user.TenantID, op.ID, vehicle.ID); err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	h.auditor.Record(r, user, &audit.ActivityLog{
		ActionType: audit.ActionAssignVehicle,
		EntityType: audit.EntityOperation,
		EntityID:   op.ID,
		Success:    true,
		Metadata:   audit.JSONMap{"vehicle_id": vehicle.ID, "plate": vehicle.Plate},
	})

	err = response.JSONOkResponse(w, nil, "Vehicle assigned", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *operationHandler) HandleDeleteOperation(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	existing, found, err := h.db.GetOperation(user.TenantID, r.PathValue("id"))
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if !found {
		h.errHandler.NotFound(w, r)
		return
	}

	if err := h.db.SoftDeleteOperation(user.TenantID, existing.ID); err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	h.auditor.Record(r, user, &audit.ActivityLog{
		ActionType: audit.ActionDeleteOperation,
		EntityType: audit.EntityOperation,
		EntityID:   existing.ID,
		OldValue:   operationSnapshot(existing),
		Success:    true,
	})

	err = response.JSONOkResponse(w, nil, "Operation removed", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}
