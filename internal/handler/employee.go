package handler

import (
	"database/sql"
	"net/http"

	"github.com/xsoluti-sigelo/sigelo/internal/audit"
	"github.com/xsoluti-sigelo/sigelo/internal/context"
	"github.com/xsoluti-sigelo/sigelo/internal/database"
	"github.com/xsoluti-sigelo/sigelo/internal/errHandler"
	"github.com/xsoluti-sigelo/sigelo/internal/request"
	"github.com/xsoluti-sigelo/sigelo/internal/response"
	"github.com/xsoluti-sigelo/sigelo/internal/validator"
)

type employeeHandler struct {
	db         *database.DB
	errHandler *errHandler.ErrorRepository
	auditor    *AuditRecorder
}

func NewEmployeeHandler(db *database.DB, errHandler *errHandler.ErrorRepository, auditor *AuditRecorder) *employeeHandler {
	return &employeeHandler{
		db:         db,
		errHandler: errHandler,
		auditor:    auditor,
	}
}

func employeeSnapshot(employee *database.Employee) audit.JSONMap {
	if employee == nil {
		return nil
	}

	snapshot := audit.JSONMap{
		"name": employee.Name,
		"role": employee.Role,
	}
	if employee.Phone.Valid {
		snapshot["phone"] = employee.Phone.String
	}
	if employee.LicenseCategory.Valid {
		snapshot["license_category"] = employee.LicenseCategory.String
	}

	return snapshot
}

type employeeInput struct {
	Name            string              `json:"name"`
	Role            string              `json:"role"`
	Phone           string              `json:"phone"`
	LicenseCategory string              `json:"license_category"`
	Validator       validator.Validator `json:"-"`
}

func (input *employeeInput) validate() {
	input.Validator.Check(validator.NotBlank(input.Name), "Name is required")
	input.Validator.Check(validator.MinRunes(input.Name, 3), "Name is too short")
	input.Validator.Check(validator.NotBlank(input.Role), "Role is required")

	if input.Phone != "" {
		input.Validator.Check(validator.Matches(input.Phone, validator.RgxPhoneNumber), "Phone number must be in international format")
	}
	if input.LicenseCategory != "" {
		input.Validator.Check(validator.In(input.LicenseCategory, "A", "B", "C", "D", "E"), "Unknown license category")
	}
}

func (h *employeeHandler) HandleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var input employeeInput

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	input.validate()
	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	user := context.ContextGetAuthenticatedUser(r)

	employee := &database.Employee{
		TenantID:        user.TenantID,
		Name:            input.Name,
		Role:            input.Role,
		Phone:           sql.NullString{String: input.Phone, Valid: input.Phone != ""},
		LicenseCategory: sql.NullString{String: input.LicenseCategory, Valid: input.LicenseCategory != ""},
	}

	id, err := h.db.InsertEmployee(employee)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}
	employee.ID = id

	h.auditor.Record(r, user, &audit.ActivityLog{
		ActionType: audit.ActionCreateEmployee,
		EntityType: audit.EntityEmployee,
		EntityID:   id,
		NewValue:   employeeSnapshot(employee),
		Success:    true,
	})

	err = response.JSONCreatedResponse(w, map[string]string{"id": id}, "Employee created")
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *employeeHandler) HandleListEmployees(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	employees, err := h.db.ListEmployees(user.TenantID)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	err = response.JSONOkResponse(w, employees, "", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *employeeHandler) HandleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	existing, found, err := h.db.GetEmployee(user.TenantID, r.PathValue("id"))
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if !found {
		h.errHandler.NotFound(w, r)
		return
	}

	var input employeeInput

	err = request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	input.validate()
	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	oldSnapshot := employeeSnapshot(existing)

	updated := *existing
	updated.Name = input.Name
	updated.Role = input.Role
	updated.Phone = sql.NullString{String: input.Phone, Valid: input.Phone != ""}
	updated.LicenseCategory = sql.NullString{String: input.LicenseCategory, Valid: input.LicenseCategory != ""}

	if err := h.db.UpdateEmployee(&updated); err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	h.auditor.Record(r, user, &audit.ActivityLog{
		ActionType: audit.ActionUpdateEmployee,
		EntityType: audit.EntityEmployee,
		EntityID:   updated.ID,
		OldValue:   oldSnapshot,
		NewValue:   employeeSnapshot(&updated),
		Success:    true,
	})

	err = response.JSONOkResponse(w, nil, "Employee updated", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *employeeHandler) HandleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	existing, found, err := h.db.GetEmployee(user.TenantID, r.PathValue("id"))
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if !found {
		h.errHandler.NotFound(w, r)
		return
	}

	if err := h.db.SoftDeleteEmployee(user.TenantID, existing.ID); err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	h.auditor.Record(r, user, &audit.ActivityLog{
		ActionType: audit.ActionDeleteEmployee,
		EntityType: audit.EntityEmployee,
		EntityID:   existing.ID,
		OldValue:   employeeSnapshot(existing),
		Success:    true,
	})

	err = response.JSONOkResponse(w, nil, "Employee removed", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}
