package handler

import (
	"errors"
	"net/http"

	"github.com/xsoluti-sigelo/sigelo/internal/audit"
	"github.com/xsoluti-sigelo/sigelo/internal/context"
	"github.com/xsoluti-sigelo/sigelo/internal/database"
	"github.com/xsoluti-sigelo/sigelo/internal/errHandler"
	"github.com/xsoluti-sigelo/sigelo/internal/request"
	"github.com/xsoluti-sigelo/sigelo/internal/response"
	"github.com/xsoluti-sigelo/sigelo/internal/validator"
)

var errCannotRemoveSelf = errors.New("you cannot remove your own account")

type userHandler struct {
	db         *database.DB
	errHandler *errHandler.ErrorRepository
	auditor    *AuditRecorder
}

func NewUserHandler(db *database.DB, errHandler *errHandler.ErrorRepository, auditor *AuditRecorder) *userHandler {
	return &userHandler{
		db:         db,
		errHandler: errHandler,
		auditor:    auditor,
	}
}

func (h *userHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	users, err := h.db.ListUsers(user.TenantID)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	items := make([]map[string]any, len(users))
	for i := range users {
		lastLogin, err := h.db.LastLoginAt(user.TenantID, users[i].ID)
		if err != nil {
			h.errHandler.ServerError(w, r, err)
			return
		}

		items[i] = map[string]any{
			"id":         users[i].ID,
			"name":       users[i].Name,
			"email":      users[i].Email,
			"role":       users[i].Role,
			"status":     users[i].Status,
			"last_login": lastLogin,
		}
	}

	err = response.JSONOkResponse(w, items, "", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *userHandler) HandleUpdateUserRole(w http.ResponseWriter, r *http.Request) {
	admin := context.ContextGetAuthenticatedUser(r)

	target, found, err := h.db.GetUser(r.PathValue("id"))
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if !found || target.TenantID != admin.TenantID {
		h.errHandler.NotFound(w, r)
		return
	}

	var input struct {
		Role      string              `json:"role"`
		Validator validator.Validator `json:"-"`
	}

	err = request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.In(input.Role, database.UserRoleAdmin, database.UserRoleManager, database.UserRoleOperator), "Unknown role")
	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	if err := h.db.UpdateUserRole(admin.TenantID, target.ID, input.Role); err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	h.auditor.Record(r, admin, &audit.ActivityLog{
		ActionType: audit.ActionUpdateUser,
		EntityType: audit.EntityUser,
		EntityID:   target.ID,
		OldValue:   audit.JSONMap{"role": target.Role},
		NewValue:   audit.JSONMap{"role": input.Role},
		Success:    true,
	})

	err = response.JSONOkResponse(w, nil, "Role updated", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *userHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	admin := context.ContextGetAuthenticatedUser(r)

	target, found, err := h.db.GetUser(r.PathValue("id"))
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if !found || target.TenantID != admin.TenantID {
		h.errHandler.NotFound(w, r)
		return
	}

	if target.ID == admin.ID {
		h.errHandler.BadRequest(w, r, errCannotRemoveSelf)
		return
	}

	if err := h.db.SoftDeleteUser(admin.TenantID, target.ID); err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	h.auditor.Record(r, admin, &audit.ActivityLog{
		ActionType: audit.ActionDeleteUser,
		EntityType: audit.EntityUser,
		EntityID:   target.ID,
		OldValue:   audit.JSONMap{"name": target.Name, "email": target.Email, "role": target.Role},
		Success:    true,
	})

	err = response.JSONOkResponse(w, nil, "User removed", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}
