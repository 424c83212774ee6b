package handler

import (
	"database/sql"
	"net/http"

	"github.com/xsoluti-sigelo/sigelo/internal/audit"
	"github.com/xsoluti-sigelo/sigelo/internal/database"
	"github.com/xsoluti-sigelo/sigelo/internal/errHandler"
	"github.com/xsoluti-sigelo/sigelo/internal/request"
	"github.com/xsoluti-sigelo/sigelo/internal/response"
	"github.com/xsoluti-sigelo/sigelo/internal/validator"

	"github.com/cradoe/gopass"
)

type tenantHandler struct {
	db         *database.DB
	errHandler *errHandler.ErrorRepository
	auditor    *AuditRecorder
}

func NewTenantHandler(db *database.DB, errHandler *errHandler.ErrorRepository, auditor *AuditRecorder) *tenantHandler {
	return &tenantHandler{
		db:         db,
		errHandler: errHandler,
		auditor:    auditor,
	}
}

// HandleRegisterTenant bootstraps a new account: the tenant row and its
// first admin user are created in one transaction, so a failed user
// insert never leaves an empty tenant behind.
func (h *tenantHandler) HandleRegisterTenant(w http.ResponseWriter, r *http.Request) {
	var input struct {
		TenantName string              `json:"tenant_name"`
		Name       string              `json:"name"`
		Email      string              `json:"email"`
		Password   string              `json:"password"`
		Validator  validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	_, errs := gopass.Validate(input.Password)
	if errs != nil {
		h.errHandler.FailedValidation(w, r, errs)
		return
	}

	input.Validator.Check(validator.NotBlank(input.TenantName), "Company name is required")
	input.Validator.Check(validator.NotBlank(input.Name), "Name is required")
	input.Validator.Check(validator.MinRunes(input.Name, 3), "Name is too short")
	input.Validator.Check(validator.NotBlank(input.Email), "Email is required")
	input.Validator.Check(validator.IsEmail(input.Email), "Must be a valid email address")

	_, found, err := h.db.GetUserByEmail(input.Email)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}
	input.Validator.Check(!found, "A user with this email already exists")

	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	hashedPassword, err := gopass.Hash(input.Password)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	// no-op once Commit succeeds
	defer tx.Rollback()

	tenantID, err := h.db.InsertTenant(input.TenantName, tx.Tx)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	userID, err := h.db.InsertUser(&database.User{
		TenantID:       tenantID,
		Name:           input.Name,
		Email:          input.Email,
		Role:           database.UserRoleAdmin,
		HashedPassword: sql.NullString{String: hashedPassword, Valid: true},
	}, tx.Tx)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if err = tx.Commit(); err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	admin := &database.User{ID: userID, TenantID: tenantID}
	h.auditor.Record(r, admin, &audit.ActivityLog{
		ActionType: audit.ActionCreateUser,
		EntityType: audit.EntityUser,
		EntityID:   userID,
		Success:    true,
		Metadata:   audit.JSONMap{"via": "registration", "tenant_name": input.TenantName},
	})

	data := map[string]string{
		"tenant_id": tenantID,
		"user_id":   userID,
	}

	err = response.JSONCreatedResponse(w, data, "Account created successfully")
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}
