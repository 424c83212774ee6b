package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/xsoluti-sigelo/sigelo/internal/audit"
	"github.com/xsoluti-sigelo/sigelo/internal/context"
	"github.com/xsoluti-sigelo/sigelo/internal/database"
	"github.com/xsoluti-sigelo/sigelo/internal/errHandler"
	"github.com/xsoluti-sigelo/sigelo/internal/helper"
	"github.com/xsoluti-sigelo/sigelo/internal/request"
	"github.com/xsoluti-sigelo/sigelo/internal/response"
	"github.com/xsoluti-sigelo/sigelo/internal/smtp"
	"github.com/xsoluti-sigelo/sigelo/internal/validator"

	"github.com/cradoe/gopass"
)

const (
	inviteTokenCookie = "sigelo_invite_token"
	inviteDuration    = 72 * time.Hour
)

var (
	errInviteExpired = errors.New("this invitation has expired")
	errInviteUsed    = errors.New("this invitation has already been used")
)

type invitationHandler struct {
	db         *database.DB
	errHandler *errHandler.ErrorRepository
	helper     *helper.HelperRepository
	mailer     smtp.MailerInterface
	auditor    *AuditRecorder
}

func NewInvitationHandler(db *database.DB, errHandler *errHandler.ErrorRepository, helper *helper.HelperRepository, mailer smtp.MailerInterface, auditor *AuditRecorder) *invitationHandler {
	return &invitationHandler{
		db:         db,
		errHandler: errHandler,
		helper:     helper,
		mailer:     mailer,
		auditor:    auditor,
	}
}

// HandleCreateInvitation mails a single-use invite link. Only the
// SHA-256 of the token is stored; the plaintext lives in the link.
func (h *invitationHandler) HandleCreateInvitation(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email     string              `json:"email"`
		Role      string              `json:"role"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	if input.Role == "" {
		input.Role = database.UserRoleOperator
	}

	input.Validator.Check(validator.NotBlank(input.Email), "Email is required")
	input.Validator.Check(validator.IsEmail(input.Email), "Must be a valid email address")
	input.Validator.Check(validator.In(input.Role, database.UserRoleAdmin, database.UserRoleManager, database.UserRoleOperator), "Unknown role")

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

	inviter := context.ContextGetAuthenticatedUser(r)

	plaintext, tokenHash, err := helper.NewToken()
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	invitationID, err := h.db.InsertInvitation(&database.Invitation{
		TenantID:  inviter.TenantID,
		Email:     input.Email,
		Role:      input.Role,
		TokenHash: tokenHash,
		InvitedBy: inviter.ID,
		ExpiresAt: time.Now().Add(inviteDuration),
	})
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	tenant, _, err := h.db.GetTenant(inviter.TenantID)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	recipient := input.Email
	h.helper.BackgroundTask(r, func() error {
		emailData := h.helper.NewEmailData()
		emailData["InvitedBy"] = inviter.Name
		emailData["TenantName"] = tenant.Name
		emailData["ExpiresIn"] = "72 horas"
		emailData["AcceptURL"] = fmt.Sprintf("%s/invitations/accept?token=%s", h.helper.BaseURL(), plaintext)

		return h.mailer.Send(recipient, emailData, "invitation.tmpl")
	})

	h.auditor.Record(r, inviter, &audit.ActivityLog{
		ActionType: audit.ActionCreateUser,
		EntityType: audit.EntityUser,
		EntityID:   invitationID,
		Success:    true,
		Metadata:   audit.JSONMap{"invited_email": input.Email, "role": input.Role},
	})

	err = response.JSONCreatedResponse(w, map[string]string{"id": invitationID}, "Invitation sent")
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

// HandleAcceptInvitation moves the invite token from the emailed link
// into a short-lived HTTP-only cookie and redirects to the finalize
// page, keeping the token out of the address bar from here on.
func (h *invitationHandler) HandleAcceptInvitation(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		h.errHandler.NotFound(w, r)
		return
	}

	inv, found, err := h.db.GetInvitationByTokenHash(helper.HashToken(token))
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if !found {
		h.errHandler.NotFound(w, r)
		return
	}

	if inv.AcceptedAt.Valid {
		h.errHandler.BadRequest(w, r, errInviteUsed)
		return
	}

	if time.Now().After(inv.ExpiresAt) {
		h.errHandler.BadRequest(w, r, errInviteExpired)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     inviteTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int((15 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.helper.BaseURL()+"/invitations/finalize", http.StatusSeeOther)
}

// HandleFinalizeInvitation consumes the cookie token and creates the
// invited user. The accepted_at guard in the update keeps the token
// single-use even if two finalize requests race.
func (h *invitationHandler) HandleFinalizeInvitation(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(inviteTokenCookie)
	if err != nil || cookie.Value == "" {
		h.errHandler.AuthenticationRequired(w, r)
		return
	}

	var input struct {
		Name      string              `json:"name"`
		Password  string              `json:"password"`
		Validator validator.Validator `json:"-"`
	}

	err = request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	_, errs := gopass.Validate(input.Password)
	if errs != nil {
		h.errHandler.FailedValidation(w, r, errs)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Name), "Name is required")
	input.Validator.Check(validator.MinRunes(input.Name, 3), "Name is too short")

	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	inv, found, err := h.db.GetInvitationByTokenHash(helper.HashToken(cookie.Value))
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if !found || time.Now().After(inv.ExpiresAt) {
		h.errHandler.AuthenticationRequired(w, r)
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

	// no-op once Commit succeeds; releases the connection on every
	// other way out of this function
	defer tx.Rollback()

	claimed, err := h.db.MarkInvitationAccepted(inv.ID, tx.Tx)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if !claimed {
		h.errHandler.BadRequest(w, r, errInviteUsed)
		return
	}

	userID, err := h.db.InsertUser(&database.User{
		TenantID:       inv.TenantID,
		Name:           input.Name,
		Email:          inv.Email,
		Role:           inv.Role,
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

	// the cookie is spent
	http.SetCookie(w, &http.Cookie{
		Name:     inviteTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	newUser := &database.User{ID: userID, TenantID: inv.TenantID}
	h.auditor.Record(r, newUser, &audit.ActivityLog{
		ActionType: audit.ActionCreateUser,
		EntityType: audit.EntityUser,
		EntityID:   userID,
		Success:    true,
		Metadata:   audit.JSONMap{"via": "invitation"},
	})

	err = response.JSONCreatedResponse(w, map[string]string{"id": userID}, "Account created successfully")
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *invitationHandler) HandleListInvitations(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	invitations, err := h.db.ListInvitations(user.TenantID)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	err = response.JSONOkResponse(w, invitations, "", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}
