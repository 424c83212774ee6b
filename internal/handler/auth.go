package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/xsoluti-sigelo/sigelo/internal/audit"
	"github.com/xsoluti-sigelo/sigelo/internal/config"
	"github.com/xsoluti-sigelo/sigelo/internal/context"
	"github.com/xsoluti-sigelo/sigelo/internal/database"
	"github.com/xsoluti-sigelo/sigelo/internal/errHandler"
	"github.com/xsoluti-sigelo/sigelo/internal/helper"
	"github.com/xsoluti-sigelo/sigelo/internal/oauth"
	"github.com/xsoluti-sigelo/sigelo/internal/request"
	"github.com/xsoluti-sigelo/sigelo/internal/response"
	"github.com/xsoluti-sigelo/sigelo/internal/validator"

	"github.com/cradoe/gopass"
	"github.com/pascaldekloe/jwt"
)

const (
	sessionDuration  = 24 * time.Hour
	oauthStateCookie = "sigelo_oauth_state"
)

var errMissingOAuthCode = errors.New("missing authorization code")

type authHandler struct {
	db         *database.DB
	errHandler *errHandler.ErrorRepository
	config     *config.Config
	google     *oauth.GoogleClient
	auditor    *AuditRecorder
}

func NewAuthHandler(db *database.DB, errHandler *errHandler.ErrorRepository, config *config.Config, google *oauth.GoogleClient, auditor *AuditRecorder) *authHandler {
	return &authHandler{
		db:         db,
		errHandler: errHandler,
		config:     config,
		google:     google,
		auditor:    auditor,
	}
}

func (h *authHandler) issueSession(user *database.User) (map[string]string, error) {
	var claims jwt.Claims
	claims.Subject = user.ID

	expiry := time.Now().Add(sessionDuration)
	claims.Issued = jwt.NewNumericTime(time.Now())
	claims.NotBefore = jwt.NewNumericTime(time.Now())
	claims.Expires = jwt.NewNumericTime(expiry)

	claims.Issuer = h.config.BaseURL
	claims.Audiences = []string{h.config.BaseURL}

	jwtBytes, err := claims.HMACSign(jwt.HS256, []byte(h.config.Jwt.SecretKey))
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"auth_token":   string(jwtBytes),
		"token_expiry": expiry.Format(time.RFC3339),
	}, nil
}

func (h *authHandler) HandleAuthLogin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email     string              `json:"email"`
		Password  string              `json:"password"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	user, found, err := h.db.GetUserByEmail(input.Email)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Email), "Email is required")
	input.Validator.Check(validator.IsEmail(input.Email), "Must be a valid email address")
	input.Validator.Check(validator.NotBlank(input.Password), "Password is required")
	input.Validator.Check(found, "Incorrect email/password")

	if found {
		if !user.HashedPassword.Valid {
			// google-only account, no password to check
			input.Validator.AddError("This account signs in with Google")
		} else {
			passwordMatches, err := gopass.ComparePasswordAndHash(input.Password, user.HashedPassword.String)
			if err != nil {
				h.errHandler.ServerError(w, r, err)
				return
			}

			input.Validator.Check(passwordMatches, "Incorrect email/password")

			if !passwordMatches {
				h.auditor.RecordFailure(r, user, &audit.ActivityLog{
					ActionType: audit.ActionLogin,
					EntityType: audit.EntityUser,
					EntityID:   user.ID,
				}, "incorrect password")
			}
		}
	}

	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	if user.Status != database.UserAccountActiveStatus {
		message := "Account has been locked. Please contact support"
		response.JSONErrorResponse(w, nil, message, http.StatusForbidden, nil)
		return
	}

	h.auditor.Record(r, user, &audit.ActivityLog{
		ActionType: audit.ActionLogin,
		EntityType: audit.EntityUser,
		EntityID:   user.ID,
		Success:    true,
	})

	data, err := h.issueSession(user)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	err = response.JSONOkResponse(w, data, "Login successful", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

// HandleGoogleSignIn hands the client the consent URL; the state nonce
// rides an HTTP-only cookie to be checked on the callback.
func (h *authHandler) HandleGoogleSignIn(w http.ResponseWriter, r *http.Request) {
	state, _, err := helper.NewToken()
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	data := map[string]string{"auth_url": h.google.AuthURL(state)}

	err = response.JSONOkResponse(w, data, "", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *authHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		h.errHandler.InvalidAuthenticationToken(w, r)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.errHandler.BadRequest(w, r, errMissingOAuthCode)
		return
	}

	profile, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	user, found, err := h.db.GetUserByGoogleID(profile.ID)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if !found {
		// fall back to the email so invited users can link their
		// google identity on first sign-in
		user, found, err = h.db.GetUserByEmail(profile.Email)
		if err != nil {
			h.errHandler.ServerError(w, r, err)
			return
		}

		if !found {
			h.errHandler.AuthenticationRequired(w, r)
			return
		}

		if err := h.db.LinkGoogleAccount(user.ID, profile.ID); err != nil {
			h.errHandler.ServerError(w, r, err)
			return
		}
	}

	if user.Status != database.UserAccountActiveStatus {
		h.errHandler.Forbidden(w, r)
		return
	}

	h.auditor.Record(r, user, &audit.ActivityLog{
		ActionType: audit.ActionLogin,
		EntityType: audit.EntityUser,
		EntityID:   user.ID,
		Success:    true,
		Metadata:   audit.JSONMap{"provider": "google"},
	})

	data, err := h.issueSession(user)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	err = response.JSONOkResponse(w, data, "Login successful", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

// HandleAuthRefresh reissues a session for a still-valid token. Expiry
// is checked by the authenticate middleware before we get here.
func (h *authHandler) HandleAuthRefresh(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	data, err := h.issueSession(user)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	err = response.JSONOkResponse(w, data, "Session refreshed", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *authHandler) HandleAuthLogout(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	h.auditor.Record(r, user, &audit.ActivityLog{
		ActionType: audit.ActionLogout,
		EntityType: audit.EntityUser,
		EntityID:   user.ID,
		Success:    true,
	})

	err := response.JSONOkResponse(w, nil, "Logged out", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}
