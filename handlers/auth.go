package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/kevinaaaquil/novels/apperr"
	"github.com/kevinaaaquil/novels/ctxutil"
	"github.com/kevinaaaquil/novels/middleware"
	"github.com/kevinaaaquil/novels/models"
	"github.com/kevinaaaquil/novels/respond"
	"github.com/kevinaaaquil/novels/service"
)

const msgInvalidCredentials = "invalid email or password"

type AuthHandler struct {
	Accounts  *service.Accounts
	Verifier  *service.Authenticator
	JWTSecret string
	TokenTTL  time.Duration
}

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SigninResponse struct {
	Token string           `json:"token"`
	User  models.Principal `json:"user"`
}

// Signup creates a credentials account.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req service.SignupInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, apperr.ValidationError("Missing fields"))
		return
	}
	user, err := h.Accounts.Signup(r.Context(), req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	ctxutil.Logger(r.Context()).Info("user signed up", slog.String("user_id", user.ID.Hex()))
	respond.Message(w, http.StatusCreated, "User created successfully")
}

// Signin verifies credentials and issues a session token. Unknown emails and
// wrong passwords get the same 401.
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, apperr.ValidationError("invalid json"))
		return
	}
	p, err := h.Verifier.Verify(r.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if p == nil {
		respond.Error(w, r, apperr.Unauthorized(msgInvalidCredentials))
		return
	}
	token, err := middleware.IssueToken(h.JWTSecret, *p, h.TokenTTL)
	if err != nil {
		respond.Error(w, r, apperr.Internal(fmt.Errorf("issue token: %w", err)))
		return
	}
	respond.JSON(w, http.StatusOK, SigninResponse{Token: token, User: *p})
}
