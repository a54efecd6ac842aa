// internal/app/features/session/handler.go
package session

import (
	"net/http"
	"strings"

	userstore "github.com/dalemusser/crewdeck/internal/app/store/users"
	"github.com/dalemusser/crewdeck/internal/app/system/apperr"
	"github.com/dalemusser/crewdeck/internal/app/system/auth"
	"github.com/dalemusser/crewdeck/internal/app/system/httpjson"
	"go.uber.org/zap"
)

// Handler is the thin authentication collaborator. The core only ever
// consumes the verified {userId, email} it puts in the session; token
// mechanics beyond the signed cookie are out of scope.
type Handler struct {
	Users    *userstore.Store
	Sessions *auth.SessionManager
	Log      *zap.Logger
}

func NewHandler(users *userstore.Store, sessions *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Sessions: sessions, Log: logger}
}

type signInRequest struct {
	Email string `json:"email"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// HandleSignIn upserts the user for the supplied email and writes the
// session cookie.
// POST /session/sign-in
func (h *Handler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		httpjson.WriteErr(w, h.Log, apperr.InvalidArgument("a valid email is required"))
		return
	}

	user, err := h.Users.UpsertByEmail(r.Context(), email)
	if err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	if err := h.Sessions.SignIn(w, r, auth.SessionUser{ID: user.ID.Hex(), Email: user.Email}); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, userResponse{ID: user.ID.Hex(), Email: user.Email})
}

// HandleSignOut clears the session cookie.
// POST /session/sign-out
func (h *Handler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.SignOut(w, r); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

// ServeMe echoes the current identity.
// GET /session/me
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	httpjson.Write(w, http.StatusOK, userResponse{ID: u.ID, Email: u.Email})
}
