package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"dukaan/apperr"
	"dukaan/globals"
	"dukaan/utils"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	users        UserStore
	sessions     *SessionStore
	cookieSecure bool
	timeout      time.Duration
}

func NewHandler(users UserStore, sessions *SessionStore, cookieSecure bool, timeout time.Duration) *Handler {
	return &Handler{users: users, sessions: sessions, cookieSecure: cookieSecure, timeout: timeout}
}

type loginRequest struct {
	Mobile string `json:"mobile" validate:"required,len=10,numeric"`
}

// POST /api/login and /api/auth/mobile
func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := utils.RequestContext(r, h.timeout)
	defer cancel()

	var req loginRequest
	if err := utils.DecodeAndValidate(r, &req, false); err != nil {
		utils.RespondWithAppError(w, "login", err)
		return
	}
	mobile := strings.TrimSpace(req.Mobile)

	user, created, err := h.users.FindOrCreateByMobile(ctx, mobile)
	if err != nil {
		utils.RespondWithAppError(w, "login", apperr.Wrap("Login failed", err))
		return
	}
	if created {
		log.Printf("registered user %s", user.ID)
	}

	token, err := h.sessions.Create(ctx, user.ID)
	if err != nil {
		utils.RespondWithAppError(w, "login", apperr.Wrap("Login failed", err))
		return
	}
	h.setCookie(w, token, h.sessions.TTL())
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"user": user})
}

// GET /api/check-session, behind Authenticate
func (h *Handler) CheckSession(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := utils.RequestContext(r, h.timeout)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID.IsZero() {
		utils.RespondWithAppError(w, "check session", apperr.Unauthorized("Not authenticated"))
		return
	}
	user, err := h.users.ByID(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		utils.RespondWithAppError(w, "check session", apperr.Unauthorized("Not authenticated"))
		return
	}
	if err != nil {
		utils.RespondWithAppError(w, "check session", apperr.Wrap("Session check failed", err))
		return
	}

	if sid := sessionID(r.Context()); sid != "" {
		token, err := h.sessions.Refresh(ctx, userID, sid)
		switch {
		case errors.Is(err, ErrInvalidSession):
			utils.RespondWithAppError(w, "check session", apperr.Unauthorized("Not authenticated"))
			return
		case err != nil:
			log.Printf("check session: refresh failed: %v", err)
		default:
			h.setCookie(w, token, h.sessions.TTL())
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"authenticated": true, "user": user})
}

// POST /api/logout. Succeeds without a session so clients can always clear the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := utils.RequestContext(r, h.timeout)
	defer cancel()

	if sid := sessionID(r.Context()); sid != "" {
		if err := h.sessions.Destroy(ctx, sid); err != nil {
			utils.RespondWithAppError(w, "logout", apperr.Wrap("Failed to log out", err))
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     globals.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // expires immediately
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Logged out successfully"})
}

func (h *Handler) setCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     globals.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func sessionID(ctx context.Context) string {
	sid, _ := ctx.Value(globals.SessionIDKey).(string)
	return sid
}
