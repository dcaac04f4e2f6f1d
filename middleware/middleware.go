package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"

	"dukaan/auth"
	"dukaan/globals"
	"dukaan/identity"
	"dukaan/utils"

	"github.com/julienschmidt/httprouter"
)

// SessionValidator resolves a session token to its user and session id.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (identity.ID, string, error)
}

type Auth struct {
	sessions SessionValidator
}

func NewAuth(sessions SessionValidator) *Auth {
	return &Auth{sessions: sessions}
}

// Authenticate rejects requests without a live session.
func (a *Auth) Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		token := auth.TokenFromRequest(r)
		if token == "" {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		userID, sid, err := a.sessions.Validate(r.Context(), token)
		if err != nil {
			if !errors.Is(err, auth.ErrInvalidSession) {
				log.Printf("session lookup failed: %v", err)
			}
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, withSession(r, userID, sid), ps)
	}
}

// OptionalAuth attaches the session when there is one and never rejects.
func (a *Auth) OptionalAuth(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if token := auth.TokenFromRequest(r); token != "" {
			if userID, sid, err := a.sessions.Validate(r.Context(), token); err == nil {
				r = withSession(r, userID, sid)
			}
		}
		next(w, r, ps)
	}
}

func withSession(r *http.Request, userID identity.ID, sid string) *http.Request {
	ctx := context.WithValue(r.Context(), globals.UserIDKey, userID)
	ctx = context.WithValue(ctx, globals.SessionIDKey, sid)
	return r.WithContext(ctx)
}
