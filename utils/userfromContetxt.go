package utils

import (
	"net/http"

	"dukaan/globals"
	"dukaan/identity"
)

func GetUserIDFromRequest(r *http.Request) identity.ID {
	userID, ok := r.Context().Value(globals.UserIDKey).(identity.ID)
	if !ok {
		return ""
	}
	return userID
}
