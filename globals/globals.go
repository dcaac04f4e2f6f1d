package globals

// Context keys
type ContextKey string

const UserIDKey ContextKey = "userId"
const SessionIDKey ContextKey = "sessionId"

const SessionCookieName = "session_token"
