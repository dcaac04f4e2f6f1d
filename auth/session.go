package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"dukaan/globals"
	"dukaan/identity"
	"dukaan/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

var ErrInvalidSession = errors.New("invalid session")

const sessionKeyPrefix = "auth:session:"

// Claims travel in the session cookie. The Redis record under SessionID is
// what makes them valid; the signature only stops tampering.
type Claims struct {
	UserID    string `json:"userId"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type SessionStore struct {
	conn   redis.Cmdable
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionStore(conn redis.Cmdable, secret []byte, ttl time.Duration) *SessionStore {
	return &SessionStore{conn: conn, secret: secret, ttl: ttl, now: time.Now}
}

func (s *SessionStore) TTL() time.Duration { return s.ttl }

// Create records a new session for userID and returns its signed token.
func (s *SessionStore) Create(ctx context.Context, userID identity.ID) (string, error) {
	sid := utils.GetUUID()
	if err := s.conn.Set(ctx, sessionKeyPrefix+sid, userID.String(), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return s.sign(userID, sid)
}

// Validate checks the token signature and that its session is still live.
func (s *SessionStore) Validate(ctx context.Context, token string) (identity.ID, string, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid || claims.SessionID == "" {
		return "", "", ErrInvalidSession
	}

	stored, err := s.conn.Get(ctx, sessionKeyPrefix+claims.SessionID).Result()
	if errors.Is(err, redis.Nil) {
		return "", "", ErrInvalidSession
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to load session: %w", err)
	}
	if stored != claims.UserID {
		return "", "", ErrInvalidSession
	}
	return identity.Parse(claims.UserID), claims.SessionID, nil
}

// Refresh extends a live session and returns a token with a fresh expiry.
func (s *SessionStore) Refresh(ctx context.Context, userID identity.ID, sid string) (string, error) {
	ok, err := s.conn.Expire(ctx, sessionKeyPrefix+sid, s.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("failed to refresh session: %w", err)
	}
	if !ok {
		return "", ErrInvalidSession
	}
	return s.sign(userID, sid)
}

func (s *SessionStore) Destroy(ctx context.Context, sid string) error {
	if err := s.conn.Del(ctx, sessionKeyPrefix+sid).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) sign(userID identity.ID, sid string) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID:    userID.String(),
		SessionID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// TokenFromRequest reads the session cookie. Sessions are cookie-only.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(globals.SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}
