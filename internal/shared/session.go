package shared

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionManager resolves bearer tokens to tenant contexts. Sessions are
// issued by the identity service after credential verification; this side
// only reads them. Create exists for tooling and tests.
type SessionManager struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
}

type sessionPayload struct {
	PrincipalID string `json:"principal_id"`
	OrgID       string `json:"org_id"`
	Role        string `json:"role"`
}

// NewSessionManager constructs a SessionManager backed by Redis.
func NewSessionManager(client *redis.Client, cookieName string, ttl time.Duration) *SessionManager {
	return &SessionManager{client: client, cookieName: cookieName, ttl: ttl}
}

// CookieName returns the configured session cookie name.
func (sm *SessionManager) CookieName() string {
	return sm.cookieName
}

// Resolve extracts the session token from the request and loads the tenant
// context it maps to. An absent, unknown or expired token resolves to nil
// without error; the request proceeds unauthenticated.
func (sm *SessionManager) Resolve(ctx context.Context, r *http.Request) (*TenantContext, error) {
	token := sm.token(r)
	if token == "" {
		return nil, nil
	}

	payload, err := sm.client.Get(ctx, sm.redisKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var stored sessionPayload
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, ErrSessionInvalid
	}
	if stored.PrincipalID == "" || stored.OrgID == "" {
		return nil, ErrSessionInvalid
	}

	return &TenantContext{
		PrincipalID: stored.PrincipalID,
		OrgID:       stored.OrgID,
		Role:        ParseRole(stored.Role),
	}, nil
}

// Create mints a session token for the given tenant context.
func (sm *SessionManager) Create(ctx context.Context, tc TenantContext) (string, error) {
	if tc.PrincipalID == "" || tc.OrgID == "" {
		return "", errors.New("session: principal and organization required")
	}
	token := uuid.NewString()
	payload, err := json.Marshal(sessionPayload{
		PrincipalID: tc.PrincipalID,
		OrgID:       tc.OrgID,
		Role:        string(tc.Role),
	})
	if err != nil {
		return "", err
	}
	if err := sm.client.Set(ctx, sm.redisKey(token), payload, sm.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Destroy removes a session token.
func (sm *SessionManager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	err := sm.client.Del(ctx, sm.redisKey(token)).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func (sm *SessionManager) token(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if rest, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(rest)
		}
	}
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (sm *SessionManager) redisKey(token string) string {
	return "session:" + token
}
