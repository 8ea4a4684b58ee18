package mockapi

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "addressbook/pkg/domain-errors"
)

// Token kinds, carried in the "scope" claim.
const (
	KindAccess   = "access"
	KindRefresh  = "refresh"
	KindSecurity = "security"
)

var wrongKind = map[string]string{
	KindAccess:   "Please provide an access token",
	KindRefresh:  "Please provide a refresh token",
	KindSecurity: "Please provide a security token",
}

// Claims are the JWT claims of every token the backend issues.
type Claims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and validates HS256 tokens and tracks revoked ones.
type TokenIssuer struct {
	signingKey []byte
	ttls       map[string]time.Duration
	now        func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time // jti -> expiry
}

func NewTokenIssuer(signingKey string, accessTTL, refreshTTL, securityTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		signingKey: []byte(signingKey),
		ttls: map[string]time.Duration{
			KindAccess:   accessTTL,
			KindRefresh:  refreshTTL,
			KindSecurity: securityTTL,
		},
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

// Issue signs a token of kind for userID and returns it with its id.
func (t *TokenIssuer) Issue(userID uuid.UUID, kind string) (token, jti string, err error) {
	ttl, ok := t.ttls[kind]
	if !ok {
		return "", "", dErrors.New(dErrors.CodeInternal, "unknown token kind")
	}
	now := t.now()
	jti = uuid.NewString()
	unsigned := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Scope: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	token, err = unsigned.SignedString(t.signingKey)
	if err != nil {
		return "", "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}
	return token, jti, nil
}

// Parse validates token as kind.
//
// An expired or malformed access token is 401 so clients refresh and retry.
// Every other invalid token is 403 "Invalid or expired token". A valid token
// of the wrong kind is 403 naming the expected kind.
func (t *TokenIssuer) Parse(token, kind string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, rejected(kind, err)
	}
	if claims.Scope != kind {
		return nil, dErrors.New(dErrors.CodeForbidden, wrongKind[kind])
	}
	if t.IsRevoked(claims.ID) {
		return nil, rejected(kind, errors.New("token revoked"))
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, rejected(kind, err)
	}
	return claims, nil
}

// Revoke marks the token with jti unusable until it would have expired anyway.
func (t *TokenIssuer) Revoke(jti string, expiresAt time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	for id, exp := range t.revoked {
		if now.After(exp) {
			delete(t.revoked, id)
		}
	}
	t.revoked[jti] = expiresAt
}

func (t *TokenIssuer) IsRevoked(jti string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.revoked[jti]
	return ok
}

// RevokeToken parses a token of kind and revokes it. Invalid tokens are ignored.
func (t *TokenIssuer) RevokeToken(token, kind string) {
	claims, err := t.Parse(token, kind)
	if err != nil || claims.ExpiresAt == nil {
		return
	}
	t.Revoke(claims.ID, claims.ExpiresAt.Time)
}

func rejected(kind string, cause error) error {
	if kind == KindAccess {
		return &dErrors.Error{Code: dErrors.CodeUnauthorized, Message: "Could not validate credentials", Err: cause}
	}
	return &dErrors.Error{Code: dErrors.CodeForbidden, Message: "Invalid or expired token", Err: cause}
}
