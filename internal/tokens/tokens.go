package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/manuscriptos/manuscript/backend/go-services/pkg/middleware"
)

// GenerateAccessToken creates a signed HS256 access token for subject.
func GenerateAccessToken(secret, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("tokens: empty signing secret")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(secret))
}

// Verifier checks tokens issued by GenerateAccessToken. It satisfies
// middleware.Verifier.
type Verifier struct {
	secret      []byte
	revocations *Revocations
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

type claimsToken struct {
	claims jwt.MapClaims
}

func (t *claimsToken) Claims(v interface{}) error {
	b, err := json.Marshal(t.claims)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// Verify parses raw, checks the signature and expiry and requires a subject.
// Revoked tokens fail with ErrRevoked.
func (v *Verifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	parsed, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("verify token: unexpected claims type")
	}
	if sub, _ := claims.GetSubject(); sub == "" {
		return nil, errors.New("verify token: missing subject")
	}
	revoked, err := v.revocations.Contains(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("verify token: revocation check: %w", err)
	}
	if revoked {
		return nil, ErrRevoked
	}
	return &claimsToken{claims: claims}, nil
}
