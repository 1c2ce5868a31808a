package tokens

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

var ErrRevoked = errors.New("tokens: token revoked")

const revokedPrefix = "revoked:access:"

// Revocations is a Redis-backed deny list. Entries expire together with the
// token they block. A nil *Revocations revokes nothing.
type Revocations struct {
	client *redis.Client
}

func NewRevocations(client *redis.Client) *Revocations {
	return &Revocations{client: client}
}

func revokedKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return revokedPrefix + hex.EncodeToString(sum[:])
}

// Add blocks raw for ttl.
func (r *Revocations) Add(ctx context.Context, raw string, ttl time.Duration) error {
	if r == nil || r.client == nil {
		return errors.New("tokens: revocation store not configured")
	}
	return r.client.Set(ctx, revokedKey(raw), "1", ttl).Err()
}

// Contains reports whether raw has been revoked.
func (r *Revocations) Contains(ctx context.Context, raw string) (bool, error) {
	if r == nil || r.client == nil {
		return false, nil
	}
	n, err := r.client.Exists(ctx, revokedKey(raw)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// WithRevocations makes Verify reject tokens present in r.
func (v *Verifier) WithRevocations(r *Revocations) *Verifier {
	v.revocations = r
	return v
}

// Revoke verifies raw and blocks it until it would have expired anyway.
func (v *Verifier) Revoke(ctx context.Context, raw string) error {
	tok, err := v.Verify(ctx, raw)
	if err != nil {
		return err
	}
	exp, err := tok.(*claimsToken).claims.GetExpirationTime()
	if err != nil || exp == nil {
		return fmt.Errorf("revoke: %w", jwt.ErrTokenRequiredClaimMissing)
	}
	ttl := time.Until(exp.Time)
	if ttl <= 0 {
		return nil
	}
	return v.revocations.Add(ctx, raw, ttl)
}
