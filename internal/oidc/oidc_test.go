package oidc

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const clientID = "notes-web"

func newKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func signIDToken(t *testing.T, key *rsa.PrivateKey, issuer, aud, sub string, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss": issuer,
		"aud": aud,
		"sub": sub,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	})
	tok.Header["kid"] = "k1"
	raw, err := tok.SignedString(key)
	require.NoError(t, err)
	return raw
}

func TestStaticVerifier(t *testing.T) {
	const issuer = "https://id.example.test/realms/notes"
	key := newKey(t)
	ver := NewStaticVerifier(issuer, clientID, &key.PublicKey)
	ctx := context.Background()

	tok, err := ver.Verify(ctx, signIDToken(t, key, issuer, clientID, "alice", time.Minute))
	require.NoError(t, err)
	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	require.Equal(t, "alice", claims["sub"])

	_, err = ver.Verify(ctx, signIDToken(t, key, issuer, "other-client", "alice", time.Minute))
	require.Error(t, err, "wrong audience")

	_, err = ver.Verify(ctx, signIDToken(t, key, "https://evil.test", clientID, "alice", time.Minute))
	require.Error(t, err, "wrong issuer")

	_, err = ver.Verify(ctx, signIDToken(t, key, issuer, clientID, "alice", -time.Minute))
	require.Error(t, err, "expired")

	_, err = ver.Verify(ctx, signIDToken(t, newKey(t), issuer, clientID, "alice", time.Minute))
	require.Error(t, err, "foreign key")
}

func TestDiscoveredVerifier(t *testing.T) {
	key := newKey(t)
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"issuer":                                srv.URL,
			"authorization_endpoint":                srv.URL + "/auth",
			"token_endpoint":                        srv.URL + "/token",
			"jwks_uri":                              srv.URL + "/keys",
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	})
	mux.HandleFunc("/keys", func(w http.ResponseWriter, r *http.Request) {
		enc := base64.RawURLEncoding
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"keys": []map[string]string{{
				"kty": "RSA",
				"kid": "k1",
				"alg": "RS256",
				"use": "sig",
				"n":   enc.EncodeToString(key.PublicKey.N.Bytes()),
				"e":   enc.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes()),
			}},
		})
	})

	ctx := context.Background()
	ver, err := NewVerifier(ctx, srv.URL, clientID)
	require.NoError(t, err)

	_, err = ver.Verify(ctx, signIDToken(t, key, srv.URL, clientID, "bob", time.Minute))
	require.NoError(t, err)

	_, err = ver.Verify(ctx, signIDToken(t, newKey(t), srv.URL, clientID, "bob", time.Minute))
	require.Error(t, err)
}

func TestDiscoveryFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	_, err := NewVerifier(context.Background(), srv.URL, clientID)
	require.Error(t, err)
}

func TestInsecureVerifier(t *testing.T) {
	enc := base64.RawURLEncoding
	header := enc.EncodeToString([]byte(`{"alg":"none"}`))
	payload := enc.EncodeToString([]byte(`{"sub":"carol","email":"carol@example.test"}`))

	tok, err := NewInsecureVerifier().Verify(context.Background(), header+"."+payload+".sig")
	require.NoError(t, err)
	var claims struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
	}
	require.NoError(t, tok.Claims(&claims))
	require.Equal(t, "carol", claims.Sub)
	require.Equal(t, "carol@example.test", claims.Email)

	for _, raw := range []string{
		"not-a-token",
		header + ".!!!.sig",
		header + "." + enc.EncodeToString([]byte(`{"email":"x"}`)) + ".sig",
	} {
		_, err := NewInsecureVerifier().Verify(context.Background(), raw)
		require.Error(t, err, raw)
	}
}
