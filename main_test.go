package main

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/manuscriptos/manuscript/backend/go-services/internal/config"
	"github.com/manuscriptos/manuscript/backend/go-services/internal/tokens"
)

func TestAPIVerifierNoneConfigured(t *testing.T) {
	ver, err := apiVerifier(context.Background(), &config.Config{}, nil)
	require.NoError(t, err)
	require.Nil(t, ver)
}

func TestAPIVerifierSecretWithRevocation(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	rdb := redis.NewClient(&redis.Options{Addr: m.Addr()})
	defer rdb.Close()

	const secret = "main-test-secret-32-bytes-xxxxxxxx"
	ctx := context.Background()
	ver, err := apiVerifier(ctx, &config.Config{Auth: config.AuthConfig{Secret: secret}}, rdb)
	require.NoError(t, err)

	raw, err := tokens.GenerateAccessToken(secret, "dana", time.Minute)
	require.NoError(t, err)
	_, err = ver.Verify(ctx, raw)
	require.NoError(t, err)

	require.NoError(t, tokens.NewVerifier(secret).WithRevocations(tokens.NewRevocations(rdb)).Revoke(ctx, raw))
	_, err = ver.Verify(ctx, raw)
	require.ErrorIs(t, err, tokens.ErrRevoked)
}

func TestAPIVerifierSecretOrInsecure(t *testing.T) {
	const secret = "main-test-secret-32-bytes-yyyyyyyy"
	ctx := context.Background()
	cfg := &config.Config{
		Auth: config.AuthConfig{Secret: secret},
		OIDC: config.OIDCConfig{AllowInsecure: true},
	}
	ver, err := apiVerifier(ctx, cfg, nil)
	require.NoError(t, err)

	raw, err := tokens.GenerateAccessToken(secret, "erin", time.Minute)
	require.NoError(t, err)
	_, err = ver.Verify(ctx, raw)
	require.NoError(t, err)

	enc := base64.RawURLEncoding
	unsigned := enc.EncodeToString([]byte(`{"alg":"none"}`)) + "." + enc.EncodeToString([]byte(`{"sub":"frank"}`)) + "."
	tok, err := ver.Verify(ctx, unsigned)
	require.NoError(t, err)
	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	require.Equal(t, "frank", claims["sub"])
}

func TestAPIVerifierOIDCDiscoveryFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	cfg := &config.Config{OIDC: config.OIDCConfig{Issuer: srv.URL, ClientID: "notes-web"}}
	_, err := apiVerifier(context.Background(), cfg, nil)
	require.Error(t, err)
}
