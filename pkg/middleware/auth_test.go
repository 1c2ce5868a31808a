package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// fakeToken implements Token
type fakeToken struct {
	data map[string]interface{}
}

func (t *fakeToken) Claims(v interface{}) error {
	if mm, ok := v.(*map[string]interface{}); ok {
		*mm = t.data
		return nil
	}
	return fmt.Errorf("unsupported claims type")
}

// fakeVerifier implements Verifier
type fakeVerifier struct{}

func (f *fakeVerifier) Verify(ctx context.Context, raw string) (Token, error) {
	if raw == "goodtoken" {
		return &fakeToken{data: map[string]interface{}{"sub": "user1"}}, nil
	}
	return nil, fmt.Errorf("invalid token")
}

func init() { gin.SetMode(gin.TestMode) }

func serveAuth(t *testing.T, header string) *httptest.ResponseRecorder {
	t.Helper()
	g := gin.New()
	g.GET("/", AuthMiddleware(&fakeVerifier{}), func(c *gin.Context) {
		claims, ok := c.Get(ClaimsKey)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"claims": claims})
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	return rw
}

func TestAuthMiddleware_NoHeader(t *testing.T) {
	require.Equal(t, http.StatusUnauthorized, serveAuth(t, "").Code)
}

func TestAuthMiddleware_InvalidHeader(t *testing.T) {
	require.Equal(t, http.StatusUnauthorized, serveAuth(t, "BadHeader").Code)
	require.Equal(t, http.StatusUnauthorized, serveAuth(t, "Bearer ").Code)
}

func TestAuthMiddleware_BadToken(t *testing.T) {
	require.Equal(t, http.StatusUnauthorized, serveAuth(t, "Bearer nope").Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	rw := serveAuth(t, "Bearer goodtoken")
	require.Equal(t, http.StatusOK, rw.Code)
	var got map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &got))
	require.Equal(t, "user1", got["claims"]["sub"])
}

type secondVerifier struct{}

func (secondVerifier) Verify(ctx context.Context, raw string) (Token, error) {
	if raw == "othertoken" {
		return &fakeToken{data: map[string]interface{}{"sub": "user2"}}, nil
	}
	return nil, fmt.Errorf("unknown issuer")
}

func TestAnyVerifier(t *testing.T) {
	ver := AnyVerifier(&fakeVerifier{}, secondVerifier{})
	ctx := context.Background()

	for raw, sub := range map[string]string{"goodtoken": "user1", "othertoken": "user2"} {
		tok, err := ver.Verify(ctx, raw)
		require.NoError(t, err)
		var claims map[string]interface{}
		require.NoError(t, tok.Claims(&claims))
		require.Equal(t, sub, claims["sub"])
	}

	_, err := ver.Verify(ctx, "nope")
	require.EqualError(t, err, "unknown issuer")

	_, err = AnyVerifier().Verify(ctx, "goodtoken")
	require.Error(t, err)

	single := &fakeVerifier{}
	require.Same(t, single, AnyVerifier(single))
}
