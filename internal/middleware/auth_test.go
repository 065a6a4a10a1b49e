package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"combat/internal/config"
)

const testSecret = "unit-test-secret-key-long-enough-for-hmac-signing"

func testConfig() *config.Config {
	return &config.Config{JWT: config.JWTConfig{Secret: testSecret}}
}

// signToken fabrique un JWT HS256 signé avec le secret de test
func signToken(t *testing.T, claims JWTClaims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims(userID uuid.UUID) JWTClaims {
	return JWTClaims{
		UserID:   userID.String(),
		Username: "kael",
		Role:     "player",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

// newAuthRouter monte AuthMiddleware devant un handler qui renvoie les clés
// déposées dans le contexte
func newAuthRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/whoami", AuthMiddleware(cfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":   c.GetString("user_id"),
			"username":  c.GetString("username"),
			"user_role": c.GetString("user_role"),
		})
	})
	return router
}

func requestWithAuth(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func authError(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body["error"]
}

func TestAuthMiddleware_ValidTokenPopulatesContext(t *testing.T) {
	userID := uuid.New()
	token := signToken(t, validClaims(userID), testSecret)
	router := newAuthRouter(testConfig())

	recorder := requestWithAuth(router, "Bearer "+token)

	require.Equal(t, http.StatusOK, recorder.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, userID.String(), body["user_id"])
	assert.Equal(t, "kael", body["username"])
	assert.Equal(t, "player", body["user_role"])
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	router := newAuthRouter(testConfig())

	recorder := requestWithAuth(router, "")

	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "Authorization header required", authError(t, recorder))
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	router := newAuthRouter(testConfig())

	cases := []struct {
		name   string
		header string
	}{
		{"no bearer prefix", "Token abc123"},
		{"single part", "abc123"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := requestWithAuth(router, tc.header)

			require.Equal(t, http.StatusUnauthorized, recorder.Code)
			assert.Equal(t, "Invalid authorization header format", authError(t, recorder))
		})
	}
}

func TestAuthMiddleware_RejectsBadSignature(t *testing.T) {
	token := signToken(t, validClaims(uuid.New()), "a-completely-different-signing-secret")
	router := newAuthRouter(testConfig())

	recorder := requestWithAuth(router, "Bearer "+token)

	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "Invalid or expired token", authError(t, recorder))
}

func TestAuthMiddleware_RejectsExpiredToken(t *testing.T) {
	claims := validClaims(uuid.New())
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	token := signToken(t, claims, testSecret)
	router := newAuthRouter(testConfig())

	recorder := requestWithAuth(router, "Bearer "+token)

	// jwt/v5 valide l'expiration au parsing, donc le rejet passe par le
	// chemin "Invalid or expired token"
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "Invalid or expired token", authError(t, recorder))
}

func TestAuthMiddleware_RejectsNonUUIDUserID(t *testing.T) {
	claims := validClaims(uuid.New())
	claims.UserID = "not-a-uuid"
	token := signToken(t, claims, testSecret)
	router := newAuthRouter(testConfig())

	recorder := requestWithAuth(router, "Bearer "+token)

	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "Invalid or expired token", authError(t, recorder))
}

func TestUserIDFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("returns the stored uuid", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		want := uuid.New()
		c.Set("user_id", want.String())

		got, err := UserIDFromContext(c)

		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("missing key", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())

		_, err := UserIDFromContext(c)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing user_id")
	})

	t.Run("invalid value", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Set("user_id", "garbage")

		_, err := UserIDFromContext(c)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid user_id")
	})
}
