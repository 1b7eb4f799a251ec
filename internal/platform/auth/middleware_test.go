package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func protectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/", RequireAuth(testSecret))
	g.GET("/whoami", func(c *gin.Context) { c.String(http.StatusOK, Actor(c)) })
	g.GET("/admin", RequireRole(RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func get(r http.Handler, path, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth_Rejects(t *testing.T) {
	r := protectedRouter()
	exp := time.Now().Add(time.Hour).Unix()

	cases := map[string]string{
		"missing header": "",
		"not bearer":     "Basic Zm9vOmJhcg==",
		"empty token":    "Bearer ",
		"garbage":        "Bearer not-a-jwt",
		"wrong secret":   "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "a", "exp": exp}),
		"expired":        "Bearer " + sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "a", "exp": time.Now().Add(-time.Minute).Unix()}),
		"no exp":         "Bearer " + sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "a"}),
		"no sub":         "Bearer " + sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"exp": exp}),
		"alg none":       "Bearer " + sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.MapClaims{"sub": "a", "exp": exp}),
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			w := get(r, "/whoami", h)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"UNAUTHENTICATED"`)
		})
	}
}

func TestRequireAuth_SetsActor(t *testing.T) {
	r := protectedRouter()
	tok := sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "alice", "role": RoleUser, "exp": time.Now().Add(time.Hour).Unix()})

	w := get(r, "/whoami", "Bearer "+tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", w.Body.String())

	w = get(r, "/admin", "Bearer "+tok)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "root", "role": RoleAdmin, "exp": time.Now().Add(time.Hour).Unix()})
	w = get(r, "/admin", "bearer "+admin)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
