package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ASSETRACK-backend/internal/asset_mgmt/assets"
	"ASSETRACK-backend/internal/asset_mgmt/movements"
	"ASSETRACK-backend/internal/platform/auth"
	"ASSETRACK-backend/internal/platform/config"
	"ASSETRACK-backend/internal/platform/db/dbtest"
)

type testServer struct {
	t *testing.T
	r *gin.Engine
}

func newTestServer(t *testing.T) (*testServer, *auth.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	conn, dialect := dbtest.Open(t)
	cfg := &config.Config{
		Mode: config.ModeRelease,
		Auth: config.Auth{JWTSecret: "router-test-secret", TokenTTL: time.Hour},
	}
	authSvc := auth.NewService(conn, []byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	r := NewRouter(cfg, Deps{DB: conn, Dialect: dialect, Auth: authSvc})
	return &testServer{t: t, r: r}, authSvc
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(id, pw string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v2/login", "", map[string]string{"id": id, "password": pw})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotEmpty(s.t, res.Token)
	return res.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestRouter_HealthAndNoRoute(t *testing.T) {
	s, _ := newTestServer(t)

	w := s.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	w = s.do(http.MethodGet, "/api/v2/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"NOT_FOUND"`)

	w = s.do(http.MethodGet, "/openapi.yaml", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi:")

	// release では UI を出さない
	w = s.do(http.MethodGet, "/swagger/index.html", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_RequiresToken(t *testing.T) {
	s, _ := newTestServer(t)

	for _, p := range []string{"/api/v2/assets", "/api/v2/departments", "/api/v2/dashboard", "/api/v2/me"} {
		w := s.do(http.MethodGet, p, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, p)
	}
	w := s.do(http.MethodPost, "/api/v2/assets/1/checkout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_LoginRejectsBadPassword(t *testing.T) {
	s, authSvc := newTestServer(t)
	require.NoError(t, authSvc.Register(context.Background(), "alice", "password-a", auth.RoleUser))

	w := s.do(http.MethodPost, "/api/v2/login", "", map[string]string{"id": "alice", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_AdminRoutesNeedAdmin(t *testing.T) {
	s, authSvc := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, authSvc.Register(ctx, "alice", "password-a", auth.RoleUser))
	require.NoError(t, authSvc.Register(ctx, "root", "password-r", auth.RoleAdmin))

	body := map[string]string{"id": "carol", "password": "password-c"}
	w := s.do(http.MethodPost, "/api/v2/accounts", s.login("alice", "password-a"), body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	root := s.login("root", "password-r")
	w = s.do(http.MethodPost, "/api/v2/accounts", root, body)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPut, "/api/v2/accounts/root/disabled", root, map[string]bool{"disabled": true})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPut, "/api/v2/accounts/carol/disabled", root, map[string]bool{"disabled": true})
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(http.MethodPost, "/api/v2/login", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_CheckoutConflictBetweenUsers(t *testing.T) {
	s, authSvc := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, authSvc.Register(ctx, "alice", "password-a", auth.RoleUser))
	require.NoError(t, authSvc.Register(ctx, "bob", "password-b", auth.RoleUser))
	alice := s.login("alice", "password-a")
	bob := s.login("bob", "password-b")

	w := s.do(http.MethodPost, "/api/v2/assets", alice, assets.AssetRequest{
		Name: "Projector", SerialNumber: "PJ-001", PurchaseDate: "2024-04-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[assets.Asset](t, w)
	assert.Equal(t, assets.StatusAvailable, created.Status)
	assert.Equal(t, assets.ConditionGood, created.Condition)

	base := "/api/v2/assets/" + itoa(created.AssetID)

	w = s.do(http.MethodPost, base+"/checkout", alice, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode[assets.Asset](t, w)
	assert.Equal(t, assets.StatusInUse, out.Status)
	require.NotNil(t, out.CurrentHolder)
	assert.Equal(t, "alice", *out.CurrentHolder)

	w = s.do(http.MethodPost, base+"/checkout", bob, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"CONFLICT"`)

	// 他人が返却してもよい
	w = s.do(http.MethodPost, base+"/return", bob, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	back := decode[assets.Asset](t, w)
	assert.Equal(t, assets.StatusAvailable, back.Status)
	assert.Nil(t, back.CurrentHolder)

	w = s.do(http.MethodPost, base+"/checkout", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bob", *decode[assets.Asset](t, w).CurrentHolder)

	w = s.do(http.MethodPost, "/api/v2/assets/999/checkout", bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_MovementRelocatesAsset(t *testing.T) {
	s, authSvc := newTestServer(t)
	require.NoError(t, authSvc.Register(context.Background(), "alice", "password-a", auth.RoleUser))
	tok := s.login("alice", "password-a")

	w := s.do(http.MethodPost, "/api/v2/departments", tok, map[string]string{"name": "Physics"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var dept struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dept))

	w = s.do(http.MethodPost, "/api/v2/assets", tok, assets.AssetRequest{
		Name: "Oscilloscope", SerialNumber: "OS-9", PurchaseDate: "2023-01-15",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	a := decode[assets.Asset](t, w)
	assert.Nil(t, a.DepartmentID)

	w = s.do(http.MethodPost, "/api/v2/movements", tok, movements.RecordMovementRequest{
		AssetID: a.AssetID, ToDepartmentID: &dept.ID, Remarks: "lab move",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	m := decode[movements.Movement](t, w)
	require.NotNil(t, m.MovedBy)
	assert.Equal(t, "alice", *m.MovedBy)
	require.NotNil(t, m.ToDepartment)
	assert.Equal(t, "Physics", *m.ToDepartment)

	w = s.do(http.MethodGet, "/api/v2/assets/"+itoa(a.AssetID), tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[assets.Asset](t, w)
	require.NotNil(t, got.DepartmentID)
	assert.Equal(t, dept.ID, *got.DepartmentID)

	w = s.do(http.MethodPost, "/api/v2/movements", tok, movements.RecordMovementRequest{AssetID: 12345})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"asset_id"`)
}

func TestRouter_DashboardAndExport(t *testing.T) {
	s, authSvc := newTestServer(t)
	require.NoError(t, authSvc.Register(context.Background(), "alice", "password-a", auth.RoleUser))
	tok := s.login("alice", "password-a")

	w := s.do(http.MethodGet, "/api/v2/dashboard", tok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/v2/reports/export?format=csv", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	w = s.do(http.MethodGet, "/api/v2/reports/export?format=pdf", tok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
