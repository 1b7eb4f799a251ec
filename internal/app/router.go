// Package app は全モジュールを1つの gin エンジンに登録する。
package app

import (
	"database/sql"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"ASSETRACK-backend/internal/asset_mgmt/assets"
	"ASSETRACK-backend/internal/asset_mgmt/lends"
	"ASSETRACK-backend/internal/asset_mgmt/maintenance"
	"ASSETRACK-backend/internal/asset_mgmt/movements"
	"ASSETRACK-backend/internal/asset_mgmt/reports"
	"ASSETRACK-backend/internal/dbmng"
	"ASSETRACK-backend/internal/platform/apidoc"
	"ASSETRACK-backend/internal/platform/apierr"
	"ASSETRACK-backend/internal/platform/auth"
	"ASSETRACK-backend/internal/platform/clock"
	"ASSETRACK-backend/internal/platform/config"
	"ASSETRACK-backend/internal/platform/db"
	"ASSETRACK-backend/internal/platform/ids"
)

type Deps struct {
	DB      *sql.DB
	Dialect db.Dialect
	Clock   clock.Clock
	IDs     ids.IDGen
	Auth    *auth.Service
}

func NewRouter(cfg *config.Config, d Deps) *gin.Engine {
	if d.Clock == nil {
		d.Clock = clock.Real{}
	}
	if d.IDs == nil {
		d.IDs = ids.NewULIDGen()
	}
	if d.Auth == nil {
		d.Auth = auth.NewService(d.DB, []byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	}
	apierr.RegisterJSONTagNames()

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	dev := cfg.Mode == config.ModeDev
	if dev {
		// CORS（開発中のみ必要）
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowOrigins,
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "Location"},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	// ヘルス
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	apidoc.RegisterRoutes(r, dev)

	// /api/v2
	api := r.Group("/api/v2")
	auth.RegisterPublicRoutes(api, d.Auth)

	authed := api.Group("", auth.RequireAuth(d.Auth.Secret()))
	auth.RegisterRoutes(authed, d.Auth)
	dbmng.RegisterRoutes(authed, dbmng.NewService(d.DB))
	assets.RegisterRoutes(authed, assets.NewService(d.DB, d.Dialect, d.Clock))
	lends.RegisterRoutes(authed, lends.NewService(d.DB, d.Dialect, d.Clock))
	movements.RegisterRoutes(authed, movements.NewService(d.DB, d.Dialect, d.Clock, d.IDs))
	maintenance.RegisterRoutes(authed, maintenance.NewService(d.DB, d.Clock, d.IDs))
	reports.RegisterRoutes(authed, reports.NewService(d.DB, d.Dialect, d.Clock))

	admin := authed.Group("", auth.RequireRole(auth.RoleAdmin))
	auth.RegisterAdminRoutes(admin, d.Auth)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, apierr.Body(apierr.NotFound("route not found")))
	})
	return r
}
