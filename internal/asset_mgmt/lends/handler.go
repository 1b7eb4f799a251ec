package lends

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ASSETRACK-backend/internal/asset_mgmt/assets"
	"ASSETRACK-backend/internal/platform/apierr"
	"ASSETRACK-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.POST("/assets/:asset_id/checkout", h.Checkout)
	r.POST("/assets/:asset_id/return", h.Return)
}

func (h *Handler) Checkout(c *gin.Context) {
	id, ok := assets.AssetID(c)
	if !ok {
		return
	}
	res, err := h.svc.Checkout(c.Request.Context(), id, auth.Actor(c))
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Return(c *gin.Context) {
	id, ok := assets.AssetID(c)
	if !ok {
		return
	}
	res, err := h.svc.Return(c.Request.Context(), id)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, res)
}
