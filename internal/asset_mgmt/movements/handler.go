package movements

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ASSETRACK-backend/internal/platform/apierr"
	"ASSETRACK-backend/internal/platform/auth"
	"ASSETRACK-backend/internal/platform/paging"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/movements", h.ListMovements)
	r.POST("/movements", h.RecordMovement)
	r.GET("/movements/:movement_id", h.GetMovement)
	r.PUT("/movements/:movement_id", h.UpdateMovement)
	r.DELETE("/movements/:movement_id", h.DeleteMovement)
}

func fail(c *gin.Context, err error) {
	c.JSON(apierr.ToHTTPStatus(err), apierr.Body(err))
}

func movementID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("movement_id"), 10, 64)
	if err != nil || id <= 0 {
		fail(c, apierr.Invalid("movement_id must be a number"))
		return 0, false
	}
	return id, true
}

func (h *Handler) ListMovements(c *gin.Context) {
	assetID, ok := paging.OptionalInt64(c, "asset_id")
	if !ok {
		fail(c, apierr.InvalidField("asset_id", "must be a positive integer"))
		return
	}
	p := paging.FromQuery(c)
	items, total, err := h.svc.List(c.Request.Context(), Filter{AssetID: assetID}, p)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, paging.NewList(items, total, p))
}

func (h *Handler) RecordMovement(c *gin.Context) {
	var req RecordMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apierr.FromBind(err))
		return
	}
	res, err := h.svc.RecordMovementAndRelocate(c.Request.Context(), auth.Actor(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Location", "/movements/"+strconv.FormatInt(res.MovementID, 10))
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) GetMovement(c *gin.Context) {
	id, ok := movementID(c)
	if !ok {
		return
	}
	res, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) UpdateMovement(c *gin.Context) {
	id, ok := movementID(c)
	if !ok {
		return
	}
	var req UpdateMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apierr.FromBind(err))
		return
	}
	res, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) DeleteMovement(c *gin.Context) {
	id, ok := movementID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
