package maintenance

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ASSETRACK-backend/internal/platform/apierr"
	"ASSETRACK-backend/internal/platform/paging"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/maintenance", h.List)
	r.POST("/maintenance", h.Create)
	r.GET("/maintenance/:record_id", h.Get)
	r.PUT("/maintenance/:record_id", h.Update)
	r.DELETE("/maintenance/:record_id", h.Delete)
}

func fail(c *gin.Context, err error) {
	c.JSON(apierr.ToHTTPStatus(err), apierr.Body(err))
}

func recordID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("record_id"), 10, 64)
	if err != nil || id <= 0 {
		fail(c, apierr.Invalid("record_id must be a number"))
		return 0, false
	}
	return id, true
}

func (h *Handler) List(c *gin.Context) {
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

func (h *Handler) Create(c *gin.Context) {
	var req MaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apierr.FromBind(err))
		return
	}
	res, err := h.svc.RecordMaintenance(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Location", "/maintenance/"+strconv.FormatInt(res.RecordID, 10))
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := recordID(c)
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

func (h *Handler) Update(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}
	var req MaintenanceRequest
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

func (h *Handler) Delete(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
