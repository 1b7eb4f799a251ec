package assets

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
	r.GET("/assets", h.ListAssets)
	r.POST("/assets", h.CreateAsset)
	r.GET("/assets/:asset_id", h.GetAsset)
	r.GET("/assets/:asset_id/detail", h.GetAssetDetail)
	r.PUT("/assets/:asset_id", h.UpdateAsset)
	r.DELETE("/assets/:asset_id", h.DeleteAsset)
}

func fail(c *gin.Context, err error) {
	c.JSON(apierr.ToHTTPStatus(err), apierr.Body(err))
}

// AssetID は :asset_id を解釈する。不正なら 400 を書いて false を返す
func AssetID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("asset_id"), 10, 64)
	if err != nil || id <= 0 {
		fail(c, apierr.Invalid("asset_id must be a number"))
		return 0, false
	}
	return id, true
}

func (h *Handler) ListAssets(c *gin.Context) {
	var f Filter
	if v := c.Query("status"); v != "" {
		f.Status = &v
	}
	var ok bool
	if f.DepartmentID, ok = paging.OptionalInt64(c, "department_id"); !ok {
		fail(c, apierr.InvalidField("department_id", "must be a positive integer"))
		return
	}
	if f.CategoryID, ok = paging.OptionalInt64(c, "category_id"); !ok {
		fail(c, apierr.InvalidField("category_id", "must be a positive integer"))
		return
	}
	f.Q = c.Query("q")
	f.NeedsAttention = c.Query("attention") == "true" || c.Query("attention") == "1"

	p := paging.FromQuery(c)
	items, total, err := h.svc.ListAssets(c.Request.Context(), f, p)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, paging.NewList(items, total, p))
}

func (h *Handler) CreateAsset(c *gin.Context) {
	var req AssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apierr.FromBind(err))
		return
	}
	res, err := h.svc.CreateAsset(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Location", "/assets/"+strconv.FormatInt(res.AssetID, 10))
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) GetAsset(c *gin.Context) {
	id, ok := AssetID(c)
	if !ok {
		return
	}
	res, err := h.svc.GetAsset(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetAssetDetail(c *gin.Context) {
	id, ok := AssetID(c)
	if !ok {
		return
	}
	res, err := h.svc.GetAssetDetail(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) UpdateAsset(c *gin.Context) {
	id, ok := AssetID(c)
	if !ok {
		return
	}
	var req AssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apierr.FromBind(err))
		return
	}
	res, err := h.svc.UpdateAsset(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) DeleteAsset(c *gin.Context) {
	id, ok := AssetID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteAsset(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
