package reports

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"ASSETRACK-backend/internal/platform/apierr"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/dashboard", h.Dashboard)
	r.GET("/reports", h.Reports)
	r.GET("/reports/export", h.Export)
}

func fail(c *gin.Context, err error) {
	c.JSON(apierr.ToHTTPStatus(err), apierr.Body(err))
}

func (h *Handler) Dashboard(c *gin.Context) {
	res, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Reports(c *gin.Context) {
	res, err := h.svc.Reports(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Export: ?format=csv|xlsx&encoding=utf-8|shift_jis
func (h *Handler) Export(c *gin.Context) {
	opts, err := ExportOptions{Format: c.Query("format"), Encoding: c.Query("encoding")}.Normalize()
	if err != nil {
		fail(c, err)
		return
	}
	data, err := h.svc.Export(c.Request.Context(), opts)
	if err != nil {
		fail(c, err)
		return
	}
	name := fmt.Sprintf("assets_%s.%s", h.svc.clock.Now().UTC().Format("20060102_150405"), opts.Format)
	c.Header("Content-Disposition", "attachment; filename="+name)
	c.Data(http.StatusOK, opts.ContentType(), data)
}
