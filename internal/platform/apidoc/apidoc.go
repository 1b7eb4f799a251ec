// Package apidoc は手書きの OpenAPI 定義と Swagger UI を配信する。
package apidoc

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//go:embed openapi.yaml
var doc []byte

const DocPath = "/openapi.yaml"

// RegisterRoutes: withUI なら /swagger/*any も登録
func RegisterRoutes(r gin.IRoutes, withUI bool) {
	r.GET(DocPath, func(c *gin.Context) {
		c.Data(http.StatusOK, "application/yaml", doc)
	})
	if withUI {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL(DocPath)))
	}
}
