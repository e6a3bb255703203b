package image

import "github.com/gin-gonic/gin"

func RegisterRoutes(rg gin.IRoutes, handler Handler) {
	rg.POST("/images", handler.Upload)
	rg.GET("/images/:image_id", handler.Find)
	rg.DELETE("/images/:image_id", handler.Delete)
}
