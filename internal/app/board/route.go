package board

import "github.com/gin-gonic/gin"

func RegisterRoutes(rg gin.IRoutes, handler Handler) {
	rg.GET("/boards", handler.ListAll)
	rg.POST("/bodies/:body_id/boards", handler.Create)
	rg.GET("/bodies/:body_id/boards", handler.ListForBody)
	// The "current" listing shares the :board_id segment and is dispatched
	// inside FindOrCurrent.
	rg.GET("/bodies/:body_id/boards/:board_id", handler.FindOrCurrent)
	rg.PUT("/bodies/:body_id/boards/:board_id", handler.Update)
	rg.DELETE("/bodies/:body_id/boards/:board_id", handler.Delete)
}
