package router

import (
	"boards-backend/internal/app/board"
	"boards-backend/internal/app/health"
	"boards-backend/internal/app/image"
	"boards-backend/internal/metrics"
	"boards-backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(logger *zap.Logger, m *metrics.Metrics) *Router {
	engine := gin.New()
	engine.Use(middleware.CORSMiddleware())
	engine.Use(middleware.LoggerMiddleware(logger))
	if m != nil {
		engine.Use(middleware.MetricsMiddleware(m))
	}
	engine.Use(gin.Recovery())
	return &Router{Engine: engine}
}

func (r *Router) RegisterHealthRoutes(handler health.Handler) {
	health.RegisterRoutes(r.Engine, handler)
}

func (r *Router) RegisterMetricsRoutes(m *metrics.Metrics) {
	r.Engine.GET("/metrics", m.Handler())
}

// RegisterBoardRoutes mounts every board endpoint behind the auth middleware.
func (r *Router) RegisterBoardRoutes(handler board.Handler, auth gin.HandlerFunc) {
	board.RegisterRoutes(r.Engine.Group("", auth), handler)
}

func (r *Router) RegisterImageRoutes(handler image.Handler, auth gin.HandlerFunc) {
	image.RegisterRoutes(r.Engine.Group("", auth), handler)
}

func (r *Router) Serve(addr string) error {
	return r.Engine.Run(addr)
}
