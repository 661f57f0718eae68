package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/knowyourdocs/docchat/internal/interfaces/httpserver/handlers"
)

// Routes registers the v1 API surface.
type Routes struct {
	handlers *handlers.Provider
}

// NewRoutes constructs the v1 route group.
func NewRoutes(handlerProvider *handlers.Provider) *Routes {
	return &Routes{handlers: handlerProvider}
}

// Register attaches the v1 routes to the engine.
func (r *Routes) Register(engine *gin.Engine) {
	v1 := engine.Group("/v1")

	file := v1.Group("/file")
	file.POST("/upload", r.handlers.File.Upload)
	file.GET("/query", r.handlers.File.Query)
	file.POST("/query", r.handlers.File.Query)

	v1.GET("/conversations", r.handlers.Conversation.List)
	v1.GET("/conversation/:id/messages", r.handlers.Conversation.Messages)
}
