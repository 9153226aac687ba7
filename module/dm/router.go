package dm

import (
	"DProject/middleware/security"

	"github.com/gin-gonic/gin"
)

// Register mounts the DM API under /api/dm, all behind the auth middleware.
func Register(r *gin.Engine, h *Handler, auth security.Options) {
	g := r.Group("/api/dm", security.Middleware(auth))

	g.POST("/threads", h.OpenThread)
	g.GET("/threads", h.ListThreads)
	g.POST("/threads/:id/respond", h.RespondThread)

	g.POST("/threads/:id/messages", h.AppendMessage)
	g.GET("/threads/:id/messages", h.ListMessages)
	g.PUT("/messages/:id", h.EditMessage)
	g.DELETE("/messages/:id", h.DeleteMessage)

	g.POST("/messages/:id/reactions", h.ToggleReaction)

	g.POST("/threads/:id/read", h.MarkRead)
	g.GET("/unread", h.Unread)

	g.GET("/presence/:user", h.Presence)
	g.GET("/threads/:id/stream", h.Stream)
}
