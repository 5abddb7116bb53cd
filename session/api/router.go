package api

import (
	"ai-roleplay-chat/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches the session routes. Import and export carry the
// rate limiter; they are the only endpoints that move whole-store payloads.
func (h *SessionHandler) RegisterRoutes(router *gin.Engine, limiter *middleware.RateLimiter) {
	sessions := router.Group("/api/sessions")
	{
		sessions.POST("", h.CreateSession)
		sessions.GET("", h.ListSessions)
		sessions.GET("/storage", h.StorageInfo)

		transfer := sessions.Group("")
		if limiter != nil {
			transfer.Use(limiter.Middleware())
		}
		transfer.GET("/export", h.ExportSessions)
		transfer.POST("/import", h.ImportSessions)

		sessions.GET("/:id", h.GetSession)
		sessions.DELETE("/:id", h.DeleteSession)
		sessions.PUT("/:id/title", h.RenameSession)
		sessions.POST("/:id/messages", h.AppendMessage)
		sessions.PUT("/:id/messages/:messageId", h.UpdateMessage)
		sessions.POST("/:id/chat", h.Chat)
	}
}
