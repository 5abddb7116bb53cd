package api

import (
	"io"
	"net/http"

	"ai-roleplay-chat/backend/ai"
	"ai-roleplay-chat/backend/persona"
	"ai-roleplay-chat/backend/pkg/errors"
	"ai-roleplay-chat/backend/pkg/logger"
	"ai-roleplay-chat/backend/session/models"
	"ai-roleplay-chat/backend/session/service"

	"github.com/gin-gonic/gin"
)

// maxImportBytes bounds import payloads; the storage budget itself is 5MB.
const maxImportBytes = 10 << 20

// SessionHandler exposes the session store over HTTP.
type SessionHandler struct {
	svc       *service.SessionService
	registry  *persona.Registry
	completer ai.Completer
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(svc *service.SessionService, registry *persona.Registry, completer ai.Completer) *SessionHandler {
	return &SessionHandler{svc: svc, registry: registry, completer: completer}
}

type createSessionRequest struct {
	PersonaID string `json:"personaId" binding:"required"`
	Title     string `json:"title"`
}

// CreateSession starts a new session for a persona
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewBadRequestError("REQUEST_INVALID", err.Error()))
		return
	}

	session, err := h.svc.Create(c.Request.Context(), req.PersonaID, req.Title)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// ListSessions returns session summaries, or a persona's sessions when
// personaId is given.
func (h *SessionHandler) ListSessions(c *gin.Context) {
	if personaID := c.Query("personaId"); personaID != "" {
		sessions := h.svc.ListByPersona(c.Request.Context(), personaID)
		c.JSON(http.StatusOK, gin.H{"sessions": sessions})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": h.svc.Summaries(c.Request.Context())})
}

// GetSession returns one full session
func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, session)
}

type appendMessageRequest struct {
	Type          string `json:"type" binding:"required"`
	Content       string `json:"content"`
	AttachedImage string `json:"attachedImage"`
	IsComplete    *bool  `json:"isComplete"`
}

// AppendMessage appends one message to a session
func (h *SessionHandler) AppendMessage(c *gin.Context) {
	var req appendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewBadRequestError("REQUEST_INVALID", err.Error()))
		return
	}

	msg := models.Message{
		Role:          req.Type,
		Content:       req.Content,
		AttachedImage: req.AttachedImage,
		IsComplete:    true,
	}
	if req.IsComplete != nil {
		msg.IsComplete = *req.IsComplete
		msg.CanContinue = !*req.IsComplete
	}

	session, err := h.svc.Append(c.Request.Context(), c.Param("id"), msg)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, session)
}

type updateMessageRequest struct {
	Content    string `json:"content" binding:"required"`
	IsComplete *bool  `json:"isComplete"`
}

// UpdateMessage edits a stored message in place
func (h *SessionHandler) UpdateMessage(c *gin.Context) {
	var req updateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewBadRequestError("REQUEST_INVALID", err.Error()))
		return
	}

	isComplete := true
	if req.IsComplete != nil {
		isComplete = *req.IsComplete
	}

	session, err := h.svc.UpdateMessage(c.Request.Context(), c.Param("id"), c.Param("messageId"), req.Content, isComplete)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, session)
}

type chatRequest struct {
	Content       string `json:"content" binding:"required"`
	AttachedImage string `json:"attachedImage"`
}

// Chat appends the user message, asks the completion collaborator for the
// character's reply and appends that too.
func (h *SessionHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewBadRequestError("REQUEST_INVALID", err.Error()))
		return
	}

	id := c.Param("id")
	session, err := h.svc.Append(c.Request.Context(), id, models.Message{
		Role:          models.RoleUser,
		Content:       req.Content,
		AttachedImage: req.AttachedImage,
		IsComplete:    true,
	})
	if err != nil {
		c.Error(err)
		return
	}

	p, _ := h.registry.Get(session.PersonaID)
	history := session.Messages
	if len(history) > 0 {
		history = history[:len(history)-1]
	}

	reply, err := h.completer.Complete(c.Request.Context(), p, req.Content, history)
	if err != nil {
		logger.FromContext(c).LogError(err, "chat completion failed", "session_id", id)
		c.Error(errors.NewError(http.StatusBadGateway, "COMPLETION_FAILED", "the character service did not respond"))
		return
	}

	session, err = h.svc.Append(c.Request.Context(), id, models.Message{
		Role:        models.RoleCharacter,
		Content:     reply.Content,
		IsComplete:  reply.IsComplete,
		CanContinue: !reply.IsComplete,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, session)
}

type renameRequest struct {
	Title string `json:"title" binding:"required"`
}

// RenameSession sets a user-chosen title
func (h *SessionHandler) RenameSession(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewBadRequestError("REQUEST_INVALID", err.Error()))
		return
	}

	session, err := h.svc.Rename(c.Request.Context(), c.Param("id"), req.Title)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// DeleteSession removes a session; unknown ids are a no-op
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportSessions streams the full session set as a JSON download
func (h *SessionHandler) ExportSessions(c *gin.Context) {
	data, err := h.svc.ExportAll(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="sessions.json"`)
	c.Data(http.StatusOK, "application/json", data)
}

// ImportSessions merges an uploaded session set into the store
func (h *SessionHandler) ImportSessions(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
	if err != nil {
		c.Error(errors.NewBadRequestError("REQUEST_INVALID", err.Error()))
		return
	}

	count, err := h.svc.ImportAll(c.Request.Context(), data)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": count})
}

// StorageInfo reports the advisory storage usage estimate
func (h *SessionHandler) StorageInfo(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.StorageInfo(c.Request.Context()))
}
