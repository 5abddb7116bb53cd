package api

import (
	"net/http"

	"ai-roleplay-chat/backend/analyzer"
	"ai-roleplay-chat/backend/persona"
	"ai-roleplay-chat/backend/pkg/errors"

	"github.com/gin-gonic/gin"
)

// PersonaHandler exposes the persona registry over HTTP.
type PersonaHandler struct {
	registry *persona.Registry
}

// NewPersonaHandler creates a persona handler.
func NewPersonaHandler(registry *persona.Registry) *PersonaHandler {
	return &PersonaHandler{registry: registry}
}

// RegisterRoutes attaches the persona routes.
func (h *PersonaHandler) RegisterRoutes(router *gin.Engine) {
	personas := router.Group("/api/personas")
	{
		personas.GET("", h.ListPersonas)
		personas.GET("/:id", h.GetPersona)
		personas.POST("", h.RegisterPersona)
	}
}

// ListPersonas returns all known personas
func (h *PersonaHandler) ListPersonas(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"personas": h.registry.List()})
}

// GetPersona returns one persona by id
func (h *PersonaHandler) GetPersona(c *gin.Context) {
	p, ok := h.registry.Get(c.Param("id"))
	if !ok {
		c.Error(errors.NewNotFoundError("PERSONA_NOT_FOUND", "persona does not exist"))
		return
	}
	c.JSON(http.StatusOK, p)
}

type registerPersonaRequest struct {
	persona.Persona
	// Optional title templates; each must contain one %s placeholder.
	VoiceProfile *struct {
		Discussion string `json:"discussion"`
		Learning   string `json:"learning"`
		Solving    string `json:"solving"`
		General    string `json:"general"`
	} `json:"voiceProfile"`
}

// RegisterPersona adds a user-created persona, optionally with its own
// title voice profile.
func (h *PersonaHandler) RegisterPersona(c *gin.Context) {
	var req registerPersonaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewBadRequestError("REQUEST_INVALID", err.Error()))
		return
	}

	if err := h.registry.Register(req.Persona); err != nil {
		c.Error(err)
		return
	}

	if req.VoiceProfile != nil {
		analyzer.RegisterProfile(req.Persona.ID, analyzer.VoiceProfile{
			Discussion: req.VoiceProfile.Discussion,
			Learning:   req.VoiceProfile.Learning,
			Solving:    req.VoiceProfile.Solving,
			General:    req.VoiceProfile.General,
		})
	}

	c.JSON(http.StatusCreated, gin.H{"id": req.Persona.ID})
}
