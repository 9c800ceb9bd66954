package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/platefeed/backend/internal/service"
)

// ShortLinkHandler redirects /s/{id} aliases to the canonical recipe
// page.
type ShortLinkHandler struct {
	shortLinks *service.ShortLinkService
}

func NewShortLinkHandler(shortLinks *service.ShortLinkService) *ShortLinkHandler {
	return &ShortLinkHandler{shortLinks: shortLinks}
}

func (h *ShortLinkHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/s/:id", h.Redirect)
}

func (h *ShortLinkHandler) Redirect(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "invalid recipe id"})
		return
	}

	target, err := h.shortLinks.Resolve(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, target)
}
