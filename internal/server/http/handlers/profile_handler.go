package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/yemma/internal/domain/errors"
	"github.com/polkiloo/yemma/internal/server/http/dto"
)

// ProfileHandler serves profile updates and cook lookups.
type ProfileHandler struct {
	profiles ProfileFacade
	catalog  CatalogFacade
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(profiles ProfileFacade, catalog CatalogFacade) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, catalog: catalog}
}

// UpdatePushToken handles PUT /api/user/push-token.
func (h *ProfileHandler) UpdatePushToken(c *gin.Context) {
	var req dto.PushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	err := h.profiles.UpdatePushToken(c.Request.Context(), CurrentUserID(c), req.PushToken)
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, domainErrors.ErrInvalidPushToken):
		c.Status(http.StatusBadRequest)
	case errors.Is(err, domainErrors.ErrUnauthenticated), errors.Is(err, domainErrors.ErrNotFound):
		c.Status(http.StatusUnauthorized)
	default:
		c.Status(http.StatusInternalServerError)
	}
}

// Cook handles GET /api/cooks/:id.
func (h *ProfileHandler) Cook(c *gin.Context) {
	cook, err := h.catalog.Cook(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, dto.CookResponse{ID: cook.ID, Name: cook.Name})
}
