package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/adotepet/adotepet-backend/internal/http/handlers/common"
	"github.com/adotepet/adotepet-backend/internal/service"
)

// InteractionHandler предоставляет HTTP слой для реакций в ленте.
type InteractionHandler struct {
	svc *service.InteractionService
}

// NewInteractionHandler создаёт хэндлер.
func NewInteractionHandler(svc *service.InteractionService) *InteractionHandler {
	return &InteractionHandler{svc: svc}
}

// Record POST /api/interactions
func (h *InteractionHandler) Record(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req struct {
		PetID string `json:"petId" binding:"required,uuid"`
		Type  string `json:"type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	petID, _ := uuid.Parse(req.PetID)
	interaction, err := h.svc.Record(c.Request.Context(), userID, petID, req.Type)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, interaction)
}

// List GET /api/interactions
func (h *InteractionHandler) List(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	interactionType := c.Query("type")
	limit, offset := common.GetPagination(c)

	interactions, err := h.svc.ListByUser(c.Request.Context(), userID, interactionType, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, interactions)
}

// Remove DELETE /api/interactions/:petId
func (h *InteractionHandler) Remove(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	petID, err := common.ParseUUIDParam(c, "petId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.svc.Remove(c.Request.Context(), userID, petID); err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "removido"})
}
