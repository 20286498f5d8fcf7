package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/adotepet/adotepet-backend/internal/http/handlers/common"
	"github.com/adotepet/adotepet-backend/internal/service"
)

// ReportHandler предоставляет HTTP слой для жалоб на анкеты.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler создаёт хэндлер.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Create обрабатывает POST /api/reports.
// Жалоба сохраняется со статусом PENDING и отправляется на асинхронную
// модерацию. Недоступность очереди не ломает приём жалобы.
func (h *ReportHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req struct {
		PetID      string `json:"petId" binding:"required,uuid"`
		ReportText string `json:"reportText" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	petID, _ := uuid.Parse(req.PetID)
	report, err := h.reports.Submit(c.Request.Context(), petID, userID, req.ReportText)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

// Get обрабатывает GET /api/reports/:id.
func (h *ReportHandler) Get(c *gin.Context) {
	reportID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	report, err := h.reports.GetByID(c.Request.Context(), reportID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// UpdateStatus обрабатывает PATCH /api/reports/:id/status.
// Ручной вердикт модератора проходит тот же путь, что и решение
// автоматической модерации из очереди.
func (h *ReportHandler) UpdateStatus(c *gin.Context) {
	reportID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	report, err := h.reports.UpdateStatus(c.Request.Context(), reportID, req.Status)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ListMine обрабатывает GET /api/reports/mine.
func (h *ReportHandler) ListMine(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	reports, err := h.reports.ListByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, reports)
}

// ListByPet обрабатывает GET /api/pets/:id/reports.
func (h *ReportHandler) ListByPet(c *gin.Context) {
	petID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	reports, err := h.reports.ListByPet(c.Request.Context(), petID, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, reports)
}

// ListByStatus обрабатывает GET /api/reports?status=PENDING (admin).
func (h *ReportHandler) ListByStatus(c *gin.Context) {
	status := c.Query("status")
	if status == "" {
		common.RespondBadRequest(c, "parâmetro status é obrigatório")
		return
	}

	limit, offset := common.GetPagination(c)
	reports, err := h.reports.ListByStatus(c.Request.Context(), status, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, reports)
}
