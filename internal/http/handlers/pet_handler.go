package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adotepet/adotepet-backend/internal/dto"
	"github.com/adotepet/adotepet-backend/internal/http/handlers/common"
	"github.com/adotepet/adotepet-backend/internal/models"
	"github.com/adotepet/adotepet-backend/internal/repository"
	"github.com/adotepet/adotepet-backend/internal/service"
)

// PetHandler предоставляет HTTP слой для анкет питомцев.
type PetHandler struct {
	pets *service.PetService
}

// NewPetHandler создаёт хэндлер.
func NewPetHandler(pets *service.PetService) *PetHandler {
	return &PetHandler{pets: pets}
}

type petRequest struct {
	Name        string  `json:"name" binding:"required"`
	Species     string  `json:"species" binding:"required"`
	Size        string  `json:"size" binding:"required"`
	Age         int     `json:"age"`
	Sex         string  `json:"sex" binding:"required"`
	Castrated   bool    `json:"castrated"`
	Dewormed    bool    `json:"dewormed"`
	Vaccinated  bool    `json:"vaccinated"`
	Description *string `json:"description"`
}

func (r petRequest) toInput() service.PetInput {
	return service.PetInput{
		Name:        r.Name,
		Species:     r.Species,
		Size:        r.Size,
		Age:         r.Age,
		Sex:         r.Sex,
		Castrated:   r.Castrated,
		Dewormed:    r.Dewormed,
		Vaccinated:  r.Vaccinated,
		Description: r.Description,
	}
}

// requestBaseURL восстанавливает внешний адрес сервиса из запроса.
func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

func petResponses(pets []models.Pet, baseURL string) []*dto.PetResponse {
	out := make([]*dto.PetResponse, 0, len(pets))
	for i := range pets {
		out = append(out, dto.NewPetResponse(&pets[i], baseURL))
	}
	return out
}

// Create обрабатывает POST /api/pets.
func (h *PetHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req petRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	pet, err := h.pets.Create(c.Request.Context(), userID, req.toInput())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewPetResponse(pet, requestBaseURL(c)))
}

// Get обрабатывает GET /api/pets/:id.
func (h *PetHandler) Get(c *gin.Context) {
	petID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	pet, err := h.pets.GetByID(c.Request.Context(), petID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPetResponse(pet, requestBaseURL(c)))
}

// List обрабатывает GET /api/pets с фильтрами species, size, city.
func (h *PetHandler) List(c *gin.Context) {
	page := common.ParseIntQuery(c, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := common.ParseIntQuery(c, "limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filter := repository.PetFilter{
		Species: c.Query("species"),
		Size:    c.Query("size"),
		City:    c.Query("city"),
		Limit:   limit,
		Offset:  (page - 1) * limit,
	}

	pets, err := h.pets.List(c.Request.Context(), filter)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	baseURL := requestBaseURL(c)
	links := dto.ListLinks{
		Self: fmt.Sprintf("%s%s?page=%d&limit=%d", baseURL, c.Request.URL.Path, page, limit),
	}
	if len(pets) == limit {
		next := fmt.Sprintf("%s%s?page=%d&limit=%d", baseURL, c.Request.URL.Path, page+1, limit)
		links.Next = &next
	}
	if page > 1 {
		prev := fmt.Sprintf("%s%s?page=%d&limit=%d", baseURL, c.Request.URL.Path, page-1, limit)
		links.Prev = &prev
	}

	c.JSON(http.StatusOK, gin.H{
		"pets":   petResponses(pets, baseURL),
		"page":   page,
		"limit":  limit,
		"_links": links,
	})
}

// ListMine обрабатывает GET /api/pets/mine.
func (h *PetHandler) ListMine(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	pets, err := h.pets.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, petResponses(pets, requestBaseURL(c)))
}

// Feed обрабатывает GET /api/pets/feed: лента анкет без уже просмотренных.
func (h *PetHandler) Feed(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	pets, err := h.pets.ListFeed(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, petResponses(pets, requestBaseURL(c)))
}

// Update обрабатывает PUT /api/pets/:id.
func (h *PetHandler) Update(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	petID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req petRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	pet, err := h.pets.Update(c.Request.Context(), petID, userID, req.toInput())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPetResponse(pet, requestBaseURL(c)))
}

// Delete обрабатывает DELETE /api/pets/:id.
func (h *PetHandler) Delete(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	petID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.pets.Delete(c.Request.Context(), petID, userID); err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "pet removido com sucesso"})
}

// MarkAdopted обрабатывает PATCH /api/pets/:id/adopt.
func (h *PetHandler) MarkAdopted(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	petID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Adopter string `json:"adopter"`
	}
	// Тело опционально, имя усыновителя может отсутствовать.
	_ = c.ShouldBindJSON(&req)

	pet, err := h.pets.MarkAdopted(c.Request.Context(), petID, userID, req.Adopter)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPetResponse(pet, requestBaseURL(c)))
}

// AddPhoto обрабатывает POST /api/pets/:id/photos (multipart, поле "photo").
func (h *PetHandler) AddPhoto(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	petID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		common.RespondBadRequest(c, "arquivo de foto é obrigatório")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		common.RespondBadRequest(c, "não foi possível ler o arquivo")
		return
	}
	defer file.Close()

	photo, err := h.pets.AddPhoto(c.Request.Context(), petID, userID, fileHeader.Filename, file)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, photo)
}

// DeletePhoto обрабатывает DELETE /api/pets/:id/photos/:photoId.
func (h *PetHandler) DeletePhoto(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	petID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	photoID, err := common.ParseUUIDParam(c, "photoId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.pets.DeletePhoto(c.Request.Context(), petID, photoID, userID); err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "foto removida com sucesso"})
}
