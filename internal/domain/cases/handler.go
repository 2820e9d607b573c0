package cases

import (
	"errors"
	"net/http"

	"casehub/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createCaseRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// Create godoc
// @Summary Create a case
// @Description Creates a case and grants the creator admin access.
// @Tags Cases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 400,401,500 {object} map[string]interface{}
// @Router /cases [post]
func (h *Handler) Create(c *gin.Context) {
	userID := currentUserID(c)
	if userID == 0 {
		return
	}

	var req createCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "title is required")
		return
	}

	newCase, err := h.service.Create(c.Request.Context(), userID, req.Title, req.Description)
	if err != nil {
		if errors.Is(err, ErrEmptyTitle) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "title is required")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create case")
		return
	}

	response.Success(c, http.StatusOK, newCase)
}

// List godoc
// @Summary List cases the user has access to
// @Tags Cases
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401,500 {object} map[string]interface{}
// @Router /cases [get]
func (h *Handler) List(c *gin.Context) {
	userID := currentUserID(c)
	if userID == 0 {
		return
	}

	rows, err := h.service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list cases")
		return
	}

	response.Success(c, http.StatusOK, rows)
}

func currentUserID(c *gin.Context) int64 {
	id := c.GetInt64("user_id")
	if id == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	}
	return id
}
