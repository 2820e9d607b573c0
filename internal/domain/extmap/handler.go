package extmap

import (
	"errors"
	"net/http"
	"strconv"

	"casehub/internal/domain/access"
	"casehub/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createMappingRequest struct {
	ExternalCaseID string `json:"external_case_id" binding:"required"`
	ExternalSystem string `json:"external_system" binding:"required"`
}

// Create godoc
// @Summary Map a case to an external system identifier
// @Tags External
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Case ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400,401,403,409 {object} map[string]interface{}
// @Router /cases/{id}/external-case-mapping [post]
func (h *Handler) Create(c *gin.Context) {
	userID := currentUserID(c)
	if userID == 0 {
		return
	}
	caseID, ok := caseIDParam(c)
	if !ok {
		return
	}

	var req createMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "external_case_id and external_system are required")
		return
	}

	mapping, err := h.service.Create(c.Request.Context(), userID, caseID, req.ExternalCaseID, req.ExternalSystem)
	if err != nil {
		switch {
		case errors.Is(err, access.ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "No admin access")
		case errors.Is(err, ErrMappingExists):
			response.Error(c, http.StatusConflict, "CONFLICT", "Mapping already exists for this case and system")
		case errors.Is(err, ErrMissingFields):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "external_case_id and external_system are required")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create mapping")
		}
		return
	}

	response.Success(c, http.StatusOK, mapping)
}

// Get godoc
// @Summary Get the external mapping for a case
// @Tags External
// @Produce json
// @Security BearerAuth
// @Param id path int true "Case ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400,401,403 {object} map[string]interface{}
// @Router /cases/{id}/external-case-mapping [get]
func (h *Handler) Get(c *gin.Context) {
	userID := currentUserID(c)
	if userID == 0 {
		return
	}
	caseID, ok := caseIDParam(c)
	if !ok {
		return
	}

	mapping, err := h.service.Get(c.Request.Context(), userID, caseID)
	if err != nil {
		if errors.Is(err, access.ErrForbidden) {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "No access")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load mapping")
		return
	}

	// a case without a mapping renders an empty object, never an error
	if mapping == nil {
		response.Success(c, http.StatusOK, gin.H{})
		return
	}
	response.Success(c, http.StatusOK, mapping)
}

func currentUserID(c *gin.Context) int64 {
	id := c.GetInt64("user_id")
	if id == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	}
	return id
}

func caseIDParam(c *gin.Context) (int64, bool) {
	caseID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid case ID")
		return 0, false
	}
	return caseID, true
}
