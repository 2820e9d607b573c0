package access

import (
	"errors"
	"net/http"
	"strconv"

	"casehub/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler exposes the case membership endpoints.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type addUserRequest struct {
	UserID      int64 `json:"userId" binding:"required"`
	AccessLevel Level `json:"accessLevel" binding:"required"`
}

// AddUser godoc
// @Summary Grant a user access to a case
// @Tags Cases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Case ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400,401,403,404 {object} map[string]interface{}
// @Router /cases/{id}/add-user [post]
func (h *Handler) AddUser(c *gin.Context) {
	granterID := currentUserID(c)
	if granterID == 0 {
		return
	}
	caseID, ok := caseIDParam(c)
	if !ok {
		return
	}

	var req addUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "userId and accessLevel are required")
		return
	}

	if err := h.service.Grant(c.Request.Context(), granterID, caseID, req.UserID, req.AccessLevel); err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "No admin access")
		case errors.Is(err, ErrCaseNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Case not found")
		case errors.Is(err, ErrInvalidLevel):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "accessLevel must be read, write or admin")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to grant access")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "User added"})
}

// RemoveUser godoc
// @Summary Revoke a user's access to a case
// @Tags Cases
// @Produce json
// @Security BearerAuth
// @Param id path int true "Case ID"
// @Param userId path int true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400,401,403 {object} map[string]interface{}
// @Router /cases/{id}/remove-user/{userId} [delete]
func (h *Handler) RemoveUser(c *gin.Context) {
	granterID := currentUserID(c)
	if granterID == 0 {
		return
	}
	caseID, ok := caseIDParam(c)
	if !ok {
		return
	}

	targetID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid user ID")
		return
	}

	if err := h.service.Revoke(c.Request.Context(), granterID, caseID, targetID); err != nil {
		if errors.Is(err, ErrForbidden) {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "No admin access")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to revoke access")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "User removed"})
}

// ListUsers godoc
// @Summary List users with access to a case
// @Tags Cases
// @Produce json
// @Security BearerAuth
// @Param id path int true "Case ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400,401,403 {object} map[string]interface{}
// @Router /cases/{id}/users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	requesterID := currentUserID(c)
	if requesterID == 0 {
		return
	}
	caseID, ok := caseIDParam(c)
	if !ok {
		return
	}

	grantees, err := h.service.ListGrantees(c.Request.Context(), requesterID, caseID)
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "No access")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list users")
		return
	}

	response.Success(c, http.StatusOK, grantees)
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
