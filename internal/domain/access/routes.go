package access

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the case membership routes under the protected group.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	cases := r.Group("/cases")
	{
		cases.POST("/:id/add-user", h.AddUser)
		cases.DELETE("/:id/remove-user/:userId", h.RemoveUser)
		cases.GET("/:id/users", h.ListUsers)
	}
}
