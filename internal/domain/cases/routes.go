package cases

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the case routes under the protected group.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	cases := r.Group("/cases")
	{
		cases.GET("", h.List)
		cases.POST("", h.Create)
	}
}
