package extmap

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the external mapping routes under the protected group.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	cases := r.Group("/cases")
	{
		cases.POST("/:id/external-case-mapping", h.Create)
		cases.GET("/:id/external-case-mapping", h.Get)
	}
}
