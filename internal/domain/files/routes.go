package files

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the file routes under the protected group.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	files := r.Group("/files")
	{
		files.GET("", h.List)
		files.POST("/prepare-upload", h.PrepareUpload)
		files.GET("/sign-part", h.SignPart)
		files.POST("/complete-upload", h.CompleteUpload)
		files.POST("/abort-upload", h.AbortUpload)
		files.GET("/download/:id", h.Download)
	}
}
