package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/princinho/streamcatalog/logging"
	"github.com/princinho/streamcatalog/utils"
)

// POST /admin/uploads/thumbnail
// multipart/form-data:
//   - image: jpg/png/webp file
//   - title: optional, used to group objects by slug
func UploadThumbnail(store utils.ObjectStorage, validator *utils.FileValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "object storage is not configured"})
			return
		}

		file, err := c.FormFile("image")
		if err != nil || file == nil {
			badRequest(c, "missing image file")
			return
		}

		mimeType, err := validator.ValidateFile(file)
		if err != nil {
			badRequest(c, err.Error())
			return
		}

		slug := utils.GenerateSlug(strings.TrimSpace(c.PostForm("title")))
		thumb, err := utils.UploadThumbnail(c.Request.Context(), store, slug, mimeType, file)
		if err != nil {
			respondError(c, err)
			return
		}
		logging.FromContext(c).WithField("object", thumb.ObjectName).Info("thumbnail uploaded")

		c.JSON(http.StatusCreated, thumb)
	}
}
