package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alimrdn/solarportal/internal/helpers"
)

// UploadImage stores an admin-uploaded image (post covers, gallery shots)
// and returns the path to reference from content.
func UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Image file is required.")
		return
	}

	path, err := helpers.UploadFile(c, fileHeader, "post_images")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{"path": path})
}
