package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alimrdn/solarportal/internal/helpers"
	"github.com/alimrdn/solarportal/internal/models"
)

type CommentRequest struct {
	Content string `json:"content" binding:"required"`
}

func ListComments(c *gin.Context) {
	postID := c.Param("id")

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var post models.Post
	if err := gormDB.Where("id = ? AND published = ?", postID, true).First(&post).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Post not found.")
		return
	}

	var comments []models.Comment
	if err := gormDB.Preload("User.Profile").Where("post_id = ?", post.ID).Order("created_at ASC").Find(&comments).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving comments.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

func CreateComment(c *gin.Context) {
	postID := c.Param("id")

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Comment content is required.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var post models.Post
	if err := gormDB.Where("id = ? AND published = ?", postID, true).First(&post).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Post not found.")
		return
	}

	comment := models.Comment{
		Content: req.Content,
		PostID:  post.ID,
		UserID:  userID.(uuid.UUID),
	}

	if err := gormDB.Create(&comment).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create comment.")
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// DeleteComment removes a comment for its author, or for an admin.
func DeleteComment(c *gin.Context) {
	commentID := c.Param("id")

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}
	role, _ := c.Get("role")

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var comment models.Comment
	if err := gormDB.Where("id = ?", commentID).First(&comment).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Comment not found.")
		return
	}

	if comment.UserID != userID && role != models.RoleAdmin {
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to delete this comment.")
		return
	}

	if err := gormDB.Delete(&comment).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete comment.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully."})
}

func AdminListComments(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var comments []models.Comment
	if err := gormDB.Preload("User.Profile").Order("created_at DESC").Find(&comments).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving comments.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}
