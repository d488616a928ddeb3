package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alimrdn/solarportal/internal/cache"
	"github.com/alimrdn/solarportal/internal/helpers"
	"github.com/alimrdn/solarportal/internal/models"
)

const publishedPostsCacheKey = "cache:posts:published"

type PostRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Content     string `json:"content" binding:"required"`
	ImageURL    string `json:"image_url"`
	Published   bool   `json:"published"`
	Featured    bool   `json:"featured"`
}

// ListPosts serves the public blog feed: published posts only, newest
// first. The default first page is cached.
func ListPosts(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	page := c.DefaultQuery("page", "1")
	limit := c.DefaultQuery("limit", "10")
	featured := c.Query("featured")

	pageNum, err := helpers.StringToInt(page)
	if err != nil || pageNum < 1 {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid page number.")
		return
	}
	limitNum, err := helpers.StringToInt(limit)
	if err != nil || limitNum < 1 {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid limit.")
		return
	}

	cacheable := pageNum == 1 && limitNum == 10 && featured == ""
	if cacheable {
		var cached gin.H
		if cache.GetJSON(publishedPostsCacheKey, &cached) {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	query := gormDB.Model(&models.Post{}).Where("published = ?", true)
	if featured == "true" {
		query = query.Where("featured = ?", true)
	}

	var totalCount int64
	query.Count(&totalCount)

	var posts []models.Post
	offset := (pageNum - 1) * limitNum
	err = query.Offset(offset).Limit(limitNum).Order("created_at DESC").Find(&posts).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving posts.")
		return
	}

	response := gin.H{
		"posts":       posts,
		"total":       totalCount,
		"page":        pageNum,
		"limit":       limitNum,
		"total_pages": (totalCount + int64(limitNum) - 1) / int64(limitNum),
	}
	if cacheable {
		cache.SetJSON(publishedPostsCacheKey, response, 5*time.Minute)
	}

	c.JSON(http.StatusOK, response)
}

func GetPost(c *gin.Context) {
	postID := c.Param("id")

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var post models.Post
	if err := gormDB.Where("id = ? AND published = ?", postID, true).First(&post).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Post not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving post.")
		return
	}

	c.JSON(http.StatusOK, post)
}

func CreatePost(c *gin.Context) {
	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Missing required fields.")
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

	post := models.Post{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		ImageURL:    req.ImageURL,
		Published:   req.Published,
		Featured:    req.Featured,
		AuthorID:    userID.(uuid.UUID),
	}

	if err := gormDB.Create(&post).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create post.")
		return
	}
	cache.Delete(publishedPostsCacheKey)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Post created successfully.",
		"post_id": post.ID,
	})
}

func UpdatePost(c *gin.Context) {
	postID := c.Param("id")

	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Missing required fields.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var post models.Post
	if err := gormDB.Where("id = ?", postID).First(&post).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Post not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error finding post.")
		return
	}

	post.Title = req.Title
	post.Description = req.Description
	post.Content = req.Content
	post.ImageURL = req.ImageURL
	post.Published = req.Published
	post.Featured = req.Featured

	if err := gormDB.Save(&post).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update post.")
		return
	}
	cache.Delete(publishedPostsCacheKey)

	c.JSON(http.StatusOK, gin.H{"message": "Post updated successfully."})
}

func DeletePost(c *gin.Context) {
	postID := c.Param("id")

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var post models.Post
	if err := gormDB.Where("id = ?", postID).First(&post).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Post not found.")
		return
	}

	if err := gormDB.Delete(&post).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete post.")
		return
	}
	cache.Delete(publishedPostsCacheKey)

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully."})
}

// AdminListPosts lists every post, drafts included.
func AdminListPosts(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var posts []models.Post
	if err := gormDB.Order("created_at DESC").Find(&posts).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving posts.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}
