package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/alimrdn/solarportal/internal/helpers"
	"github.com/alimrdn/solarportal/internal/models"
)

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func ListUsers(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	page := c.DefaultQuery("page", "1")
	limit := c.DefaultQuery("limit", "20")

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

	var totalCount int64
	gormDB.Model(&models.User{}).Count(&totalCount)

	var users []models.User
	offset := (pageNum - 1) * limitNum
	err = gormDB.Preload("Role").Preload("Profile").Offset(offset).Limit(limitNum).Order("created_at DESC").Find(&users).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving users.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"total": totalCount,
		"page":  pageNum,
		"limit": limitNum,
	})
}

func UpdateUserRole(c *gin.Context) {
	targetID := c.Param("id")

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Role is required.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var role models.Role
	if err := gormDB.Where("name = ?", req.Role).First(&role).Error; err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid role.")
		return
	}

	var user models.User
	if err := gormDB.Where("id = ?", targetID).First(&user).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "User not found.")
		return
	}

	if err := gormDB.Model(&user).Update("role_id", role.ID).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update role.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Role updated successfully."})
}

// AdminListPayments lists payments across all users with optional
// user/status filters and pagination.
func AdminListPayments(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	page := c.DefaultQuery("page", "1")
	limit := c.DefaultQuery("limit", "20")
	userID := c.Query("user_id")
	status := c.Query("status")

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

	query := gormDB.Model(&models.Payment{})
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var totalCount int64
	query.Count(&totalCount)

	var payments []models.Payment
	offset := (pageNum - 1) * limitNum
	err = query.Offset(offset).Limit(limitNum).Order("created_at DESC").Find(&payments).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving payments.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payments": payments,
		"total":    totalCount,
		"page":     pageNum,
		"limit":    limitNum,
	})
}
