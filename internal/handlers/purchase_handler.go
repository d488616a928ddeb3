package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alimrdn/solarportal/internal/helpers"
	"github.com/alimrdn/solarportal/internal/models"
)

type CreatePurchaseRequest struct {
	UserID    uuid.UUID `json:"user_id" binding:"required"`
	PackageID uuid.UUID `json:"package_id" binding:"required"`
}

// ListPurchases returns the calling user's package purchases.
func ListPurchases(c *gin.Context) {
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

	var purchases []models.Purchase
	if err := gormDB.Preload("Package").Where("user_id = ?", userID).Order("created_at DESC").Find(&purchases).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving purchases.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"purchases": purchases})
}

// CreatePurchase records a package sale for a user. Admin only; the amount
// and expiry come from the package itself.
func CreatePurchase(c *gin.Context) {
	var req CreatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "User and package are required.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var pkg models.ElectricityPackage
	if err := gormDB.Where("id = ? AND active = ?", req.PackageID, true).First(&pkg).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Package not found.")
		return
	}

	var user models.User
	if err := gormDB.First(&user, req.UserID).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "User not found.")
		return
	}

	now := time.Now()
	expiry := now.AddDate(0, pkg.DurationMonths, 0)

	purchase := models.Purchase{
		Amount:      pkg.Price,
		Status:      "active",
		PaymentDate: &now,
		ExpiryDate:  &expiry,
		PackageID:   pkg.ID,
		UserID:      user.ID,
	}

	if err := gormDB.Create(&purchase).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create purchase.")
		return
	}

	c.JSON(http.StatusCreated, purchase)
}

// AdminListPurchases lists purchases across all users with optional
// user/status filters and pagination.
func AdminListPurchases(c *gin.Context) {
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

	query := gormDB.Model(&models.Purchase{})
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var totalCount int64
	query.Count(&totalCount)

	var purchases []models.Purchase
	offset := (pageNum - 1) * limitNum
	err = query.Preload("Package").Offset(offset).Limit(limitNum).Order("created_at DESC").Find(&purchases).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving purchases.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"purchases": purchases,
		"total":     totalCount,
		"page":      pageNum,
		"limit":     limitNum,
	})
}
