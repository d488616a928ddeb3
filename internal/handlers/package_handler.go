package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/alimrdn/solarportal/internal/cache"
	"github.com/alimrdn/solarportal/internal/helpers"
	"github.com/alimrdn/solarportal/internal/models"
)

const activePackagesCacheKey = "cache:packages:active"

type PackageRequest struct {
	Name           string `json:"name" binding:"required"`
	Description    string `json:"description"`
	KwhAmount      int    `json:"kwh_amount" binding:"required,gt=0"`
	DurationMonths int    `json:"duration_months" binding:"required,gt=0"`
	Price          int64  `json:"price" binding:"required,gt=0"`
	Active         *bool  `json:"active"`
}

// ListPackages serves the public pricing page: active packages only.
func ListPackages(c *gin.Context) {
	var cached gin.H
	if cache.GetJSON(activePackagesCacheKey, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var packages []models.ElectricityPackage
	if err := gormDB.Where("active = ?", true).Order("price ASC").Find(&packages).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving packages.")
		return
	}

	response := gin.H{"packages": packages}
	cache.SetJSON(activePackagesCacheKey, response, 10*time.Minute)

	c.JSON(http.StatusOK, response)
}

func CreatePackage(c *gin.Context) {
	var req PackageRequest
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

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	pkg := models.ElectricityPackage{
		Name:           req.Name,
		Description:    req.Description,
		KwhAmount:      req.KwhAmount,
		DurationMonths: req.DurationMonths,
		Price:          req.Price,
		Active:         active,
	}

	if err := gormDB.Create(&pkg).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create package.")
		return
	}
	cache.Delete(activePackagesCacheKey)

	c.JSON(http.StatusCreated, pkg)
}

func UpdatePackage(c *gin.Context) {
	packageID := c.Param("id")

	var req PackageRequest
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

	var pkg models.ElectricityPackage
	if err := gormDB.Where("id = ?", packageID).First(&pkg).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Package not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error finding package.")
		return
	}

	pkg.Name = req.Name
	pkg.Description = req.Description
	pkg.KwhAmount = req.KwhAmount
	pkg.DurationMonths = req.DurationMonths
	pkg.Price = req.Price
	if req.Active != nil {
		pkg.Active = *req.Active
	}

	if err := gormDB.Save(&pkg).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update package.")
		return
	}
	cache.Delete(activePackagesCacheKey)

	c.JSON(http.StatusOK, pkg)
}

func DeletePackage(c *gin.Context) {
	packageID := c.Param("id")

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var pkg models.ElectricityPackage
	if err := gormDB.Where("id = ?", packageID).First(&pkg).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Package not found.")
		return
	}

	if err := gormDB.Delete(&pkg).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete package.")
		return
	}
	cache.Delete(activePackagesCacheKey)

	c.JSON(http.StatusOK, gin.H{"message": "Package deleted successfully."})
}
