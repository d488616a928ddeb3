package handlers

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alimrdn/solarportal/internal/helpers"
	"github.com/alimrdn/solarportal/internal/middleware"
	"github.com/alimrdn/solarportal/internal/models"
)

type PaymentRequest struct {
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Description string `json:"description" binding:"required"`
	Mobile      string `json:"mobile"`
	Email       string `json:"email"`
}

type VerifyRequest struct {
	Authority string `json:"authority" binding:"required"`
	Status    string `json:"status"`
}

// gatewayCancelledSentinel is what the gateway appends to the callback URL
// when the customer backs out of the payment page.
const gatewayCancelledSentinel = "NOK"

// RequestPayment asks the gateway for a payment authority, records the
// attempt as pending and hands the redirect URL back to the client.
func RequestPayment(c *gin.Context) {
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Amount and description are required."})
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated."})
		return
	}
	userUUID := userID.(uuid.UUID)

	db, exists := c.Get("db")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Database connection not found."})
		return
	}
	gormDB := db.(*gorm.DB)

	var user models.User
	if err := gormDB.Preload("Profile").First(&user, userUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found."})
		return
	}

	// Contact details: request body first, then the stored profile phone.
	// A missing mobile stays empty rather than being faked.
	mobile := req.Mobile
	if mobile == "" && user.Profile != nil {
		mobile = user.Profile.Phone
	}
	email := req.Email
	if email == "" {
		email = user.Email
	}

	origin := c.GetHeader("Origin")
	if origin == "" {
		origin = os.Getenv("APP_BASE_URL")
	}
	callbackURL := origin + "/payment-callback"

	client := middleware.GetGatewayClient(c)
	if client == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Payment gateway not configured."})
		return
	}

	result, err := client.RequestPayment(c.Request.Context(), req.Amount, req.Description, callbackURL, mobile, email)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": err.Error()})
		return
	}

	payment := models.Payment{
		Amount:      req.Amount,
		Description: req.Description,
		Authority:   result.Authority,
		Status:      models.PaymentStatusPending,
		Mobile:      mobile,
		Email:       email,
		UserID:      user.ID,
	}

	// Idempotent on authority: re-posting after a failed insert cannot
	// duplicate the row.
	if err := gormDB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "authority"}},
		DoNothing: true,
	}).Create(&payment).Error; err != nil {
		// The gateway-side transaction already exists and Zarinpal has no
		// void call, so the orphaned authority is logged for support.
		log.Printf("Failed to save payment record for authority %s: %v", result.Authority, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to save payment record."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"paymentUrl": result.PaymentURL,
		"authority":  result.Authority,
	})
}

// VerifyPayment settles a pending payment after the gateway callback. The
// record must belong to the calling user, terminal records are answered
// from local state, and only a pending row can transition.
func VerifyPayment(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondVerifyError(c, http.StatusBadRequest, "Authority is required.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		respondVerifyError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}
	userUUID := userID.(uuid.UUID)

	db, exists := c.Get("db")
	if !exists {
		respondVerifyError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var payment models.Payment
	if err := gormDB.Where("authority = ? AND user_id = ?", req.Authority, userUUID).First(&payment).Error; err != nil {
		respondVerifyError(c, http.StatusNotFound, "Payment not found.")
		return
	}

	if payment.Terminal() {
		respondVerifyOutcome(c, &payment, "Payment already processed.")
		return
	}

	if req.Status == gatewayCancelledSentinel {
		settlePayment(c, gormDB, &payment, models.PaymentStatusCancelled, "", "Payment was cancelled by the user.")
		return
	}

	client := middleware.GetGatewayClient(c)
	if client == nil {
		respondVerifyError(c, http.StatusInternalServerError, "Payment gateway not configured.")
		return
	}

	result, err := client.VerifyPayment(c.Request.Context(), payment.Amount, payment.Authority)
	if err != nil {
		respondVerifyError(c, http.StatusBadGateway, "Payment verification failed.")
		return
	}

	// 100 is a fresh confirmation, 101 an already-verified replay; both
	// are a success. Everything else is a failed payment.
	if result.Code == 100 || result.Code == 101 {
		settlePayment(c, gormDB, &payment, models.PaymentStatusSuccess, result.RefID, "Payment completed successfully.")
		return
	}
	settlePayment(c, gormDB, &payment, models.PaymentStatusFailed, "", "Payment was not successful.")
}

// settlePayment moves a payment to a terminal status, but only while it is
// still pending. When a concurrent verification got there first, the stored
// outcome is returned instead of overwriting it.
func settlePayment(c *gin.Context, gormDB *gorm.DB, payment *models.Payment, status, refID, message string) {
	updates := map[string]interface{}{"status": status}
	if refID != "" {
		updates["ref_id"] = refID
	}

	res := gormDB.Model(&models.Payment{}).
		Where("id = ? AND status = ?", payment.ID, models.PaymentStatusPending).
		Updates(updates)
	if res.Error != nil {
		respondVerifyError(c, http.StatusInternalServerError, "Failed to update payment record.")
		return
	}

	if res.RowsAffected == 0 {
		var current models.Payment
		if err := gormDB.First(&current, payment.ID).Error; err != nil {
			respondVerifyError(c, http.StatusInternalServerError, "Failed to read payment record.")
			return
		}
		respondVerifyOutcome(c, &current, "Payment already processed.")
		return
	}

	payment.Status = status
	payment.RefID = refID
	respondVerifyOutcome(c, payment, message)
}

func respondVerifyOutcome(c *gin.Context, payment *models.Payment, message string) {
	resp := gin.H{
		"success":     payment.Status == models.PaymentStatusSuccess,
		"status":      payment.Status,
		"amount":      payment.Amount,
		"description": payment.Description,
		"message":     message,
	}
	if payment.RefID != "" {
		resp["ref_id"] = payment.RefID
	}
	c.JSON(http.StatusOK, resp)
}

// respondVerifyError reports a fault in the verification flow itself, as
// opposed to a payment that the gateway rejected.
func respondVerifyError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"status":  "error",
		"message": message,
	})
}

// ListPayments returns the calling user's payment history, newest first.
func ListPayments(c *gin.Context) {
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

	var payments []models.Payment
	if err := gormDB.Where("user_id = ?", userID).Order("created_at DESC").Find(&payments).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving payments.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": payments})
}
