package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/alimrdn/solarportal/internal/helpers"
	"github.com/alimrdn/solarportal/internal/models"
)

func receiptQRData(payment *models.Payment) string {
	signature := helpers.SignReceipt(payment.ID, payment.RefID, payment.UserID)
	return fmt.Sprintf("payment:%s;ref:%s;amount:%d;signature:%s",
		payment.ID.String(),
		payment.RefID,
		payment.Amount,
		signature,
	)
}

// PaymentReceiptQR renders a signed QR receipt for a successful payment.
func PaymentReceiptQR(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid payment ID.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var payment models.Payment
	if err := gormDB.Where("id = ? AND user_id = ?", paymentID, userID).First(&payment).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Payment not found.")
		return
	}

	if payment.Status != models.PaymentStatusSuccess {
		helpers.RespondWithError(c, http.StatusForbidden, "Receipts are only available for successful payments.")
		return
	}

	qrImage, err := qrcode.Encode(receiptQRData(&payment), qrcode.Medium, 256)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate QR code.")
		return
	}

	c.Data(http.StatusOK, "image/png", qrImage)
}
