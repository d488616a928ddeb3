package helpers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/google/uuid"
)

// SignReceipt produces the HMAC carried inside payment receipt QR codes so
// support staff can check a receipt was issued by us.
func SignReceipt(paymentID uuid.UUID, refID string, userID uuid.UUID) string {
	secretKey := os.Getenv("JWT_SECRET")
	data := fmt.Sprintf("%s:%s:%s", paymentID.String(), refID, userID.String())
	h := hmac.New(sha256.New, []byte(secretKey))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

func ValidateReceiptSignature(paymentID uuid.UUID, refID string, userID uuid.UUID, signature string) bool {
	expected := SignReceipt(paymentID, refID, userID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
