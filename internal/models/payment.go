package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusSuccess   = "success"
	PaymentStatusCancelled = "cancelled"
	PaymentStatusFailed    = "failed"
)

// Payment tracks one gateway payment attempt. Exactly one row exists per
// gateway authority, created as pending and moved once to a terminal status.
type Payment struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Amount      int64     `gorm:"not null" json:"amount"`
	Description string    `gorm:"not null" json:"description"`
	Authority   string    `gorm:"uniqueIndex;not null" json:"authority"`
	RefID       string    `json:"ref_id,omitempty"`
	Status      string    `gorm:"not null;default:'pending'" json:"status"`
	Mobile      string    `json:"mobile,omitempty"`
	Email       string    `json:"email,omitempty"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User     `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (payment *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	return
}

// Terminal reports whether the payment has reached a final status.
func (payment *Payment) Terminal() bool {
	return payment.Status != PaymentStatusPending
}
