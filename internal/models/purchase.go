package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Purchase struct {
	ID          uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	Amount      int64               `gorm:"not null" json:"amount"`
	Status      string              `gorm:"not null;default:'active'" json:"status"`
	PaymentDate *time.Time          `json:"payment_date,omitempty"`
	ExpiryDate  *time.Time          `json:"expiry_date,omitempty"`
	PackageID   uuid.UUID           `gorm:"type:uuid;not null;index" json:"package_id"`
	Package     *ElectricityPackage `gorm:"foreignKey:PackageID" json:"package,omitempty"`
	UserID      uuid.UUID           `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User               `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	DeletedAt   gorm.DeletedAt      `gorm:"index" json:"-"`
}

func (purchase *Purchase) BeforeCreate(tx *gorm.DB) (err error) {
	if purchase.ID == uuid.Nil {
		purchase.ID = uuid.New()
	}
	return
}
