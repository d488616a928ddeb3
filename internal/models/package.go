package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ElectricityPackage struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name           string    `gorm:"not null" json:"name"`
	Description    string    `json:"description"`
	KwhAmount      int       `gorm:"not null" json:"kwh_amount"`
	DurationMonths int       `gorm:"not null" json:"duration_months"`
	Price          int64     `gorm:"not null" json:"price"`
	Active         bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (pkg *ElectricityPackage) BeforeCreate(tx *gorm.DB) (err error) {
	if pkg.ID == uuid.Nil {
		pkg.ID = uuid.New()
	}
	return
}
