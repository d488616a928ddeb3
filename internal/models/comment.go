package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Comment struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Content   string    `gorm:"not null" json:"content"`
	PostID    uuid.UUID `gorm:"type:uuid;not null;index" json:"post_id"`
	Post      *Post     `gorm:"foreignKey:PostID" json:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (comment *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	return
}
