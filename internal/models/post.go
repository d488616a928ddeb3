package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Post struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	Content     string    `gorm:"not null" json:"content"`
	ImageURL    string    `json:"image_url"`
	Published   bool      `gorm:"not null;default:false" json:"published"`
	Featured    bool      `gorm:"not null;default:false" json:"featured"`
	AuthorID    uuid.UUID `gorm:"type:uuid;not null;index" json:"author_id"`
	Author      *User     `gorm:"foreignKey:AuthorID" json:"-"`
	Comments    []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (post *Post) BeforeCreate(tx *gorm.DB) (err error) {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	return
}
