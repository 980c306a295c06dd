package models

import (
	"time"

	"gorm.io/gorm"
)

const commentNameLength = 40

type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	AuthorID  uint           `gorm:"not null" json:"author_id"`
	Author    *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Body      string         `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Comment) IdentifiableName() string {
	runes := []rune(c.Body)
	if len(runes) <= commentNameLength {
		return c.Body
	}
	return string(runes[:commentNameLength]) + "..."
}
