package models

import (
	"time"
)

type CleaningLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CleanerID uint      `gorm:"not null" json:"cleaner_id"`
	Cleaner   *User     `gorm:"foreignKey:CleanerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"cleaner,omitempty"`
	TableID   uint      `gorm:"not null" json:"table_id"`
	Table     *Table    `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"table,omitempty"`
	Status    string    `gorm:"type:varchar(15);not null;default:'pending'" json:"status"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
