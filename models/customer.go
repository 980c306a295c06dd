package models

import (
	"fmt"
	"time"

	"github.com/yeremiapane/revision-history/revisionable"
)

type Customer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TableID    *uint     `gorm:"index" json:"table_id"`
	Table      *Table    `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"table,omitempty"`
	SessionKey *string   `gorm:"type:varchar(255)" json:"-"`
	Status     string    `gorm:"type:varchar(20);not null;default:'inactive'" json:"status"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (c *Customer) IdentifiableName() string {
	return fmt.Sprintf("Customer #%d", c.ID)
}

func (c *Customer) RevisionMutators() map[string]revisionable.MutatorFunc {
	return map[string]revisionable.MutatorFunc{
		"session_key": maskSecret,
	}
}
