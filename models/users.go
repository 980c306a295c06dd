package models

import (
	"time"

	"github.com/yeremiapane/revision-history/revisionable"
	"gorm.io/gorm"
)

type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(255); not null" json:"name"`
	Email     string         `gorm:"type:varchar(255); unique;not null" json:"email"`
	Password  string         `gorm:"type:varchar(255); not null" json:"-"`
	Role      string         `gorm:"type:varchar(255); not null" json:"role"` // admin, auditor, staff, chef, cleaner
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) IdentifiableName() string {
	return u.Name
}

// Password hashes never show up in history.
func (u *User) RevisionMutators() map[string]revisionable.MutatorFunc {
	return map[string]revisionable.MutatorFunc{
		"password": func(string) string { return "********" },
	}
}
