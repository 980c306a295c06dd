package revisionable

import "time"

// Revision is one recorded field change on a revisionable record.
type Revision struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	RevisionableType string    `gorm:"type:varchar(255);not null;index:idx_revisionable" json:"revisionable_type"`
	RevisionableID   uint      `gorm:"not null;index:idx_revisionable" json:"revisionable_id"`
	UserID           *uint     `gorm:"index" json:"user_id"`
	Key              string    `gorm:"type:varchar(255);not null" json:"key"`
	OldValue         *string   `gorm:"type:text" json:"old_value"`
	NewValue         *string   `gorm:"type:text" json:"new_value"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (Revision) TableName() string { return "revisions" }

// Which selects the old or new side of a revision.
type Which int

const (
	Old Which = iota
	New
)

func (w Which) String() string {
	if w == Old {
		return "old"
	}
	return "new"
}

func (r *Revision) raw(which Which) *string {
	if which == Old {
		return r.OldValue
	}
	return r.NewValue
}
