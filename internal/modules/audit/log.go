// Package audit provides the append-only record of balance mutations.
// Entries are written inside the transaction that performs the mutation they
// describe, so an audit row exists iff the mutation committed.
package audit

import (
	"time"

	"gorm.io/gorm"
)

const (
	CategoryCancel  = "cancel"
	CategoryRefresh = "credit_refresh"
)

// Entry rows are write-once; nothing in the codebase updates or deletes them.
type Entry struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	ActorEmail string `gorm:"column:actor_email;index;not null"`
	Category   string `gorm:"column:category;not null"`
	Message    string `gorm:"column:message;not null"`
	CreatedAt  time.Time
}

func (Entry) TableName() string { return "audit_log" }

// Append writes one entry using the given handle, which may be a transaction.
func Append(tx *gorm.DB, actorEmail, category, message string) error {
	e := Entry{
		ActorEmail: actorEmail,
		Category:   category,
		Message:    message,
		CreatedAt:  time.Now().UTC(),
	}
	return tx.Create(&e).Error
}

// Recent returns the newest entries first, for admin inspection.
func Recent(db *gorm.DB, limit int) ([]Entry, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}
	var out []Entry
	err := db.Order("id DESC").Limit(limit).Find(&out).Error
	return out, err
}
