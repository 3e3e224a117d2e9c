package models

import "time"

// Entity carries the audit and concurrency columns shared by every table.
type Entity struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedBy    string    `gorm:"size:100" json:"created_by"`
	UtcCreatedOn time.Time `json:"utc_created_on"`
	UpdatedBy    string    `gorm:"size:100" json:"updated_by"`
	UtcUpdatedOn time.Time `json:"utc_updated_on"`
	Version      int       `gorm:"default:1" json:"version"`
}

// StampNew fills the audit columns for a freshly created record.
func (e *Entity) StampNew(user string, now time.Time) {
	e.CreatedBy = user
	e.UtcCreatedOn = now
	e.UpdatedBy = user
	e.UtcUpdatedOn = now
	e.Version = 1
}

// StampUpdate refreshes the audit columns and bumps the version.
func (e *Entity) StampUpdate(user string, now time.Time) {
	e.UpdatedBy = user
	e.UtcUpdatedOn = now
	e.Version++
}
