package specification

import (
	"time"

	"gorm.io/gorm"
)

type BySessionID struct {
	SessionID string
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

type ByContext struct {
	Context string
}

func (s ByContext) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("context = ?", s.Context)
}

// OnlyContextSwitches keeps decisions that changed the session's context.
type OnlyContextSwitches struct{}

func (s OnlyContextSwitches) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("context_switched = ?", true)
}

type CreatedSince struct {
	Since time.Time
}

func (s CreatedSince) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at >= ?", s.Since)
}
