package specification

import "gorm.io/gorm"

type BySessionID struct {
	SessionID string
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

type ByAgentKey struct {
	AgentKey string
}

func (s ByAgentKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("agent_key = ?", s.AgentKey)
}

// InsertionOrder sorts by the serial id, which follows insert order even when
// created_at values collide.
type InsertionOrder struct{}

func (s InsertionOrder) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}
