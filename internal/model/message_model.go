package model

import "time"

type Message struct {
	Id        int64     `gorm:"primaryKey;autoIncrement"`
	AgentKey  string    `gorm:"type:varchar(64);not null;index:idx_messages_session_agent,priority:2"`
	Agent     *Agent    `gorm:"foreignKey:AgentKey;references:Key;constraint:OnDelete:CASCADE"`
	SessionId string    `gorm:"type:varchar(36);not null;index:idx_messages_session_agent,priority:1"`
	Role      string    `gorm:"type:varchar(16);not null"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Message) TableName() string {
	return "messages"
}
