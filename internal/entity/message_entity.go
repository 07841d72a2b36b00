package entity

import "time"

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

type Message struct {
	Id        int64
	AgentKey  string
	SessionId string
	Role      string
	Content   string
	CreatedAt time.Time
}
