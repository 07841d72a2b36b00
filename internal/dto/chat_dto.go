package dto

import "time"

type SendMessageRequest struct {
	MsgContent string `json:"msgContent" validate:"required"`
	SessionId  string `json:"sessionId" validate:"required,max=36"`
	AgentKey   string `json:"agentKey" validate:"required"`
}

type GetMessagesRequest struct {
	SessionId string `query:"sessionId" validate:"required,max=36"`
	AgentKey  string `query:"agentKey" validate:"required"`
}

// MessageResponse is one chat turn. Assistant content is rendered HTML; user
// content is returned as typed.
type MessageResponse struct {
	Id        int64     `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type GetMessagesResponse struct {
	SessionId string             `json:"sessionId"`
	Agent     *AgentResponse     `json:"agent"`
	Messages  []*MessageResponse `json:"messages"`
}

type AgentResponse struct {
	Key             string `json:"key"`
	ShortName       string `json:"shortName"`
	FullName        string `json:"fullName,omitempty"`
	ImgSrc          string `json:"imgSrc"`
	Description     string `json:"description"`
	LongDescription string `json:"longDescription,omitempty"`
	ThemeColor      string `json:"themeColor"`
}
