package mapper

import (
	"agent-chat-be/internal/dto"
	"agent-chat-be/internal/entity"
	"agent-chat-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Agent Mappers

func (m *ChatMapper) AgentToEntity(a *model.Agent) *entity.Agent {
	if a == nil {
		return nil
	}
	return &entity.Agent{
		Key:             a.Key,
		ShortName:       a.ShortName,
		FullName:        a.FullName,
		ImgSrc:          a.ImgSrc,
		Description:     a.Description,
		LongDescription: a.LongDescription,
		Persona:         a.Persona,
		ThemeColor:      a.ThemeColor,
	}
}

func (m *ChatMapper) AgentToModel(a *entity.Agent) *model.Agent {
	if a == nil {
		return nil
	}
	return &model.Agent{
		Key:             a.Key,
		ShortName:       a.ShortName,
		FullName:        a.FullName,
		ImgSrc:          a.ImgSrc,
		Description:     a.Description,
		LongDescription: a.LongDescription,
		Persona:         a.Persona,
		ThemeColor:      a.ThemeColor,
	}
}

// Message Mappers

func (m *ChatMapper) MessageToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}
	return &entity.Message{
		Id:        msg.Id,
		AgentKey:  msg.AgentKey,
		SessionId: msg.SessionId,
		Role:      msg.Role,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}

func (m *ChatMapper) MessageToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}
	return &model.Message{
		Id:        msg.Id,
		AgentKey:  msg.AgentKey,
		SessionId: msg.SessionId,
		Role:      msg.Role,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}

// Response Mappers

func (m *ChatMapper) AgentToResponse(a *entity.Agent) *dto.AgentResponse {
	if a == nil {
		return nil
	}
	return &dto.AgentResponse{
		Key:             a.Key,
		ShortName:       a.ShortName,
		FullName:        a.FullName,
		ImgSrc:          a.ImgSrc,
		Description:     a.Description,
		LongDescription: a.LongDescription,
		ThemeColor:      a.ThemeColor,
	}
}
