package events

import (
	"encoding/json"
)

// Event is one message on a session channel. The set of kinds is closed:
// Start, Request, Response, End and Error are the only implementations.
type Event interface {
	// EventType returns the wire tag ("start", "request", ...).
	EventType() string

	sealed()
}

const (
	TypeStart    = "start"
	TypeRequest  = "request"
	TypeResponse = "response"
	TypeEnd      = "end"
	TypeError    = "error"
)

// ChannelPrefix namespaces session channels on the broker.
const ChannelPrefix = "chat:"

// Channel returns the relay channel of a chat session.
func Channel(sessionID string) string {
	return ChannelPrefix + sessionID
}

type AgentMetadata struct {
	AgentName string `json:"agentName" validate:"required"`
}

type ThemeMetadata struct {
	ThemeColor string `json:"themeColor" validate:"required"`
}

// Start is published when an agent begins answering.
type Start struct {
	Metadata AgentMetadata `json:"metadata"`
}

// Request carries the user's message as posted. Content may be empty.
type Request struct {
	Content string `json:"content"`
}

// Response carries one rendered unit of the answer.
type Response struct {
	Content  string        `json:"content" validate:"required"`
	Metadata ThemeMetadata `json:"metadata"`
}

// End closes a successful generation.
type End struct {
	Metadata AgentMetadata `json:"metadata"`
}

// Error replaces End when generation failed.
// Reason may be empty.
type Error struct {
	Reason string `json:"reason"`
}

func NewStart(agentName string) Start {
	return Start{Metadata: AgentMetadata{AgentName: agentName}}
}

func NewRequest(content string) Request {
	return Request{Content: content}
}

func NewResponse(content, themeColor string) Response {
	return Response{Content: content, Metadata: ThemeMetadata{ThemeColor: themeColor}}
}

func NewEnd(agentName string) End {
	return End{Metadata: AgentMetadata{AgentName: agentName}}
}

func NewError(reason string) Error {
	return Error{Reason: reason}
}

func (Start) EventType() string    { return TypeStart }
func (Request) EventType() string  { return TypeRequest }
func (Response) EventType() string { return TypeResponse }
func (End) EventType() string      { return TypeEnd }
func (Error) EventType() string    { return TypeError }

func (Start) sealed()    {}
func (Request) sealed()  {}
func (Response) sealed() {}
func (End) sealed()      {}
func (Error) sealed()    {}

// The MarshalJSON methods add the "type" tag next to the event's own fields.

func (e Start) MarshalJSON() ([]byte, error) {
	type alias Start
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{TypeStart, alias(e)})
}

func (e Request) MarshalJSON() ([]byte, error) {
	type alias Request
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{TypeRequest, alias(e)})
}

func (e Response) MarshalJSON() ([]byte, error) {
	type alias Response
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{TypeResponse, alias(e)})
}

func (e End) MarshalJSON() ([]byte, error) {
	type alias End
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{TypeEnd, alias(e)})
}

func (e Error) MarshalJSON() ([]byte, error) {
	type alias Error
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{TypeError, alias(e)})
}
