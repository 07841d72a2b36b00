package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"agent-chat-be/internal/dto"
	"agent-chat-be/internal/pkg/logger"
	"agent-chat-be/internal/pkg/serverutils"
	"agent-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatService struct {
	sendErr error
	sent    []*dto.SendMessageRequest
	history *dto.GetMessagesResponse
}

func (f *fakeChatService) SendMessage(_ context.Context, req *dto.SendMessageRequest) error {
	f.sent = append(f.sent, req)
	return f.sendErr
}

func (f *fakeChatService) GetMessages(_ context.Context, req *dto.GetMessagesRequest) (*dto.GetMessagesResponse, error) {
	if f.history == nil {
		return nil, service.ErrAgentNotFound
	}
	return f.history, nil
}

func (f *fakeChatService) GetAgents(context.Context) ([]*dto.AgentResponse, error) {
	return []*dto.AgentResponse{{Key: "j4rv1s", ShortName: "Jarvis"}}, nil
}

func (f *fakeChatService) Wait() {}

func newTestApp(svc service.IChatService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(logger.NewNopLogger()))
	NewChatController(svc, nil).RegisterRoutes(app.Group("/api"))
	return app
}

func decode(t *testing.T, resp *http.Response) serverutils.BaseResponse {
	t.Helper()
	var body serverutils.BaseResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestSendMessage(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		sendErr    error
		wantStatus int
	}{
		{
			name:       "accepted",
			body:       `{"msgContent":"hi","sessionId":"s1","agentKey":"j4rv1s"}`,
			wantStatus: fiber.StatusCreated,
		},
		{
			name:       "missing field",
			body:       `{"msgContent":"hi","sessionId":"s1"}`,
			wantStatus: fiber.StatusBadRequest,
		},
		{
			name:       "malformed json",
			body:       `{"msgContent":`,
			wantStatus: fiber.StatusBadRequest,
		},
		{
			name:       "unknown agent",
			body:       `{"msgContent":"hi","sessionId":"s1","agentKey":"nobody"}`,
			sendErr:    service.ErrAgentNotFound,
			wantStatus: fiber.StatusNotFound,
		},
		{
			name:       "generation running",
			body:       `{"msgContent":"hi","sessionId":"s1","agentKey":"j4rv1s"}`,
			sendErr:    service.ErrGenerationInProgress,
			wantStatus: fiber.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(&fakeChatService{sendErr: tt.sendErr})

			req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantStatus, decode(t, resp).Code)
		})
	}
}

func TestGetMessages(t *testing.T) {
	svc := &fakeChatService{history: &dto.GetMessagesResponse{
		SessionId: "s1",
		Messages:  []*dto.MessageResponse{{Id: 1, Role: "user", Content: "hi"}},
	}}
	app := newTestApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/messages?sessionId=s1&agentKey=j4rv1s", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.True(t, body.Success)
	assert.NotNil(t, body.Data)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/messages?agentKey=j4rv1s", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetMessagesUnknownAgent(t *testing.T) {
	app := newTestApp(&fakeChatService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/messages?sessionId=s1&agentKey=nobody", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetAgents(t *testing.T) {
	app := newTestApp(&fakeChatService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/agents", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Success get agents", decode(t, resp).Message)
}

func TestStreamRequiresSession(t *testing.T) {
	app := newTestApp(&fakeChatService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/chat/stream", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
