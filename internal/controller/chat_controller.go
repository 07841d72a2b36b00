package controller

import (
	"errors"

	"agent-chat-be/internal/dto"
	"agent-chat-be/internal/pkg/serverutils"
	"agent-chat-be/internal/service"
	ws "agent-chat-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	SendMessage(ctx *fiber.Ctx) error
	GetMessages(ctx *fiber.Ctx) error
	GetAgents(ctx *fiber.Ctx) error
	Stream(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
	hub     *ws.Hub
}

func NewChatController(service service.IChatService, hub *ws.Hub) IChatController {
	return &chatController{service: service, hub: hub}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	r.Get("/agents", c.GetAgents)
	r.Get("/messages", c.GetMessages)

	h := r.Group("/chat")
	h.Post("", c.SendMessage)
	h.Get("/stream", c.Stream)
	h.Use("/ws", func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	h.Get("/ws/:sessionId", websocket.New(func(conn *websocket.Conn) {
		ws.ServeWs(c.hub, conn, conn.Params("sessionId"))
	}))
}

// mapError translates service errors into HTTP errors.
func mapError(err error) error {
	switch {
	case errors.Is(err, service.ErrAgentNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Agent Not Found")
	case errors.Is(err, service.ErrGenerationInProgress):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return err
	}
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Bad Request")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.SendMessage(ctx.UserContext(), &req); err != nil {
		return mapError(err)
	}

	res := serverutils.SuccessResponse("Message accepted", nil)
	res.Code = fiber.StatusCreated
	return ctx.Status(fiber.StatusCreated).JSON(res)
}

func (c *chatController) GetMessages(ctx *fiber.Ctx) error {
	var req dto.GetMessagesRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Bad Request")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.GetMessages(ctx.UserContext(), &req)
	if err != nil {
		return mapError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get messages", res))
}

func (c *chatController) GetAgents(ctx *fiber.Ctx) error {
	res, err := c.service.GetAgents(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get agents", res))
}

// Stream serves the session's events as server-sent events.
func (c *chatController) Stream(ctx *fiber.Ctx) error {
	sessionID := ctx.Query("sessionId")
	if sessionID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Bad Request")
	}
	return ws.ServeEventStream(c.hub, ctx, sessionID)
}
