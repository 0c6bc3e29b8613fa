package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/shiftboard/internal/api/dto"
	"github.com/spec-kit/shiftboard/internal/service"
	apperrors "github.com/spec-kit/shiftboard/pkg/util/errorutil"
)

// AgentsHandler manages the roster.
type AgentsHandler struct {
	roster *service.RosterService
}

// NewAgentsHandler constructs handler.
func NewAgentsHandler(rosterService *service.RosterService) *AgentsHandler {
	return &AgentsHandler{roster: rosterService}
}

// List GET /api/agents.
func (h *AgentsHandler) List(c *fiber.Ctx) error {
	agents, err := h.roster.ListAgents(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAgentResponses(agents)})
}

// Create POST /api/agents.
func (h *AgentsHandler) Create(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateAgentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	agent, err := h.roster.AddAgent(c.UserContext(), actor, service.AgentInput{
		Name:       req.Name,
		Email:      req.Email,
		ExternalID: req.ExternalID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.AgentResponse{ID: agent.ID, Name: agent.Name, Email: agent.Email, ExternalID: agent.ExternalID},
	})
}

// Delete DELETE /api/agents/:id.
func (h *AgentsHandler) Delete(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.roster.DeleteAgent(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Refresh POST /api/agents/refresh.
func (h *AgentsHandler) Refresh(c *fiber.Ctx) error {
	agents, err := h.roster.Refresh(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAgentResponses(agents)})
}
