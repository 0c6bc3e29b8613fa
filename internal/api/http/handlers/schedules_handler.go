package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/shiftboard/internal/api/dto"
	"github.com/spec-kit/shiftboard/internal/service"
	apperrors "github.com/spec-kit/shiftboard/pkg/util/errorutil"
)

// SchedulesHandler exposes day schedules and editor sessions.
type SchedulesHandler struct {
	schedules *service.ScheduleService
}

// NewSchedulesHandler constructs handler.
func NewSchedulesHandler(scheduleService *service.ScheduleService) *SchedulesHandler {
	return &SchedulesHandler{schedules: scheduleService}
}

// Get GET /api/schedules/:date.
func (h *SchedulesHandler) Get(c *fiber.Ctx) error {
	sched, err := h.schedules.GetSchedule(c.UserContext(), c.Params("date"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDayScheduleResponse(sched)})
}

// OpenEditor POST /api/schedules/:date/editor.
func (h *SchedulesHandler) OpenEditor(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	view, err := h.schedules.OpenEditor(c.UserContext(), actor, c.Params("date"))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewEditorResponse(view)})
}

// View GET /api/editor/:session.
func (h *SchedulesHandler) View(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	view, err := h.schedules.View(actor, c.Params("session"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEditorResponse(view)})
}

// AddMember POST /api/editor/:session/members.
func (h *SchedulesHandler) AddMember(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.AddMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	view, err := h.schedules.AddMember(actor, c.Params("session"), req.ExternalID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEditorResponse(view)})
}

// RemoveMember DELETE /api/editor/:session/members/:index.
func (h *SchedulesHandler) RemoveMember(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return apperrors.NewValidationError("invalid index", map[string]any{"index": c.Params("index")})
	}
	view, err := h.schedules.RemoveMember(actor, c.Params("session"), index)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEditorResponse(view)})
}

// Save POST /api/editor/:session/save.
func (h *SchedulesHandler) Save(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	sched, err := h.schedules.Save(c.UserContext(), actor, c.Params("session"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDayScheduleResponse(sched)})
}

// Cancel DELETE /api/editor/:session.
func (h *SchedulesHandler) Cancel(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.schedules.Cancel(actor, c.Params("session")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
