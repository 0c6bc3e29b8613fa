package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/shiftboard/internal/api/dto"
	"github.com/spec-kit/shiftboard/internal/service"
	apperrors "github.com/spec-kit/shiftboard/pkg/util/errorutil"
)

// CalendarHandler serves month grids.
type CalendarHandler struct {
	calendar *service.CalendarService
}

// NewCalendarHandler constructs handler.
func NewCalendarHandler(calendarService *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendar: calendarService}
}

// Month GET /api/calendar/:year/:month.
func (h *CalendarHandler) Month(c *fiber.Ctx) error {
	year, err := strconv.Atoi(c.Params("year"))
	if err != nil {
		return apperrors.NewValidationError("invalid year", map[string]any{"year": c.Params("year")})
	}
	month, err := strconv.Atoi(c.Params("month"))
	if err != nil {
		return apperrors.NewValidationError("invalid month", map[string]any{"month": c.Params("month")})
	}
	view, err := h.calendar.Month(c.UserContext(), year, month)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCalendarResponse(view)})
}
