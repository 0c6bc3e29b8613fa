package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/shiftboard/internal/api/dto"
	"github.com/spec-kit/shiftboard/internal/domain"
	"github.com/spec-kit/shiftboard/internal/leads"
	"github.com/spec-kit/shiftboard/internal/service"
)

// LeadsHandler serves the lead summary.
type LeadsHandler struct {
	leads *service.LeadService
}

// NewLeadsHandler constructs handler.
func NewLeadsHandler(leadService *service.LeadService) *LeadsHandler {
	return &LeadsHandler{leads: leadService}
}

// Summary GET /api/leads/summary?start=&end=&member=.
func (h *LeadsHandler) Summary(c *fiber.Ctx) error {
	q := leads.Query{
		StartDateKey: c.Query("start"),
		EndDateKey:   c.Query("end"),
		MemberID:     domain.NewExternalID(c.Query("member")),
	}
	report, err := h.leads.Summary(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewLeadSummaryResponse(report)})
}

// MemberRecords GET /api/leads/summary/:member?start=&end=.
func (h *LeadsHandler) MemberRecords(c *fiber.Ctx) error {
	q := leads.Query{StartDateKey: c.Query("start"), EndDateKey: c.Query("end")}
	records, err := h.leads.MemberRecords(c.UserContext(), q, c.Params("member"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewLeadRecordResponses(records)})
}
