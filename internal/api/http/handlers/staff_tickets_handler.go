package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// StaffTicketsHandler serves authenticated staff operations on tickets.
type StaffTicketsHandler struct {
	tickets     *service.TicketService
	assignments *service.AssignmentService
	slaReports  *service.SLAService
}

// NewStaffTicketsHandler constructs handler.
func NewStaffTicketsHandler(tickets *service.TicketService, assignments *service.AssignmentService, slaReports *service.SLAService) *StaffTicketsHandler {
	return &StaffTicketsHandler{tickets: tickets, assignments: assignments, slaReports: slaReports}
}

// Get GET /api/v1/staff/tickets/:id.
func (h *StaffTicketsHandler) Get(c *fiber.Ctx) error {
	ticket, history, err := h.tickets.GetForStaff(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	entries := make([]dto.StaffStatusLogResponse, 0, len(history))
	for _, entry := range history {
		entries = append(entries, dto.StaffStatusLogResponse{
			ID:        entry.ID,
			Prior:     entry.Prior,
			New:       entry.New,
			Note:      entry.Note,
			ActorID:   entry.ActorID,
			CreatedAt: entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": dto.StaffTicketDetailResponse{
		StaffTicketResponse: staffTicketResponse(ticket),
		History:             entries,
	}})
}

// Activity GET /api/v1/staff/tickets/:id/activity.
func (h *StaffTicketsHandler) Activity(c *fiber.Ctx) error {
	trail, sent, err := h.tickets.Activity(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	audit := make([]dto.AuditLogResponse, 0, len(trail))
	for _, entry := range trail {
		audit = append(audit, dto.AuditLogResponse{
			ID:        entry.ID,
			Action:    entry.Action,
			Before:    entry.Before,
			After:     entry.After,
			ActorID:   entry.ActorID,
			CreatedAt: entry.CreatedAt,
		})
	}
	notifications := make([]dto.NotificationRecordResponse, 0, len(sent))
	for _, record := range sent {
		notifications = append(notifications, dto.NotificationRecordResponse{
			ID:        record.ID,
			EventKind: record.EventKind,
			Channel:   record.Channel,
			Recipient: record.Recipient,
			Status:    record.Status,
			Error:     record.Error,
			SentAt:    record.SentAt,
			CreatedAt: record.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": dto.TicketActivityResponse{
		Audit:         audit,
		Notifications: notifications,
	}})
}

// UpdateStatus PATCH /api/v1/staff/tickets/:id/status.
func (h *StaffTicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("staff required")
	}

	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	actorID := principal.Staff.ID
	ticket, _, err := h.tickets.Transition(c.UserContext(), c.Params("id"), req.Status, req.Note, &actorID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": staffTicketResponse(ticket)})
}

// UpdateAssignment PATCH /api/v1/staff/tickets/:id/assignment.
func (h *StaffTicketsHandler) UpdateAssignment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("staff required")
	}

	var req dto.UpdateAssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TeamID == nil && req.AssigneeID == nil && !req.ClearTeam && !req.ClearStaff {
		return apperrors.NewValidationError("nothing to change", nil)
	}

	actorID := principal.Staff.ID
	ticketID := c.Params("id")
	ctx := c.UserContext()

	var err error
	if req.TeamID != nil || req.ClearTeam {
		if _, err = h.assignments.AssignTeam(ctx, ticketID, req.TeamID, &actorID); err != nil {
			return err
		}
	}
	if req.AssigneeID != nil || req.ClearStaff {
		if _, err = h.assignments.AssignStaff(ctx, ticketID, req.AssigneeID, &actorID); err != nil {
			return err
		}
	}

	ticket, _, err := h.tickets.GetForStaff(ctx, ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": staffTicketResponse(ticket)})
}

// SLAReport GET /api/v1/staff/reports/sla.
func (h *StaffTicketsHandler) SLAReport(c *fiber.Ctx) error {
	filter := service.ReportFilter{
		Limit:  parsePositiveInt(c.Query("limit"), 500),
		Offset: parsePositiveInt(c.Query("offset"), 0),
	}
	if teamID := c.Query("team_id"); teamID != "" {
		filter.TeamID = &teamID
	}

	report, err := h.slaReports.Report(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": slaReportResponse(report)})
}

func slaReportResponse(report *service.Report) dto.SLAReportResponse {
	convert := func(entries []service.TicketSLA) []dto.SLATicketResponse {
		out := make([]dto.SLATicketResponse, 0, len(entries))
		for _, entry := range entries {
			out = append(out, dto.SLATicketResponse{
				TicketID:         entry.Ticket.ID,
				Code:             entry.Ticket.Code,
				Subject:          entry.Ticket.Subject,
				Status:           entry.Ticket.Status,
				TeamID:           entry.Ticket.TeamID,
				PriorityID:       entry.Ticket.PriorityID,
				AgeMinutes:       entry.View.AgeMinutes,
				ResponseTarget:   entry.View.ResponseTargetMinutes,
				ResolveTarget:    entry.View.ResolveTargetMinutes,
				ResponseBreached: entry.View.ResponseBreached,
				ResolveBreached:  entry.View.ResolveBreached,
				ResolvePercent:   entry.View.ResolvePercent,
				Bucket:           entry.View.Bucket,
			})
		}
		return out
	}

	return dto.SLAReportResponse{
		GeneratedAt: report.GeneratedAt,
		Breached:    convert(report.Breached),
		AtRisk:      convert(report.AtRisk),
		OnTrack:     convert(report.OnTrack),
		Totals: map[string]int{
			"breached": len(report.Breached),
			"at_risk":  len(report.AtRisk),
			"on_track": len(report.OnTrack),
		},
	}
}

func parsePositiveInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}
