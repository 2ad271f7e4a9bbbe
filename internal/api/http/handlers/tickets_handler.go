package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketsHandler serves the public, unauthenticated ticket endpoints:
// intake, tracking by code, and the one-time satisfaction survey.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Create POST /api/v1/tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	input := service.TicketCreateInput{
		EmployeeCode:   req.EmployeeCode,
		DisplayName:    req.DisplayName,
		OrgUnitPath:    req.OrgUnitPath,
		CategoryID:     req.CategoryID,
		PriorityID:     req.PriorityID,
		SystemID:       req.SystemID,
		Subject:        req.Subject,
		Description:    req.Description,
		AttachmentKeys: req.AttachmentKeys,
		SourceIP:       c.IP(),
		UserAgent:      c.Get(fiber.HeaderUserAgent),
	}
	ticket, err := h.service.CreateTicket(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.TicketCreatedResponse{
		Code:      ticket.Code,
		Status:    ticket.Status,
		CreatedAt: ticket.CreatedAt,
	}})
}

// Track GET /api/v1/tickets/:code.
func (h *TicketsHandler) Track(c *fiber.Ctx) error {
	employeeCode := c.Query("employee_code")
	if employeeCode == "" {
		return apperrors.NewValidationError("employee_code query parameter required", nil)
	}

	view, err := h.service.Track(c.UserContext(), c.Params("code"), employeeCode)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": trackResponse(view)})
}

// SubmitSurvey POST /api/v1/tickets/:code/survey.
func (h *TicketsHandler) SubmitSurvey(c *fiber.Ctx) error {
	var req dto.SubmitSurveyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	survey, err := h.service.SubmitSurvey(c.UserContext(), c.Params("code"), req.EmployeeCode, req.Rating, req.Comment)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"rating":     survey.Rating,
		"created_at": survey.CreatedAt,
	}})
}

func trackResponse(view *service.TrackingView) dto.TrackTicketResponse {
	history := make([]dto.StatusLogResponse, 0, len(view.History))
	for _, entry := range view.History {
		history = append(history, dto.StatusLogResponse{
			Prior:     entry.Prior,
			New:       entry.New,
			Note:      entry.Note,
			CreatedAt: entry.CreatedAt,
		})
	}
	return dto.TrackTicketResponse{
		Code:          view.Ticket.Code,
		Subject:       view.Ticket.Subject,
		Status:        view.Ticket.Status,
		CreatedAt:     view.Ticket.CreatedAt,
		ResolvedAt:    view.Ticket.ResolvedAt,
		ClosedAt:      view.Ticket.ClosedAt,
		History:       history,
		SurveyAllowed: view.SurveyAllowed,
	}
}

func staffTicketResponse(ticket *domain.Ticket) dto.StaffTicketResponse {
	return dto.StaffTicketResponse{
		ID:             ticket.ID,
		Code:           ticket.Code,
		RequesterName:  ticket.Requester.DisplayName,
		OrgUnitPath:    ticket.Requester.OrgUnitPath,
		CategoryID:     ticket.CategoryID,
		PriorityID:     ticket.PriorityID,
		SystemID:       ticket.SystemID,
		Subject:        ticket.Subject,
		Description:    ticket.Description,
		TeamID:         ticket.TeamID,
		AssigneeID:     ticket.AssigneeID,
		Status:         ticket.Status,
		AttachmentKeys: ticket.AttachmentKeys,
		Version:        ticket.Version,
		CreatedAt:      ticket.CreatedAt,
		UpdatedAt:      ticket.UpdatedAt,
		ResolvedAt:     ticket.ResolvedAt,
		ClosedAt:       ticket.ClosedAt,
	}
}
