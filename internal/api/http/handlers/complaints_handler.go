package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/api/dto"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/service"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// ComplaintsHandler manages complaint endpoints.
type ComplaintsHandler struct {
	complaints *service.ComplaintService
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaintService *service.ComplaintService) *ComplaintsHandler {
	return &ComplaintsHandler{complaints: complaintService}
}

// Create handles POST /complaints. Submission fields beyond email are stored
// verbatim; their content is not validated.
func (h *ComplaintsHandler) Create(c *fiber.Ctx) error {
	var body map[string]any
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return apperrors.NewInvalidArgument("invalid payload")
	}
	email, _ := body["email"].(string)
	if email == "" {
		return apperrors.NewInvalidArgument("email required")
	}
	delete(body, "email")

	complaint, err := h.complaints.Create(c.Context(), service.ComplaintCreateInput{
		Email:   email,
		Details: body,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": complaintResponse(complaint)})
}

// ListAll handles GET /complaints.
func (h *ComplaintsHandler) ListAll(c *fiber.Ctx) error {
	complaints, err := h.complaints.ListAll(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintResponses(complaints)})
}

// ListByUser handles GET /complaints/user/:email.
func (h *ComplaintsHandler) ListByUser(c *fiber.Ctx) error {
	complaints, err := h.complaints.ListByUser(c.Context(), c.Params("email"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintResponses(complaints)})
}

// ListByEmployee handles GET /complaints/employee/:id.
func (h *ComplaintsHandler) ListByEmployee(c *fiber.Ctx) error {
	complaints, err := h.complaints.ListByEmployee(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintResponses(complaints)})
}

// Get handles GET /complaints/:id.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	complaint, err := h.complaints.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintResponse(complaint)})
}

// Transition handles PUT /complaints/:id.
func (h *ComplaintsHandler) Transition(c *fiber.Ctx) error {
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload")
	}

	input := service.TransitionInput{
		Status:     req.Status,
		EmployeeID: req.EmployeeID,
	}
	if req.History != nil {
		input.History = &service.HistoryPatch{
			File:        req.History.File,
			Description: req.History.Description,
			Comment:     req.History.Comment,
			Location:    req.History.Location,
		}
	}

	complaint, err := h.complaints.Transition(c.Context(), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintResponse(complaint)})
}

// Delete handles DELETE /complaints/:id. Idempotent.
func (h *ComplaintsHandler) Delete(c *fiber.Ctx) error {
	deleted, err := h.complaints.Delete(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DeleteAck{DeletedCount: deleted}})
}

func complaintResponse(complaint *domain.Complaint) dto.ComplaintResponse {
	history := make([]dto.HistoryEntryResponse, 0, len(complaint.History))
	for _, entry := range complaint.History {
		history = append(history, dto.HistoryEntryResponse{
			Timestamp:   entry.Timestamp,
			File:        entry.File,
			Description: entry.Description,
			Comment:     entry.Comment,
			Location:    entry.Location,
		})
	}
	details := complaint.Details
	if details == nil {
		details = map[string]any{}
	}
	return dto.ComplaintResponse{
		ID:         complaint.ID,
		Email:      complaint.Email,
		Status:     complaint.Status,
		EmployeeID: complaint.EmployeeID,
		History:    history,
		Details:    details,
		CreatedAt:  complaint.CreatedAt,
		UpdatedAt:  complaint.UpdatedAt,
	}
}

func complaintResponses(complaints []domain.Complaint) []dto.ComplaintResponse {
	items := make([]dto.ComplaintResponse, 0, len(complaints))
	for i := range complaints {
		items = append(items, complaintResponse(&complaints[i]))
	}
	return items
}
