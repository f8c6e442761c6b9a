package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/api/dto"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/service"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// UsersHandler exposes directory endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// Upsert handles POST /users. Registration is an upsert keyed on the
// canonical email; a repeat registration updates fields in place.
func (h *UsersHandler) Upsert(c *fiber.Ctx) error {
	var req dto.UserUpsertRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload")
	}
	if req.Email == "" {
		return apperrors.NewInvalidArgument("email required")
	}

	result, err := h.users.Upsert(c.Context(), service.UserUpsertInput{
		Email:        req.Email,
		Name:         req.Name,
		DisplayName:  req.DisplayName,
		Photo:        req.Photo,
		PhotoURL:     req.PhotoURL,
		Role:         req.Role,
		Designation:  req.Designation,
		Department:   req.Department,
		MobileNumber: req.MobileNumber,
		Suspended:    req.Suspended,
		Password:     req.Password,
	})
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if result.Inserted {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{"data": dto.UserUpsertResponse{
		Email:    result.Email,
		Inserted: result.Inserted,
	}})
}

// List handles GET /users with an optional ?role= filter.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.users.List(c.Context(), c.Query("role"))
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get handles GET /users/:email. An unknown email yields an empty object,
// not a 404.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	user, err := h.users.FindByEmail(c.Context(), c.Params("email"))
	if err != nil {
		return err
	}
	if user == nil {
		return c.JSON(fiber.Map{"data": fiber.Map{}})
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// UpdateRole handles PUT /users/:email.
func (h *UsersHandler) UpdateRole(c *fiber.Ctx) error {
	var req dto.RoleUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload")
	}

	matched, err := h.users.UpdateRole(c.Context(), c.Params("email"), service.RoleUpdateInput{
		Role:      req.Role,
		Suspended: req.Suspended,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UpdateAck{MatchedCount: matched}})
}

// Delete handles DELETE /users/:email. Idempotent.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	deleted, err := h.users.Delete(c.Context(), c.Params("email"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DeleteAck{DeletedCount: deleted}})
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		Photo:        user.Photo,
		Role:         user.Role,
		Designation:  user.Designation,
		Department:   user.Department,
		MobileNumber: user.MobileNumber,
		Suspended:    user.Suspended,
		CreatedAt:    user.CreatedAt,
	}
}
