package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/tillpoint/internal/middleware"
	"github.com/example/tillpoint/internal/models"
	"github.com/example/tillpoint/internal/utils"
)

// UserHandler manages staff administration endpoints.
type UserHandler struct {
	db *gorm.DB
}

// NewUserHandler constructs UserHandler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// ListUsers returns all staff accounts with details.
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := h.db.Preload("Detail").Order("id asc").Find(&users).Error; err != nil {
		return err
	}

	formatted := make([]fiber.Map, 0, len(users))
	for i := range users {
		formatted = append(formatted, formatUser(&users[i]))
	}

	return c.JSON(fiber.Map{"success": true, "data": formatted})
}

// GetUser returns a single staff account.
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var user models.User
	if err := h.db.Preload("Detail").First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": formatUser(&user)})
}

type updateUserRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	BranchID   *uint   `json:"branchId"`
	EmployeeID *string `json:"employeeId"`
	Role       *string `json:"role"`
	Status     *string `json:"status"`
	Passcode   *string `json:"passcode"`
}

// UpdateUser applies partial updates across the user and its detail record.
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var user models.User
	if err := h.db.Preload("Detail").First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	if req.Role != nil {
		if !models.IsRole(*req.Role) {
			return fiber.NewError(fiber.StatusBadRequest, "invalid role")
		}
		user.Role = *req.Role
	}
	if req.Status != nil {
		user.Status = *req.Status
	}
	if req.Passcode != nil && models.IsManagerial(user.Role) {
		hashed, err := utils.HashPassword(*req.Passcode)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to hash passcode")
		}
		user.Passcode = &hashed
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&user).Error; err != nil {
			return err
		}

		if user.Detail == nil {
			return nil
		}
		if req.Name != nil {
			user.Detail.Name = *req.Name
		}
		if req.Email != nil {
			user.Detail.Email = *req.Email
		}
		if req.BranchID != nil {
			user.Detail.BranchID = *req.BranchID
		}
		if req.EmployeeID != nil {
			user.Detail.EmployeeID = *req.EmployeeID
		}
		return tx.Save(user.Detail).Error
	}); err != nil {
		return err
	}

	var updated models.User
	if err := h.db.Preload("Detail").First(&updated, "id = ?", id).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": formatUser(&updated)})
}

// DeactivateUser marks an account inactive. Self-deactivation is refused.
func (h *UserHandler) DeactivateUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	if user.ID == actor.ID {
		return fiber.NewError(fiber.StatusBadRequest, "cannot deactivate your own account")
	}

	user.Status = models.UserStatusInactive
	if err := h.db.Save(&user).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "User deactivated successfully"})
}
