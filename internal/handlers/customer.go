package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/tillpoint/internal/models"
)

// CustomerHandler manages the customer directory.
type CustomerHandler struct {
	db *gorm.DB
}

// NewCustomerHandler constructs CustomerHandler.
func NewCustomerHandler(db *gorm.DB) *CustomerHandler {
	return &CustomerHandler{db: db}
}

type findOrCreateCustomerRequest struct {
	Mobile string `json:"mobile"`
	Name   string `json:"name"`
}

// FindOrCreate looks a customer up by mobile, creating it if absent. An
// existing record is returned unchanged even when the supplied name differs.
func (h *CustomerHandler) FindOrCreate(c *fiber.Ctx) error {
	var req findOrCreateCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Mobile == "" || req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "mobile and name are required")
	}

	customer, created, err := findOrCreateCustomer(h.db, req.Mobile, req.Name)
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{"success": true, "data": customer})
}

// GetByMobile returns the customer stored under a mobile number.
func (h *CustomerHandler) GetByMobile(c *fiber.Ctx) error {
	mobile := c.Params("mobile")

	var customer models.Customer
	if err := h.db.Where("mobile = ?", mobile).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "customer not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": customer})
}

// findOrCreateCustomer implements the shared lookup-then-create path. Two
// concurrent calls for the same new mobile can both pass the lookup; the
// loser of the insert race hits the unique constraint and reselects the row
// the winner created.
func findOrCreateCustomer(db *gorm.DB, mobile, name string) (*models.Customer, bool, error) {
	var customer models.Customer
	err := db.Where("mobile = ?", mobile).First(&customer).Error
	if err == nil {
		return &customer, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	customer = models.Customer{Mobile: mobile, Name: name}
	if err := db.Create(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			var existing models.Customer
			if selErr := db.Where("mobile = ?", mobile).First(&existing).Error; selErr != nil {
				return nil, false, selErr
			}
			return &existing, false, nil
		}
		return nil, false, err
	}

	return &customer, true, nil
}
