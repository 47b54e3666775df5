package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/tillpoint/internal/middleware"
	"github.com/example/tillpoint/internal/models"
)

// PaymentHandler manages the payment ledger. Payment status never feeds back
// into order status; settling an order is a manual workflow.
type PaymentHandler struct {
	db *gorm.DB
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(db *gorm.DB) *PaymentHandler {
	return &PaymentHandler{db: db}
}

type createPaymentRequest struct {
	OrderID       uint            `json:"orderId"`
	PaymentMethod string          `json:"paymentMethod"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transactionId"`
	Status        string          `json:"status"`
}

// CreatePayment records a payment against an existing order. Several
// payments may target one order (split payment).
func (h *PaymentHandler) CreatePayment(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.OrderID == 0 || req.PaymentMethod == "" || req.Amount.IsZero() {
		return fiber.NewError(fiber.StatusBadRequest, "orderId, paymentMethod and amount are required")
	}
	if !models.IsPaymentMethod(req.PaymentMethod) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payment method")
	}

	status := req.Status
	if status == "" {
		status = models.PaymentStatusPending
	}
	if !models.IsPaymentStatus(status) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payment status")
	}

	var order models.Order
	if err := h.db.First(&order, "id = ?", req.OrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	userID := user.ID
	payment := models.Payment{
		OrderID:       req.OrderID,
		PaymentMethod: req.PaymentMethod,
		Amount:        req.Amount,
		TransactionID: req.TransactionID,
		Status:        status,
		UserID:        &userID,
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&payment).Error
	}); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": payment})
}

type paymentStatusRequest struct {
	Status   string `json:"status"`
	IsRefund bool   `json:"is_refund"`
}

// UpdatePaymentStatus sets a payment's status; the refund flag wins over any
// supplied status. The order row is never touched here.
func (h *PaymentHandler) UpdatePaymentStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req paymentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var payment models.Payment
	if err := h.db.First(&payment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "payment not found")
		}
		return err
	}

	finalStatus := payment.Status
	switch {
	case req.IsRefund:
		finalStatus = models.PaymentStatusRefund
	case req.Status != "":
		if !models.IsPaymentStatus(req.Status) {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payment status")
		}
		finalStatus = req.Status
	}

	if err := h.db.Model(&payment).Update("status", finalStatus).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Payment status updated", "payment": payment})
}

// GetPaymentsByOrder lists every payment recorded against an order.
func (h *PaymentHandler) GetPaymentsByOrder(c *fiber.Ctx) error {
	orderID, err := c.ParamsInt("orderId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order id")
	}

	var payments []models.Payment
	if err := h.db.Where("order_id = ?", orderID).Order("id asc").Find(&payments).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": payments})
}
