package models

import (
	"github.com/shopspring/decimal"
)

// Payment methods.
const (
	PaymentMethodCash = "cash"
	PaymentMethodCard = "card"
)

// Payment statuses. Payment status is independent of order status.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusRefund  = "refund"
)

// IsPaymentMethod reports whether s is a known payment method.
func IsPaymentMethod(s string) bool {
	return s == PaymentMethodCash || s == PaymentMethodCard
}

// IsPaymentStatus reports whether s is a known payment status.
func IsPaymentStatus(s string) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusRefund:
		return true
	}
	return false
}

// Payment records money taken against an order. Several payments may
// reference one order (split payment).
type Payment struct {
	BaseModel
	OrderID       uint            `gorm:"index" json:"orderId"`
	Order         *Order          `json:"order,omitempty"`
	PaymentMethod string          `json:"paymentMethod"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2)" json:"amount"`
	TransactionID string          `json:"transactionId"`
	Status        string          `gorm:"default:pending" json:"status"`
	UserID        *uint           `json:"userId"`
	User          *User           `json:"user,omitempty"`
}
