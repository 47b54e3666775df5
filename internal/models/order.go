package models

import (
	"github.com/shopspring/decimal"
)

// Order types.
const (
	OrderTypeTakeaway = "takeaway"
	OrderTypeDining   = "dining"
	OrderTypeDelivery = "delivery"
)

// Order statuses.
const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusHold      = "hold"
	OrderStatusComplete  = "complete"
	OrderStatusCancel    = "cancel"
)

// Order item statuses.
const (
	OrderItemStatusPending   = "pending"
	OrderItemStatusCompleted = "completed"
)

// orderTransitions enumerates the allowed status edges. complete and cancel
// are terminal.
var orderTransitions = map[string][]string{
	OrderStatusPending:   {OrderStatusPreparing, OrderStatusHold, OrderStatusCancel},
	OrderStatusPreparing: {OrderStatusReady, OrderStatusHold, OrderStatusCancel},
	OrderStatusReady:     {OrderStatusComplete, OrderStatusHold, OrderStatusCancel},
	OrderStatusHold:      {OrderStatusPending, OrderStatusPreparing, OrderStatusCancel},
}

// CanTransitionOrderStatus reports whether an order may move from one status
// to another.
func CanTransitionOrderStatus(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsOrderStatus reports whether s is one of the enumerated order statuses.
func IsOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusReady,
		OrderStatusHold, OrderStatusComplete, OrderStatusCancel:
		return true
	}
	return false
}

// IsOrderType reports whether s is one of the enumerated order types.
func IsOrderType(s string) bool {
	switch s {
	case OrderTypeTakeaway, OrderTypeDining, OrderTypeDelivery:
		return true
	}
	return false
}

// IsOrderItemStatus reports whether s is a valid order item status.
func IsOrderItemStatus(s string) bool {
	return s == OrderItemStatusPending || s == OrderItemStatusCompleted
}

// Order aggregates line items placed by a staff user, optionally on behalf of
// a customer. It exclusively owns its items.
type Order struct {
	BaseModel
	CustomerID    *uint           `json:"customerId"`
	Customer      *Customer       `json:"customer,omitempty"`
	UserID        *uint           `json:"userId"`
	User          *User           `json:"user,omitempty"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(10,2)" json:"totalAmount"`
	OrderType     string          `json:"orderType"`
	TableNumber   string          `json:"tableNumber"`
	OrderDiscount decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"orderDiscount"`
	Tax           decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"tax"`
	OrderNote     string          `gorm:"type:text" json:"orderNote"`
	KitchenNote   string          `gorm:"type:text" json:"kitchenNote"`
	OrderTimer    *int            `json:"orderTimer"`
	Status        string          `gorm:"default:pending" json:"status"`
	RejectReason  string          `gorm:"type:text" json:"rejectReason"`
	Items         []OrderItem     `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// OrderItem is one line of an order. UnitPrice is a snapshot captured at
// order time, never a live catalog reference.
type OrderItem struct {
	BaseModel
	OrderID         uint                    `gorm:"index" json:"orderId"`
	ProductID       uint                    `json:"productId"`
	Product         *Product                `json:"product,omitempty"`
	VariationID     *uint                   `json:"variationId"`
	Variation       *Variation              `json:"variation,omitempty"`
	Quantity        int                     `gorm:"default:1" json:"quantity"`
	UnitPrice       decimal.Decimal         `gorm:"type:decimal(10,2)" json:"unitPrice"`
	ProductDiscount decimal.Decimal         `gorm:"type:decimal(10,2);default:0" json:"productDiscount"`
	Status          string                  `gorm:"default:pending" json:"status"`
	Modifications   []OrderItemModification `gorm:"constraint:OnDelete:CASCADE" json:"modifications,omitempty"`
}

// OrderItemModification captures an applied add-on with its price snapshot,
// keeping historical orders priced correctly after catalog changes.
type OrderItemModification struct {
	BaseModel
	OrderItemID    uint            `gorm:"index" json:"orderItemId"`
	ModificationID uint            `json:"modificationId"`
	Modification   *Modification   `json:"modification,omitempty"`
	Price          decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`
}
