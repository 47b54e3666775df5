package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/tillpoint/internal/middleware"
	"github.com/example/tillpoint/internal/models"
	"github.com/example/tillpoint/internal/utils"
)

// OrderHandler manages the order aggregate: atomic creation, full-replace
// updates and the order/item status machines.
type OrderHandler struct {
	db *gorm.DB
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB) *OrderHandler {
	return &OrderHandler{db: db}
}

type orderModificationRequest struct {
	ModificationID uint            `json:"modificationId"`
	Price          decimal.Decimal `json:"price"`
}

type orderProductRequest struct {
	ProductID       uint                       `json:"productId"`
	VariationID     *uint                      `json:"variationId"`
	Quantity        int                        `json:"quantity"`
	UnitPrice       decimal.Decimal            `json:"unitPrice"`
	ProductDiscount decimal.Decimal            `json:"productDiscount"`
	Status          string                     `json:"status"`
	Modifications   []orderModificationRequest `json:"modifications"`
}

type orderRequest struct {
	CustomerID     *uint                 `json:"customerId"`
	CustomerMobile string                `json:"customerMobile"`
	CustomerName   string                `json:"customerName"`
	TotalAmount    decimal.Decimal       `json:"totalAmount"`
	OrderType      string                `json:"orderType"`
	TableNumber    string                `json:"tableNumber"`
	OrderDiscount  decimal.Decimal       `json:"orderDiscount"`
	Tax            decimal.Decimal       `json:"tax"`
	OrderNote      string                `json:"orderNote"`
	KitchenNote    string                `json:"kitchenNote"`
	OrderTimer     *int                  `json:"orderTimer"`
	OrderProducts  []orderProductRequest `json:"order_products"`
	Passcode       string                `json:"passcode"`
}

// validateOrderRequest runs the checks that need no database access, so they
// happen before a transaction is opened.
func validateOrderRequest(req orderRequest) error {
	if !models.IsOrderType(req.OrderType) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order type")
	}
	for i, item := range req.OrderProducts {
		if item.ProductID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("order_products[%d]: productId is required", i))
		}
		if item.Quantity < 1 {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("order_products[%d]: quantity must be at least 1", i))
		}
		if item.Status != "" && !models.IsOrderItemStatus(item.Status) {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("order_products[%d]: invalid status", i))
		}
	}
	return nil
}

// CreateOrder composes customer resolution, the order row, its items and
// their modification snapshots into one atomic transaction. Either the whole
// order graph is persisted or none of it is.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req orderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validateOrderRequest(req); err != nil {
		return err
	}

	var order models.Order
	if err := h.db.Transaction(func(tx *gorm.DB) error {
		customerID, err := resolveOrderCustomer(tx, req.CustomerID, req.CustomerMobile, req.CustomerName)
		if err != nil {
			return err
		}

		userID := user.ID
		order = models.Order{
			CustomerID:    customerID,
			TotalAmount:   req.TotalAmount,
			OrderType:     req.OrderType,
			TableNumber:   req.TableNumber,
			OrderDiscount: req.OrderDiscount,
			Tax:           req.Tax,
			OrderNote:     req.OrderNote,
			KitchenNote:   req.KitchenNote,
			OrderTimer:    req.OrderTimer,
			Status:        models.OrderStatusPending,
			UserID:        &userID,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		return createOrderItems(tx, order.ID, req.OrderProducts)
	}); err != nil {
		return err
	}

	full, err := h.loadOrder(order.ID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": full})
}

// UpdateOrder is a full update: scalar fields are overwritten and, when an
// item list is supplied, every existing item and modification row is
// destroyed and recreated from it. Orders past pending require a verified
// manager passcode; the check runs inside the transaction so its failure
// rolls everything back.
func (h *OrderHandler) UpdateOrder(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req orderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validateOrderRequest(req); err != nil {
		return err
	}

	var order models.Order
	if err := h.db.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if order.Status != models.OrderStatusPending {
			if !verifyManagerPasscode(tx, req.Passcode) {
				return fiber.NewError(fiber.StatusUnauthorized,
					"invalid or missing manager passcode for updating a non-pending order")
			}
		}

		customerID, err := resolveOrderCustomer(tx, req.CustomerID, req.CustomerMobile, req.CustomerName)
		if err != nil {
			return err
		}

		if err := tx.Model(&order).Updates(map[string]interface{}{
			"customer_id":    customerID,
			"total_amount":   req.TotalAmount,
			"order_type":     req.OrderType,
			"table_number":   req.TableNumber,
			"order_discount": req.OrderDiscount,
			"tax":            req.Tax,
			"order_note":     req.OrderNote,
			"kitchen_note":   req.KitchenNote,
			"order_timer":    req.OrderTimer,
		}).Error; err != nil {
			return err
		}

		if req.OrderProducts == nil {
			return nil
		}

		// Full replace: callers resend the complete desired item set.
		itemIDs := tx.Model(&models.OrderItem{}).Select("id").Where("order_id = ?", order.ID)
		if err := tx.Where("order_item_id IN (?)", itemIDs).Delete(&models.OrderItemModification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}

		return createOrderItems(tx, order.ID, req.OrderProducts)
	}); err != nil {
		return err
	}

	full, err := h.loadOrder(order.ID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": full})
}

type orderStatusRequest struct {
	Status       string `json:"status"`
	RejectReason string `json:"rejectReason"`
	Passcode     string `json:"passcode"`
}

// UpdateOrderStatus moves an order along its status machine. Cancellation is
// gated on a manager passcode; holding requires a reject reason.
func (h *OrderHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req orderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if !models.IsOrderStatus(req.Status) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid status")
	}

	var order models.Order
	if err := h.db.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	if !models.CanTransitionOrderStatus(order.Status, req.Status) {
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("cannot transition order from %s to %s", order.Status, req.Status))
	}

	if req.Status == models.OrderStatusCancel {
		if !verifyManagerPasscode(h.db, req.Passcode) {
			return fiber.NewError(fiber.StatusUnauthorized,
				"invalid or missing manager passcode for cancellation")
		}
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.Status == models.OrderStatusHold {
		if req.RejectReason == "" {
			return fiber.NewError(fiber.StatusBadRequest, "rejectReason is required to hold an order")
		}
		updates["reject_reason"] = req.RejectReason
	}

	if err := h.db.Model(&order).Updates(updates).Error; err != nil {
		return err
	}

	var updated models.Order
	if err := h.db.First(&updated, "id = ?", order.ID).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": updated})
}

type orderItemStatusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderItemStatus updates one item's status independently of its
// parent order and returns the item rehydrated.
func (h *OrderHandler) UpdateOrderItemStatus(c *fiber.Ctx) error {
	itemID, err := c.ParamsInt("itemId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid item id")
	}

	var req orderItemStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if !models.IsOrderItemStatus(req.Status) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid status")
	}

	result := h.db.Model(&models.OrderItem{}).Where("id = ?", itemID).Update("status", req.Status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "order item not found")
	}

	var item models.OrderItem
	if err := h.db.Preload("Product").
		Preload("Variation").
		Preload("Modifications.Modification").
		First(&item, "id = ?", itemID).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": item})
}

// ListOrders returns paginated orders, newest first, fully hydrated.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id asc") }).
		Preload("Items.Product").
		Preload("Items.Variation").
		Preload("Items.Modifications.Modification").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetOrder returns a single fully hydrated order.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	order, err := h.loadOrder(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// loadOrder hydrates an order with its items, each item's product and
// variation, and each applied modification with its catalog detail. Items
// come back in creation order.
func (h *OrderHandler) loadOrder(id uint) (*models.Order, error) {
	var order models.Order
	err := h.db.Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id asc") }).
		Preload("Items.Product").
		Preload("Items.Variation").
		Preload("Items.Modifications.Modification").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// createOrderItems inserts the item rows and bulk-creates each item's
// modification snapshots. Prices are taken as supplied by the caller: they
// are the cart-time snapshot, not a live catalog lookup.
func createOrderItems(tx *gorm.DB, orderID uint, items []orderProductRequest) error {
	for _, item := range items {
		status := item.Status
		if status == "" {
			status = models.OrderItemStatusPending
		}

		orderItem := models.OrderItem{
			OrderID:         orderID,
			ProductID:       item.ProductID,
			VariationID:     item.VariationID,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			ProductDiscount: item.ProductDiscount,
			Status:          status,
		}
		if err := tx.Create(&orderItem).Error; err != nil {
			return err
		}

		if len(item.Modifications) == 0 {
			continue
		}

		modifications := make([]models.OrderItemModification, 0, len(item.Modifications))
		for _, mod := range item.Modifications {
			modifications = append(modifications, models.OrderItemModification{
				OrderItemID:    orderItem.ID,
				ModificationID: mod.ModificationID,
				Price:          mod.Price,
			})
		}
		if err := tx.Create(&modifications).Error; err != nil {
			return err
		}
	}
	return nil
}

// resolveOrderCustomer applies the find-or-create rule inside an order
// transaction. Creation only happens when a name accompanies an unseen
// mobile; losing an insert race falls back to reselecting the winner's row,
// using a savepoint so the outer transaction survives the constraint error.
func resolveOrderCustomer(tx *gorm.DB, customerID *uint, mobile, name string) (*uint, error) {
	if mobile == "" {
		return customerID, nil
	}

	var customer models.Customer
	err := tx.Where("mobile = ?", mobile).First(&customer).Error
	if err == nil {
		id := customer.ID
		return &id, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if name == "" {
		return customerID, nil
	}

	customer = models.Customer{Mobile: mobile, Name: name}
	createErr := tx.Transaction(func(inner *gorm.DB) error {
		return inner.Create(&customer).Error
	})
	if createErr != nil {
		if errors.Is(createErr, gorm.ErrDuplicatedKey) {
			var existing models.Customer
			if selErr := tx.Where("mobile = ?", mobile).First(&existing).Error; selErr != nil {
				return nil, selErr
			}
			id := existing.ID
			return &id, nil
		}
		return nil, createErr
	}

	id := customer.ID
	return &id, nil
}

// verifyManagerPasscode checks the supplied plaintext against every active
// admin and manager passcode hash. Any single match authorizes the action;
// the check is deliberately not tied to a specific approver.
func verifyManagerPasscode(db *gorm.DB, passcode string) bool {
	if passcode == "" {
		return false
	}

	var managers []models.User
	if err := db.Where("role IN ? AND status = ?",
		[]string{models.RoleAdmin, models.RoleManager}, models.UserStatusActive).
		Find(&managers).Error; err != nil {
		return false
	}

	for _, manager := range managers {
		if manager.Passcode != nil && utils.CheckPassword(*manager.Passcode, passcode) {
			return true
		}
	}
	return false
}
