package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/tillpoint/internal/models"
)

// ReportHandler produces read-only sales rollups across orders and payments.
type ReportHandler struct {
	db *gorm.DB
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(db *gorm.DB) *ReportHandler {
	return &ReportHandler{db: db}
}

// productSales aggregates one product's sold quantity and revenue.
type productSales struct {
	ProductID     uint            `json:"productId"`
	ProductName   string          `json:"productName"`
	ProductSKU    string          `json:"productSku"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalSales    decimal.Decimal `json:"totalSales"`
}

// GetSalesReport rolls up orders or payments for one branch and date range.
// Rows are scoped to the branch through the recording staff member's detail.
// Product-wise report types aggregate per product; anything else returns the
// hydrated detail rows.
func (h *ReportHandler) GetSalesReport(c *fiber.Ctx) error {
	startDate := c.Query("startDate")
	endDate := c.Query("endDate")
	branch := c.Query("branch")
	reportType := c.Query("reportType")
	reportSource := c.Query("reportSource")

	if startDate == "" || endDate == "" || branch == "" || reportType == "" || reportSource == "" {
		return fiber.NewError(fiber.StatusBadRequest,
			"missing required parameters: startDate, endDate, branch, reportType, reportSource")
	}

	branchID, err := strconv.Atoi(branch)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid branch")
	}

	start, err := parseReportDate(startDate)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid startDate")
	}
	end, err := parseReportDate(endDate)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid endDate")
	}
	// Include the whole end day.
	end = end.Add(24*time.Hour - time.Nanosecond)

	rt := strings.ReplaceAll(strings.ToLower(reportType), " ", "_")
	rs := strings.ToLower(reportSource)
	productWise := rt == "product_wise" || rt == "item_wise" || rt == "item" || rt == "items_wise"

	switch rs {
	case "order", "orders":
		var orders []models.Order
		if err := h.db.
			Joins("JOIN users ON users.id = orders.user_id").
			Joins("JOIN user_details ON user_details.user_id = users.id").
			Where("user_details.branch_id = ?", branchID).
			Where("orders.created_at BETWEEN ? AND ?", start, end).
			Preload("Items.Product").
			Preload("User.Detail").
			Order("orders.created_at desc").
			Find(&orders).Error; err != nil {
			return err
		}

		if productWise {
			sales := map[uint]*productSales{}
			for _, order := range orders {
				accumulateItemSales(sales, order.Items)
			}
			return c.JSON(fiber.Map{"success": true, "data": salesValues(sales)})
		}

		return c.JSON(fiber.Map{"success": true, "data": orders})

	case "payment", "payments":
		var payments []models.Payment
		if err := h.db.
			Joins("JOIN users ON users.id = payments.user_id").
			Joins("JOIN user_details ON user_details.user_id = users.id").
			Where("user_details.branch_id = ?", branchID).
			Where("payments.created_at BETWEEN ? AND ?", start, end).
			Preload("Order.Items.Product").
			Preload("User.Detail").
			Order("payments.created_at desc").
			Find(&payments).Error; err != nil {
			return err
		}

		if productWise {
			sales := map[uint]*productSales{}
			for _, payment := range payments {
				if payment.Order != nil {
					accumulateItemSales(sales, payment.Order.Items)
				}
			}
			return c.JSON(fiber.Map{"success": true, "data": salesValues(sales)})
		}

		return c.JSON(fiber.Map{"success": true, "data": payments})

	default:
		return fiber.NewError(fiber.StatusBadRequest, `invalid report source, use "order" or "payment"`)
	}
}

func parseReportDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func accumulateItemSales(sales map[uint]*productSales, items []models.OrderItem) {
	for _, item := range items {
		entry, ok := sales[item.ProductID]
		if !ok {
			entry = &productSales{
				ProductID:   item.ProductID,
				ProductName: "Unknown Product",
				ProductSKU:  "N/A",
			}
			if item.Product != nil {
				entry.ProductName = item.Product.Name
				entry.ProductSKU = item.Product.SKU
			}
			sales[item.ProductID] = entry
		}
		entry.TotalQuantity += item.Quantity
		entry.TotalSales = entry.TotalSales.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
}

func salesValues(sales map[uint]*productSales) []productSales {
	values := make([]productSales, 0, len(sales))
	for _, entry := range sales {
		values = append(values, *entry)
	}
	return values
}
