package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/tillpoint/internal/models"
	"github.com/example/tillpoint/internal/utils"
)

// ProductHandler manages product CRUD including nested variations,
// modification attachments and their per-branch prices.
type ProductHandler struct {
	db *gorm.DB
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

// ResolveVariationPrice looks up the price row of a variation at one branch.
// A missing row means the variation is unpriced at that branch; there is no
// fallback to a default branch.
func ResolveVariationPrice(db *gorm.DB, variationID, branchID uint) (*models.VariationPrice, error) {
	var price models.VariationPrice
	err := db.Where("variation_id = ? AND branch_id = ?", variationID, branchID).First(&price).Error
	if err != nil {
		return nil, err
	}
	return &price, nil
}

// ResolveModificationPrice looks up the price row of a product-modification
// pairing at one branch.
func ResolveModificationPrice(db *gorm.DB, productModificationID, branchID uint) (*models.ProductModificationPrice, error) {
	var price models.ProductModificationPrice
	err := db.Where("product_modification_id = ? AND branch_id = ?", productModificationID, branchID).First(&price).Error
	if err != nil {
		return nil, err
	}
	return &price, nil
}

type branchPriceRequest struct {
	BranchID      uint             `json:"branchId"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice"`
}

type variationRequest struct {
	Name   string               `json:"name"`
	Prices []branchPriceRequest `json:"prices"`
}

type productModificationRequest struct {
	ModificationID uint                 `json:"modificationId"`
	Prices         []branchPriceRequest `json:"prices"`
}

type productRequest struct {
	Name             string                       `json:"name"`
	Code             string                       `json:"code"`
	Image            string                       `json:"image"`
	ShortDescription string                       `json:"shortDescription"`
	Description      string                       `json:"description"`
	SKU              string                       `json:"sku"`
	StockQuantity    int                          `json:"stockQuantity"`
	CategoryID       *uint                        `json:"categoryId"`
	Variations       []variationRequest           `json:"variations"`
	Modifications    []productModificationRequest `json:"modifications"`
}

// ListProducts returns paginated products with optional filters.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Product{})

	if v := c.Query("category_id"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			query = query.Where("category_id = ?", id)
		}
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		q := "%" + strings.ToLower(search) + "%"
		query = query.Where("lower(name) LIKE ? OR lower(sku) LIKE ?", q, q)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var products []models.Product
	if err := query.Preload("Category").
		Limit(pg.Limit).Offset(pg.Offset).
		Order("created_at desc").
		Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    products,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetProduct loads a product with its full variation and modification trees.
// With ?branch=N the price collections are narrowed to that branch; a
// variation or pairing without a row for the branch comes back with no prices.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	query := h.db.Preload("Category").
		Preload("Variations").
		Preload("Modifications.Modification")

	if v := c.Query("branch"); v != "" {
		branchID, err := strconv.Atoi(v)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid branch")
		}
		query = query.
			Preload("Variations.Prices", "branch_id = ?", branchID).
			Preload("Modifications.Prices", "branch_id = ?", branchID)
	} else {
		query = query.
			Preload("Variations.Prices").
			Preload("Modifications.Prices")
	}

	var product models.Product
	if err := query.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

// CreateProduct persists a product with its nested variations, prices and
// modification attachments in one transaction.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || req.Code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name and code are required")
	}

	product := buildProductFromRequest(req)

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&product).Error
	}); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": product})
}

// UpdateProduct updates scalar fields and replaces the owned variation and
// modification trees with the supplied set.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var existing models.Product
	if err := h.db.First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	product := buildProductFromRequest(req)
	product.ID = existing.ID
	product.CreatedAt = existing.CreatedAt

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := deleteProductAssociations(tx, existing.ID); err != nil {
			return err
		}

		if err := tx.Model(&existing).Omit("ID", "CreatedAt").Updates(map[string]interface{}{
			"name":              product.Name,
			"code":              product.Code,
			"image":             product.Image,
			"short_description": product.ShortDescription,
			"description":       product.Description,
			"sku":               product.SKU,
			"stock_quantity":    product.StockQuantity,
			"category_id":       product.CategoryID,
		}).Error; err != nil {
			return err
		}

		if len(product.Variations) > 0 {
			for i := range product.Variations {
				product.Variations[i].ProductID = product.ID
			}
			if err := tx.Create(&product.Variations).Error; err != nil {
				return err
			}
		}
		if len(product.Modifications) > 0 {
			for i := range product.Modifications {
				product.Modifications[i].ProductID = product.ID
			}
			if err := tx.Create(&product.Modifications).Error; err != nil {
				return err
			}
		}

		return nil
	}); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

// DeleteProduct removes a product and its owned trees.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := deleteProductAssociations(tx, uint(id)); err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, "id = ?", id).Error
	}); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// deleteProductAssociations clears both owned trees, leaves first.
func deleteProductAssociations(tx *gorm.DB, productID uint) error {
	variationIDs := tx.Model(&models.Variation{}).Select("id").Where("product_id = ?", productID)
	if err := tx.Where("variation_id IN (?)", variationIDs).Delete(&models.VariationPrice{}).Error; err != nil {
		return err
	}
	if err := tx.Where("product_id = ?", productID).Delete(&models.Variation{}).Error; err != nil {
		return err
	}

	pairingIDs := tx.Model(&models.ProductModification{}).Select("id").Where("product_id = ?", productID)
	if err := tx.Where("product_modification_id IN (?)", pairingIDs).Delete(&models.ProductModificationPrice{}).Error; err != nil {
		return err
	}
	return tx.Where("product_id = ?", productID).Delete(&models.ProductModification{}).Error
}

func buildProductFromRequest(req productRequest) models.Product {
	product := models.Product{
		Name:             req.Name,
		Code:             req.Code,
		Image:            req.Image,
		ShortDescription: req.ShortDescription,
		Description:      req.Description,
		SKU:              req.SKU,
		StockQuantity:    req.StockQuantity,
		CategoryID:       req.CategoryID,
	}

	for _, v := range req.Variations {
		variation := models.Variation{Name: v.Name}
		for _, p := range v.Prices {
			variation.Prices = append(variation.Prices, models.VariationPrice{
				BranchID:      p.BranchID,
				Price:         p.Price,
				DiscountPrice: p.DiscountPrice,
			})
		}
		product.Variations = append(product.Variations, variation)
	}

	for _, m := range req.Modifications {
		pairing := models.ProductModification{ModificationID: m.ModificationID}
		for _, p := range m.Prices {
			pairing.Prices = append(pairing.Prices, models.ProductModificationPrice{
				BranchID: p.BranchID,
				Price:    p.Price,
			})
		}
		product.Modifications = append(product.Modifications, pairing)
	}

	return product
}
