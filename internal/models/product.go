package models

import (
	"github.com/shopspring/decimal"
)

// Product owns its variations and its modification attachments; deleting a
// product cascades through both trees.
type Product struct {
	BaseModel
	Name             string                `json:"name"`
	Code             string                `json:"code"`
	Image            string                `json:"image"`
	ShortDescription string                `json:"shortDescription"`
	Description      string                `gorm:"type:text" json:"description"`
	SKU              string                `gorm:"uniqueIndex" json:"sku"`
	StockQuantity    int                   `json:"stockQuantity"`
	CategoryID       *uint                 `json:"categoryId"`
	Category         *Category             `json:"category,omitempty"`
	Variations       []Variation           `gorm:"constraint:OnDelete:CASCADE" json:"variations,omitempty"`
	Modifications    []ProductModification `gorm:"constraint:OnDelete:CASCADE" json:"modifications,omitempty"`
}

// Variation is a selectable product option (e.g. size). Its price is defined
// per branch through VariationPrice rows.
type Variation struct {
	BaseModel
	ProductID uint             `gorm:"index" json:"productId"`
	Name      string           `json:"name"`
	Prices    []VariationPrice `gorm:"constraint:OnDelete:CASCADE" json:"prices,omitempty"`
}

// VariationPrice is the price of a variation at exactly one branch. A
// variation with no row for a branch has no defined price there.
type VariationPrice struct {
	BaseModel
	VariationID   uint             `gorm:"index;uniqueIndex:uidx_variation_branch" json:"variationId"`
	BranchID      uint             `gorm:"uniqueIndex:uidx_variation_branch" json:"branchId"`
	Price         decimal.Decimal  `gorm:"type:decimal(10,2)" json:"price"`
	DiscountPrice *decimal.Decimal `gorm:"type:decimal(10,2)" json:"discountPrice"`
}

// Modification is a global add-on (e.g. "extra cheese") attachable to
// products through ProductModification join rows.
type Modification struct {
	BaseModel
	Title string          `json:"title"`
	Price decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"price"`
}

// ProductModification links a product to a modification and owns the
// per-branch prices for that pairing.
type ProductModification struct {
	BaseModel
	ProductID      uint                       `gorm:"index;uniqueIndex:uidx_product_modification" json:"productId"`
	ModificationID uint                       `gorm:"uniqueIndex:uidx_product_modification" json:"modificationId"`
	Modification   *Modification              `json:"modification,omitempty"`
	Prices         []ProductModificationPrice `gorm:"constraint:OnDelete:CASCADE" json:"prices,omitempty"`
}

// ProductModificationPrice prices a product-modification pairing at one branch.
type ProductModificationPrice struct {
	BaseModel
	ProductModificationID uint            `gorm:"index;uniqueIndex:uidx_productmod_branch" json:"productModificationId"`
	BranchID              uint            `gorm:"uniqueIndex:uidx_productmod_branch" json:"branchId"`
	Price                 decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`
}
