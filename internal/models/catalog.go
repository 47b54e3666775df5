package models

// Branch is a physical location. Prices and staff are scoped to a branch.
type Branch struct {
	BaseModel
	Name string `json:"name"`
}

// Category is a self-referencing tree; a product belongs to exactly one category.
type Category struct {
	BaseModel
	Name          string     `json:"name"`
	ParentID      *uint      `json:"parentId"`
	Parent        *Category  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Subcategories []Category `gorm:"foreignKey:ParentID" json:"subcategories,omitempty"`
}
