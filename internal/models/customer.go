package models

// Customer is keyed by mobile number and created lazily on first order.
type Customer struct {
	BaseModel
	Mobile string `gorm:"uniqueIndex" json:"mobile"`
	Name   string `json:"name"`
}
