package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/tillpoint/internal/models"
)

// CatalogHandler manages categories, modifications and branches.
type CatalogHandler struct {
	db *gorm.DB
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(db *gorm.DB) *CatalogHandler {
	return &CatalogHandler{db: db}
}

// ListCategories returns top-level categories with nested subcategories.
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	var categories []models.Category
	if err := h.db.Preload("Subcategories").
		Where("parent_id IS NULL").
		Find(&categories).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": categories})
}

// ListParentCategories returns categories without a parent.
func (h *CatalogHandler) ListParentCategories(c *fiber.Ctx) error {
	var categories []models.Category
	if err := h.db.Where("parent_id IS NULL").Find(&categories).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": categories})
}

// ListSubcategories returns the children of one category.
func (h *CatalogHandler) ListSubcategories(c *fiber.Ctx) error {
	parentID, err := c.ParamsInt("parentId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid parent id")
	}

	var categories []models.Category
	if err := h.db.Where("parent_id = ?", parentID).Find(&categories).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": categories})
}

// GetCategory returns a category with its parent and children.
func (h *CatalogHandler) GetCategory(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var category models.Category
	if err := h.db.Preload("Parent").Preload("Subcategories").
		First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "category not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": category})
}

type categoryRequest struct {
	Name     string `json:"name"`
	ParentID *uint  `json:"parentId"`
}

// CreateCategory persists a new category.
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}

	category := models.Category{Name: req.Name, ParentID: req.ParentID}
	if err := h.db.Create(&category).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": category})
}

// UpdateCategory updates an existing category.
func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var category models.Category
	if err := h.db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "category not found")
		}
		return err
	}

	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name != "" {
		category.Name = req.Name
	}
	category.ParentID = req.ParentID
	if err := h.db.Save(&category).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": category})
}

// DeleteCategory removes a category by id.
func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Delete(&models.Category{}, "id = ?", id).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Category deleted"})
}

// ListModifications returns all global add-ons.
func (h *CatalogHandler) ListModifications(c *fiber.Ctx) error {
	var modifications []models.Modification
	if err := h.db.Find(&modifications).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": modifications})
}

// GetModification returns a single modification.
func (h *CatalogHandler) GetModification(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var modification models.Modification
	if err := h.db.First(&modification, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "modification not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": modification})
}

// CreateModification persists a new modification.
func (h *CatalogHandler) CreateModification(c *fiber.Ctx) error {
	var modification models.Modification
	if err := c.BodyParser(&modification); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if modification.Title == "" {
		return fiber.NewError(fiber.StatusBadRequest, "title is required")
	}

	if err := h.db.Create(&modification).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": modification})
}

// UpdateModification updates an existing modification.
func (h *CatalogHandler) UpdateModification(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var modification models.Modification
	if err := h.db.First(&modification, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "modification not found")
		}
		return err
	}

	var payload models.Modification
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	payload.ID = modification.ID
	if err := h.db.Model(&modification).Updates(payload).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": modification})
}

// DeleteModification removes a modification by id.
func (h *CatalogHandler) DeleteModification(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	result := h.db.Delete(&models.Modification{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "modification not found")
	}

	return c.JSON(fiber.Map{"message": "Modification deleted"})
}

// ListBranches returns all branches.
func (h *CatalogHandler) ListBranches(c *fiber.Ctx) error {
	var branches []models.Branch
	if err := h.db.Order("id asc").Find(&branches).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": branches})
}

// CreateBranch persists a new branch.
func (h *CatalogHandler) CreateBranch(c *fiber.Ctx) error {
	var branch models.Branch
	if err := c.BodyParser(&branch); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if branch.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}

	if err := h.db.Create(&branch).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": branch})
}
