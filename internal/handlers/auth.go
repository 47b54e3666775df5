package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/tillpoint/internal/config"
	"github.com/example/tillpoint/internal/middleware"
	"github.com/example/tillpoint/internal/models"
	"github.com/example/tillpoint/internal/utils"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg}
}

type registerRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Name       string `json:"name"`
	EmployeeID string `json:"employeeId"`
	Email      string `json:"email"`
	BranchID   uint   `json:"branchId"`
	Passcode   string `json:"passcode"`
}

// Register creates a staff account with its detail record.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Username == "" || req.Password == "" || req.Role == "" || req.Name == "" || req.EmployeeID == "" {
		return fiber.NewError(fiber.StatusBadRequest,
			"missing required fields: username, password, role, name, employeeId")
	}

	if !models.IsRole(req.Role) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid role")
	}

	// Passcode is mandatory for admin and manager, absent for everyone else.
	if models.IsManagerial(req.Role) && req.Passcode == "" {
		return fiber.NewError(fiber.StatusBadRequest, "passcode is required for admin and manager roles")
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	var passcodeHash *string
	if models.IsManagerial(req.Role) {
		hashed, err := utils.HashPassword(req.Passcode)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to hash passcode")
		}
		passcodeHash = &hashed
	}

	branchID := req.BranchID
	if branchID == 0 {
		branchID = 1
	}

	user := models.User{
		Username: req.Username,
		Password: passwordHash,
		Role:     req.Role,
		Passcode: passcodeHash,
		Status:   models.UserStatusActive,
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		detail := models.UserDetail{
			UserID:     user.ID,
			Name:       req.Name,
			EmployeeID: req.EmployeeID,
			Email:      req.Email,
			BranchID:   branchID,
		}
		return tx.Create(&detail).Error
	}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fiber.NewError(fiber.StatusBadRequest,
				"username or employee id already exists, try a different value")
		}
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return fiber.NewError(fiber.StatusBadRequest, "branch not found")
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created",
		"userId":  user.ID,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates a staff member and issues a token carrying id and role.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var user models.User
	if err := h.db.Preload("Detail").Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	if user.Status != models.UserStatusActive {
		return fiber.NewError(fiber.StatusForbidden, "account is inactive")
	}

	if !utils.CheckPassword(user.Password, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, user.Role, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  formatUser(&user),
	})
}

// Me returns the authenticated staff member.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	return c.JSON(fiber.Map{"user": formatUser(user)})
}

type verifyPasscodeRequest struct {
	Passcode string `json:"passcode"`
}

// VerifyPasscode checks the caller's own passcode. Only admin and manager
// accounts carry one.
func (h *AuthHandler) VerifyPasscode(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req verifyPasscodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Passcode == "" {
		return fiber.NewError(fiber.StatusBadRequest, "passcode is required")
	}

	if !models.IsManagerial(user.Role) {
		return fiber.NewError(fiber.StatusForbidden, "passcode verification is only for admin and manager")
	}

	if user.Passcode == nil {
		return fiber.NewError(fiber.StatusBadRequest, "no passcode set for this user")
	}

	if !utils.CheckPassword(*user.Passcode, req.Passcode) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid passcode")
	}

	return c.JSON(fiber.Map{"message": "Passcode verified", "verified": true})
}

// formatUser flattens a user and its detail for responses, omitting both
// credential hashes.
func formatUser(user *models.User) fiber.Map {
	resp := fiber.Map{
		"id":       user.ID,
		"username": user.Username,
		"role":     user.Role,
		"status":   user.Status,
	}
	if user.Detail != nil {
		resp["name"] = user.Detail.Name
		resp["employeeId"] = user.Detail.EmployeeID
		resp["email"] = user.Detail.Email
		resp["branchId"] = user.Detail.BranchID
	}
	return resp
}
