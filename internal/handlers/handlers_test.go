package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/tillpoint/internal/config"
	"github.com/example/tillpoint/internal/database"
	"github.com/example/tillpoint/internal/handlers"
	"github.com/example/tillpoint/internal/models"
	"github.com/example/tillpoint/internal/routes"
	"github.com/example/tillpoint/internal/utils"
)

// newTestApp wires the full route tree against an in-memory database with
// foreign keys enforced, mirroring production composition.
func newTestApp(t *testing.T) (*fiber.App, *gorm.DB, *config.Config) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	// One shared connection so every session sees the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(conn))

	cfg := &config.Config{
		AppPort:       "0",
		JWTSecret:     "test-secret",
		TokenExpires:  time.Hour,
		UploadDir:     t.TempDir(),
		UploadBaseURL: "/uploads",
	}

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	routes.Register(app, conn, cfg)

	return app, conn, cfg
}

// createStaff inserts a staff account directly and returns it with a valid
// bearer token. The passcode is only set for admin and manager roles.
func createStaff(t *testing.T, db *gorm.DB, cfg *config.Config, username, role, passcode string) (*models.User, string) {
	t.Helper()

	passwordHash, err := utils.HashPassword("secret123")
	require.NoError(t, err)

	user := models.User{
		Username: username,
		Password: passwordHash,
		Role:     role,
		Status:   models.UserStatusActive,
	}
	if models.IsManagerial(role) && passcode != "" {
		hash, err := utils.HashPassword(passcode)
		require.NoError(t, err)
		user.Passcode = &hash
	}
	require.NoError(t, db.Create(&user).Error)

	detail := models.UserDetail{
		UserID:     user.ID,
		Name:       username,
		EmployeeID: "EMP-" + username,
		BranchID:   1,
	}
	require.NoError(t, db.Create(&detail).Error)
	user.Detail = &detail

	token, err := utils.GenerateToken(cfg.JWTSecret, user.ID, user.Role, cfg.TokenExpires)
	require.NoError(t, err)

	return &user, token
}

// doJSON performs a request against the app and returns the response.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// decodeBody reads the response JSON into a generic map.
func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// requireDecimal asserts a JSON value equals a decimal, tolerating the quoted
// string representation.
func requireDecimal(t *testing.T, want string, got interface{}) {
	t.Helper()

	parsed, err := decimal.NewFromString(fmt.Sprintf("%v", got))
	require.NoError(t, err)
	expected, err := decimal.NewFromString(want)
	require.NoError(t, err)
	require.Truef(t, expected.Equal(parsed), "expected %s, got %s", expected, parsed)
}

// seedCatalog creates a product with one variation priced at two branches and
// one modification pairing, returning the created rows.
func seedCatalog(t *testing.T, db *gorm.DB) (*models.Product, *models.Variation, *models.Modification) {
	t.Helper()

	require.NoError(t, db.Create(&models.Branch{Name: "Riverside"}).Error)

	modification := models.Modification{Title: "Extra cheese", Price: decimal.NewFromFloat(1.00)}
	require.NoError(t, db.Create(&modification).Error)

	product := models.Product{
		Name: "Margherita",
		Code: "PZ-01",
		SKU:  "SKU-PZ-01",
		Variations: []models.Variation{
			{
				Name: "Large",
				Prices: []models.VariationPrice{
					{BranchID: 1, Price: decimal.NewFromFloat(10.50)},
					{BranchID: 2, Price: decimal.NewFromFloat(11.00)},
				},
			},
		},
		Modifications: []models.ProductModification{
			{
				ModificationID: modification.ID,
				Prices: []models.ProductModificationPrice{
					{BranchID: 1, Price: decimal.NewFromFloat(1.00)},
				},
			},
		},
	}
	require.NoError(t, db.Create(&product).Error)

	return &product, &product.Variations[0], &modification
}
