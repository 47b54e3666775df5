package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/tillpoint/internal/models"
)

func TestUserRoutesEnforcePolicy(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, adminToken := createStaff(t, db, cfg, "admin1", models.RoleAdmin, "1111")
	_, cashierToken := createStaff(t, db, cfg, "cashier1", models.RoleCashier, "")

	resp := doJSON(t, app, http.MethodGet, "/api/users/", cashierToken, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/users/", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, decodeBody(t, resp)["data"].([]interface{}), 2)
}

func TestUpdateUserPartialFields(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, adminToken := createStaff(t, db, cfg, "admin1", models.RoleAdmin, "1111")
	cashier, _ := createStaff(t, db, cfg, "cashier1", models.RoleCashier, "")

	resp := doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/users/%d", cashier.ID), adminToken,
		map[string]interface{}{"name": "Renamed", "email": "renamed@example.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var detail models.UserDetail
	require.NoError(t, db.Where("user_id = ?", cashier.ID).First(&detail).Error)
	require.Equal(t, "Renamed", detail.Name)
	require.Equal(t, "renamed@example.com", detail.Email)
	require.Equal(t, "EMP-cashier1", detail.EmployeeID)
}

func TestDeactivateUser(t *testing.T) {
	app, db, cfg := newTestApp(t)
	admin, adminToken := createStaff(t, db, cfg, "admin1", models.RoleAdmin, "1111")
	cashier, _ := createStaff(t, db, cfg, "cashier1", models.RoleCashier, "")

	resp := doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/users/%d/deactivate", admin.ID), adminToken, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/users/%d/deactivate", cashier.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.User
	require.NoError(t, db.First(&updated, "id = ?", cashier.ID).Error)
	require.Equal(t, models.UserStatusInactive, updated.Status)

	// A deactivated account can no longer sign in.
	resp = doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"username": "cashier1",
		"password": "secret123",
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}
