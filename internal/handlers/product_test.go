package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/tillpoint/internal/handlers"
	"github.com/example/tillpoint/internal/models"
)

func TestCreateProductWithNestedTrees(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := createStaff(t, db, cfg, "manager1", models.RoleManager, "4321")
	require.NoError(t, db.Create(&models.Branch{Name: "Riverside"}).Error)

	modification := models.Modification{Title: "Extra shot"}
	require.NoError(t, db.Create(&modification).Error)

	resp := doJSON(t, app, http.MethodPost, "/api/products/", token, map[string]interface{}{
		"name": "Flat White",
		"code": "CF-01",
		"sku":  "SKU-CF-01",
		"variations": []map[string]interface{}{
			{
				"name": "Regular",
				"prices": []map[string]interface{}{
					{"branchId": 1, "price": "3.50"},
					{"branchId": 2, "price": "3.80"},
				},
			},
		},
		"modifications": []map[string]interface{}{
			{
				"modificationId": modification.ID,
				"prices": []map[string]interface{}{
					{"branchId": 1, "price": "0.50"},
				},
			},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var priceCount int64
	require.NoError(t, db.Model(&models.VariationPrice{}).Count(&priceCount).Error)
	require.Equal(t, int64(2), priceCount)
}

func TestGetProductNarrowsPricesByBranch(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := createStaff(t, db, cfg, "manager1", models.RoleManager, "4321")
	product, _, _ := seedCatalog(t, db)

	resp := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/products/%d?branch=2", product.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := decodeBody(t, resp)["data"].(map[string]interface{})
	variations := data["variations"].([]interface{})
	require.Len(t, variations, 1)

	prices := variations[0].(map[string]interface{})["prices"].([]interface{})
	require.Len(t, prices, 1)
	price := prices[0].(map[string]interface{})
	require.Equal(t, float64(2), price["branchId"])
	requireDecimal(t, "11.00", price["price"])

	// The modification pairing is only priced at branch 1.
	pairings := data["modifications"].([]interface{})
	require.Len(t, pairings, 1)
	require.Empty(t, pairings[0].(map[string]interface{})["prices"])
}

func TestResolveVariationPriceHasNoFallback(t *testing.T) {
	_, db, _ := newTestApp(t)
	_, variation, _ := seedCatalog(t, db)

	price, err := handlers.ResolveVariationPrice(db, variation.ID, 1)
	require.NoError(t, err)
	requireDecimal(t, "10.50", price.Price)

	_, err = handlers.ResolveVariationPrice(db, variation.ID, 99)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUpdateProductReplacesVariations(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := createStaff(t, db, cfg, "manager1", models.RoleManager, "4321")
	product, _, _ := seedCatalog(t, db)

	resp := doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/products/%d", product.ID), token, map[string]interface{}{
		"name": "Margherita",
		"code": "PZ-01",
		"sku":  "SKU-PZ-01",
		"variations": []map[string]interface{}{
			{
				"name": "Family",
				"prices": []map[string]interface{}{
					{"branchId": 1, "price": "18.00"},
				},
			},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var variations []models.Variation
	require.NoError(t, db.Where("product_id = ?", product.ID).Find(&variations).Error)
	require.Len(t, variations, 1)
	require.Equal(t, "Family", variations[0].Name)

	var pairingCount int64
	require.NoError(t, db.Model(&models.ProductModification{}).
		Where("product_id = ?", product.ID).Count(&pairingCount).Error)
	require.Zero(t, pairingCount)
}

func TestListProductsSearch(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := createStaff(t, db, cfg, "manager1", models.RoleManager, "4321")
	seedCatalog(t, db)
	require.NoError(t, db.Create(&models.Product{Name: "Lemonade", Code: "DR-01", SKU: "SKU-DR-01"}).Error)

	resp := doJSON(t, app, http.MethodGet, "/api/products/?search=margh", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].([]interface{})
	require.Len(t, data, 1)
	require.Equal(t, "Margherita", data[0].(map[string]interface{})["name"])
}
