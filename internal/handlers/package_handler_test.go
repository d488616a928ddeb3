package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/alimrdn/solarportal/internal/models"
)

func seedPackage(t *testing.T, db *gorm.DB, name string, price int64, active bool) models.ElectricityPackage {
	t.Helper()

	pkg := models.ElectricityPackage{
		Name:           name,
		KwhAmount:      500,
		DurationMonths: 12,
		Price:          price,
		Active:         active,
	}
	require.NoError(t, db.Create(&pkg).Error)
	return pkg
}

func TestListPackagesActiveOnly(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db, nil)
	seedPackage(t, db, "starter", 1000000, true)
	seedPackage(t, db, "retired", 500000, false)

	w := doRequest(r, http.MethodGet, "/v1/packages", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	packages := body["packages"].([]interface{})
	require.Len(t, packages, 1)
	first := packages[0].(map[string]interface{})
	assert.Equal(t, "starter", first["name"])
}

func TestAdminPackageCRUD(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db, nil)
	admin := createTestUser(t, db, "admin@example.com", models.RoleAdmin)
	token := authToken(t, admin)

	w := doRequest(r, http.MethodPost, "/v1/admin/packages", token,
		`{"name":"family","kwh_amount":800,"duration_months":12,"price":2500000}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var pkg models.ElectricityPackage
	require.NoError(t, db.Where("name = ?", "family").First(&pkg).Error)
	assert.True(t, pkg.Active)

	w = doRequest(r, http.MethodPut, "/v1/admin/packages/"+pkg.ID.String(), token,
		`{"name":"family","kwh_amount":800,"duration_months":12,"price":2500000,"active":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, db.First(&pkg, pkg.ID).Error)
	assert.False(t, pkg.Active)

	w = doRequest(r, http.MethodDelete, "/v1/admin/packages/"+pkg.ID.String(), token, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreatePurchaseFromPackage(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db, nil)
	admin := createTestUser(t, db, "admin@example.com", models.RoleAdmin)
	buyer := createTestUser(t, db, "buyer@example.com", models.RoleUser)
	pkg := seedPackage(t, db, "starter", 1000000, true)

	w := doRequest(r, http.MethodPost, "/v1/admin/purchases", authToken(t, admin),
		`{"user_id":"`+buyer.ID.String()+`","package_id":"`+pkg.ID.String()+`"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var purchase models.Purchase
	require.NoError(t, db.Where("user_id = ?", buyer.ID).First(&purchase).Error)
	assert.Equal(t, pkg.Price, purchase.Amount)
	require.NotNil(t, purchase.ExpiryDate)

	// The buyer sees it in their own history; others do not.
	w = doRequest(r, http.MethodGet, "/v1/purchases", authToken(t, buyer), "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Len(t, body["purchases"].([]interface{}), 1)

	other := createTestUser(t, db, "other@example.com", models.RoleUser)
	w = doRequest(r, http.MethodGet, "/v1/purchases", authToken(t, other), "")
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	assert.Empty(t, body["purchases"])
}

func TestCreatePurchaseInactivePackage(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db, nil)
	admin := createTestUser(t, db, "admin@example.com", models.RoleAdmin)
	buyer := createTestUser(t, db, "buyer@example.com", models.RoleUser)
	pkg := seedPackage(t, db, "retired", 500000, false)

	w := doRequest(r, http.MethodPost, "/v1/admin/purchases", authToken(t, admin),
		`{"user_id":"`+buyer.ID.String()+`","package_id":"`+pkg.ID.String()+`"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
