package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/custodia-app/custodia/internal/handlers"
	"github.com/custodia-app/custodia/internal/models"
	"github.com/custodia-app/custodia/tests/helpers"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	// Auto-migrate models
	err = db.AutoMigrate(
		&models.Asset{},
		&models.Deadline{},
		&models.Document{},
		&models.DeadlineAsset{},
		&models.DeadlineDocument{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// setupAssetApp wires the asset routes the way cmd/server does
func setupAssetApp(db *gorm.DB) *fiber.App {
	app := fiber.New()
	handler := &handlers.AssetHandler{DB: db}
	app.Post("/api/assets", handler.CreateAsset)
	app.Get("/api/assets", handler.ListAssets)
	app.Get("/api/assets/:id", handler.GetAsset)
	app.Put("/api/assets/:id", handler.UpdateAsset)
	app.Delete("/api/assets/:id", handler.DeleteAsset)
	app.Get("/api/icons", handler.ListIcons)
	return app
}

// TestCreateAsset tests the POST /api/assets endpoint
func TestCreateAsset(t *testing.T) {
	db := setupTestDB(t)
	app := setupAssetApp(db)

	body, _ := json.Marshal(map[string]string{
		"category":   "vehicles",
		"name":       "Fiat Panda",
		"identifier": "AB123CD",
	})
	req := httptest.NewRequest("POST", "/api/assets", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 201)

	var result map[string]interface{}
	helpers.ParseJSON(t, resp, &result)

	if result["name"] != "Fiat Panda" {
		t.Errorf("Expected name 'Fiat Panda', got %v", result["name"])
	}
	if result["category"] != "vehicles" {
		t.Errorf("Expected category 'vehicles', got %v", result["category"])
	}
	// No custom icon, so the category default applies
	if result["display_icon"] != "car" {
		t.Errorf("Expected display_icon 'car', got %v", result["display_icon"])
	}
	if result["id"] == nil || result["id"] == "" {
		t.Error("Expected a server-assigned id")
	}
}

// TestCreateAssetLegacyCategory tests that legacy category aliases are normalized
func TestCreateAssetLegacyCategory(t *testing.T) {
	db := setupTestDB(t)
	app := setupAssetApp(db)

	body, _ := json.Marshal(map[string]string{
		"category": "car",
		"name":     "Old Beetle",
	})
	req := httptest.NewRequest("POST", "/api/assets", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 201)

	var result map[string]interface{}
	helpers.ParseJSON(t, resp, &result)

	if result["category"] != "vehicles" {
		t.Errorf("Expected legacy 'car' to normalize to 'vehicles', got %v", result["category"])
	}
}

// TestCreateAssetRejectsUnknownCategory tests category validation
func TestCreateAssetRejectsUnknownCategory(t *testing.T) {
	db := setupTestDB(t)
	app := setupAssetApp(db)

	body, _ := json.Marshal(map[string]string{
		"category": "spaceships",
		"name":     "Rocinante",
	})
	req := httptest.NewRequest("POST", "/api/assets", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 400)
}

// TestListAssetsByCategory tests the category filter, including alias input
func TestListAssetsByCategory(t *testing.T) {
	db := setupTestDB(t)
	app := setupAssetApp(db)

	helpers.CreateTestAsset(t, db, "vehicles", "Fiat Panda")
	helpers.CreateTestAsset(t, db, "vehicles", "Bicycle")
	helpers.CreateTestAsset(t, db, "properties", "Lake House")

	// Legacy alias in the query resolves to the canonical category
	req := httptest.NewRequest("GET", "/api/assets?category=car", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	var result []map[string]interface{}
	helpers.ParseJSON(t, resp, &result)

	if len(result) != 2 {
		t.Fatalf("Expected 2 vehicles, got %d", len(result))
	}
	// Listing is ordered by name
	if result[0]["name"] != "Bicycle" || result[1]["name"] != "Fiat Panda" {
		t.Errorf("Expected name order [Bicycle, Fiat Panda], got [%v, %v]", result[0]["name"], result[1]["name"])
	}
}

// TestGetAssetNotFound tests the 404 envelope
func TestGetAssetNotFound(t *testing.T) {
	db := setupTestDB(t)
	app := setupAssetApp(db)

	req := httptest.NewRequest("GET", "/api/assets/00000000-0000-0000-0000-000000000000", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 404)

	var result map[string]interface{}
	helpers.ParseJSON(t, resp, &result)
	if result["ok"] != false {
		t.Errorf("Expected ok=false in error envelope, got %v", result["ok"])
	}
}

// TestUpdateAssetClearsIcon tests that an explicit empty icon falls back to the default
func TestUpdateAssetClearsIcon(t *testing.T) {
	db := setupTestDB(t)
	app := setupAssetApp(db)

	asset := helpers.CreateTestAsset(t, db, "animals", "Rex")
	db.Model(asset).Update("icon", "medical")

	body := []byte(`{"icon": ""}`)
	req := httptest.NewRequest("PUT", "/api/assets/"+asset.ID, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	var result map[string]interface{}
	helpers.ParseJSON(t, resp, &result)
	if result["display_icon"] != "paw" {
		t.Errorf("Expected display_icon to fall back to 'paw', got %v", result["display_icon"])
	}
}

// TestDeleteAssetCascades tests that deleting an asset removes its join rows
// and detaches deadlines and documents that referenced it
func TestDeleteAssetCascades(t *testing.T) {
	db := setupTestDB(t)
	app := setupAssetApp(db)

	asset := helpers.CreateTestAsset(t, db, "vehicles", "Fiat Panda")
	deadline := helpers.CreateTestDeadline(t, db, "Revisione", testDueDate(t, "2026-03-15"), "")
	db.Model(deadline).Update("asset_id", asset.ID)
	helpers.LinkDeadline(t, db, deadline.ID, []string{asset.ID}, nil)

	req := httptest.NewRequest("DELETE", "/api/assets/"+asset.ID, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	// Join rows are gone
	var joinCount int64
	db.Model(&models.DeadlineAsset{}).Where("asset_id = ?", asset.ID).Count(&joinCount)
	if joinCount != 0 {
		t.Errorf("Expected 0 join rows after asset delete, got %d", joinCount)
	}

	// The deadline survives but is detached
	var survivor models.Deadline
	if err := db.First(&survivor, "id = ?", deadline.ID).Error; err != nil {
		t.Fatalf("Deadline should survive asset delete: %v", err)
	}
	if survivor.AssetID != nil {
		t.Errorf("Expected deadline asset_id to be nulled, got %v", *survivor.AssetID)
	}

	// Deleting again is a 404
	req = httptest.NewRequest("DELETE", "/api/assets/"+asset.ID, nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 404)
}

// TestListIcons tests the GET /api/icons endpoint
func TestListIcons(t *testing.T) {
	db := setupTestDB(t)
	app := setupAssetApp(db)

	req := httptest.NewRequest("GET", "/api/icons", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	var result []string
	helpers.ParseJSON(t, resp, &result)
	if len(result) == 0 {
		t.Fatal("Expected a non-empty icon list")
	}
	found := false
	for _, key := range result {
		if key == "car" {
			found = true
			break
		}
	}
	if !found {
		t.Error("Expected 'car' in the icon list")
	}
}
