// deadline_handlers_test.go
//
// Custodia - self-hosted personal asset and deadline tracking service
// Copyright (c) 2026 Custodia Authors
//
// This file is part of custodia.
// custodia is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// custodia is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with custodia.
// If not, see <https://www.gnu.org/licenses/>.

package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/custodia-app/custodia/internal/handlers"
	"github.com/custodia-app/custodia/internal/models"
	"github.com/custodia-app/custodia/tests/helpers"
)

// testDueDate parses a date-only due date the way clients send them
func testDueDate(t *testing.T, value string) time.Time {
	t.Helper()
	due, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("Bad test date %s: %v", value, err)
	}
	return due
}

// setupDeadlineApp wires the deadline routes the way cmd/server does
func setupDeadlineApp(db *gorm.DB) *fiber.App {
	app := fiber.New()
	handler := &handlers.DeadlineHandler{DB: db}
	app.Post("/api/deadlines", handler.CreateDeadline)
	app.Get("/api/deadlines", handler.ListDeadlines)
	app.Get("/api/deadlines/:id", handler.GetDeadline)
	app.Put("/api/deadlines/:id", handler.UpdateDeadline)
	app.Delete("/api/deadlines/:id", handler.DeleteDeadline)
	app.Post("/api/deadlines/:id/toggle", handler.ToggleDeadline)
	app.Get("/api/deadlines/:id/next", handler.NextOccurrence)
	app.Get("/api/deadlines/:id/associations", handler.GetAssociations)
	app.Post("/api/deadlines/:id/associations", handler.Associate)
	app.Delete("/api/deadlines/:id/associations/assets/:assetId", handler.DissociateAsset)
	app.Delete("/api/deadlines/:id/associations/documents/:documentId", handler.DissociateDocument)
	return app
}

// TestCreateDeadlineDateOnly tests that date-only due dates are accepted
func TestCreateDeadlineDateOnly(t *testing.T) {
	db := setupTestDB(t)
	app := setupDeadlineApp(db)

	body, _ := json.Marshal(map[string]string{
		"title":           "Revisione",
		"due_at":          "2026-03-15",
		"recurrence_rule": "FREQ=YEARLY;INTERVAL=2",
	})
	req := httptest.NewRequest("POST", "/api/deadlines", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 201)

	var result map[string]interface{}
	helpers.ParseJSON(t, resp, &result)
	if result["status"] != "pending" {
		t.Errorf("Expected status 'pending', got %v", result["status"])
	}
	// Recurrence anchors base_due_at at the due date
	if result["base_due_at"] == nil {
		t.Error("Expected base_due_at to be set for a recurring deadline")
	}
}

// TestCreateDeadlineRequiresTitle tests validation
func TestCreateDeadlineRequiresTitle(t *testing.T) {
	db := setupTestDB(t)
	app := setupDeadlineApp(db)

	body, _ := json.Marshal(map[string]string{"due_at": "2026-03-15"})
	req := httptest.NewRequest("POST", "/api/deadlines", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 400)
}

// TestToggleDeadline tests that toggling is an involution and never moves due_at
func TestToggleDeadline(t *testing.T) {
	db := setupTestDB(t)
	app := setupDeadlineApp(db)

	deadline := helpers.CreateTestDeadline(t, db, "Bollo auto", testDueDate(t, "2026-01-31"), "FREQ=YEARLY")
	originalDue := deadline.DueAt

	// pending -> done
	req := httptest.NewRequest("POST", "/api/deadlines/"+deadline.ID+"/toggle", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	var result map[string]interface{}
	helpers.ParseJSON(t, resp, &result)
	if result["status"] != "done" {
		t.Errorf("Expected status 'done', got %v", result["status"])
	}
	if result["completed_at"] == nil {
		t.Error("Expected completed_at to be set when done")
	}

	// Completing a recurring deadline never advances the due date
	var row models.Deadline
	if err := db.First(&row, "id = ?", deadline.ID).Error; err != nil {
		t.Fatalf("Failed to reload deadline: %v", err)
	}
	if !row.DueAt.Equal(originalDue) {
		t.Errorf("Expected due_at unchanged (%v), got %v", originalDue, row.DueAt)
	}

	// done -> pending clears completed_at
	req = httptest.NewRequest("POST", "/api/deadlines/"+deadline.ID+"/toggle", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)
	helpers.ParseJSON(t, resp, &result)
	if result["status"] != "pending" {
		t.Errorf("Expected status 'pending' after second toggle, got %v", result["status"])
	}
	if result["completed_at"] != nil {
		t.Errorf("Expected completed_at cleared, got %v", result["completed_at"])
	}
}

// TestToggleSkippedBecomesDone tests that toggle moves any non-done status to done
func TestToggleSkippedBecomesDone(t *testing.T) {
	db := setupTestDB(t)
	app := setupDeadlineApp(db)

	deadline := helpers.CreateTestDeadline(t, db, "Vaccino Rex", testDueDate(t, "2026-02-01"), "")

	// skipped is only reachable through the direct update path
	body := []byte(`{"status": "skipped"}`)
	req := httptest.NewRequest("PUT", "/api/deadlines/"+deadline.ID, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	req = httptest.NewRequest("POST", "/api/deadlines/"+deadline.ID+"/toggle", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	var result map[string]interface{}
	helpers.ParseJSON(t, resp, &result)
	if result["status"] != "done" {
		t.Errorf("Expected skipped deadline to toggle to 'done', got %v", result["status"])
	}
}

// TestNextOccurrence tests the recurrence resolver endpoint
func TestNextOccurrence(t *testing.T) {
	db := setupTestDB(t)
	app := setupDeadlineApp(db)

	recurring := helpers.CreateTestDeadline(t, db, "Rata mutuo", testDueDate(t, "2026-01-31"), "FREQ=MONTHLY;INTERVAL=3")
	oneShot := helpers.CreateTestDeadline(t, db, "Disdetta", testDueDate(t, "2026-06-01"), "")

	req := httptest.NewRequest("GET", "/api/deadlines/"+recurring.ID+"/next", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	var result map[string]interface{}
	helpers.ParseJSON(t, resp, &result)
	if result["recurring"] != true {
		t.Fatalf("Expected recurring=true, got %v", result["recurring"])
	}
	// Jan 31 + 3 months clamps to the end of April
	next, err := time.Parse(time.RFC3339, result["next_due"].(string))
	if err != nil {
		t.Fatalf("Bad next_due %v: %v", result["next_due"], err)
	}
	if next.Month() != time.April || next.Day() != 30 {
		t.Errorf("Expected Apr 30, got %v", next)
	}

	req = httptest.NewRequest("GET", "/api/deadlines/"+oneShot.ID+"/next", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)
	helpers.ParseJSON(t, resp, &result)
	if result["recurring"] != false {
		t.Errorf("Expected recurring=false for a one-shot deadline, got %v", result["recurring"])
	}
}

// TestUpdateDeadlineClearsRecurrence tests that an empty rule disables recurrence
func TestUpdateDeadlineClearsRecurrence(t *testing.T) {
	db := setupTestDB(t)
	app := setupDeadlineApp(db)

	deadline := helpers.CreateTestDeadline(t, db, "Assicurazione", testDueDate(t, "2026-05-10"), "FREQ=YEARLY")

	body := []byte(`{"recurrence_rule": ""}`)
	req := httptest.NewRequest("PUT", "/api/deadlines/"+deadline.ID, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	var row models.Deadline
	if err := db.First(&row, "id = ?", deadline.ID).Error; err != nil {
		t.Fatalf("Failed to reload deadline: %v", err)
	}
	if row.RecurrenceRule != nil {
		t.Errorf("Expected recurrence_rule cleared, got %v", *row.RecurrenceRule)
	}
	if row.BaseDueAt != nil {
		t.Errorf("Expected base_due_at cleared, got %v", *row.BaseDueAt)
	}
}

// TestListDeadlinesFilters tests the status filter and due-date ordering
func TestListDeadlinesFilters(t *testing.T) {
	db := setupTestDB(t)
	app := setupDeadlineApp(db)

	later := helpers.CreateTestDeadline(t, db, "Later", testDueDate(t, "2026-09-01"), "")
	sooner := helpers.CreateTestDeadline(t, db, "Sooner", testDueDate(t, "2026-03-01"), "")
	done := helpers.CreateTestDeadline(t, db, "Done already", testDueDate(t, "2026-01-01"), "")

	req := httptest.NewRequest("POST", "/api/deadlines/"+done.ID+"/toggle", nil)
	if _, err := app.Test(req); err != nil {
		t.Fatalf("Failed to toggle: %v", err)
	}

	req = httptest.NewRequest("GET", "/api/deadlines?status=pending", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	var result []map[string]interface{}
	helpers.ParseJSON(t, resp, &result)
	if len(result) != 2 {
		t.Fatalf("Expected 2 pending deadlines, got %d", len(result))
	}
	if result[0]["id"] != sooner.ID || result[1]["id"] != later.ID {
		t.Errorf("Expected due-date order [%s, %s], got [%v, %v]", sooner.ID, later.ID, result[0]["id"], result[1]["id"])
	}
}

// TestDeleteDeadlineCascades tests that deleting a deadline removes its join rows
func TestDeleteDeadlineCascades(t *testing.T) {
	db := setupTestDB(t)
	app := setupDeadlineApp(db)

	asset := helpers.CreateTestAsset(t, db, "vehicles", "Fiat Panda")
	document := helpers.CreateTestDocument(t, db, "Libretto", "auto")
	deadline := helpers.CreateTestDeadline(t, db, "Revisione", testDueDate(t, "2026-03-15"), "")
	helpers.LinkDeadline(t, db, deadline.ID, []string{asset.ID}, []string{document.ID})

	req := httptest.NewRequest("DELETE", "/api/deadlines/"+deadline.ID, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	var assetJoins, documentJoins int64
	db.Model(&models.DeadlineAsset{}).Where("deadline_id = ?", deadline.ID).Count(&assetJoins)
	db.Model(&models.DeadlineDocument{}).Where("deadline_id = ?", deadline.ID).Count(&documentJoins)
	if assetJoins != 0 || documentJoins != 0 {
		t.Errorf("Expected all join rows removed, got %d asset and %d document joins", assetJoins, documentJoins)
	}

	// The linked entities survive
	var assetCount, documentCount int64
	db.Model(&models.Asset{}).Where("id = ?", asset.ID).Count(&assetCount)
	db.Model(&models.Document{}).Where("id = ?", document.ID).Count(&documentCount)
	if assetCount != 1 || documentCount != 1 {
		t.Errorf("Expected linked entities to survive, got asset=%d document=%d", assetCount, documentCount)
	}
}

// TestAssociateIdempotent tests that re-linking the same pair creates nothing new
func TestAssociateIdempotent(t *testing.T) {
	db := setupTestDB(t)
	app := setupDeadlineApp(db)

	asset := helpers.CreateTestAsset(t, db, "vehicles", "Fiat Panda")
	document := helpers.CreateTestDocument(t, db, "Libretto", "auto")
	deadline := helpers.CreateTestDeadline(t, db, "Revisione", testDueDate(t, "2026-03-15"), "")

	// Single string id exercises the tolerant list decoding
	body := []byte(`{"asset_ids": "` + asset.ID + `", "document_ids": ["` + document.ID + `"]}`)
	req := httptest.NewRequest("POST", "/api/deadlines/"+deadline.ID+"/associations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	var result map[string]interface{}
	helpers.ParseJSON(t, resp, &result)
	if result["affectedRows"] != float64(2) {
		t.Errorf("Expected 2 created links, got %v", result["affectedRows"])
	}

	// Second call with the same payload is a no-op
	req = httptest.NewRequest("POST", "/api/deadlines/"+deadline.ID+"/associations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)
	helpers.ParseJSON(t, resp, &result)
	if result["affectedRows"] != float64(0) {
		t.Errorf("Expected 0 created links on repeat, got %v", result["affectedRows"])
	}

	var joinCount int64
	db.Model(&models.DeadlineAsset{}).Where("deadline_id = ?", deadline.ID).Count(&joinCount)
	if joinCount != 1 {
		t.Errorf("Expected exactly 1 asset join row, got %d", joinCount)
	}
}

// TestAssociateSkipsDeadIds tests that ids without a live row are ignored
func TestAssociateSkipsDeadIds(t *testing.T) {
	db := setupTestDB(t)
	app := setupDeadlineApp(db)

	asset := helpers.CreateTestAsset(t, db, "devices", "Laptop")
	deadline := helpers.CreateTestDeadline(t, db, "Garanzia", testDueDate(t, "2026-10-01"), "")

	body := []byte(`{"asset_ids": ["` + asset.ID + `", "00000000-0000-0000-0000-000000000000"]}`)
	req := httptest.NewRequest("POST", "/api/deadlines/"+deadline.ID+"/associations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	var result map[string]interface{}
	helpers.ParseJSON(t, resp, &result)
	if result["affectedRows"] != float64(1) {
		t.Errorf("Expected only the live id to link, got %v", result["affectedRows"])
	}
}

// TestGetAssociationsAndDissociate tests the round trip of linking and unlinking
func TestGetAssociationsAndDissociate(t *testing.T) {
	db := setupTestDB(t)
	app := setupDeadlineApp(db)

	asset := helpers.CreateTestAsset(t, db, "vehicles", "Fiat Panda")
	document := helpers.CreateTestDocument(t, db, "Libretto", "auto")
	deadline := helpers.CreateTestDeadline(t, db, "Revisione", testDueDate(t, "2026-03-15"), "")
	helpers.LinkDeadline(t, db, deadline.ID, []string{asset.ID}, []string{document.ID})

	req := httptest.NewRequest("GET", "/api/deadlines/"+deadline.ID+"/associations", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	var relations struct {
		Assets    []models.Asset    `json:"assets"`
		Documents []models.Document `json:"documents"`
	}
	helpers.ParseJSON(t, resp, &relations)
	if len(relations.Assets) != 1 || len(relations.Documents) != 1 {
		t.Fatalf("Expected 1 asset and 1 document, got %d and %d", len(relations.Assets), len(relations.Documents))
	}
	if relations.Assets[0].Name != "Fiat Panda" {
		t.Errorf("Expected resolved asset row, got %+v", relations.Assets[0])
	}

	// Unlink the asset; the document link stays
	req = httptest.NewRequest("DELETE", "/api/deadlines/"+deadline.ID+"/associations/assets/"+asset.ID, nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	// Unlinking an absent pair is not an error
	req = httptest.NewRequest("DELETE", "/api/deadlines/"+deadline.ID+"/associations/assets/"+asset.ID, nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	req = httptest.NewRequest("GET", "/api/deadlines/"+deadline.ID+"/associations", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.ParseJSON(t, resp, &relations)
	if len(relations.Assets) != 0 || len(relations.Documents) != 1 {
		t.Errorf("Expected 0 assets and 1 document after dissociate, got %d and %d", len(relations.Assets), len(relations.Documents))
	}
}
