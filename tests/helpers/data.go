// data.go
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

package helpers

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/custodia-app/custodia/internal/models"
	"github.com/custodia-app/custodia/internal/services"
)

// CreateTestAsset creates an asset row and returns it
func CreateTestAsset(t *testing.T, db *gorm.DB, category, name string) *models.Asset {
	t.Helper()
	asset, err := services.CreateAsset(db, services.AssetInput{
		Category: category,
		Name:     name,
	})
	if err != nil {
		t.Fatalf("Failed to create asset %s: %v", name, err)
	}
	return asset
}

// CreateTestDeadline creates a deadline row, optionally recurring
func CreateTestDeadline(t *testing.T, db *gorm.DB, title string, dueAt time.Time, rule string) *models.Deadline {
	t.Helper()
	deadline, err := services.CreateDeadline(db, services.DeadlineInput{
		Title:          title,
		DueAt:          dueAt,
		RecurrenceRule: rule,
	})
	if err != nil {
		t.Fatalf("Failed to create deadline %s: %v", title, err)
	}
	return deadline
}

// CreateTestDocument creates a document row with the given tags
func CreateTestDocument(t *testing.T, db *gorm.DB, title string, tags ...string) *models.Document {
	t.Helper()
	document, err := services.CreateDocument(db, services.DocumentInput{
		Title: title,
		Tags:  tags,
	})
	if err != nil {
		t.Fatalf("Failed to create document %s: %v", title, err)
	}
	return document
}

// LinkDeadline associates assets and documents with a deadline
func LinkDeadline(t *testing.T, db *gorm.DB, deadlineID string, assetIDs, documentIDs []string) int64 {
	t.Helper()
	created, err := services.Associate(db, deadlineID, assetIDs, documentIDs)
	if err != nil {
		t.Fatalf("Failed to associate deadline %s: %v", deadlineID, err)
	}
	return created
}
