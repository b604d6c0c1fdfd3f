// document_service.go
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

package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-app/custodia/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DocumentInput is the payload for creating a document. StoragePaths must
// already exist in the blob store: the upload happens before the row insert,
// and a failed upload aborts the whole flow in the handler.
type DocumentInput struct {
	Title        string
	Tags         []string
	StoragePaths []string
	AssetID      string
}

// CreateDocument validates and inserts a new document row.
func CreateDocument(db *gorm.DB, in DocumentInput) (*models.Document, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	document := models.Document{
		Title:       strings.TrimSpace(in.Title),
		StoragePath: models.EncodeStoragePaths(in.StoragePaths),
	}

	if len(in.Tags) > 0 {
		// Tags stay an ordered list; duplicates are allowed.
		b, err := json.Marshal(in.Tags)
		if err != nil {
			return nil, err
		}
		document.Tags = models.JSON{JSON: datatypes.JSON(b)}
	}

	if in.AssetID != "" {
		if _, err := GetAsset(db, in.AssetID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("%w: unknown asset %q", ErrValidation, in.AssetID)
			}
			return nil, err
		}
		assetID := in.AssetID
		document.AssetID = &assetID
	}

	if err := db.Create(&document).Error; err != nil {
		return nil, err
	}
	return &document, nil
}

// GetDocument retrieves a single document by id.
func GetDocument(db *gorm.DB, id string) (*models.Document, error) {
	var document models.Document
	if err := db.Where("id = ?", id).First(&document).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &document, nil
}

// ListDocuments returns documents newest first, optionally filtered by
// primary asset and/or tags. Tag filtering happens in memory: the tags column
// is a JSON list and the filter set is small.
func ListDocuments(db *gorm.DB, assetID string, tags []string) ([]models.Document, error) {
	query := db.Order("created_at DESC")
	if assetID != "" {
		query = query.Where("asset_id = ?", assetID)
	}

	var documents []models.Document
	if err := query.Find(&documents).Error; err != nil {
		return nil, err
	}

	if len(tags) == 0 {
		return documents, nil
	}

	filtered := make([]models.Document, 0, len(documents))
	for _, doc := range documents {
		if hasAnyTag(doc.TagList(), tags) {
			filtered = append(filtered, doc)
		}
	}
	return filtered, nil
}

// DeleteDocument removes a document and its association rows. Join rows go
// first. Blob purging is the caller's concern and best-effort.
func DeleteDocument(db *gorm.DB, id string) (*models.Document, error) {
	document, err := GetDocument(db, id)
	if err != nil {
		return nil, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&models.DeadlineDocument{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Document{}).Error
	})
	if err != nil {
		return nil, err
	}
	return document, nil
}

func hasAnyTag(docTags, wanted []string) bool {
	for _, w := range wanted {
		for _, t := range docTags {
			if strings.EqualFold(t, w) {
				return true
			}
		}
	}
	return false
}
