// asset_service.go
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
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-app/custodia/internal/models"
	"gorm.io/gorm"
)

// AssetInput is the payload for creating an asset.
type AssetInput struct {
	Category   string `json:"category"`
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
	Icon       string `json:"icon"`
}

// AssetUpdate is the payload for partially updating an asset. Nil fields are
// left untouched; an explicit empty string clears Identifier or Icon.
type AssetUpdate struct {
	Category   *string `json:"category"`
	Name       *string `json:"name"`
	Identifier *string `json:"identifier"`
	Icon       *string `json:"icon"`
}

// CreateAsset validates and inserts a new asset.
func CreateAsset(db *gorm.DB, in AssetInput) (*models.Asset, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	category, ok := models.NormalizeCategory(in.Category)
	if !ok {
		return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, in.Category)
	}

	asset := models.Asset{
		Category:   category,
		Name:       strings.TrimSpace(in.Name),
		Identifier: strings.TrimSpace(in.Identifier),
		Icon:       in.Icon,
	}
	if err := db.Create(&asset).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

// GetAsset retrieves a single asset by id.
func GetAsset(db *gorm.DB, id string) (*models.Asset, error) {
	var asset models.Asset
	if err := db.Where("id = ?", id).First(&asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &asset, nil
}

// ListAssets returns all assets, optionally filtered by category (legacy
// aliases accepted), ordered by name.
func ListAssets(db *gorm.DB, category string) ([]models.Asset, error) {
	query := db.Order("name ASC")
	if category != "" {
		norm, ok := models.NormalizeCategory(category)
		if !ok {
			return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, category)
		}
		query = query.Where("category = ?", norm)
	}

	var assets []models.Asset
	if err := query.Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}

// UpdateAsset applies a partial update. updated_at is refreshed on every
// mutation by GORM's Save.
func UpdateAsset(db *gorm.DB, id string, upd AssetUpdate) (*models.Asset, error) {
	asset, err := GetAsset(db, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		if strings.TrimSpace(*upd.Name) == "" {
			return nil, fmt.Errorf("%w: name is required", ErrValidation)
		}
		asset.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Category != nil {
		category, ok := models.NormalizeCategory(*upd.Category)
		if !ok {
			return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, *upd.Category)
		}
		asset.Category = category
	}
	if upd.Identifier != nil {
		asset.Identifier = strings.TrimSpace(*upd.Identifier)
	}
	if upd.Icon != nil {
		asset.Icon = *upd.Icon
	}

	if err := db.Save(asset).Error; err != nil {
		return nil, err
	}
	return asset, nil
}

// DeleteAsset removes an asset, its association rows, and nulls the primary
// asset reference on deadlines and documents that pointed at it. The
// deadlines and documents themselves survive as orphans. Runs in a single
// transaction where the dialect supports it.
func DeleteAsset(db *gorm.DB, id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		// Join rows first, then dependents, then the primary row.
		if err := tx.Where("asset_id = ?", id).Delete(&models.DeadlineAsset{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Deadline{}).Where("asset_id = ?", id).
			Update("asset_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Document{}).Where("asset_id = ?", id).
			Update("asset_id", nil).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&models.Asset{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
