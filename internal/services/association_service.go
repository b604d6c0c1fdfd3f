// association_service.go
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
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/custodia-app/custodia/internal/models"
)

// DeadlineRelations holds the fully-resolved entities joined to a deadline.
// Order is not guaranteed.
type DeadlineRelations struct {
	Assets    []models.Asset    `json:"assets"`
	Documents []models.Document `json:"documents"`
}

// Associate links a deadline to the given assets and documents. Already-linked
// pairs and ids that do not reference a live row are skipped, so the call is
// idempotent and never inserts a dangling join. Returns the number of join
// rows actually created.
func Associate(db *gorm.DB, deadlineID string, assetIDs, documentIDs []string) (int64, error) {
	if _, err := GetDeadline(db, deadlineID); err != nil {
		return 0, err
	}

	var created int64
	err := db.Transaction(func(tx *gorm.DB) error {
		if len(assetIDs) > 0 {
			var liveIDs []string
			if err := tx.Model(&models.Asset{}).Where("id IN ?", assetIDs).
				Pluck("id", &liveIDs).Error; err != nil {
				return err
			}
			if len(liveIDs) > 0 {
				rows := make([]models.DeadlineAsset, 0, len(liveIDs))
				for _, id := range liveIDs {
					rows = append(rows, models.DeadlineAsset{DeadlineID: deadlineID, AssetID: id})
				}
				result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
				if result.Error != nil {
					return result.Error
				}
				created += result.RowsAffected
			}
		}

		if len(documentIDs) > 0 {
			var liveIDs []string
			if err := tx.Model(&models.Document{}).Where("id IN ?", documentIDs).
				Pluck("id", &liveIDs).Error; err != nil {
				return err
			}
			if len(liveIDs) > 0 {
				rows := make([]models.DeadlineDocument, 0, len(liveIDs))
				for _, id := range liveIDs {
					rows = append(rows, models.DeadlineDocument{DeadlineID: deadlineID, DocumentID: id})
				}
				result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
				if result.Error != nil {
					return result.Error
				}
				created += result.RowsAffected
			}
		}

		return nil
	})
	return created, err
}

// DissociateAsset removes the single deadline-asset join row. Absence of the
// row is not an error.
func DissociateAsset(db *gorm.DB, deadlineID, assetID string) error {
	return db.Where("deadline_id = ? AND asset_id = ?", deadlineID, assetID).
		Delete(&models.DeadlineAsset{}).Error
}

// DissociateDocument removes the single deadline-document join row.
func DissociateDocument(db *gorm.DB, deadlineID, documentID string) error {
	return db.Where("deadline_id = ? AND document_id = ?", deadlineID, documentID).
		Delete(&models.DeadlineDocument{}).Error
}

// ListForDeadline resolves the joined assets and documents to their full
// current rows. The inner join naturally skips dangling join rows left behind
// by a partially-failed cascade.
func ListForDeadline(db *gorm.DB, deadlineID string) (*DeadlineRelations, error) {
	if _, err := GetDeadline(db, deadlineID); err != nil {
		return nil, err
	}

	relations := &DeadlineRelations{
		Assets:    []models.Asset{},
		Documents: []models.Document{},
	}

	if err := db.Model(&models.Asset{}).
		Joins("JOIN deadline_assets ON deadline_assets.asset_id = assets.id").
		Where("deadline_assets.deadline_id = ?", deadlineID).
		Find(&relations.Assets).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.Document{}).
		Joins("JOIN deadline_documents ON deadline_documents.document_id = documents.id").
		Where("deadline_documents.deadline_id = ?", deadlineID).
		Find(&relations.Documents).Error; err != nil {
		return nil, err
	}

	return relations, nil
}
