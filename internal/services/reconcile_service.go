// reconcile_service.go
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
	"log"
	"time"

	"github.com/custodia-app/custodia/internal/models"
	"github.com/custodia-app/custodia/internal/recurrence"
	"gorm.io/gorm"
)

// advanceCap bounds how many periods a single sweep will roll one deadline
// forward. Protects against rules like FREQ=DAILY on a row years overdue.
const advanceCap = 1000

// ReconcileDanglingJoins deletes association rows whose endpoints no longer
// exist. Readers already skip dangling joins, so this sweep is housekeeping,
// not correctness. Returns the number of rows removed.
func ReconcileDanglingJoins(db *gorm.DB) (int64, error) {
	var removed int64

	deadlineIDs := db.Model(&models.Deadline{}).Select("id")
	assetIDs := db.Model(&models.Asset{}).Select("id")
	documentIDs := db.Model(&models.Document{}).Select("id")

	result := db.Where("deadline_id NOT IN (?) OR asset_id NOT IN (?)", deadlineIDs, assetIDs).
		Delete(&models.DeadlineAsset{})
	if result.Error != nil {
		return removed, result.Error
	}
	removed += result.RowsAffected

	result = db.Where("deadline_id NOT IN (?) OR document_id NOT IN (?)", deadlineIDs, documentIDs).
		Delete(&models.DeadlineDocument{})
	if result.Error != nil {
		return removed, result.Error
	}
	removed += result.RowsAffected

	return removed, nil
}

// AdvanceOverdueRecurring rolls pending recurring deadlines whose due date
// lies in the past forward to their next future occurrence. This sweep is
// opt-in (RECUR_ADVANCE): the toggle path never advances due dates, matching
// the behavior clients expect. Occurrences are computed from base_due_at so
// repeated sweeps never drift off the anchor's day-of-month; the anchor
// itself is left untouched. Returns the number of deadlines advanced.
func AdvanceOverdueRecurring(db *gorm.DB, now time.Time) (int64, error) {
	var overdue []models.Deadline
	if err := db.Where("status = ? AND recurrence_rule IS NOT NULL AND due_at < ?",
		models.StatusPending, now).Find(&overdue).Error; err != nil {
		return 0, err
	}

	var advanced int64
	for i := range overdue {
		deadline := &overdue[i]
		rule, err := recurrence.Parse(*deadline.RecurrenceRule)
		if err != nil {
			// Free-text rule that never parsed; leave the row alone.
			continue
		}

		base := deadline.DueAt
		if deadline.BaseDueAt != nil {
			base = *deadline.BaseDueAt
		}

		var next time.Time
		for k := 1; k <= advanceCap; k++ {
			if candidate := rule.Advance(base, k); candidate.After(now) {
				next = candidate
				break
			}
		}
		if next.IsZero() || !next.After(deadline.DueAt) {
			continue
		}

		deadline.DueAt = next
		if err := saveDeadline(db, deadline); err != nil {
			log.Printf("Failed to advance recurring deadline %s: %v", deadline.ID, err)
			continue
		}
		advanced++
	}

	return advanced, nil
}
