// deadline_service.go
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
	"log"
	"strings"
	"time"

	"github.com/custodia-app/custodia/internal/models"
	"github.com/custodia-app/custodia/internal/recurrence"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// DeadlineInput is the payload for creating a deadline.
type DeadlineInput struct {
	Title          string
	DueAt          time.Time
	Notes          string
	RecurrenceRule string
	AssetID        string
}

// DeadlineUpdate is the payload for partially updating a deadline. Nil fields
// are left untouched. An empty RecurrenceRule disables recurrence; a
// non-empty one (re)enables it and re-anchors base_due_at. Status goes
// through this direct path when the client needs `skipped`, which the toggle
// never produces.
type DeadlineUpdate struct {
	Title          *string
	DueAt          *time.Time
	Notes          *string
	RecurrenceRule *string
	AssetID        *string
	Status         *string
}

// ListDeadlinesOptions filters the deadline listing.
type ListDeadlinesOptions struct {
	Status  string
	AssetID string
}

// CreateDeadline validates and inserts a new deadline. Status always starts
// as pending. A malformed recurrence rule is kept as written (it is client
// free text) but logged; the resolver will treat it as non-recurring.
func CreateDeadline(db *gorm.DB, in DeadlineInput) (*models.Deadline, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if in.DueAt.IsZero() {
		return nil, fmt.Errorf("%w: due_at is required", ErrValidation)
	}

	deadline := models.Deadline{
		Title:  strings.TrimSpace(in.Title),
		DueAt:  in.DueAt,
		Notes:  in.Notes,
		Status: models.StatusPending,
	}

	if rule := strings.TrimSpace(in.RecurrenceRule); rule != "" {
		if _, err := recurrence.Parse(rule); err != nil {
			log.Printf("Deadline %q has unparsable recurrence rule %q, treating as one-off", in.Title, rule)
		}
		deadline.RecurrenceRule = &rule
		base := in.DueAt
		deadline.BaseDueAt = &base
	}

	if in.AssetID != "" {
		if _, err := GetAsset(db, in.AssetID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("%w: unknown asset %q", ErrValidation, in.AssetID)
			}
			return nil, err
		}
		assetID := in.AssetID
		deadline.AssetID = &assetID
	}

	if err := db.Create(&deadline).Error; err != nil {
		return nil, err
	}
	return &deadline, nil
}

// GetDeadline retrieves a single deadline by id.
func GetDeadline(db *gorm.DB, id string) (*models.Deadline, error) {
	var deadline models.Deadline
	if err := db.Where("id = ?", id).First(&deadline).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &deadline, nil
}

// ListDeadlines returns deadlines ordered by due date, optionally filtered by
// status and/or primary asset.
func ListDeadlines(db *gorm.DB, opts ListDeadlinesOptions) ([]models.Deadline, error) {
	query := db.Clauses(hints.CommentBefore("select", "custodia:list_deadlines")).
		Order("due_at ASC")

	if opts.Status != "" {
		status := models.DeadlineStatus(opts.Status)
		if !status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, opts.Status)
		}
		query = query.Where("status = ?", status)
	}
	if opts.AssetID != "" {
		query = query.Where("asset_id = ?", opts.AssetID)
	}

	var deadlines []models.Deadline
	if err := query.Find(&deadlines).Error; err != nil {
		return nil, err
	}
	return deadlines, nil
}

// UpdateDeadline applies a partial update, maintaining the recurrence anchor
// and the completed_at/status invariant.
func UpdateDeadline(db *gorm.DB, id string, upd DeadlineUpdate) (*models.Deadline, error) {
	deadline, err := GetDeadline(db, id)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		if strings.TrimSpace(*upd.Title) == "" {
			return nil, fmt.Errorf("%w: title is required", ErrValidation)
		}
		deadline.Title = strings.TrimSpace(*upd.Title)
	}
	if upd.DueAt != nil {
		if upd.DueAt.IsZero() {
			return nil, fmt.Errorf("%w: due_at is required", ErrValidation)
		}
		deadline.DueAt = *upd.DueAt
	}
	if upd.Notes != nil {
		deadline.Notes = *upd.Notes
	}

	if upd.RecurrenceRule != nil {
		if rule := strings.TrimSpace(*upd.RecurrenceRule); rule != "" {
			if _, err := recurrence.Parse(rule); err != nil {
				log.Printf("Deadline %s given unparsable recurrence rule %q, treating as one-off", id, rule)
			}
			// (Re)enabling recurrence re-anchors the base date.
			deadline.RecurrenceRule = &rule
			base := deadline.DueAt
			deadline.BaseDueAt = &base
		} else {
			deadline.RecurrenceRule = nil
			deadline.BaseDueAt = nil
		}
	} else if upd.DueAt != nil && deadline.RecurrenceRule != nil {
		// A due-date move on a recurring deadline re-anchors it too.
		base := deadline.DueAt
		deadline.BaseDueAt = &base
	}

	if upd.AssetID != nil {
		if *upd.AssetID == "" {
			deadline.AssetID = nil
		} else {
			if _, err := GetAsset(db, *upd.AssetID); err != nil {
				if errors.Is(err, ErrNotFound) {
					return nil, fmt.Errorf("%w: unknown asset %q", ErrValidation, *upd.AssetID)
				}
				return nil, err
			}
			assetID := *upd.AssetID
			deadline.AssetID = &assetID
		}
	}

	if upd.Status != nil {
		status := models.DeadlineStatus(*upd.Status)
		if !status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *upd.Status)
		}
		applyStatus(deadline, status, time.Now().UTC())
	}

	if err := saveDeadline(db, deadline); err != nil {
		return nil, err
	}
	return deadline, nil
}

// ToggleDeadlineStatus flips a deadline between pending and done:
// done -> pending, anything else (pending or skipped) -> done. Completing a
// recurring deadline does not advance due_at; see AdvanceOverdueRecurring for
// the opt-in sweep.
func ToggleDeadlineStatus(db *gorm.DB, id string) (*models.Deadline, error) {
	deadline, err := GetDeadline(db, id)
	if err != nil {
		return nil, err
	}

	if deadline.Status == models.StatusDone {
		applyStatus(deadline, models.StatusPending, time.Now().UTC())
	} else {
		applyStatus(deadline, models.StatusDone, time.Now().UTC())
	}

	if err := saveDeadline(db, deadline); err != nil {
		return nil, err
	}
	return deadline, nil
}

// NextOccurrence computes the first occurrence after the current due date,
// stepping from base_due_at so clamped month-ends keep the anchor's day
// (due Feb 28, anchored Jan 31, resolves to Mar 31 rather than Mar 28).
// Read-only: callers decide if and when to persist an advance. ok is false
// for one-off deadlines and unparsable rules.
func NextOccurrence(deadline *models.Deadline) (time.Time, bool) {
	if deadline.RecurrenceRule == nil {
		return time.Time{}, false
	}
	rule, err := recurrence.Parse(*deadline.RecurrenceRule)
	if err != nil {
		return time.Time{}, false
	}

	base := deadline.DueAt
	if deadline.BaseDueAt != nil {
		base = *deadline.BaseDueAt
	}
	for k := 1; k <= advanceCap; k++ {
		if next := rule.Advance(base, k); next.After(deadline.DueAt) {
			return next, true
		}
	}
	return time.Time{}, false
}

// DeleteDeadline removes a deadline and all of its association rows. Join
// rows go first so a partial failure cannot leave joins pointing at a missing
// deadline.
func DeleteDeadline(db *gorm.DB, id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("deadline_id = ?", id).Delete(&models.DeadlineAsset{}).Error; err != nil {
			return err
		}
		if err := tx.Where("deadline_id = ?", id).Delete(&models.DeadlineDocument{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&models.Deadline{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// applyStatus sets the status and keeps completed_at consistent with it:
// non-nil iff done.
func applyStatus(d *models.Deadline, status models.DeadlineStatus, now time.Time) {
	d.Status = status
	if status == models.StatusDone {
		d.CompletedAt = &now
	} else {
		d.CompletedAt = nil
	}
}

// saveDeadline persists the full row, including fields cleared back to nil
// (completed_at, base_due_at, asset_id).
func saveDeadline(db *gorm.DB, d *models.Deadline) error {
	d.UpdatedAt = time.Now().UTC()
	return db.Save(d).Error
}
