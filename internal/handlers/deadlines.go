// deadlines.go
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

package handlers

import (
	"time"

	"github.com/custodia-app/custodia/internal/services"
	"github.com/custodia-app/custodia/internal/types"
	"github.com/custodia-app/custodia/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// DeadlineHandler handles deadline routes
type DeadlineHandler struct {
	DB *gorm.DB
}

// CreateDeadline handles POST /api/deadlines
// @Summary Create a deadline
// @Description Create a dated obligation, optionally recurring (FREQ=DAILY|WEEKLY|MONTHLY|YEARLY[;INTERVAL=n])
// @Tags Deadlines
// @Accept json
// @Produce json
// @Param body body object true "Deadline to create"
// @Success 201 {object} models.Deadline
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /deadlines [post]
func (h *DeadlineHandler) CreateDeadline(c *fiber.Ctx) error {
	var body struct {
		Title          string         `json:"title"`
		DueAt          types.FlexDate `json:"due_at"`
		Notes          string         `json:"notes"`
		RecurrenceRule string         `json:"recurrence_rule"`
		AssetID        string         `json:"asset_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "deadlines.validation.input")
	}

	deadline, err := services.CreateDeadline(h.DB, services.DeadlineInput{
		Title:          body.Title,
		DueAt:          body.DueAt.Time(),
		Notes:          body.Notes,
		RecurrenceRule: body.RecurrenceRule,
		AssetID:        body.AssetID,
	})
	if err != nil {
		return serviceError(c, err, "createDeadline")
	}
	return c.Status(fiber.StatusCreated).JSON(deadline)
}

// ListDeadlines handles GET /api/deadlines?status=...&asset_id=...
// @Summary List deadlines ordered by due date
// @Tags Deadlines
// @Produce json
// @Param status query string false "Filter by status (pending, done, skipped)"
// @Param asset_id query string false "Filter by primary asset"
// @Success 200 {array} models.Deadline
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /deadlines [get]
func (h *DeadlineHandler) ListDeadlines(c *fiber.Ctx) error {
	deadlines, err := services.ListDeadlines(h.DB, services.ListDeadlinesOptions{
		Status:  c.Query("status"),
		AssetID: c.Query("asset_id"),
	})
	if err != nil {
		return serviceError(c, err, "listDeadlines")
	}
	return c.Status(fiber.StatusOK).JSON(deadlines)
}

// GetDeadline handles GET /api/deadlines/:id
// @Summary Get a deadline
// @Tags Deadlines
// @Produce json
// @Param id path string true "Deadline ID"
// @Success 200 {object} models.Deadline
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /deadlines/{id} [get]
func (h *DeadlineHandler) GetDeadline(c *fiber.Ctx) error {
	deadline, err := services.GetDeadline(h.DB, c.Params("id"))
	if err != nil {
		return serviceError(c, err, "getDeadline")
	}
	return c.Status(fiber.StatusOK).JSON(deadline)
}

// UpdateDeadline handles PUT /api/deadlines/:id
// @Summary Update a deadline
// @Description Partial update; setting recurrence_rule to "" disables recurrence, a direct status update may set skipped
// @Tags Deadlines
// @Accept json
// @Produce json
// @Param id path string true "Deadline ID"
// @Param body body object true "Fields to update"
// @Success 200 {object} models.Deadline
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /deadlines/{id} [put]
func (h *DeadlineHandler) UpdateDeadline(c *fiber.Ctx) error {
	var body struct {
		Title          *string         `json:"title"`
		DueAt          *types.FlexDate `json:"due_at"`
		Notes          *string         `json:"notes"`
		RecurrenceRule *string         `json:"recurrence_rule"`
		AssetID        *string         `json:"asset_id"`
		Status         *string         `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "deadlines.validation.input")
	}

	upd := services.DeadlineUpdate{
		Title:          body.Title,
		Notes:          body.Notes,
		RecurrenceRule: body.RecurrenceRule,
		AssetID:        body.AssetID,
		Status:         body.Status,
	}
	if body.DueAt != nil {
		due := body.DueAt.Time()
		upd.DueAt = &due
	}

	deadline, err := services.UpdateDeadline(h.DB, c.Params("id"), upd)
	if err != nil {
		return serviceError(c, err, "updateDeadline")
	}
	return c.Status(fiber.StatusOK).JSON(deadline)
}

// ToggleDeadline handles POST /api/deadlines/:id/toggle
// @Summary Toggle a deadline between pending and done
// @Description done becomes pending (clearing completed_at), anything else becomes done; the due date never moves
// @Tags Deadlines
// @Produce json
// @Param id path string true "Deadline ID"
// @Success 200 {object} models.Deadline
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /deadlines/{id}/toggle [post]
func (h *DeadlineHandler) ToggleDeadline(c *fiber.Ctx) error {
	deadline, err := services.ToggleDeadlineStatus(h.DB, c.Params("id"))
	if err != nil {
		return serviceError(c, err, "toggleDeadline")
	}
	return c.Status(fiber.StatusOK).JSON(deadline)
}

// NextOccurrence handles GET /api/deadlines/:id/next
// @Summary Compute the next occurrence of a recurring deadline
// @Description Read-only; an unparsable or absent rule yields recurring=false
// @Tags Deadlines
// @Produce json
// @Param id path string true "Deadline ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /deadlines/{id}/next [get]
func (h *DeadlineHandler) NextOccurrence(c *fiber.Ctx) error {
	deadline, err := services.GetDeadline(h.DB, c.Params("id"))
	if err != nil {
		return serviceError(c, err, "nextOccurrence")
	}

	next, ok := services.NextOccurrence(deadline)
	if !ok {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"recurring": false})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"recurring": true,
		"next_due":  next.Format(time.RFC3339),
	})
}

// DeleteDeadline handles DELETE /api/deadlines/:id
// @Summary Delete a deadline and its association rows
// @Tags Deadlines
// @Produce json
// @Param id path string true "Deadline ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /deadlines/{id} [delete]
func (h *DeadlineHandler) DeleteDeadline(c *fiber.Ctx) error {
	if err := services.DeleteDeadline(h.DB, c.Params("id")); err != nil {
		return serviceError(c, err, "deleteDeadline")
	}
	return utils.MutationSuccessResponse(c, 1)
}
