// deadline_associations.go
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
	"github.com/custodia-app/custodia/internal/services"
	"github.com/custodia-app/custodia/internal/types"
	"github.com/custodia-app/custodia/internal/utils"
	"github.com/gofiber/fiber/v2"
)

// GetAssociations handles GET /api/deadlines/:id/associations
// @Summary List the assets and documents linked to a deadline
// @Description Entities are resolved to their full current rows; dangling links are skipped
// @Tags Associations
// @Produce json
// @Param id path string true "Deadline ID"
// @Success 200 {object} services.DeadlineRelations
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /deadlines/{id}/associations [get]
func (h *DeadlineHandler) GetAssociations(c *fiber.Ctx) error {
	relations, err := services.ListForDeadline(h.DB, c.Params("id"))
	if err != nil {
		return serviceError(c, err, "getAssociations")
	}
	return c.Status(fiber.StatusOK).JSON(relations)
}

// Associate handles POST /api/deadlines/:id/associations
// @Summary Link assets and documents to a deadline
// @Description Idempotent; already-linked pairs are skipped, id lists accept a single value or an array
// @Tags Associations
// @Accept json
// @Produce json
// @Param id path string true "Deadline ID"
// @Param body body object true "asset_ids and/or document_ids"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /deadlines/{id}/associations [post]
func (h *DeadlineHandler) Associate(c *fiber.Ctx) error {
	var body struct {
		AssetIDs    types.FlexList[string] `json:"asset_ids"`
		DocumentIDs types.FlexList[string] `json:"document_ids"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "associations.validation.input")
	}

	created, err := services.Associate(h.DB, c.Params("id"), body.AssetIDs.Slice(), body.DocumentIDs.Slice())
	if err != nil {
		return serviceError(c, err, "associate")
	}
	return utils.MutationSuccessResponse(c, created)
}

// DissociateAsset handles DELETE /api/deadlines/:id/associations/assets/:assetId
// @Summary Unlink an asset from a deadline
// @Description Absence of the link is not an error
// @Tags Associations
// @Produce json
// @Param id path string true "Deadline ID"
// @Param assetId path string true "Asset ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /deadlines/{id}/associations/assets/{assetId} [delete]
func (h *DeadlineHandler) DissociateAsset(c *fiber.Ctx) error {
	if err := services.DissociateAsset(h.DB, c.Params("id"), c.Params("assetId")); err != nil {
		return serviceError(c, err, "dissociateAsset")
	}
	return utils.MutationSuccessResponse(c, 1)
}

// DissociateDocument handles DELETE /api/deadlines/:id/associations/documents/:documentId
// @Summary Unlink a document from a deadline
// @Tags Associations
// @Produce json
// @Param id path string true "Deadline ID"
// @Param documentId path string true "Document ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /deadlines/{id}/associations/documents/{documentId} [delete]
func (h *DeadlineHandler) DissociateDocument(c *fiber.Ctx) error {
	if err := services.DissociateDocument(h.DB, c.Params("id"), c.Params("documentId")); err != nil {
		return serviceError(c, err, "dissociateDocument")
	}
	return utils.MutationSuccessResponse(c, 1)
}
