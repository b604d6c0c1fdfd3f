// assets.go
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
	"github.com/custodia-app/custodia/internal/icons"
	"github.com/custodia-app/custodia/internal/models"
	"github.com/custodia-app/custodia/internal/services"
	"github.com/custodia-app/custodia/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AssetHandler handles asset routes
type AssetHandler struct {
	DB *gorm.DB
}

// AssetResponse is an asset row plus the icon key resolved for display.
// Every view renders DisplayIcon, never the raw Icon column.
type AssetResponse struct {
	models.Asset
	DisplayIcon string `json:"display_icon"`
}

func assetResponse(a models.Asset) AssetResponse {
	return AssetResponse{Asset: a, DisplayIcon: icons.Resolve(a.Category, a.Icon)}
}

// CreateAsset handles POST /api/assets
// @Summary Create an asset
// @Description Register a tracked item; legacy category aliases (car, house) are accepted
// @Tags Assets
// @Accept json
// @Produce json
// @Param body body services.AssetInput true "Asset to create"
// @Success 201 {object} AssetResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /assets [post]
func (h *AssetHandler) CreateAsset(c *fiber.Ctx) error {
	var in services.AssetInput
	if err := c.BodyParser(&in); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "assets.validation.input")
	}

	asset, err := services.CreateAsset(h.DB, in)
	if err != nil {
		return serviceError(c, err, "createAsset")
	}
	return c.Status(fiber.StatusCreated).JSON(assetResponse(*asset))
}

// ListAssets handles GET /api/assets?category=...
// @Summary List assets
// @Tags Assets
// @Produce json
// @Param category query string false "Filter by category"
// @Success 200 {array} AssetResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /assets [get]
func (h *AssetHandler) ListAssets(c *fiber.Ctx) error {
	assets, err := services.ListAssets(h.DB, c.Query("category"))
	if err != nil {
		return serviceError(c, err, "listAssets")
	}

	out := make([]AssetResponse, 0, len(assets))
	for _, a := range assets {
		out = append(out, assetResponse(a))
	}
	return c.Status(fiber.StatusOK).JSON(out)
}

// GetAsset handles GET /api/assets/:id
// @Summary Get an asset
// @Tags Assets
// @Produce json
// @Param id path string true "Asset ID"
// @Success 200 {object} AssetResponse
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /assets/{id} [get]
func (h *AssetHandler) GetAsset(c *fiber.Ctx) error {
	asset, err := services.GetAsset(h.DB, c.Params("id"))
	if err != nil {
		return serviceError(c, err, "getAsset")
	}
	return c.Status(fiber.StatusOK).JSON(assetResponse(*asset))
}

// UpdateAsset handles PUT /api/assets/:id
// @Summary Update an asset
// @Description Rename, re-categorize or re-icon an asset; omitted fields are untouched
// @Tags Assets
// @Accept json
// @Produce json
// @Param id path string true "Asset ID"
// @Param body body services.AssetUpdate true "Fields to update"
// @Success 200 {object} AssetResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /assets/{id} [put]
func (h *AssetHandler) UpdateAsset(c *fiber.Ctx) error {
	var upd services.AssetUpdate
	if err := c.BodyParser(&upd); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "assets.validation.input")
	}

	asset, err := services.UpdateAsset(h.DB, c.Params("id"), upd)
	if err != nil {
		return serviceError(c, err, "updateAsset")
	}
	return c.Status(fiber.StatusOK).JSON(assetResponse(*asset))
}

// DeleteAsset handles DELETE /api/assets/:id
// @Summary Delete an asset
// @Description Removes the asset and its association rows; linked deadlines and documents survive with a null asset reference
// @Tags Assets
// @Produce json
// @Param id path string true "Asset ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /assets/{id} [delete]
func (h *AssetHandler) DeleteAsset(c *fiber.Ctx) error {
	if err := services.DeleteAsset(h.DB, c.Params("id")); err != nil {
		return serviceError(c, err, "deleteAsset")
	}
	return utils.MutationSuccessResponse(c, 1)
}

// ListIcons handles GET /api/icons
// @Summary List valid icon keys for the picker
// @Tags Assets
// @Produce json
// @Success 200 {array} string
// @Router /icons [get]
func (h *AssetHandler) ListIcons(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(icons.Known())
}
