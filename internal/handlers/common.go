// common.go
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
	"errors"
	"strings"

	"github.com/custodia-app/custodia/internal/services"
	"github.com/custodia-app/custodia/internal/utils"
	"github.com/gofiber/fiber/v2"
)

// parseQueryList extracts a multi-value query parameter, supporting both
// repeated keys and comma-separated values.
func parseQueryList(c *fiber.Ctx, name string) []string {
	valueMap := make(map[string]struct{})
	var values []string

	args := c.Context().QueryArgs()
	for key, value := range args.All() {
		if string(key) == name {
			// Split by comma in case the value itself is comma-separated
			vals := strings.Split(string(value), ",")
			for _, v := range vals {
				v = strings.TrimSpace(v)
				if v == "" {
					continue
				}
				if _, seen := valueMap[v]; !seen {
					valueMap[v] = struct{}{}
					values = append(values, v)
				}
			}
		}
	}

	return values
}

// serviceError maps a services-layer error onto the standard error envelope:
// validation failures become 400, missing rows 404, everything else 500.
func serviceError(c *fiber.Ctx, err error, errorType string) error {
	switch {
	case errors.Is(err, services.ErrValidation):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, errorType)
	case errors.Is(err, services.ErrNotFound):
		return utils.NotFoundResponse(c, "Resource not found")
	default:
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, errorType)
	}
}
