// version_middleware_test.go
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

package handlers_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/custodia-app/custodia/internal/middleware"
	"github.com/custodia-app/custodia/internal/utils"
	"github.com/custodia-app/custodia/tests/helpers"
)

// setupVersionApp wires the version middleware behind the app-wide error
// handler, the way cmd/server does
func setupVersionApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler})
	app.Use(middleware.VersionMiddleware())
	app.Get("/api/version-echo", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"version": c.Locals("apiVersion")})
	})
	return app
}

// TestVersionMiddlewareDefaultsAndAliases tests header parsing on the happy path
func TestVersionMiddlewareDefaultsAndAliases(t *testing.T) {
	app := setupVersionApp()

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"no header defaults", "", "1.0.0"},
		{"alias expands", "1.0", "1.0.0"},
		{"full version kept", "2.1.0", "2.1.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/version-echo", nil)
			if tt.header != "" {
				req.Header.Set("X-Api-Version", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("Failed to execute request: %v", err)
			}
			helpers.AssertStatus(t, resp, 200)

			var result map[string]interface{}
			helpers.ParseJSON(t, resp, &result)
			if result["version"] != tt.want {
				t.Errorf("Expected version %q, got %v", tt.want, result["version"])
			}
		})
	}
}

// TestVersionMiddlewareRejectsMalformed tests that a garbage X-Api-Version is
// refused with the typed error envelope before reaching any handler
func TestVersionMiddlewareRejectsMalformed(t *testing.T) {
	app := setupVersionApp()

	for _, header := range []string{"banana", "1.0.0-beta", "1..0", "2.0"} {
		req := httptest.NewRequest("GET", "/api/version-echo", nil)
		req.Header.Set("X-Api-Version", header)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Failed to execute request: %v", err)
		}
		helpers.AssertStatus(t, resp, 400)

		var result map[string]interface{}
		helpers.ParseJSON(t, resp, &result)
		if result["ok"] != false {
			t.Errorf("header %q: expected ok=false, got %v", header, result["ok"])
		}
		if result["type"] != "version" {
			t.Errorf("header %q: expected type 'version', got %v", header, result["type"])
		}
		if result["status"] != float64(400) {
			t.Errorf("header %q: expected status 400 in envelope, got %v", header, result["status"])
		}
	}
}
