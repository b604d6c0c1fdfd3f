package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/custodia-app/custodia/internal/types"
)

// VersionMiddleware parses the X-Api-Version header and stores it in context.
// A header that is not a dotted numeric version is rejected before routing.
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		version := c.Get("X-Api-Version", "1.0.0")

		// Support version aliases
		if version == "1.0" {
			version = "1.0.0"
		}

		if !validVersion(version) {
			return &types.CustomError{
				Code:    fiber.StatusBadRequest,
				Message: "Invalid X-Api-Version header: " + version,
				Type:    "version",
			}
		}

		// Store version in context
		c.Locals("apiVersion", version)

		return c.Next()
	}
}

// validVersion accepts major.minor.patch with numeric components
func validVersion(v string) bool {
	parts := strings.Split(v, ".")
	if len(parts) != 3 {
		return false
	}
	for _, part := range parts {
		if part == "" {
			return false
		}
		for _, r := range part {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}
