package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
)

const (
	// Profile permissions
	ReadProfilePermission   = "read:profile"
	UpdateProfilePermission = "update:profile"
	DeleteProfilePermission = "delete:profile"

	// Skill catalog permissions
	WriteSkillPermission  = "write:skill"
	UpdateSkillPermission = "update:skill"
	DeleteSkillPermission = "delete:skill"
	AdminSkillPermission  = "admin:skill"
)

// Identity headers are set by the API gateway after token validation.
const (
	HeaderUserID      = "X-User-ID"
	HeaderPermissions = "X-User-Permissions"
)

// UserID returns the authenticated user's ID, empty for anonymous requests.
func UserID(c fiber.Ctx) string {
	return c.Get(HeaderUserID)
}

// RequireAuth rejects requests that carry no gateway identity.
func RequireAuth(c fiber.Ctx) error {
	if c.Get(HeaderUserID) == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}
	return c.Next()
}

// PermissionRequired gates a route on one permission from the
// comma-separated permission header.
func PermissionRequired(permission string) fiber.Handler {
	return func(c fiber.Ctx) error {
		if c.Get(HeaderUserID) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}
		for _, granted := range strings.Split(c.Get(HeaderPermissions), ",") {
			if strings.TrimSpace(granted) == permission {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Insufficient permissions",
		})
	}
}
