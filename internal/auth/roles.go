package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/staff-schedule/internal/domain"
	apperrors "github.com/spec-kit/staff-schedule/pkg/util"
)

// HasRole reports whether roles contains role. There is no role hierarchy.
func HasRole(roles []domain.Role, role domain.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// RequireRole fails with a forbidden error unless the caller holds one of allowed.
func RequireRole(caller domain.Caller, allowed ...domain.Role) error {
	if !caller.Authenticated() {
		return apperrors.NewUnauthorized("authentication required")
	}
	for _, role := range allowed {
		if HasRole(caller.Roles, role) {
			return nil
		}
	}
	names := make([]string, 0, len(allowed))
	for _, role := range allowed {
		names = append(names, string(role))
	}
	return apperrors.NewForbidden("requires one of roles: " + strings.Join(names, ", "))
}

// RequireAuthenticated fails unless the caller has been resolved.
func RequireAuthenticated(caller domain.Caller) error {
	if !caller.Authenticated() {
		return apperrors.NewUnauthorized("authentication required")
	}
	return nil
}

// RequireRoles is the route-level variant of RequireRole.
func RequireRoles(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, _ := CallerFromContext(c)
		if err := RequireRole(caller, allowed...); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireAnyRole ensures the caller is authenticated.
func RequireAnyRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, _ := CallerFromContext(c)
		if err := RequireAuthenticated(caller); err != nil {
			return err
		}
		return c.Next()
	}
}
