package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/shiftboard/internal/auth"
	"github.com/spec-kit/shiftboard/internal/domain"
	apperrors "github.com/spec-kit/shiftboard/pkg/util/errorutil"
)

func currentUser(c *fiber.Ctx) (*domain.User, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	return principal.User, nil
}
