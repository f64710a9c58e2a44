package handlers

import (
	"errors"

	"github.com/dmunozv/crudhub/internal/authz"
	"github.com/dmunozv/crudhub/internal/domain/product"
	"github.com/dmunozv/crudhub/internal/domain/user"
	"github.com/dmunozv/crudhub/internal/service"
	"github.com/gin-gonic/gin"
)

// respondServiceError maps the service error taxonomy onto HTTP. A
// Forbidden is never downgraded to NotFound: the caller already knows
// the id it asked for.
func respondServiceError(ctx *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, user.ErrNotFound):
		RespondNotFound(ctx, "User not found")
	case errors.Is(err, product.ErrNotFound):
		RespondNotFound(ctx, "Product not found")
	case errors.Is(err, authz.ErrForbidden):
		RespondForbidden(ctx, "You do not have permission to access this resource")
	case errors.Is(err, user.ErrEmailTaken):
		RespondConflict(ctx, "email_taken", "Email is already in use.")
	case errors.Is(err, service.ErrValidation):
		RespondBadRequest(ctx, "Invalid request", gin.H{"reason": err.Error()})
	default:
		RespondInternal(ctx, fallback)
	}
}
