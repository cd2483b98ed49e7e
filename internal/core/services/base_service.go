package services

import (
	"context"
	"fmt"

	"github.com/orgbooks/po_budget_app/internal/apperrors"
	"github.com/orgbooks/po_budget_app/internal/core/domain"
	portssvc "github.com/orgbooks/po_budget_app/internal/core/ports/services"
)

// requireAdmin verifies the requesting user holds the ADMIN role. This is a
// thin role gate for budget edits and approval transitions; full
// authorization policy lives with the callers of this API.
func requireAdmin(ctx context.Context, users portssvc.UserReaderSvc, requestingUserID string) error {
	user, err := users.GetUserByID(ctx, requestingUserID)
	if err != nil {
		return fmt.Errorf("failed to resolve requesting user %s: %w", requestingUserID, err)
	}
	if user.Role != domain.RoleAdmin {
		return fmt.Errorf("%w: user %s lacks the ADMIN role", apperrors.ErrForbidden, requestingUserID)
	}
	return nil
}
