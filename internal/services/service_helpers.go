package services

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/school-service/internal/models"
	"github.com/SAP-F-2025/school-service/internal/repositories"
)

// resolveActor loads the calling user so the authorization policy can be
// consulted with their role. Inactive accounts are rejected here, once,
// instead of in every service method.
func resolveActor(ctx context.Context, repo repositories.Repository, callerID uint) (*models.User, error) {
	caller, err := repo.User().GetByID(ctx, nil, callerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to resolve caller: %w", err)
	}
	if !caller.IsActive {
		return nil, ErrUserInactive
	}
	return caller, nil
}
