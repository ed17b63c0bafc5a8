package queries

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"warden/contexts/trust-safety/appeal-service/domain/entities"
	domainerrors "warden/contexts/trust-safety/appeal-service/domain/errors"
	"warden/contexts/trust-safety/appeal-service/ports"
)

type ListAppealsQuery struct {
	UserID string
	Status string
	Limit  int
	Offset int
}

type QueryUseCase struct {
	Repository ports.Repository
	Logger     *slog.Logger
}

func (uc QueryUseCase) GetAppeal(ctx context.Context, appealID string) (entities.Appeal, error) {
	appeal, err := uc.Repository.GetAppeal(ctx, strings.TrimSpace(appealID))
	if err != nil {
		return entities.Appeal{}, fmt.Errorf("Failed to get appeal: %w", err)
	}
	if appeal == nil {
		return entities.Appeal{}, domainerrors.ErrAppealNotFound
	}
	return *appeal, nil
}

func (uc QueryUseCase) ListAppeals(ctx context.Context, query ListAppealsQuery) ([]entities.Appeal, error) {
	filter := ports.AppealFilter{
		UserID: strings.TrimSpace(query.UserID),
		Limit:  query.Limit,
		Offset: query.Offset,
	}
	if raw := strings.TrimSpace(query.Status); raw != "" {
		status, ok := entities.ParseStatus(raw)
		if !ok {
			return nil, domainerrors.ErrInvalidRequest
		}
		filter.Status = status
	}
	items, err := uc.Repository.ListAppeals(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("Failed to list appeals: %w", err)
	}
	return items, nil
}
