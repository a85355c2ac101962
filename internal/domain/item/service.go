package item

import (
	"context"

	"go.uber.org/zap"

	"finsync/internal/shared/errs"
)

// Linker is the slice of the upstream adapter the item service needs.
type Linker interface {
	ExchangePublicToken(ctx context.Context, publicToken string) (accessToken, itemID string, err error)
	ValidateItem(ctx context.Context, accessToken string) bool
	CreatePublicToken(ctx context.Context, accessToken string) (string, error)
}

// Service contains the business logic for linking and inspecting items
type Service struct {
	repo   Repository
	linker Linker
	log    *zap.Logger
}

// NewService creates a new item service
func NewService(repo Repository, linker Linker, log *zap.Logger) *Service {
	return &Service{repo: repo, linker: linker, log: log}
}

// Link exchanges a Link public token for an access token and stores the new item.
func (s *Service) Link(ctx context.Context, params LinkParams) (*Item, error) {
	const op = "item.Link"

	if err := params.Validate(); err != nil {
		return nil, errs.E(op, errs.KindInvalid, err)
	}

	accessToken, itemID, err := s.linker.ExchangePublicToken(ctx, params.PublicToken)
	if err != nil {
		s.log.Warn("could not exchange public token", zap.Int64("user_id", params.UserID), zap.Error(err))
		return nil, errs.E(op, errs.KindUpstream, err)
	}

	created, err := s.repo.Create(ctx, CreateParams{
		ID:              itemID,
		AccessToken:     accessToken,
		UserID:          params.UserID,
		InstitutionID:   params.InstitutionID,
		InstitutionName: params.InstitutionName,
	})
	if err != nil {
		return nil, errs.E(op, "", err)
	}

	s.log.Info("item linked",
		zap.Int64("user_id", created.UserID),
		zap.String("item_id", created.ID),
		zap.String("institution", created.InstitutionName))
	return created, nil
}

// Statuses validates every item of the user upstream. Items that fail
// validation get a fresh public token so the dashboard can re-link them.
func (s *Service) Statuses(ctx context.Context, userID int64) ([]Status, error) {
	items, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, errs.E("item.Statuses", "", err)
	}

	statuses := make([]Status, 0, len(items))
	for _, it := range items {
		status := Status{ItemID: it.ID, Institution: it.InstitutionName}

		if !s.linker.ValidateItem(ctx, it.AccessToken) {
			publicToken, err := s.linker.CreatePublicToken(ctx, it.AccessToken)
			if err != nil {
				s.log.Warn("failed to create public token for re-link",
					zap.String("item_id", it.ID), zap.Error(err))
				status.Error = true
			} else {
				status.PublicToken = publicToken
			}
		}

		statuses = append(statuses, status)
	}

	return statuses, nil
}
