package openfinance

import (
	"context"

	"go.uber.org/zap"

	"finsync/internal/domain/item"
	"finsync/internal/shared/errs"
)

// ItemUpdateResult reports how a bulk institution refresh went
type ItemUpdateResult struct {
	ItemsFound int               `json:"itemsFound"`
	Updated    int               `json:"updated"`
	Errors     map[string]string `json:"errors,omitempty"`
}

// ItemSyncService refreshes stored item metadata from upstream
type ItemSyncService struct {
	adapter  *Adapter
	itemRepo item.Repository
	log      *zap.Logger
}

// NewItemSyncService creates a new item sync service
func NewItemSyncService(adapter *Adapter, itemRepo item.Repository, log *zap.Logger) *ItemSyncService {
	return &ItemSyncService{adapter: adapter, itemRepo: itemRepo, log: log}
}

// UpdateItemInfo re-resolves the institution of every stored item. A failure on
// one item is recorded against it and the rest still run. userID 0 means all
// users.
func (s *ItemSyncService) UpdateItemInfo(ctx context.Context, userID int64) (*ItemUpdateResult, error) {
	const op = "openfinance.UpdateItemInfo"

	var (
		items []*item.Item
		err   error
	)
	if userID > 0 {
		items, err = s.itemRepo.ListByUserID(ctx, userID)
	} else {
		items, err = s.itemRepo.List(ctx)
	}
	if err != nil {
		return nil, errs.E(op, "", err)
	}

	result := &ItemUpdateResult{ItemsFound: len(items), Errors: map[string]string{}}
	for _, it := range items {
		if err := s.updateItem(ctx, it); err != nil {
			s.log.Warn("failed to refresh item", zap.String("item_id", it.ID), zap.Error(err))
			result.Errors[it.ID] = err.Error()
			continue
		}
		result.Updated++
	}

	s.log.Info("item info refreshed",
		zap.Int("found", result.ItemsFound),
		zap.Int("updated", result.Updated),
		zap.Int("failed", len(result.Errors)))

	return result, nil
}

func (s *ItemSyncService) updateItem(ctx context.Context, it *item.Item) error {
	upstream, err := s.adapter.ListItems(ctx, []string{it.AccessToken})
	if err != nil {
		return err
	}
	if len(upstream) == 0 || upstream[0].InstitutionID == "" {
		return errs.Errorf("openfinance.updateItem", errs.KindUpstream, "item %s has no institution", it.ID)
	}

	inst, err := s.adapter.ResolveInstitution(ctx, upstream[0].InstitutionID)
	if err != nil {
		return err
	}
	return s.itemRepo.UpdateInstitution(ctx, it.ID, inst.InstitutionID, inst.Name)
}
