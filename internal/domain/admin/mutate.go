package admin

import (
	"context"

	"github.com/MianAhsan577/waapi-server/internal/domain/store"
	"github.com/MianAhsan577/waapi-server/internal/platform/errors"
)

// DeleteResult reports the outcome of a selective delete.
type DeleteResult struct {
	DeletedCount   int `json:"deletedCount"`
	RemainingCount int `json:"remainingCount"`
}

// DeleteSelected removes the given document ids from both the logs and
// interactions collections. Ids that exist in both collections count twice.
func (s *Service) DeleteSelected(ctx context.Context, ids []string) (DeleteResult, error) {
	if len(ids) == 0 {
		return DeleteResult{}, errors.New(errors.KindValidation, "admin.delete", "no log ids provided")
	}

	var result DeleteResult
	for _, collection := range []string{store.CollectionLogs, store.CollectionInteractions} {
		removed, err := s.store.Delete(ctx, collection, ids)
		result.DeletedCount += removed
		if err != nil {
			return result, errors.Wrap(errors.KindStorage, "admin.delete", "failed to delete from "+collection, err)
		}
	}

	remaining, err := s.store.GetAll(ctx, store.CollectionLogs)
	if err != nil {
		return result, errors.Wrap(errors.KindStorage, "admin.delete", "failed to count remaining logs", err)
	}
	result.RemainingCount = len(remaining)

	s.notifyLogsChanged()
	return result, nil
}

// Reset clears the logs and interactions collections and re-applies the
// configured cap so subsequent writes start from a bounded window.
func (s *Service) Reset(ctx context.Context) error {
	for _, collection := range []string{store.CollectionLogs, store.CollectionInteractions} {
		if err := s.store.Clear(ctx, collection); err != nil {
			return errors.Wrap(errors.KindStorage, "admin.reset", "failed to clear "+collection, err)
		}
	}
	if err := s.store.ApplyCap(ctx, s.logCap); err != nil {
		return errors.Wrap(errors.KindStorage, "admin.reset", "failed to re-cap collections", err)
	}

	s.notifyLogsChanged()
	return nil
}

// LimitLogs trims the capped collections down to max entries, newest kept.
func (s *Service) LimitLogs(ctx context.Context, max int) error {
	if max <= 0 {
		return errors.New(errors.KindValidation, "admin.limit", "limit must be positive")
	}
	if err := s.store.ApplyCap(ctx, max); err != nil {
		return errors.Wrap(errors.KindStorage, "admin.limit", "failed to trim logs", err)
	}

	s.notifyLogsChanged()
	return nil
}
