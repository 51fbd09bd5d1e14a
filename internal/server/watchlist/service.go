package watchlist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/krypton/internal/common"
	"github.com/dmitrijs2005/krypton/internal/logging"
	"github.com/dmitrijs2005/krypton/internal/server/events"
	"github.com/dmitrijs2005/krypton/internal/server/models"
	"github.com/dmitrijs2005/krypton/internal/server/shared/keylock"
	"github.com/dmitrijs2005/krypton/internal/server/users"
)

type Service struct {
	repo   users.Repository
	events events.Publisher
	locks  *keylock.Locker
	log    logging.Logger
}

func NewService(repo users.Repository, pub events.Publisher, locks *keylock.Locker, log logging.Logger) *Service {
	return &Service{
		repo:   repo,
		events: pub,
		locks:  locks,
		log:    log.With("module", "watchlist"),
	}
}

func (s *Service) List(ctx context.Context, user *models.User) []models.WatchlistEntry {
	return append(make([]models.WatchlistEntry, 0, len(user.Watchlist)), user.Watchlist...)
}

// Add appends assetID. An asset already on the list is rejected with
// common.ErrDuplicateEntry and the list is left as it was.
func (s *Service) Add(ctx context.Context, user *models.User, assetID string) ([]models.WatchlistEntry, error) {
	if strings.TrimSpace(assetID) == "" {
		return nil, fmt.Errorf("%w: crypto id is required", common.ErrInvalidInput)
	}

	list, err := s.mutate(ctx, user.ID, func(u *models.User) (bool, error) {
		for _, e := range u.Watchlist {
			if e.CryptoID == assetID {
				return false, common.ErrDuplicateEntry
			}
		}
		u.Watchlist = append(u.Watchlist, models.WatchlistEntry{CryptoID: assetID, AddedAt: time.Now().UTC()})
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.New(events.WatchlistAdded, user.ID, assetID))
	return list, nil
}

// Remove drops assetID; absent ids are a no-op.
func (s *Service) Remove(ctx context.Context, user *models.User, assetID string) ([]models.WatchlistEntry, error) {
	removed := false
	list, err := s.mutate(ctx, user.ID, func(u *models.User) (bool, error) {
		kept := make([]models.WatchlistEntry, 0, len(u.Watchlist))
		for _, e := range u.Watchlist {
			if e.CryptoID == assetID {
				removed = true
				continue
			}
			kept = append(kept, e)
		}
		u.Watchlist = kept
		return removed, nil
	})
	if err != nil {
		return nil, err
	}

	if removed {
		s.publish(ctx, events.New(events.WatchlistRemoved, user.ID, assetID))
	}
	return list, nil
}

func (s *Service) mutate(ctx context.Context, userID string, fn func(u *models.User) (bool, error)) ([]models.WatchlistEntry, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	current, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	changed, err := fn(current)
	if err != nil {
		return nil, err
	}
	if changed {
		if err := s.repo.Save(ctx, current); err != nil {
			return nil, fmt.Errorf("error saving watchlist: %w", err)
		}
	}

	return s.List(ctx, current), nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.events.Publish(ctx, e); err != nil {
		s.log.Error(ctx, "event publish failed", "event", e.EventType, "user_id", e.UserID, "error", err)
	}
}
