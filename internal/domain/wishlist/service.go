package wishlist

import (
	"context"

	"github.com/google/uuid"

	"github.com/rently/rently-api/internal/pkg/cache"
	"github.com/rently/rently-api/internal/pkg/marketplace"
	"github.com/rently/rently-api/internal/pkg/mutation"
)

// Region is the cache region for one user's wishlist reads.
func Region(userID uuid.UUID) cache.Region {
	return cache.Key("wishlist", userID.String())
}

// Gateway is the slice of the marketplace client the wishlist needs.
type Gateway interface {
	GetWishlist(ctx context.Context, userID uuid.UUID) ([]marketplace.WishlistItem, error)
	AddToWishlist(ctx context.Context, userID, itemID uuid.UUID) error
	RemoveFromWishlist(ctx context.Context, userID, itemID uuid.UUID) error
}

// Service exposes the marketplace wishlist with cached reads and undoable
// writes.
type Service struct {
	gateway Gateway
	engine  *mutation.Engine
}

// NewService creates the wishlist service
func NewService(gateway Gateway, engine *mutation.Engine) *Service {
	return &Service{gateway: gateway, engine: engine}
}

// List returns the user's wishlist, from cache when a prior read is valid.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]marketplace.WishlistItem, error) {
	region := Region(userID)
	if cached, ok := s.engine.Cache().Get(region); ok {
		if items, ok := cached.([]marketplace.WishlistItem); ok {
			return items, nil
		}
	}

	items, err := s.gateway.GetWishlist(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.engine.Cache().Put(region, items)
	return items, nil
}

// Add puts an item on the wishlist. The undo removes it again.
func (s *Service) Add(ctx context.Context, userID, itemID uuid.UUID) error {
	_, err := mutation.Run(ctx, s.engine, mutation.Op[uuid.UUID, struct{}]{
		Owner:     userID,
		Variables: itemID,
		Mutate: func(ctx context.Context, id uuid.UUID) (struct{}, error) {
			return struct{}{}, s.gateway.AddToWishlist(ctx, userID, id)
		},
		Invalidate:     []cache.Region{Region(userID)},
		SuccessMessage: "Added to wishlist",
		Undo: func(ctx context.Context, id uuid.UUID, _ struct{}) (struct{}, error) {
			return struct{}{}, s.gateway.RemoveFromWishlist(ctx, userID, id)
		},
	})
	return err
}

// Remove drops an item from the wishlist. The undo adds it back.
func (s *Service) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	_, err := mutation.Run(ctx, s.engine, mutation.Op[uuid.UUID, struct{}]{
		Owner:     userID,
		Variables: itemID,
		Mutate: func(ctx context.Context, id uuid.UUID) (struct{}, error) {
			return struct{}{}, s.gateway.RemoveFromWishlist(ctx, userID, id)
		},
		Invalidate:     []cache.Region{Region(userID)},
		SuccessMessage: "Removed from wishlist",
		Undo: func(ctx context.Context, id uuid.UUID, _ struct{}) (struct{}, error) {
			return struct{}{}, s.gateway.AddToWishlist(ctx, userID, id)
		},
	})
	return err
}
