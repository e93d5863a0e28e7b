package marketplace

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// GetWishlist fetches the user's wishlist.
func (c *Client) GetWishlist(ctx context.Context, userID uuid.UUID) ([]WishlistItem, error) {
	var items []WishlistItem
	path := fmt.Sprintf("/api/v1/users/%s/wishlist", userID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AddToWishlist adds an item to the user's wishlist.
func (c *Client) AddToWishlist(ctx context.Context, userID, itemID uuid.UUID) error {
	path := fmt.Sprintf("/api/v1/users/%s/wishlist/%s", userID, itemID)
	return c.doJSON(ctx, http.MethodPut, path, nil, nil)
}

// RemoveFromWishlist removes an item from the user's wishlist.
func (c *Client) RemoveFromWishlist(ctx context.Context, userID, itemID uuid.UUID) error {
	path := fmt.Sprintf("/api/v1/users/%s/wishlist/%s", userID, itemID)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}
