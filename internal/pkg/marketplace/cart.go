package marketplace

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// AddItemToCart adds one item to the user's server cart and returns the
// resulting cart, the sole source of truth after the call.
func (c *Client) AddItemToCart(ctx context.Context, userID uuid.UUID, req AddItemRequest) (*Cart, error) {
	var cart Cart
	path := fmt.Sprintf("/api/v1/users/%s/cart/items", userID)
	if err := c.doJSON(ctx, http.MethodPost, path, req, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddItemsToCart adds a batch of item ids in one call; used by the offline
// cart merge on login.
func (c *Client) AddItemsToCart(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID) ([]CartItem, error) {
	var items []CartItem
	path := fmt.Sprintf("/api/v1/users/%s/cart/items/batch", userID)
	body := map[string][]uuid.UUID{"item_ids": itemIDs}
	if err := c.doJSON(ctx, http.MethodPost, path, body, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// RemoveItemFromCart removes one cart line and returns the resulting cart.
func (c *Client) RemoveItemFromCart(ctx context.Context, userID uuid.UUID, item CartItem) (*Cart, error) {
	var cart Cart
	path := fmt.Sprintf("/api/v1/users/%s/cart/items/%s", userID, item.ItemID)
	if err := c.doJSON(ctx, http.MethodDelete, path, item, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// RemoveItemsFromCart removes a batch of item ids and returns the removed
// lines.
func (c *Client) RemoveItemsFromCart(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID) ([]CartItem, error) {
	var items []CartItem
	path := fmt.Sprintf("/api/v1/users/%s/cart/items/batch/delete", userID)
	body := map[string][]uuid.UUID{"item_ids": itemIDs}
	if err := c.doJSON(ctx, http.MethodPost, path, body, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetUserCart fetches the user's server cart.
func (c *Client) GetUserCart(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	var cart Cart
	path := fmt.Sprintf("/api/v1/users/%s/cart", userID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// DeleteUserCart clears the server cart and returns the removed lines so a
// compensating re-add can restore them.
func (c *Client) DeleteUserCart(ctx context.Context, userID uuid.UUID) ([]CartItem, error) {
	var items []CartItem
	path := fmt.Sprintf("/api/v1/users/%s/cart", userID)
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateUserCart replaces the server cart wholesale.
func (c *Client) UpdateUserCart(ctx context.Context, userID uuid.UUID, cart Cart) (*Cart, error) {
	var updated Cart
	path := fmt.Sprintf("/api/v1/users/%s/cart", userID)
	if err := c.doJSON(ctx, http.MethodPut, path, cart, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
