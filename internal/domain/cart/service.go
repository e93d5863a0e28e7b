package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rently/rently-api/internal/pkg/cache"
	"github.com/rently/rently-api/internal/pkg/marketplace"
	"github.com/rently/rently-api/internal/pkg/mutation"
)

// Session is the explicit identity handle every cart operation receives.
// SessionID keys the offline cart; a non-nil UserID switches the service to
// authenticated mode, where the server cart is the sole source of truth.
type Session struct {
	SessionID uuid.UUID
	UserID    uuid.UUID
}

// Authenticated reports whether a user id is bound to the session
func (s Session) Authenticated() bool {
	return s.UserID != uuid.Nil
}

// Owner returns the identity notices and cache regions key on.
func (s Session) Owner() uuid.UUID {
	if s.Authenticated() {
		return s.UserID
	}
	return s.SessionID
}

// Region is the cache region holding an owner's cart reads.
func Region(owner uuid.UUID) cache.Region {
	return cache.Key("cart", owner.String())
}

// Gateway is the slice of the marketplace client the cart service needs.
// Narrowed for mocking in tests.
type Gateway interface {
	AddItemToCart(ctx context.Context, userID uuid.UUID, req marketplace.AddItemRequest) (*marketplace.Cart, error)
	AddItemsToCart(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID) ([]marketplace.CartItem, error)
	RemoveItemFromCart(ctx context.Context, userID uuid.UUID, item marketplace.CartItem) (*marketplace.Cart, error)
	GetUserCart(ctx context.Context, userID uuid.UUID) (*marketplace.Cart, error)
	DeleteUserCart(ctx context.Context, userID uuid.UUID) ([]marketplace.CartItem, error)
	UpdateUserCart(ctx context.Context, userID uuid.UUID, cart marketplace.Cart) (*marketplace.Cart, error)
}

// Service is the cart reconciliation controller. Every cart-affecting action
// goes through here; it decides between the offline store and the server
// cart by authentication state, and performs the one-time merge when a
// session crosses the login boundary.
type Service struct {
	store   LocalStore
	gateway Gateway
	engine  *mutation.Engine
}

// NewService creates the cart service
func NewService(store LocalStore, gateway Gateway, engine *mutation.Engine) *Service {
	return &Service{store: store, gateway: gateway, engine: engine}
}

// GetCart returns the cart the session currently lives on: the offline cart
// while anonymous, the server cart once authenticated.
func (s *Service) GetCart(ctx context.Context, sess Session) (marketplace.Cart, error) {
	if !sess.Authenticated() {
		local, err := s.store.Get(ctx, sess.SessionID)
		if err != nil {
			return marketplace.Cart{}, err
		}
		if local == nil {
			return marketplace.Cart{}, nil
		}
		return *local, nil
	}

	s.mergePending(ctx, sess)

	region := Region(sess.UserID)
	if cached, ok := s.engine.Cache().Get(region); ok {
		if cart, ok := cached.(marketplace.Cart); ok {
			return cart, nil
		}
	}

	cart, err := s.gateway.GetUserCart(ctx, sess.UserID)
	if err != nil {
		return marketplace.Cart{}, err
	}
	s.engine.Cache().Put(region, *cart)
	return *cart, nil
}

// AddItem adds an item to the session's cart. Anonymous adds are intents
// persisted to the offline store; authenticated adds go to the marketplace
// and the returned cart becomes authoritative. Both paths offer an undo.
func (s *Service) AddItem(ctx context.Context, sess Session, req AddItemRequest) (marketplace.Cart, error) {
	if !sess.Authenticated() {
		return s.addLocal(ctx, sess, req)
	}

	s.mergePending(ctx, sess)

	return mutation.Run(ctx, s.engine, mutation.Op[AddItemRequest, marketplace.Cart]{
		Owner:     sess.Owner(),
		Variables: req,
		Mutate: func(ctx context.Context, vars AddItemRequest) (marketplace.Cart, error) {
			cart, err := s.gateway.AddItemToCart(ctx, sess.UserID, marketplace.AddItemRequest{
				ItemID:      vars.ItemID,
				BookingDate: vars.BookingDate,
				StartTime:   vars.StartTime,
				Hours:       vars.Hours,
			})
			if err != nil {
				return marketplace.Cart{}, err
			}
			return *cart, nil
		},
		Invalidate:     []cache.Region{Region(sess.UserID)},
		SuccessMessage: req.Name + " added to cart",
		Undo: func(ctx context.Context, vars AddItemRequest, _ marketplace.Cart) (marketplace.Cart, error) {
			cart, err := s.gateway.RemoveItemFromCart(ctx, sess.UserID, marketplace.CartItem{
				ItemID:      vars.ItemID,
				BookingDate: vars.BookingDate,
			})
			if err != nil {
				return marketplace.Cart{}, err
			}
			return *cart, nil
		},
	})
}

func (s *Service) addLocal(ctx context.Context, sess Session, req AddItemRequest) (marketplace.Cart, error) {
	return mutation.Run(ctx, s.engine, mutation.Op[AddItemRequest, marketplace.Cart]{
		Owner:     sess.Owner(),
		Variables: req,
		Mutate: func(ctx context.Context, vars AddItemRequest) (marketplace.Cart, error) {
			current, err := s.store.Get(ctx, sess.SessionID)
			if err != nil {
				return marketplace.Cart{}, err
			}
			cart := marketplace.Cart{}
			if current != nil {
				cart = *current
			}

			quantity := vars.Hours
			if quantity < 1 {
				quantity = 1
			}
			cart.Items = append(cart.Items, marketplace.CartItem{
				ItemID:      vars.ItemID,
				Name:        vars.Name,
				Price:       vars.Price,
				Quantity:    quantity,
				Total:       vars.Price * float64(quantity),
				BookingDate: vars.BookingDate,
				StudioID:    vars.StudioID,
				StudioName:  vars.StudioName,
			})

			if err := s.store.Set(ctx, sess.SessionID, cart); err != nil {
				return marketplace.Cart{}, err
			}
			return cart, nil
		},
		Invalidate:     []cache.Region{Region(sess.SessionID)},
		SuccessMessage: req.Name + " added to cart",
		Undo: func(ctx context.Context, vars AddItemRequest, _ marketplace.Cart) (marketplace.Cart, error) {
			return s.removeFirstLocal(ctx, sess.SessionID, vars.ItemID)
		},
	})
}

// RemoveItem removes the first matching cart line.
func (s *Service) RemoveItem(ctx context.Context, sess Session, req RemoveItemRequest) (marketplace.Cart, error) {
	if !sess.Authenticated() {
		var removed marketplace.CartItem
		return mutation.Run(ctx, s.engine, mutation.Op[RemoveItemRequest, marketplace.Cart]{
			Owner:     sess.Owner(),
			Variables: req,
			Mutate: func(ctx context.Context, vars RemoveItemRequest) (marketplace.Cart, error) {
				cart, line, err := s.takeFirstLocal(ctx, sess.SessionID, vars.ItemID)
				if err != nil {
					return marketplace.Cart{}, err
				}
				removed = line
				return cart, nil
			},
			Invalidate:     []cache.Region{Region(sess.SessionID)},
			SuccessMessage: "Item removed from cart",
			Undo: func(ctx context.Context, _ RemoveItemRequest, _ marketplace.Cart) (marketplace.Cart, error) {
				return s.appendLocal(ctx, sess.SessionID, removed)
			},
		})
	}

	s.mergePending(ctx, sess)

	var removed marketplace.CartItem
	return mutation.Run(ctx, s.engine, mutation.Op[RemoveItemRequest, marketplace.Cart]{
		Owner:     sess.Owner(),
		Variables: req,
		Mutate: func(ctx context.Context, vars RemoveItemRequest) (marketplace.Cart, error) {
			current, err := s.gateway.GetUserCart(ctx, sess.UserID)
			if err != nil {
				return marketplace.Cart{}, err
			}
			line, ok := findLine(current.Items, vars.ItemID)
			if !ok {
				return marketplace.Cart{}, ErrItemNotFound
			}
			removed = line

			cart, err := s.gateway.RemoveItemFromCart(ctx, sess.UserID, line)
			if err != nil {
				return marketplace.Cart{}, err
			}
			return *cart, nil
		},
		Invalidate:     []cache.Region{Region(sess.UserID)},
		SuccessMessage: "Item removed from cart",
		Undo: func(ctx context.Context, _ RemoveItemRequest, _ marketplace.Cart) (marketplace.Cart, error) {
			cart, err := s.gateway.AddItemToCart(ctx, sess.UserID, marketplace.AddItemRequest{
				ItemID:      removed.ItemID,
				BookingDate: removed.BookingDate,
				Hours:       removed.Quantity,
			})
			if err != nil {
				return marketplace.Cart{}, err
			}
			return *cart, nil
		},
	})
}

// ClearCart empties the session's cart. The undo restores the full removed
// item list in a single call; a partial failure inside that restore is not
// itself undoable.
func (s *Service) ClearCart(ctx context.Context, sess Session) (marketplace.Cart, error) {
	if !sess.Authenticated() {
		var previous marketplace.Cart
		return mutation.Run(ctx, s.engine, mutation.Op[struct{}, marketplace.Cart]{
			Owner: sess.Owner(),
			Mutate: func(ctx context.Context, _ struct{}) (marketplace.Cart, error) {
				current, err := s.store.Get(ctx, sess.SessionID)
				if err != nil {
					return marketplace.Cart{}, err
				}
				if current != nil {
					previous = *current
				}
				if err := s.store.Clear(ctx, sess.SessionID); err != nil {
					return marketplace.Cart{}, err
				}
				return marketplace.Cart{}, nil
			},
			Invalidate:     []cache.Region{Region(sess.SessionID)},
			SuccessMessage: "Cart cleared",
			Undo: func(ctx context.Context, _ struct{}, _ marketplace.Cart) (marketplace.Cart, error) {
				if len(previous.Items) == 0 {
					// Nothing to restore; an empty-buffer undo is an
					// expected no-op.
					return marketplace.Cart{}, nil
				}
				if err := s.store.Set(ctx, sess.SessionID, previous); err != nil {
					return marketplace.Cart{}, err
				}
				return previous, nil
			},
		})
	}

	s.mergePending(ctx, sess)

	var removed []marketplace.CartItem
	return mutation.Run(ctx, s.engine, mutation.Op[struct{}, marketplace.Cart]{
		Owner: sess.Owner(),
		Mutate: func(ctx context.Context, _ struct{}) (marketplace.Cart, error) {
			items, err := s.gateway.DeleteUserCart(ctx, sess.UserID)
			if err != nil {
				return marketplace.Cart{}, err
			}
			removed = items
			return marketplace.Cart{}, nil
		},
		Invalidate:     []cache.Region{Region(sess.UserID)},
		SuccessMessage: "Cart cleared",
		Undo: func(ctx context.Context, _ struct{}, _ marketplace.Cart) (marketplace.Cart, error) {
			if len(removed) == 0 {
				return marketplace.Cart{}, nil
			}
			cart, err := s.gateway.UpdateUserCart(ctx, sess.UserID, marketplace.Cart{Items: removed})
			if err != nil {
				return marketplace.Cart{}, err
			}
			return *cart, nil
		},
	})
}

// Increment extends a cart line by one hour: the booking request is
// re-issued one hour after the line's current booking date and the total is
// recomputed from price and the new quantity.
func (s *Service) Increment(ctx context.Context, sess Session, itemID uuid.UUID) (marketplace.Cart, error) {
	if !sess.Authenticated() {
		return s.adjustLocalQuantity(ctx, sess, itemID, +1)
	}

	s.mergePending(ctx, sess)

	return mutation.Run(ctx, s.engine, mutation.Op[uuid.UUID, marketplace.Cart]{
		Owner:     sess.Owner(),
		Variables: itemID,
		Mutate: func(ctx context.Context, id uuid.UUID) (marketplace.Cart, error) {
			current, err := s.gateway.GetUserCart(ctx, sess.UserID)
			if err != nil {
				return marketplace.Cart{}, err
			}
			line, ok := findLine(current.Items, id)
			if !ok {
				return marketplace.Cart{}, ErrItemNotFound
			}

			cart, err := s.gateway.AddItemToCart(ctx, sess.UserID, marketplace.AddItemRequest{
				ItemID:      id,
				BookingDate: line.BookingDate.Add(time.Hour),
				Hours:       1,
			})
			if err != nil {
				return marketplace.Cart{}, err
			}
			return *cart, nil
		},
		Invalidate:     []cache.Region{Region(sess.UserID)},
		SuccessMessage: "Booking extended by an hour",
	})
}

// Decrement shortens a cart line by one hour. A line already at one hour is
// rejected before any network call.
func (s *Service) Decrement(ctx context.Context, sess Session, itemID uuid.UUID) (marketplace.Cart, error) {
	if !sess.Authenticated() {
		return s.adjustLocalQuantity(ctx, sess, itemID, -1)
	}

	s.mergePending(ctx, sess)

	return mutation.Run(ctx, s.engine, mutation.Op[uuid.UUID, marketplace.Cart]{
		Owner:     sess.Owner(),
		Variables: itemID,
		Mutate: func(ctx context.Context, id uuid.UUID) (marketplace.Cart, error) {
			current, err := s.gateway.GetUserCart(ctx, sess.UserID)
			if err != nil {
				return marketplace.Cart{}, err
			}
			updated, err := decrementLine(*current, id)
			if err != nil {
				return marketplace.Cart{}, err
			}

			cart, err := s.gateway.UpdateUserCart(ctx, sess.UserID, updated)
			if err != nil {
				return marketplace.Cart{}, err
			}
			return *cart, nil
		},
		Invalidate:     []cache.Region{Region(sess.UserID)},
		SuccessMessage: "Booking shortened by an hour",
	})
}

func (s *Service) adjustLocalQuantity(ctx context.Context, sess Session, itemID uuid.UUID, delta int) (marketplace.Cart, error) {
	message := "Booking extended by an hour"
	if delta < 0 {
		message = "Booking shortened by an hour"
	}

	return mutation.Run(ctx, s.engine, mutation.Op[uuid.UUID, marketplace.Cart]{
		Owner:     sess.Owner(),
		Variables: itemID,
		Mutate: func(ctx context.Context, id uuid.UUID) (marketplace.Cart, error) {
			current, err := s.store.Get(ctx, sess.SessionID)
			if err != nil {
				return marketplace.Cart{}, err
			}
			if current == nil {
				return marketplace.Cart{}, ErrItemNotFound
			}

			cart := *current
			found := false
			for i := range cart.Items {
				if cart.Items[i].ItemID != id {
					continue
				}
				found = true
				next := cart.Items[i].Quantity + delta
				if next < 1 {
					return marketplace.Cart{}, ErrMinQuantity
				}
				cart.Items[i].Quantity = next
				cart.Items[i].Total = cart.Items[i].Price * float64(next)
				break
			}
			if !found {
				return marketplace.Cart{}, ErrItemNotFound
			}

			if err := s.store.Set(ctx, sess.SessionID, cart); err != nil {
				return marketplace.Cart{}, err
			}
			return cart, nil
		},
		Invalidate:     []cache.Region{Region(sess.SessionID)},
		SuccessMessage: message,
	})
}

// Merge flushes the offline cart buffer into the server cart, exactly once
// per login. An empty buffer is a no-op, which makes the transition
// idempotent against duplicate login events. A failed flush retains the
// buffer; it is retried before the next authenticated mutation.
func (s *Service) Merge(ctx context.Context, sess Session) (int, error) {
	if !sess.Authenticated() {
		return 0, ErrNotAuthenticated
	}

	local, err := s.store.Get(ctx, sess.SessionID)
	if err != nil {
		return 0, err
	}
	if local == nil || len(local.Items) == 0 {
		return 0, nil
	}

	itemIDs := make([]uuid.UUID, 0, len(local.Items))
	for _, item := range local.Items {
		itemIDs = append(itemIDs, item.ItemID)
	}

	if _, err := s.gateway.AddItemsToCart(ctx, sess.UserID, itemIDs); err != nil {
		return 0, err
	}

	// The buffer is cleared only after the server accepted the batch; the
	// cart now lives server-side.
	if err := s.store.Clear(ctx, sess.SessionID); err != nil {
		return 0, err
	}

	s.engine.Cache().Invalidate(Region(sess.UserID), Region(sess.SessionID))

	log.Info().
		Str("user_id", sess.UserID.String()).
		Int("items", len(itemIDs)).
		Msg("Offline cart merged into server cart")

	return len(itemIDs), nil
}

// mergePending retries a stranded offline buffer before an authenticated
// mutation. Failure is logged and the buffer kept; it must never block the
// mutation itself.
func (s *Service) mergePending(ctx context.Context, sess Session) {
	if _, err := s.Merge(ctx, sess); err != nil {
		log.Warn().Err(err).
			Str("user_id", sess.UserID.String()).
			Msg("Offline cart merge deferred")
	}
}

// PruneReservations drops offline cart lines bound to the given reservation
// ids, used when the marketplace reports those holds expired or changed.
// Absent lines are skipped, so replayed events are harmless.
func (s *Service) PruneReservations(ctx context.Context, owner uuid.UUID, reservationIDs []uuid.UUID) (int, error) {
	local, err := s.store.Get(ctx, owner)
	if err != nil {
		return 0, err
	}
	if local == nil || len(local.Items) == 0 {
		return 0, nil
	}

	expired := make(map[uuid.UUID]bool, len(reservationIDs))
	for _, id := range reservationIDs {
		expired[id] = true
	}

	kept := local.Items[:0]
	removed := 0
	for _, item := range local.Items {
		if item.ReservationID != nil && expired[*item.ReservationID] {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	if removed == 0 {
		return 0, nil
	}

	local.Items = kept
	if err := s.store.Set(ctx, owner, *local); err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *Service) removeFirstLocal(ctx context.Context, sessionID, itemID uuid.UUID) (marketplace.Cart, error) {
	cart, _, err := s.takeFirstLocal(ctx, sessionID, itemID)
	return cart, err
}

func (s *Service) takeFirstLocal(ctx context.Context, sessionID, itemID uuid.UUID) (marketplace.Cart, marketplace.CartItem, error) {
	current, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return marketplace.Cart{}, marketplace.CartItem{}, err
	}
	if current == nil {
		return marketplace.Cart{}, marketplace.CartItem{}, ErrItemNotFound
	}

	cart := *current
	for i, item := range cart.Items {
		if item.ItemID == itemID {
			cart.Items = append(cart.Items[:i:i], cart.Items[i+1:]...)
			if err := s.store.Set(ctx, sessionID, cart); err != nil {
				return marketplace.Cart{}, marketplace.CartItem{}, err
			}
			return cart, item, nil
		}
	}
	return marketplace.Cart{}, marketplace.CartItem{}, ErrItemNotFound
}

func (s *Service) appendLocal(ctx context.Context, sessionID uuid.UUID, item marketplace.CartItem) (marketplace.Cart, error) {
	current, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return marketplace.Cart{}, err
	}
	cart := marketplace.Cart{}
	if current != nil {
		cart = *current
	}
	item.Total = item.Price * float64(item.Quantity)
	cart.Items = append(cart.Items, item)
	if err := s.store.Set(ctx, sessionID, cart); err != nil {
		return marketplace.Cart{}, err
	}
	return cart, nil
}

func findLine(items []marketplace.CartItem, itemID uuid.UUID) (marketplace.CartItem, bool) {
	for _, item := range items {
		if item.ItemID == itemID {
			return item, true
		}
	}
	return marketplace.CartItem{}, false
}

func decrementLine(cart marketplace.Cart, itemID uuid.UUID) (marketplace.Cart, error) {
	for i := range cart.Items {
		if cart.Items[i].ItemID != itemID {
			continue
		}
		if cart.Items[i].Quantity <= 1 {
			return marketplace.Cart{}, ErrMinQuantity
		}
		cart.Items[i].Quantity--
		cart.Items[i].Total = cart.Items[i].Price * float64(cart.Items[i].Quantity)
		return cart, nil
	}
	return marketplace.Cart{}, ErrItemNotFound
}
