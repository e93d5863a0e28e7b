package realtime

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/rently/rently-api/internal/domain/booking"
	"github.com/rently/rently-api/internal/domain/cart"
	"github.com/rently/rently-api/internal/pkg/mutation"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	initialBackoff = time.Second
)

// CartPruner drops offline cart lines whose reservations no longer exist.
type CartPruner interface {
	PruneReservations(ctx context.Context, owner uuid.UUID, reservationIDs []uuid.UUID) (int, error)
}

// Client keeps one websocket subscription to the marketplace event stream
// and turns pushed events into cache invalidations and cart prunes. Events
// are handled one at a time in arrival order.
type Client struct {
	url        string
	dialer     *websocket.Dialer
	engine     *mutation.Engine
	carts      CartPruner
	maxBackoff time.Duration

	connected atomic.Bool
}

// NewClient creates the realtime client
func NewClient(url string, engine *mutation.Engine, carts CartPruner, maxBackoff time.Duration) *Client {
	if maxBackoff <= 0 {
		maxBackoff = 30 * time.Second
	}
	return &Client{
		url:        url,
		dialer:     websocket.DefaultDialer,
		engine:     engine,
		carts:      carts,
		maxBackoff: maxBackoff,
	}
}

// Connected reports whether the event stream is currently up.
func (c *Client) Connected() bool {
	return c.connected.Load()
}

// Run dials the event stream and redials with capped exponential backoff
// until the context is cancelled.
func (c *Client) Run(ctx context.Context) {
	backoff := initialBackoff
	for {
		if err := c.listen(ctx); err != nil {
			log.Warn().Err(err).Str("url", c.url).Msg("Realtime connection lost")
		}
		if ctx.Err() != nil {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > c.maxBackoff {
			backoff = c.maxBackoff
		}
	}
}

func (c *Client) listen(ctx context.Context) error {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	c.connected.Store(true)
	defer c.connected.Store(false)

	log.Info().Str("url", c.url).Msg("Realtime connection established")

	// The read loop owns the connection; pings run beside it and a
	// cancelled context closes the socket to unblock the read.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				conn.Close()
				return
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))
		c.Handle(ctx, message)
	}
}

// Handle dispatches one raw event frame. Unknown event types are logged and
// dropped; a malformed frame never kills the connection.
func (c *Client) Handle(ctx context.Context, message []byte) {
	var envelope Envelope
	if err := json.Unmarshal(message, &envelope); err != nil {
		log.Warn().Err(err).Msg("Realtime frame not decodable")
		return
	}

	switch envelope.Type {
	case EventAvailabilityChanged:
		var event AvailabilityChanged
		if err := json.Unmarshal(envelope.Payload, &event); err != nil {
			log.Warn().Err(err).Msg("availability_changed payload not decodable")
			return
		}
		c.handleAvailabilityChanged(event)

	case EventReservationChanged:
		var event ReservationChanged
		if err := json.Unmarshal(envelope.Payload, &event); err != nil {
			log.Warn().Err(err).Msg("reservation_changed payload not decodable")
			return
		}
		c.handleReservationChanged(ctx, event)

	case EventConnectionError:
		var event ConnectionError
		if err := json.Unmarshal(envelope.Payload, &event); err == nil {
			log.Warn().Str("reason", event.Reason).Msg("Marketplace reported connection error")
		}

	default:
		log.Debug().Str("type", string(envelope.Type)).Msg("Unknown realtime event dropped")
	}
}

func (c *Client) handleAvailabilityChanged(event AvailabilityChanged) {
	c.engine.Cache().Invalidate(booking.AvailabilityRegion(event.StudioID))
	log.Debug().
		Str("studio_id", event.StudioID.String()).
		Str("item_id", event.ItemID.String()).
		Msg("Availability invalidated by push event")
}

func (c *Client) handleReservationChanged(ctx context.Context, event ReservationChanged) {
	removed, err := c.carts.PruneReservations(ctx, event.CostumerID, event.ReservationIDs)
	if err != nil {
		log.Error().Err(err).
			Str("costumer_id", event.CostumerID.String()).
			Msg("Failed to prune expired reservations")
		return
	}

	c.engine.Cache().Invalidate(cart.Region(event.CostumerID))

	// Only the first delivery carries news; a replay prunes nothing and
	// stays silent.
	if removed > 0 {
		c.engine.Notices().Info(event.CostumerID, "A reservation hold in your cart expired")
	}
}
