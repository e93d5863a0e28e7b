package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rently/rently-api/internal/domain/booking"
	"github.com/rently/rently-api/internal/domain/cart"
	"github.com/rently/rently-api/internal/domain/notice"
	"github.com/rently/rently-api/internal/pkg/cache"
	"github.com/rently/rently-api/internal/pkg/mutation"
)

type fakePruner struct {
	calls   int
	removed map[uuid.UUID]bool
}

func newFakePruner() *fakePruner {
	return &fakePruner{removed: make(map[uuid.UUID]bool)}
}

func (p *fakePruner) PruneReservations(_ context.Context, _ uuid.UUID, reservationIDs []uuid.UUID) (int, error) {
	p.calls++
	removed := 0
	for _, id := range reservationIDs {
		if !p.removed[id] {
			p.removed[id] = true
			removed++
		}
	}
	return removed, nil
}

func frame(t *testing.T, eventType EventType, payload interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	data, err := json.Marshal(Envelope{Type: eventType, Payload: raw})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return data
}

func newTestClient(pruner CartPruner) (*Client, *mutation.Engine) {
	engine := mutation.NewEngine(cache.NewStore(), notice.NewCenter())
	return NewClient("ws://unused", engine, pruner, time.Second), engine
}

func TestAvailabilityEventInvalidatesStudioRegion(t *testing.T) {
	client, engine := newTestClient(newFakePruner())

	studioID := uuid.New()
	region := booking.AvailabilityRegion(studioID)
	engine.Cache().Put(region, "cached availability")

	client.Handle(context.Background(), frame(t, EventAvailabilityChanged, AvailabilityChanged{
		ItemID:   uuid.New(),
		StudioID: studioID,
	}))

	if _, ok := engine.Cache().Get(region); ok {
		t.Error("expected cached availability dropped")
	}
	if gen := engine.Cache().Generation(region); gen != 1 {
		t.Errorf("expected generation 1, got %d", gen)
	}
}

func TestReservationEventPrunesAndNotifiesOnce(t *testing.T) {
	pruner := newFakePruner()
	client, engine := newTestClient(pruner)

	costumerID := uuid.New()
	reservationID := uuid.New()
	event := frame(t, EventReservationChanged, ReservationChanged{
		CostumerID:     costumerID,
		ReservationIDs: []uuid.UUID{reservationID},
	})

	ctx := context.Background()
	client.Handle(ctx, event)
	// Delivery guarantees are at-least-once; the replay must be silent.
	client.Handle(ctx, event)

	if pruner.calls != 2 {
		t.Fatalf("expected prune attempted per delivery, got %d", pruner.calls)
	}
	notices := engine.Notices().List(costumerID)
	if len(notices) != 1 {
		t.Fatalf("expected exactly one hold-expired notice, got %d", len(notices))
	}
	if notices[0].Level != notice.LevelInfo {
		t.Errorf("expected info notice, got %s", notices[0].Level)
	}

	if gen := engine.Cache().Generation(cart.Region(costumerID)); gen != 2 {
		t.Errorf("expected cart region invalidated per delivery, got generation %d", gen)
	}
}

func TestMalformedFramesAreDropped(t *testing.T) {
	pruner := newFakePruner()
	client, engine := newTestClient(pruner)

	ctx := context.Background()
	client.Handle(ctx, []byte("not json"))
	client.Handle(ctx, []byte(`{"type":"reservation_changed","payload":"not an object"}`))
	client.Handle(ctx, frame(t, EventType("unknown_event"), struct{}{}))

	if pruner.calls != 0 {
		t.Errorf("expected no prunes, got %d", pruner.calls)
	}
	if engine.Cache().Len() != 0 {
		t.Errorf("expected untouched cache, got %d entries", engine.Cache().Len())
	}
}

func TestRunDispatchesEventsFromStream(t *testing.T) {
	studioID := uuid.New()
	upgrader := websocket.Upgrader{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		raw, _ := json.Marshal(AvailabilityChanged{ItemID: uuid.New(), StudioID: studioID})
		data, _ := json.Marshal(Envelope{Type: EventAvailabilityChanged, Payload: raw})
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
		// Hold the connection open until the client hangs up.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	engine := mutation.NewEngine(cache.NewStore(), notice.NewCenter())
	client := NewClient("ws"+strings.TrimPrefix(server.URL, "http"), engine, newFakePruner(), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Run(ctx)

	region := booking.AvailabilityRegion(studioID)
	deadline := time.Now().Add(3 * time.Second)
	for engine.Cache().Generation(region) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for the pushed event to invalidate")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
