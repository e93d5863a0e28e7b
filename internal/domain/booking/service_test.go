package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rently/rently-api/internal/domain/notice"
	"github.com/rently/rently-api/internal/domain/slots"
	"github.com/rently/rently-api/internal/pkg/cache"
	"github.com/rently/rently-api/internal/pkg/marketplace"
	"github.com/rently/rently-api/internal/pkg/mutation"
)

type fakeGateway struct {
	availability      slots.Availability
	availabilityCalls int

	reserveErr   error
	reserveCalls []marketplace.ReserveRequest
	released     []uuid.UUID
}

func (g *fakeGateway) ReserveTimeSlot(_ context.Context, _ uuid.UUID, req marketplace.ReserveRequest) (*marketplace.Reservation, error) {
	g.reserveCalls = append(g.reserveCalls, req)
	if g.reserveErr != nil {
		return nil, g.reserveErr
	}
	return &marketplace.Reservation{
		ID:          uuid.New(),
		ItemID:      req.ItemID,
		StudioID:    req.StudioID,
		BookingDate: req.BookingDate,
		Hours:       req.Hours,
		Status:      marketplace.ReservationHeld,
	}, nil
}

func (g *fakeGateway) ReserveTimeSlots(_ context.Context, _ uuid.UUID, req marketplace.ReserveRequest) ([]marketplace.Reservation, error) {
	g.reserveCalls = append(g.reserveCalls, req)
	out := make([]marketplace.Reservation, req.Hours)
	for i := range out {
		out[i] = marketplace.Reservation{
			ID:          uuid.New(),
			ItemID:      req.ItemID,
			StudioID:    req.StudioID,
			BookingDate: req.BookingDate.Add(time.Duration(i) * time.Hour),
			Hours:       1,
			Status:      marketplace.ReservationHeld,
		}
	}
	return out, nil
}

func (g *fakeGateway) ReleaseTimeSlot(_ context.Context, _ uuid.UUID, reservationID uuid.UUID) error {
	g.released = append(g.released, reservationID)
	return nil
}

func (g *fakeGateway) CancelReservation(_ context.Context, _ uuid.UUID) error { return nil }

func (g *fakeGateway) ApproveReservation(_ context.Context, reservationID uuid.UUID) (*marketplace.Reservation, error) {
	return &marketplace.Reservation{ID: reservationID, Status: marketplace.ReservationApproved}, nil
}

func (g *fakeGateway) ExtendReservation(_ context.Context, reservationID uuid.UUID, hours int) (*marketplace.Reservation, error) {
	return &marketplace.Reservation{ID: reservationID, Hours: hours, Status: marketplace.ReservationHeld}, nil
}

func (g *fakeGateway) GetStudioAvailability(_ context.Context, studioID uuid.UUID) (*marketplace.StudioAvailability, error) {
	g.availabilityCalls++
	return &marketplace.StudioAvailability{StudioID: studioID, Availability: g.availability}, nil
}

func weekdayAvailability() slots.Availability {
	return slots.Availability{
		Days:  []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
		Times: []slots.Interval{{Start: "09:00", End: "18:00"}},
	}
}

func newTestService(gateway Gateway) (*Service, *mutation.Engine) {
	engine := mutation.NewEngine(cache.NewStore(), notice.NewCenter())
	return NewService(gateway, engine), engine
}

func reserveReq(studioID uuid.UUID, date time.Time, start string, hours int) ReserveRequest {
	return ReserveRequest{
		ItemID:      uuid.New(),
		StudioID:    studioID,
		BookingDate: date,
		StartTime:   start,
		Hours:       hours,
	}
}

// 2026-08-24 is a Monday.
var monday = time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

func TestAvailabilityCachedUntilInvalidated(t *testing.T) {
	gateway := &fakeGateway{availability: weekdayAvailability()}
	svc, _ := newTestService(gateway)

	studioID := uuid.New()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := svc.Availability(ctx, studioID); err != nil {
			t.Fatalf("Availability #%d: %v", i+1, err)
		}
	}
	if gateway.availabilityCalls != 1 {
		t.Fatalf("expected 1 fetch for repeated reads, got %d", gateway.availabilityCalls)
	}

	// A successful hold invalidates the studio's availability; the next
	// read refetches.
	if _, err := svc.Reserve(ctx, uuid.New(), reserveReq(studioID, monday, "14:00", 2)); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if _, err := svc.Availability(ctx, studioID); err != nil {
		t.Fatalf("Availability after reserve: %v", err)
	}
	if gateway.availabilityCalls != 2 {
		t.Errorf("expected refetch after invalidation, got %d calls", gateway.availabilityCalls)
	}
}

func TestReserveRejectsClosedDay(t *testing.T) {
	gateway := &fakeGateway{availability: weekdayAvailability()}
	svc, _ := newTestService(gateway)

	sunday := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	_, err := svc.Reserve(context.Background(), uuid.New(), reserveReq(uuid.New(), sunday, "14:00", 1))
	if !errors.Is(err, ErrDayNotAvailable) {
		t.Fatalf("expected ErrDayNotAvailable, got %v", err)
	}
	if len(gateway.reserveCalls) != 0 {
		t.Errorf("expected no reservation attempt, got %d", len(gateway.reserveCalls))
	}
}

func TestReserveRejectsWindowOutsideHours(t *testing.T) {
	gateway := &fakeGateway{availability: weekdayAvailability()}
	svc, _ := newTestService(gateway)

	_, err := svc.Reserve(context.Background(), uuid.New(), reserveReq(uuid.New(), monday, "17:00", 2))
	if !errors.Is(err, ErrOutsideHours) {
		t.Fatalf("expected ErrOutsideHours, got %v", err)
	}
	if len(gateway.reserveCalls) != 0 {
		t.Errorf("expected no reservation attempt, got %d", len(gateway.reserveCalls))
	}
}

func TestReserveCombinesDateAndClock(t *testing.T) {
	gateway := &fakeGateway{availability: weekdayAvailability()}
	svc, _ := newTestService(gateway)

	if _, err := svc.Reserve(context.Background(), uuid.New(), reserveReq(uuid.New(), monday, "14:00", 2)); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	want := time.Date(2026, 8, 24, 14, 0, 0, 0, time.UTC)
	if got := gateway.reserveCalls[0].BookingDate; !got.Equal(want) {
		t.Errorf("expected booking at %v, got %v", want, got)
	}
}

func TestReserveUndoReleasesHold(t *testing.T) {
	gateway := &fakeGateway{availability: weekdayAvailability()}
	svc, engine := newTestService(gateway)

	userID := uuid.New()
	ctx := context.Background()
	res, err := svc.Reserve(ctx, userID, reserveReq(uuid.New(), monday, "14:00", 2))
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	notices := engine.Notices().List(userID)
	if len(notices) != 1 || !notices[0].Undoable {
		t.Fatalf("expected one undoable notice, got %+v", notices)
	}
	if err := engine.Notices().Undo(ctx, userID, notices[0].ID); err != nil {
		t.Fatalf("Undo: %v", err)
	}

	if len(gateway.released) != 1 || gateway.released[0] != res.ID {
		t.Errorf("expected release of %s, got %v", res.ID, gateway.released)
	}
}

func TestReserveBatchUndoReleasesEveryHold(t *testing.T) {
	gateway := &fakeGateway{availability: weekdayAvailability()}
	svc, engine := newTestService(gateway)

	userID := uuid.New()
	ctx := context.Background()
	reservations, err := svc.ReserveBatch(ctx, userID, reserveReq(uuid.New(), monday, "10:00", 3))
	if err != nil {
		t.Fatalf("ReserveBatch: %v", err)
	}
	if len(reservations) != 3 {
		t.Fatalf("expected 3 holds, got %d", len(reservations))
	}

	notices := engine.Notices().List(userID)
	if len(notices) != 1 {
		t.Fatalf("expected one notice, got %d", len(notices))
	}
	if err := engine.Notices().Undo(ctx, userID, notices[0].ID); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if len(gateway.released) != 3 {
		t.Errorf("expected 3 releases, got %d", len(gateway.released))
	}
}

func TestReserveFailurePublishesNoNotice(t *testing.T) {
	gateway := &fakeGateway{
		availability: weekdayAvailability(),
		reserveErr:   &marketplace.APIError{Code: "SLOT_TAKEN", Message: "slot already held", Status: 409},
	}
	svc, engine := newTestService(gateway)

	userID := uuid.New()
	_, err := svc.Reserve(context.Background(), userID, reserveReq(uuid.New(), monday, "14:00", 1))
	var apiErr *marketplace.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "SLOT_TAKEN" {
		t.Fatalf("expected SLOT_TAKEN, got %v", err)
	}
	if notices := engine.Notices().List(userID); len(notices) != 0 {
		t.Errorf("expected no notices on failure, got %d", len(notices))
	}
}
