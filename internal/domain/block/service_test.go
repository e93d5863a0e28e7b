package block

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
	availability slots.Availability
	blockCalls   []marketplace.BlockRequest

	// failOn lists dates (DateOnly) whose block call fails.
	failOn map[time.Time]error
	// cancelAfter cancels the given context after N block calls.
	cancelAfter int
	cancel      context.CancelFunc
}

func (g *fakeGateway) ReserveStudioTimeSlot(_ context.Context, req marketplace.BlockRequest) error {
	g.blockCalls = append(g.blockCalls, req)
	if g.cancel != nil && len(g.blockCalls) == g.cancelAfter {
		g.cancel()
	}
	if err, ok := g.failOn[req.BookingDate]; ok {
		return err
	}
	return nil
}

func (g *fakeGateway) GetStudioAvailability(_ context.Context, studioID uuid.UUID) (*marketplace.StudioAvailability, error) {
	return &marketplace.StudioAvailability{StudioID: studioID, Availability: g.availability}, nil
}

func allWeekAvailability() slots.Availability {
	return slots.Availability{
		Days:  []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"},
		Times: []slots.Interval{{Start: "09:00", End: "18:00"}},
	}
}

func newTestService(gateway Gateway) (*Service, *mutation.Engine) {
	engine := mutation.NewEngine(cache.NewStore(), notice.NewCenter())
	return NewService(gateway, engine), engine
}

// 2026-08-24 is a Monday.
var monday = time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

func TestBlockSlotMode(t *testing.T) {
	gateway := &fakeGateway{availability: allWeekAvailability()}
	svc, _ := newTestService(gateway)

	studioID := uuid.New()
	summary, err := svc.Block(context.Background(), uuid.New(), Request{
		StudioID:    studioID,
		Mode:        ModeSlot,
		BookingDate: monday,
		StartTime:   "14:00",
		Hours:       2,
	})
	if err != nil {
		t.Fatalf("Block: %v", err)
	}
	if summary.Succeeded != 1 || summary.Failed != 0 {
		t.Errorf("expected 1 success, got %+v", summary)
	}

	call := gateway.blockCalls[0]
	if call.StartTime != "14:00" || call.Hours != 2 || !call.BookingDate.Equal(monday) {
		t.Errorf("unexpected block call %+v", call)
	}
}

func TestBlockSlotModeRejectsWindowOutsideHours(t *testing.T) {
	gateway := &fakeGateway{availability: allWeekAvailability()}
	svc, _ := newTestService(gateway)

	_, err := svc.Block(context.Background(), uuid.New(), Request{
		StudioID:    uuid.New(),
		Mode:        ModeSlot,
		BookingDate: monday,
		StartTime:   "17:00",
		Hours:       2,
	})
	if !errors.Is(err, ErrOutsideHours) {
		t.Fatalf("expected ErrOutsideHours, got %v", err)
	}
	if len(gateway.blockCalls) != 0 {
		t.Errorf("expected no block call, got %d", len(gateway.blockCalls))
	}
}

func TestBlockDayModeCoversWorkingHours(t *testing.T) {
	gateway := &fakeGateway{availability: allWeekAvailability()}
	svc, _ := newTestService(gateway)

	_, err := svc.Block(context.Background(), uuid.New(), Request{
		StudioID:    uuid.New(),
		Mode:        ModeDay,
		BookingDate: monday,
	})
	if err != nil {
		t.Fatalf("Block: %v", err)
	}

	call := gateway.blockCalls[0]
	if call.StartTime != "09:00" || call.Hours != 9 {
		t.Errorf("expected the full 09:00 working day, got %+v", call)
	}
}

func TestBlockRangeRequiresConfirmation(t *testing.T) {
	gateway := &fakeGateway{availability: allWeekAvailability()}
	svc, _ := newTestService(gateway)

	_, err := svc.Block(context.Background(), uuid.New(), Request{
		StudioID:  uuid.New(),
		Mode:      ModeRange,
		StartDate: monday,
		EndDate:   monday.AddDate(0, 0, 4),
	})
	if !errors.Is(err, ErrConfirmationRequired) {
		t.Fatalf("expected ErrConfirmationRequired, got %v", err)
	}
	if len(gateway.blockCalls) != 0 {
		t.Errorf("expected no block calls, got %d", len(gateway.blockCalls))
	}
}

func TestPreviewListsRangeDates(t *testing.T) {
	av := allWeekAvailability()
	av.Days = []string{"Saturday", "Sunday"}
	gateway := &fakeGateway{availability: av}
	svc, _ := newTestService(gateway)

	preview, err := svc.Preview(context.Background(), Request{
		StudioID:  uuid.New(),
		Mode:      ModeRange,
		StartDate: monday,
		EndDate:   monday.AddDate(0, 0, 6),
	})
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if len(preview.Dates) != 2 {
		t.Fatalf("expected the weekend only, got %v", preview.Dates)
	}
	if preview.Confirmed {
		t.Error("preview must not report confirmed")
	}
}

func TestBlockRangeContinuesPastFailures(t *testing.T) {
	midWeek := monday.AddDate(0, 0, 2)
	gateway := &fakeGateway{
		availability: allWeekAvailability(),
		failOn:       map[time.Time]error{midWeek: errors.New("slot already booked")},
	}
	svc, engine := newTestService(gateway)

	owner := uuid.New()
	summary, err := svc.Block(context.Background(), owner, Request{
		StudioID:  uuid.New(),
		Mode:      ModeRange,
		StartDate: monday,
		EndDate:   monday.AddDate(0, 0, 4),
		Confirm:   true,
	})
	if err != nil {
		t.Fatalf("Block: %v", err)
	}

	if summary.Requested != 5 || summary.Succeeded != 4 || summary.Failed != 1 {
		t.Fatalf("expected 4/1 over 5 days, got %+v", summary)
	}
	var failed *DayResult
	for i := range summary.Dates {
		if summary.Dates[i].Status == "failed" {
			failed = &summary.Dates[i]
		}
	}
	if failed == nil || !failed.Date.Equal(midWeek) {
		t.Errorf("expected day 3 marked failed, got %+v", summary.Dates)
	}

	notices := engine.Notices().List(owner)
	if len(notices) != 1 || notices[0].Level != notice.LevelInfo {
		t.Errorf("expected one info notice for the partial run, got %+v", notices)
	}
}

func TestBlockRangeNoAvailableDays(t *testing.T) {
	av := allWeekAvailability()
	av.Days = []string{"Sunday"}
	gateway := &fakeGateway{availability: av}
	svc, _ := newTestService(gateway)

	// Monday through Friday with a Sunday-only studio.
	_, err := svc.Block(context.Background(), uuid.New(), Request{
		StudioID:  uuid.New(),
		Mode:      ModeRange,
		StartDate: monday,
		EndDate:   monday.AddDate(0, 0, 4),
		Confirm:   true,
	})
	if !errors.Is(err, ErrNoAvailableDays) {
		t.Fatalf("expected ErrNoAvailableDays, got %v", err)
	}
}

func TestBlockRangeStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gateway := &fakeGateway{
		availability: allWeekAvailability(),
		cancelAfter:  2,
		cancel:       cancel,
	}
	svc, _ := newTestService(gateway)

	summary, err := svc.Block(ctx, uuid.New(), Request{
		StudioID:  uuid.New(),
		Mode:      ModeRange,
		StartDate: monday,
		EndDate:   monday.AddDate(0, 0, 4),
		Confirm:   true,
	})
	if err != nil {
		t.Fatalf("Block: %v", err)
	}
	if summary.Succeeded != 2 || summary.Skipped != 3 {
		t.Errorf("expected 2 done and 3 skipped, got %+v", summary)
	}
	if len(gateway.blockCalls) != 2 {
		t.Errorf("expected the run to stop after cancellation, got %d calls", len(gateway.blockCalls))
	}
}
