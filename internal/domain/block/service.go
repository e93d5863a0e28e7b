package block

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rently/rently-api/internal/domain/booking"
	"github.com/rently/rently-api/internal/domain/slots"
	"github.com/rently/rently-api/internal/pkg/marketplace"
	"github.com/rently/rently-api/internal/pkg/mutation"
)

// Gateway is the slice of the marketplace client the block workflow needs.
type Gateway interface {
	ReserveStudioTimeSlot(ctx context.Context, req marketplace.BlockRequest) error
	GetStudioAvailability(ctx context.Context, studioID uuid.UUID) (*marketplace.StudioAvailability, error)
}

// Service runs the block-time-slot workflow: a studio owner takes windows
// off their own calendar so customers cannot book them. Range runs are
// sequential and keep going past individual failures; the summary carries
// every date's outcome.
type Service struct {
	gateway Gateway
	engine  *mutation.Engine
}

// NewService creates the block service
func NewService(gateway Gateway, engine *mutation.Engine) *Service {
	return &Service{gateway: gateway, engine: engine}
}

func (s *Service) availability(ctx context.Context, studioID uuid.UUID) (slots.Availability, error) {
	region := booking.AvailabilityRegion(studioID)
	if cached, ok := s.engine.Cache().Get(region); ok {
		if av, ok := cached.(marketplace.StudioAvailability); ok {
			return av.Availability, nil
		}
	}

	av, err := s.gateway.GetStudioAvailability(ctx, studioID)
	if err != nil {
		return slots.Availability{}, err
	}
	s.engine.Cache().Put(region, *av)
	return av.Availability, nil
}

// Preview lists the dates a range request would block, without executing.
func (s *Service) Preview(ctx context.Context, req Request) (Preview, error) {
	av, err := s.availability(ctx, req.StudioID)
	if err != nil {
		return Preview{}, err
	}
	dates, err := rangeDates(av, req)
	if err != nil {
		return Preview{}, err
	}
	return Preview{Dates: dates}, nil
}

// Block executes the request in its mode. Slot and day block one date;
// range blocks every available date between StartDate and EndDate and must
// be confirmed first.
func (s *Service) Block(ctx context.Context, owner uuid.UUID, req Request) (Summary, error) {
	av, err := s.availability(ctx, req.StudioID)
	if err != nil {
		return Summary{}, err
	}

	switch req.Mode {
	case ModeSlot:
		if req.BookingDate.IsZero() || req.StartTime == "" || req.Hours < 1 {
			return Summary{}, ErrMissingWindow
		}
		fits, err := av.FitsWindow(req.StartTime, req.Hours)
		if err != nil || !fits {
			return Summary{}, ErrOutsideHours
		}
		return s.run(ctx, owner, req.StudioID, []dayWindow{{
			date:  slots.DateOnly(req.BookingDate),
			start: req.StartTime,
			hours: req.Hours,
		}})

	case ModeDay:
		if req.BookingDate.IsZero() {
			return Summary{}, ErrMissingWindow
		}
		window, err := entireDay(av, slots.DateOnly(req.BookingDate))
		if err != nil {
			return Summary{}, err
		}
		return s.run(ctx, owner, req.StudioID, []dayWindow{window})

	case ModeRange:
		if !req.Confirm {
			return Summary{}, ErrConfirmationRequired
		}
		dates, err := rangeDates(av, req)
		if err != nil {
			return Summary{}, err
		}
		windows := make([]dayWindow, len(dates))
		for i, date := range dates {
			if windows[i], err = entireDay(av, date); err != nil {
				return Summary{}, err
			}
		}
		return s.run(ctx, owner, req.StudioID, windows)

	default:
		return Summary{}, fmt.Errorf("unknown block mode %q", req.Mode)
	}
}

type dayWindow struct {
	date  time.Time
	start string
	hours int
}

func entireDay(av slots.Availability, date time.Time) (dayWindow, error) {
	start, err := av.OpeningTime()
	if err != nil {
		return dayWindow{}, err
	}
	hours, err := av.EntireDayHours()
	if err != nil {
		return dayWindow{}, err
	}
	return dayWindow{date: date, start: start, hours: hours}, nil
}

func rangeDates(av slots.Availability, req Request) ([]time.Time, error) {
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return nil, ErrMissingRange
	}
	var dates []time.Time
	for date := range av.EnumerateRange(req.StartDate, req.EndDate) {
		dates = append(dates, date)
	}
	if len(dates) == 0 {
		return nil, ErrNoAvailableDays
	}
	return dates, nil
}

// run blocks the windows one date at a time. A cancelled context stops the
// run and counts the untried dates as skipped; a failed date is recorded
// and the run continues.
func (s *Service) run(ctx context.Context, owner, studioID uuid.UUID, windows []dayWindow) (Summary, error) {
	summary := Summary{Requested: len(windows)}

	for i, window := range windows {
		if err := ctx.Err(); err != nil {
			summary.Skipped = len(windows) - i
			break
		}

		err := s.gateway.ReserveStudioTimeSlot(ctx, marketplace.BlockRequest{
			StudioID:    studioID,
			BookingDate: window.date,
			StartTime:   window.start,
			Hours:       window.hours,
		})
		result := DayResult{Date: window.date, Status: "blocked"}
		if err != nil {
			summary.Failed++
			result.Status = "failed"
			result.Error = err.Error()
			log.Warn().Err(err).
				Str("studio_id", studioID.String()).
				Time("date", window.date).
				Msg("Block date failed")
		} else {
			summary.Succeeded++
		}
		summary.Dates = append(summary.Dates, result)
	}

	if summary.Succeeded > 0 {
		s.engine.Cache().Invalidate(booking.AvailabilityRegion(studioID))
	}

	switch {
	case summary.Failed == 0 && summary.Skipped == 0:
		s.engine.Notices().Success(owner, fmt.Sprintf("Blocked %d date(s)", summary.Succeeded), nil)
	default:
		s.engine.Notices().Info(owner, fmt.Sprintf(
			"Blocked %d of %d date(s), %d failed, %d skipped",
			summary.Succeeded, summary.Requested, summary.Failed, summary.Skipped))
	}

	return summary, nil
}
