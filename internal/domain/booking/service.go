package booking

import (
	"context"

	"github.com/google/uuid"

	"github.com/rently/rently-api/internal/domain/slots"
	"github.com/rently/rently-api/internal/pkg/cache"
	"github.com/rently/rently-api/internal/pkg/marketplace"
	"github.com/rently/rently-api/internal/pkg/mutation"
)

// AvailabilityRegion is the cache region for one studio's published
// availability.
func AvailabilityRegion(studioID uuid.UUID) cache.Region {
	return cache.Key("availability", studioID.String())
}

// Gateway is the slice of the marketplace client the booking service needs.
type Gateway interface {
	ReserveTimeSlot(ctx context.Context, userID uuid.UUID, req marketplace.ReserveRequest) (*marketplace.Reservation, error)
	ReserveTimeSlots(ctx context.Context, userID uuid.UUID, req marketplace.ReserveRequest) ([]marketplace.Reservation, error)
	ReleaseTimeSlot(ctx context.Context, userID, reservationID uuid.UUID) error
	CancelReservation(ctx context.Context, reservationID uuid.UUID) error
	ApproveReservation(ctx context.Context, reservationID uuid.UUID) (*marketplace.Reservation, error)
	ExtendReservation(ctx context.Context, reservationID uuid.UUID, hours int) (*marketplace.Reservation, error)
	GetStudioAvailability(ctx context.Context, studioID uuid.UUID) (*marketplace.StudioAvailability, error)
}

// Service drives the reservation workflow: availability reads are cached and
// validated locally, holds and releases go through the mutation engine so
// dependent reads refetch and the user gets an undo.
type Service struct {
	gateway Gateway
	engine  *mutation.Engine
}

// NewService creates the booking service
func NewService(gateway Gateway, engine *mutation.Engine) *Service {
	return &Service{gateway: gateway, engine: engine}
}

// Availability returns the studio's availability, from cache when a prior
// read is still valid.
func (s *Service) Availability(ctx context.Context, studioID uuid.UUID) (marketplace.StudioAvailability, error) {
	region := AvailabilityRegion(studioID)
	if cached, ok := s.engine.Cache().Get(region); ok {
		if av, ok := cached.(marketplace.StudioAvailability); ok {
			return av, nil
		}
	}

	av, err := s.gateway.GetStudioAvailability(ctx, studioID)
	if err != nil {
		return marketplace.StudioAvailability{}, err
	}
	s.engine.Cache().Put(region, *av)
	return *av, nil
}

// validateWindow rejects a hold request before any reservation call when the
// studio's published availability cannot contain it.
func (s *Service) validateWindow(ctx context.Context, req ReserveRequest) error {
	av, err := s.Availability(ctx, req.StudioID)
	if err != nil {
		return err
	}

	if !av.Availability.IsDayAllowed(req.BookingDate) {
		return ErrDayNotAvailable
	}
	fits, err := av.Availability.FitsWindow(req.StartTime, req.Hours)
	if err != nil {
		return ErrInvalidWindow
	}
	if !fits {
		return ErrOutsideHours
	}
	return nil
}

// Reserve places a hold on the requested slot. The undo releases the hold.
func (s *Service) Reserve(ctx context.Context, userID uuid.UUID, req ReserveRequest) (marketplace.Reservation, error) {
	if err := s.validateWindow(ctx, req); err != nil {
		return marketplace.Reservation{}, err
	}

	return mutation.Run(ctx, s.engine, mutation.Op[ReserveRequest, marketplace.Reservation]{
		Owner:     userID,
		Variables: req,
		Mutate: func(ctx context.Context, vars ReserveRequest) (marketplace.Reservation, error) {
			start, err := slots.AtClock(vars.BookingDate, vars.StartTime)
			if err != nil {
				return marketplace.Reservation{}, ErrInvalidWindow
			}
			res, err := s.gateway.ReserveTimeSlot(ctx, userID, marketplace.ReserveRequest{
				ItemID:      vars.ItemID,
				StudioID:    vars.StudioID,
				BookingDate: start,
				Hours:       vars.Hours,
			})
			if err != nil {
				return marketplace.Reservation{}, err
			}
			return *res, nil
		},
		Invalidate:     []cache.Region{AvailabilityRegion(req.StudioID)},
		SuccessMessage: "Time slot reserved",
		Undo: func(ctx context.Context, _ ReserveRequest, result marketplace.Reservation) (marketplace.Reservation, error) {
			if err := s.gateway.ReleaseTimeSlot(ctx, userID, result.ID); err != nil {
				return marketplace.Reservation{}, err
			}
			return result, nil
		},
	})
}

// ReserveBatch places holds on every contiguous hour of the requested
// window in one call. The undo releases all of them; a slot that failed to
// release stays held and the error is surfaced.
func (s *Service) ReserveBatch(ctx context.Context, userID uuid.UUID, req ReserveRequest) ([]marketplace.Reservation, error) {
	if err := s.validateWindow(ctx, req); err != nil {
		return nil, err
	}

	return mutation.Run(ctx, s.engine, mutation.Op[ReserveRequest, []marketplace.Reservation]{
		Owner:     userID,
		Variables: req,
		Mutate: func(ctx context.Context, vars ReserveRequest) ([]marketplace.Reservation, error) {
			start, err := slots.AtClock(vars.BookingDate, vars.StartTime)
			if err != nil {
				return nil, ErrInvalidWindow
			}
			return s.gateway.ReserveTimeSlots(ctx, userID, marketplace.ReserveRequest{
				ItemID:      vars.ItemID,
				StudioID:    vars.StudioID,
				BookingDate: start,
				Hours:       vars.Hours,
			})
		},
		Invalidate:     []cache.Region{AvailabilityRegion(req.StudioID)},
		SuccessMessage: "Time slots reserved",
		Undo: func(ctx context.Context, _ ReserveRequest, result []marketplace.Reservation) ([]marketplace.Reservation, error) {
			for _, res := range result {
				if err := s.gateway.ReleaseTimeSlot(ctx, userID, res.ID); err != nil {
					return nil, err
				}
			}
			return result, nil
		},
	})
}

// Release drops a hold. The studio is unknown from the reservation id alone,
// so every cached availability read is dropped.
func (s *Service) Release(ctx context.Context, userID, reservationID uuid.UUID) error {
	_, err := mutation.Run(ctx, s.engine, mutation.Op[uuid.UUID, struct{}]{
		Owner:     userID,
		Variables: reservationID,
		Mutate: func(ctx context.Context, id uuid.UUID) (struct{}, error) {
			return struct{}{}, s.gateway.ReleaseTimeSlot(ctx, userID, id)
		},
		Invalidate:     []cache.Region{cache.All("availability")},
		SuccessMessage: "Time slot released",
	})
	return err
}

// Cancel cancels a reservation outright.
func (s *Service) Cancel(ctx context.Context, userID, reservationID uuid.UUID) error {
	_, err := mutation.Run(ctx, s.engine, mutation.Op[uuid.UUID, struct{}]{
		Owner:     userID,
		Variables: reservationID,
		Mutate: func(ctx context.Context, id uuid.UUID) (struct{}, error) {
			return struct{}{}, s.gateway.CancelReservation(ctx, id)
		},
		Invalidate:     []cache.Region{cache.All("availability")},
		SuccessMessage: "Reservation cancelled",
	})
	return err
}

// Approve confirms a held reservation.
func (s *Service) Approve(ctx context.Context, userID, reservationID uuid.UUID) (marketplace.Reservation, error) {
	return mutation.Run(ctx, s.engine, mutation.Op[uuid.UUID, marketplace.Reservation]{
		Owner:     userID,
		Variables: reservationID,
		Mutate: func(ctx context.Context, id uuid.UUID) (marketplace.Reservation, error) {
			res, err := s.gateway.ApproveReservation(ctx, id)
			if err != nil {
				return marketplace.Reservation{}, err
			}
			return *res, nil
		},
		Invalidate:     []cache.Region{cache.All("availability")},
		SuccessMessage: "Reservation approved",
	})
}

// Extend lengthens an existing reservation by the given hours.
func (s *Service) Extend(ctx context.Context, userID, reservationID uuid.UUID, hours int) (marketplace.Reservation, error) {
	return mutation.Run(ctx, s.engine, mutation.Op[uuid.UUID, marketplace.Reservation]{
		Owner:     userID,
		Variables: reservationID,
		Mutate: func(ctx context.Context, id uuid.UUID) (marketplace.Reservation, error) {
			res, err := s.gateway.ExtendReservation(ctx, id, hours)
			if err != nil {
				return marketplace.Reservation{}, err
			}
			return *res, nil
		},
		Invalidate:     []cache.Region{cache.All("availability")},
		SuccessMessage: "Reservation extended",
	})
}
