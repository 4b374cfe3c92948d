package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Kuba27x/Cinema-app/internal/core/domain"
	"github.com/Kuba27x/Cinema-app/internal/core/ports"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type SeatRequest struct {
	SeatNumber int    `json:"seat_number"`
	TicketType string `json:"ticket_type"`
	// Price is whatever the client displayed. It is never used.
	Price float64 `json:"price,omitempty"`
}

type CreateReservationRequest struct {
	ShowingID string        `json:"showing_id" validate:"required,uuid"`
	Name      string        `json:"name" validate:"not_blank"`
	Email     string        `json:"email" validate:"cinema_email"`
	Phone     string        `json:"phone" validate:"cinema_phone"`
	Seats     []SeatRequest `json:"seats" validate:"min=1,unique=SeatNumber"`
}

type CreateReservationResponse struct {
	ShowingID      string               `json:"showing_id"`
	Reservations   []domain.Reservation `json:"reservations"`
	AvailableSeats int                  `json:"available_seats"`
	TotalPrice     float64              `json:"total_price"`
}

type ReservationService struct {
	seats     *ShowingSeatState
	repo      ports.ReservationRepository
	publisher ports.EventPublisher
	pricing   *domain.PricingTable
	grid      domain.SeatGrid
	validate  *validator.Validate
	now       func() time.Time
	log       *slog.Logger
}

type Option func(*ReservationService)

func WithPricing(p *domain.PricingTable) Option {
	return func(s *ReservationService) {
		if p != nil {
			s.pricing = p
		}
	}
}

func WithSeatGrid(g domain.SeatGrid) Option {
	return func(s *ReservationService) {
		if g.Capacity() > 0 {
			s.grid = g
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *ReservationService) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *ReservationService) {
		if l != nil {
			s.log = l
		}
	}
}

// NewReservationService wires the booking flow. cache and publisher may be
// nil.
func NewReservationService(repo ports.ReservationRepository, cache ports.SeatCache, publisher ports.EventPublisher, opts ...Option) *ReservationService {
	s := &ReservationService{
		repo:      repo,
		publisher: publisher,
		pricing:   domain.DefaultPricingTable(),
		grid:      domain.DefaultSeatGrid(),
		validate:  newValidator(),
		now:       time.Now,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.seats = NewShowingSeatState(repo, cache, s.log)
	return s
}

func (s *ReservationService) Pricing() *domain.PricingTable { return s.pricing }

func (s *ReservationService) Grid() domain.SeatGrid { return s.grid }

// CreateReservation books every requested seat for one customer or none of
// them. Input is fully validated before the seat state is read.
func (s *ReservationService) CreateReservation(ctx context.Context, req CreateReservationRequest) (*CreateReservationResponse, error) {
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	showingID, err := uuid.Parse(req.ShowingID)
	if err != nil {
		return nil, &domain.InvalidInputError{Field: "showing_id", Reason: "must be a UUID"}
	}

	requested := domain.NewSeatSet()
	for _, seat := range req.Seats {
		if !s.grid.Contains(seat.SeatNumber) {
			return nil, &domain.OutOfRangeError{Kind: "seat", Value: seat.SeatNumber, Min: 1, Max: s.grid.Capacity()}
		}
		requested.Add(seat.SeatNumber)
	}

	customer := domain.Customer{Name: req.Name, Email: req.Email, Phone: req.Phone}

	var total float64
	result, err := s.seats.Claim(ctx, showingID, requested, func() []domain.Reservation {
		reservedAt := s.now().UTC()
		out := make([]domain.Reservation, 0, len(req.Seats))
		total = 0
		for _, seat := range req.Seats {
			tt := domain.TicketType(seat.TicketType)
			price := s.pricing.PriceOf(tt)
			total += price
			out = append(out, domain.Reservation{
				ID:            uuid.New(),
				ShowingID:     showingID,
				CustomerName:  customer.Name,
				CustomerEmail: customer.Email,
				CustomerPhone: customer.Phone,
				SeatNumber:    seat.SeatNumber,
				TicketType:    tt,
				TicketPrice:   price,
				ReservedAt:    reservedAt,
			})
		}
		return out
	})
	if err != nil {
		s.logFailure(ctx, showingID, requested, err)
		return nil, err
	}

	s.log.InfoContext(ctx, "reservations committed",
		slog.String("showing_id", showingID.String()),
		slog.Any("seats", requested.Sorted()),
		slog.Int("available_seats", result.AvailableSeats),
	)

	s.publish(ctx, showingID, customer, requested, total, result)

	return &CreateReservationResponse{
		ShowingID:      showingID.String(),
		Reservations:   result.Reservations,
		AvailableSeats: result.AvailableSeats,
		TotalPrice:     total,
	}, nil
}

// ReservedSeats returns the seats already sold for a showing, for drawing
// the seat map.
func (s *ReservationService) ReservedSeats(ctx context.Context, showingID string) (domain.SeatSet, error) {
	id, err := uuid.Parse(showingID)
	if err != nil {
		return nil, &domain.InvalidInputError{Field: "showing_id", Reason: "must be a UUID"}
	}
	return s.seats.Snapshot(ctx, id)
}

// NewSelection opens a seat selection over the current reserved seats of a
// showing.
func (s *ReservationService) NewSelection(ctx context.Context, showingID string) (*domain.SelectionSession, error) {
	reserved, err := s.ReservedSeats(ctx, showingID)
	if err != nil {
		return nil, err
	}
	return domain.NewSelectionSession(s.grid, reserved), nil
}

// RequestFromSelection builds a booking request from a finished selection.
func RequestFromSelection(showingID string, customer domain.Customer, tickets []domain.TicketSelection) CreateReservationRequest {
	seats := make([]SeatRequest, len(tickets))
	for i, t := range tickets {
		seats[i] = SeatRequest{SeatNumber: t.SeatNumber, TicketType: string(t.TicketType), Price: t.QuotedPrice}
	}
	return CreateReservationRequest{
		ShowingID: showingID,
		Name:      customer.Name,
		Email:     customer.Email,
		Phone:     customer.Phone,
		Seats:     seats,
	}
}

func (s *ReservationService) publish(ctx context.Context, showingID uuid.UUID, customer domain.Customer, seats domain.SeatSet, total float64, result *ClaimResult) {
	if s.publisher == nil {
		return
	}

	ids := make([]string, len(result.Reservations))
	for i, r := range result.Reservations {
		ids[i] = r.ID.String()
	}
	event := domain.ReservationsConfirmed{
		ShowingID:      showingID,
		ReservationIDs: ids,
		CustomerEmail:  customer.Email,
		Seats:          seats.Sorted(),
		TotalPrice:     total,
		AvailableSeats: result.AvailableSeats,
		ConfirmedAt:    s.now().UTC(),
	}
	if err := s.publisher.PublishReservationsConfirmed(ctx, event); err != nil {
		s.log.WarnContext(ctx, "publishing reservation event failed",
			slog.String("showing_id", showingID.String()),
			slog.Any("error", err),
		)
	}
}

func (s *ReservationService) logFailure(ctx context.Context, showingID uuid.UUID, seats domain.SeatSet, err error) {
	attrs := []any{
		slog.String("showing_id", showingID.String()),
		slog.Any("seats", seats.Sorted()),
		slog.Any("error", err),
	}
	var conflict *domain.SeatConflictError
	switch {
	case errors.As(err, &conflict):
		s.log.InfoContext(ctx, "reservation rejected: seats taken", append(attrs, slog.Any("conflict", conflict.Seats))...)
	case errors.Is(err, domain.ErrPersistence):
		s.log.ErrorContext(ctx, "reservation commit failed", attrs...)
	default:
		s.log.WarnContext(ctx, "reservation failed", attrs...)
	}
}
