package domain

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	Name  string
	Email string
	Phone string
}

// Reservation is one sold seat. TicketPrice is the price at commit time and
// is never recomputed.
type Reservation struct {
	ID            uuid.UUID
	ShowingID     uuid.UUID
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	SeatNumber    int
	TicketType    TicketType
	TicketPrice   float64
	ReservedAt    time.Time
}

// SeatState is the authoritative occupancy of one showing as read from the
// store.
type SeatState struct {
	ShowingID      uuid.UUID
	Reserved       SeatSet
	AvailableSeats int
}

// SeatCommit is written as a single transaction. ExpectedAvailable is the
// counter value the commit was computed from; the store refuses the write
// with ErrStaleSeatState if the counter has moved since.
type SeatCommit struct {
	ShowingID         uuid.UUID
	Reservations      []Reservation
	ExpectedAvailable int
	NewAvailable      int
}

func (c SeatCommit) Seats() SeatSet {
	s := make(SeatSet, len(c.Reservations))
	for _, r := range c.Reservations {
		s.Add(r.SeatNumber)
	}
	return s
}

// ReservationsConfirmed is published after a commit succeeds.
type ReservationsConfirmed struct {
	ShowingID      uuid.UUID `json:"showing_id"`
	ReservationIDs []string  `json:"reservation_ids"`
	CustomerEmail  string    `json:"customer_email"`
	Seats          []int     `json:"seats"`
	TotalPrice     float64   `json:"total_price"`
	AvailableSeats int       `json:"available_seats"`
	ConfirmedAt    time.Time `json:"confirmed_at"`
}

// SeatCounter pairs a showing's stored counter with the number of
// reservation rows it has.
type SeatCounter struct {
	ShowingID        uuid.UUID
	AvailableSeats   int
	ReservationCount int
}
