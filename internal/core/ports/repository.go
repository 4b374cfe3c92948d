package ports

//go:generate mockery --all --output=./mocks --case=camel

import (
	"context"
	"time"

	"github.com/Kuba27x/Cinema-app/internal/core/domain"
	"github.com/google/uuid"
)

type CatalogRepository interface {
	ListMovies(ctx context.Context) ([]domain.Movie, error)
	GetMovie(ctx context.Context, movieID uuid.UUID) (*domain.Movie, error)
	GetShowing(ctx context.Context, showingID uuid.UUID) (*domain.Showing, error)
	ListShowings(ctx context.Context, movieID uuid.UUID) ([]domain.Showing, error)
	ListShowingsBetween(ctx context.Context, from, to time.Time) ([]domain.Showing, error)
}

// ReservationRepository is the durable side of seat occupancy.
// CommitReservations must write the reservations and the new counter in one
// transaction, returning domain.ErrStaleSeatState when the counter no
// longer equals commit.ExpectedAvailable and a *domain.SeatConflictError
// when a seat is already taken.
type ReservationRepository interface {
	LoadSeatState(ctx context.Context, showingID uuid.UUID) (*domain.SeatState, error)
	CommitReservations(ctx context.Context, commit domain.SeatCommit) error
	ListReservationsByEmail(ctx context.Context, email string) ([]domain.Reservation, error)
	ListSeatCounters(ctx context.Context) ([]domain.SeatCounter, error)
}
