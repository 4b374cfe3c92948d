package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Kuba27x/Cinema-app/internal/adapter/repository/memory"
	"github.com/Kuba27x/Cinema-app/internal/core/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedShowing(t *testing.T, store *memory.Store, startsAt time.Time) domain.Showing {
	t.Helper()
	movie := store.AddMovie(domain.Movie{Title: "Dune", Genre: domain.GenreSciFi, DurationMinutes: 155})
	sh, err := store.AddShowing(domain.Showing{MovieID: movie.ID, StartsAt: startsAt, HallNumber: 1, AvailableSeats: 96})
	require.NoError(t, err)
	return sh
}

func reservation(showingID uuid.UUID, seat int) domain.Reservation {
	return domain.Reservation{
		ID:            uuid.New(),
		ShowingID:     showingID,
		CustomerEmail: "a@b.co",
		SeatNumber:    seat,
		TicketType:    domain.TicketNormal,
		TicketPrice:   25,
		ReservedAt:    time.Now(),
	}
}

func TestCommitReservations_AppliesCounterAndRows(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	sh := seedShowing(t, store, time.Now())

	err := store.CommitReservations(ctx, domain.SeatCommit{
		ShowingID:         sh.ID,
		Reservations:      []domain.Reservation{reservation(sh.ID, 1), reservation(sh.ID, 2)},
		ExpectedAvailable: 96,
		NewAvailable:      94,
	})
	require.NoError(t, err)

	state, err := store.LoadSeatState(ctx, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, 94, state.AvailableSeats)
	assert.Equal(t, []int{1, 2}, state.Reserved.Sorted())
}

func TestCommitReservations_StaleCounter(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	sh := seedShowing(t, store, time.Now())

	err := store.CommitReservations(ctx, domain.SeatCommit{
		ShowingID:         sh.ID,
		Reservations:      []domain.Reservation{reservation(sh.ID, 1)},
		ExpectedAvailable: 95,
		NewAvailable:      94,
	})
	assert.ErrorIs(t, err, domain.ErrStaleSeatState)

	state, err := store.LoadSeatState(ctx, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, 96, state.AvailableSeats)
	assert.Zero(t, state.Reserved.Len())
}

func TestCommitReservations_SeatCollisionWritesNothing(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	sh := seedShowing(t, store, time.Now())

	require.NoError(t, store.CommitReservations(ctx, domain.SeatCommit{
		ShowingID:         sh.ID,
		Reservations:      []domain.Reservation{reservation(sh.ID, 6)},
		ExpectedAvailable: 96,
		NewAvailable:      95,
	}))

	err := store.CommitReservations(ctx, domain.SeatCommit{
		ShowingID:         sh.ID,
		Reservations:      []domain.Reservation{reservation(sh.ID, 5), reservation(sh.ID, 6), reservation(sh.ID, 7)},
		ExpectedAvailable: 95,
		NewAvailable:      92,
	})
	var conflict *domain.SeatConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, []int{6}, conflict.Seats)

	state, err := store.LoadSeatState(ctx, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, 95, state.AvailableSeats)
	assert.Equal(t, []int{6}, state.Reserved.Sorted())
}

func TestFailCommits(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	sh := seedShowing(t, store, time.Now())
	boom := errors.New("disk full")

	store.FailCommits(boom)
	err := store.CommitReservations(ctx, domain.SeatCommit{
		ShowingID:         sh.ID,
		Reservations:      []domain.Reservation{reservation(sh.ID, 1)},
		ExpectedAvailable: 96,
		NewAvailable:      95,
	})
	assert.ErrorIs(t, err, boom)

	counters, err := store.ListSeatCounters(ctx)
	require.NoError(t, err)
	require.Len(t, counters, 1)
	assert.Equal(t, 96, counters[0].AvailableSeats)
	assert.Zero(t, counters[0].ReservationCount)
}

func TestLoadSeatState_UnknownShowing(t *testing.T) {
	store := memory.NewStore()
	_, err := store.LoadSeatState(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListShowingsBetween(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	early := seedShowing(t, store, day.Add(10*time.Hour))
	late := seedShowing(t, store, day.Add(20*time.Hour))
	seedShowing(t, store, day.Add(30*time.Hour))

	got, err := store.ListShowingsBetween(ctx, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, early.ID, got[0].ID)
	assert.Equal(t, late.ID, got[1].ID)
}

func TestAddShowing_UnknownMovie(t *testing.T) {
	store := memory.NewStore()
	_, err := store.AddShowing(domain.Showing{MovieID: uuid.New(), AvailableSeats: 96})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
