package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Kuba27x/Cinema-app/internal/adapter/repository/memory"
	"github.com/Kuba27x/Cinema-app/internal/core/domain"
	"github.com/Kuba27x/Cinema-app/internal/core/ports/mocks"
	"github.com/Kuba27x/Cinema-app/internal/core/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalogFixture struct {
	store    *memory.Store
	catalog  *services.CatalogService
	booking  *services.ReservationService
	day      time.Time
	dune     domain.Movie
	coco     domain.Movie
	morning  domain.Showing
	evening  domain.Showing
	tomorrow domain.Showing
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	store := memory.NewStore()
	f := &catalogFixture{
		store:   store,
		catalog: services.NewCatalogService(store, store, quietLogger()),
		booking: services.NewReservationService(store, nil, nil, testOptions()...),
		day:     time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
	}
	f.dune = store.AddMovie(domain.Movie{Title: "Dune", Genre: domain.GenreSciFi, DurationMinutes: 155})
	f.coco = store.AddMovie(domain.Movie{Title: "Coco", Genre: domain.GenreAnimated, DurationMinutes: 105})
	store.AddMovie(domain.Movie{Title: "Dunkirk", Genre: domain.GenreAction, DurationMinutes: 106})

	add := func(movie domain.Movie, at time.Time, hall int) domain.Showing {
		sh, err := store.AddShowing(domain.Showing{MovieID: movie.ID, StartsAt: at, HallNumber: hall, AvailableSeats: 96})
		require.NoError(t, err)
		return sh
	}
	f.evening = add(f.dune, f.day.Add(20*time.Hour), 1)
	f.morning = add(f.dune, f.day.Add(10*time.Hour), 2)
	f.tomorrow = add(f.coco, f.day.Add(34*time.Hour), 1)
	return f
}

func titles(movies []domain.Movie) []string {
	out := make([]string, len(movies))
	for i, m := range movies {
		out[i] = m.Title
	}
	return out
}

func TestCatalog_MoviesSortedAndFiltered(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	all, err := f.catalog.ListMovies(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Coco", "Dune", "Dunkirk"}, titles(all))

	scifi, err := f.catalog.MoviesByGenre(ctx, domain.GenreSciFi)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune"}, titles(scifi))

	found, err := f.catalog.SearchMovies(ctx, "  dun ")
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune", "Dunkirk"}, titles(found))

	_, err = f.catalog.MoviesByGenre(ctx, domain.Genre("Horror"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCatalog_ShowingsByMovieAndDay(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	byMovie, err := f.catalog.ListShowings(ctx, f.dune.ID)
	require.NoError(t, err)
	require.Len(t, byMovie, 2)
	assert.Equal(t, f.morning.ID, byMovie[0].ID)
	assert.Equal(t, f.evening.ID, byMovie[1].ID)

	onDay, err := f.catalog.ShowingsOn(ctx, f.day.Add(15*time.Hour))
	require.NoError(t, err)
	assert.Len(t, onDay, 2)

	afternoon, err := f.catalog.ShowingsByHours(ctx, f.day, 12, 24)
	require.NoError(t, err)
	require.Len(t, afternoon, 1)
	assert.Equal(t, f.evening.ID, afternoon[0].ID)

	_, err = f.catalog.ListShowings(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalog_ShowingsByHoursRejectsBadRange(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	_, err := f.catalog.ShowingsByHours(ctx, f.day, 25, 26)
	assert.ErrorIs(t, err, domain.ErrOutOfRange)

	_, err = f.catalog.ShowingsByHours(ctx, f.day, 18, 12)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCatalog_CustomerReservationsGroupedByShowing(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	req := bookingRequest(f.morning.ID, 1)
	req.Seats[0].TicketType = string(domain.TicketChild)
	_, err := f.booking.CreateReservation(ctx, req)
	require.NoError(t, err)
	_, err = f.booking.CreateReservation(ctx, bookingRequest(f.tomorrow.ID, 5, 6))
	require.NoError(t, err)
	_, err = f.booking.CreateReservation(ctx, bookingRequest(f.morning.ID, 2))
	require.NoError(t, err)

	receipts, err := f.catalog.CustomerReservations(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Len(t, receipts, 2)

	assert.Equal(t, f.tomorrow.ID, receipts[0].Showing.ID)
	assert.Len(t, receipts[0].Reservations, 2)
	assert.Equal(t, 50.0, receipts[0].Total)

	assert.Equal(t, f.morning.ID, receipts[1].Showing.ID)
	assert.Len(t, receipts[1].Reservations, 2)
	assert.Equal(t, 37.0, receipts[1].Total)
}

func TestCatalog_CustomerReservationsRejectsBadEmail(t *testing.T) {
	catalog := mocks.NewCatalogRepository(t)
	reservations := mocks.NewReservationRepository(t)
	service := services.NewCatalogService(catalog, reservations, quietLogger())

	_, err := service.CustomerReservations(context.Background(), "not-an-email")

	var invalid *domain.InvalidInputError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "email", invalid.Field)
}

func TestCatalog_StoreErrorsBecomePersistenceErrors(t *testing.T) {
	catalog := mocks.NewCatalogRepository(t)
	service := services.NewCatalogService(catalog, nil, quietLogger())
	ctx := context.Background()

	catalog.On("ListMovies", ctx).Return(nil, errors.New("connection refused"))

	_, err := service.ListMovies(ctx)

	assert.ErrorIs(t, err, domain.ErrPersistence)
}
