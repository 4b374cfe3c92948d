package services

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Kuba27x/Cinema-app/internal/core/domain"
	"github.com/Kuba27x/Cinema-app/internal/core/ports"
	"github.com/google/uuid"
)

type CatalogService struct {
	catalog      ports.CatalogRepository
	reservations ports.ReservationRepository
	log          *slog.Logger
}

func NewCatalogService(catalog ports.CatalogRepository, reservations ports.ReservationRepository, log *slog.Logger) *CatalogService {
	if log == nil {
		log = slog.Default()
	}
	return &CatalogService{catalog: catalog, reservations: reservations, log: log}
}

// ListMovies returns every movie ordered by title.
func (s *CatalogService) ListMovies(ctx context.Context) ([]domain.Movie, error) {
	movies, err := s.catalog.ListMovies(ctx)
	if err != nil {
		return nil, storeError("list movies", err)
	}
	sort.SliceStable(movies, func(i, j int) bool { return movies[i].Title < movies[j].Title })
	return movies, nil
}

func (s *CatalogService) MoviesByGenre(ctx context.Context, genre domain.Genre) ([]domain.Movie, error) {
	if !genre.Valid() {
		return nil, &domain.InvalidInputError{Field: "genre", Reason: "unknown genre " + string(genre)}
	}
	movies, err := s.ListMovies(ctx)
	if err != nil {
		return nil, err
	}
	out := movies[:0]
	for _, m := range movies {
		if m.Genre == genre {
			out = append(out, m)
		}
	}
	return out, nil
}

// SearchMovies matches query against titles, ignoring case. An empty query
// returns every movie.
func (s *CatalogService) SearchMovies(ctx context.Context, query string) ([]domain.Movie, error) {
	movies, err := s.ListMovies(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return movies, nil
	}
	out := movies[:0]
	for _, m := range movies {
		if strings.Contains(strings.ToLower(m.Title), q) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *CatalogService) GetShowing(ctx context.Context, showingID uuid.UUID) (*domain.Showing, error) {
	showing, err := s.catalog.GetShowing(ctx, showingID)
	if err != nil {
		return nil, storeError("get showing", err)
	}
	return showing, nil
}

// ListShowings returns the showings of one movie, earliest first.
func (s *CatalogService) ListShowings(ctx context.Context, movieID uuid.UUID) ([]domain.Showing, error) {
	if _, err := s.catalog.GetMovie(ctx, movieID); err != nil {
		return nil, storeError("get movie", err)
	}
	showings, err := s.catalog.ListShowings(ctx, movieID)
	if err != nil {
		return nil, storeError("list showings", err)
	}
	sortByStart(showings)
	return showings, nil
}

// ShowingsOn returns the showings starting on the calendar day of day, in
// day's location.
func (s *CatalogService) ShowingsOn(ctx context.Context, day time.Time) ([]domain.Showing, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return s.between(ctx, start, start.AddDate(0, 0, 1))
}

// ShowingsByHours returns the showings on day whose start hour lies in
// [fromHour, toHour).
func (s *CatalogService) ShowingsByHours(ctx context.Context, day time.Time, fromHour, toHour int) ([]domain.Showing, error) {
	if fromHour < 0 || fromHour > 23 {
		return nil, &domain.OutOfRangeError{Kind: "hour", Value: fromHour, Min: 0, Max: 23}
	}
	if toHour < 1 || toHour > 24 {
		return nil, &domain.OutOfRangeError{Kind: "hour", Value: toHour, Min: 1, Max: 24}
	}
	if toHour <= fromHour {
		return nil, &domain.InvalidInputError{Field: "hours", Reason: "end hour must be after start hour"}
	}
	base := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return s.between(ctx, base.Add(time.Duration(fromHour)*time.Hour), base.Add(time.Duration(toHour)*time.Hour))
}

func (s *CatalogService) between(ctx context.Context, from, to time.Time) ([]domain.Showing, error) {
	showings, err := s.catalog.ListShowingsBetween(ctx, from, to)
	if err != nil {
		return nil, storeError("list showings", err)
	}
	sortByStart(showings)
	return showings, nil
}

// ShowingReceipt groups one customer's tickets for a single showing.
type ShowingReceipt struct {
	Showing      domain.Showing       `json:"showing"`
	Reservations []domain.Reservation `json:"reservations"`
	Total        float64              `json:"total"`
}

// CustomerReservations returns a customer's tickets grouped by showing, most
// recent showing first. Tickets inside a group keep the newest-first order
// of the store.
func (s *CatalogService) CustomerReservations(ctx context.Context, email string) ([]ShowingReceipt, error) {
	email = strings.TrimSpace(email)
	if !ValidEmail(email) {
		return nil, &domain.InvalidInputError{Field: "email", Reason: validationReasons["cinema_email"]}
	}

	reservations, err := s.reservations.ListReservationsByEmail(ctx, email)
	if err != nil {
		return nil, storeError("list reservations", err)
	}

	byShowing := make(map[uuid.UUID]*ShowingReceipt)
	var order []uuid.UUID
	for _, r := range reservations {
		receipt, ok := byShowing[r.ShowingID]
		if !ok {
			showing, err := s.catalog.GetShowing(ctx, r.ShowingID)
			if err != nil {
				return nil, storeError("get showing", err)
			}
			receipt = &ShowingReceipt{Showing: *showing}
			byShowing[r.ShowingID] = receipt
			order = append(order, r.ShowingID)
		}
		receipt.Reservations = append(receipt.Reservations, r)
		receipt.Total += r.TicketPrice
	}

	receipts := make([]ShowingReceipt, 0, len(order))
	for _, id := range order {
		receipts = append(receipts, *byShowing[id])
	}
	sort.SliceStable(receipts, func(i, j int) bool {
		return receipts[i].Showing.StartsAt.After(receipts[j].Showing.StartsAt)
	})
	return receipts, nil
}

func sortByStart(showings []domain.Showing) {
	sort.SliceStable(showings, func(i, j int) bool { return showings[i].StartsAt.Before(showings[j].StartsAt) })
}
