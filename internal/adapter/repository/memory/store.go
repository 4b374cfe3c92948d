// Package memory is a process-local store for tests and for embedding the
// reservation core without a database.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Kuba27x/Cinema-app/internal/core/domain"
	"github.com/google/uuid"
)

type Store struct {
	mu           sync.RWMutex
	movies       map[uuid.UUID]domain.Movie
	showings     map[uuid.UUID]domain.Showing
	reservations map[uuid.UUID][]domain.Reservation
	failCommit   error
}

func NewStore() *Store {
	return &Store{
		movies:       make(map[uuid.UUID]domain.Movie),
		showings:     make(map[uuid.UUID]domain.Showing),
		reservations: make(map[uuid.UUID][]domain.Reservation),
	}
}

func (s *Store) AddMovie(m domain.Movie) domain.Movie {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	s.mu.Lock()
	s.movies[m.ID] = m
	s.mu.Unlock()
	return m
}

// AddShowing stores sh. The movie must already exist.
func (s *Store) AddShowing(sh domain.Showing) (domain.Showing, error) {
	if sh.ID == uuid.Nil {
		sh.ID = uuid.New()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.movies[sh.MovieID]; !ok {
		return domain.Showing{}, fmt.Errorf("movie %s: %w", sh.MovieID, domain.ErrNotFound)
	}
	if sh.AvailableSeats < 0 {
		return domain.Showing{}, &domain.InvalidInputError{Field: "available_seats", Reason: "must not be negative"}
	}
	s.showings[sh.ID] = sh
	return sh, nil
}

// FailCommits makes every following CommitReservations return err without
// writing anything. nil restores normal behavior.
func (s *Store) FailCommits(err error) {
	s.mu.Lock()
	s.failCommit = err
	s.mu.Unlock()
}

func (s *Store) ListMovies(ctx context.Context) ([]domain.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Movie, 0, len(s.movies))
	for _, m := range s.movies {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (s *Store) GetMovie(ctx context.Context, movieID uuid.UUID) (*domain.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.movies[movieID]
	if !ok {
		return nil, fmt.Errorf("movie %s: %w", movieID, domain.ErrNotFound)
	}
	return &m, nil
}

func (s *Store) GetShowing(ctx context.Context, showingID uuid.UUID) (*domain.Showing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.showings[showingID]
	if !ok {
		return nil, fmt.Errorf("showing %s: %w", showingID, domain.ErrNotFound)
	}
	return &sh, nil
}

func (s *Store) ListShowings(ctx context.Context, movieID uuid.UUID) ([]domain.Showing, error) {
	return s.filterShowings(func(sh domain.Showing) bool { return sh.MovieID == movieID }), nil
}

func (s *Store) ListShowingsBetween(ctx context.Context, from, to time.Time) ([]domain.Showing, error) {
	return s.filterShowings(func(sh domain.Showing) bool {
		return !sh.StartsAt.Before(from) && sh.StartsAt.Before(to)
	}), nil
}

func (s *Store) filterShowings(keep func(domain.Showing) bool) []domain.Showing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Showing
	for _, sh := range s.showings {
		if keep(sh) {
			out = append(out, sh)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out
}

func (s *Store) LoadSeatState(ctx context.Context, showingID uuid.UUID) (*domain.SeatState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.showings[showingID]
	if !ok {
		return nil, fmt.Errorf("showing %s: %w", showingID, domain.ErrNotFound)
	}
	reserved := domain.NewSeatSet()
	for _, r := range s.reservations[showingID] {
		reserved.Add(r.SeatNumber)
	}
	return &domain.SeatState{ShowingID: showingID, Reserved: reserved, AvailableSeats: sh.AvailableSeats}, nil
}

// CommitReservations applies the whole commit or nothing.
func (s *Store) CommitReservations(ctx context.Context, commit domain.SeatCommit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failCommit != nil {
		return s.failCommit
	}

	sh, ok := s.showings[commit.ShowingID]
	if !ok {
		return fmt.Errorf("showing %s: %w", commit.ShowingID, domain.ErrNotFound)
	}
	if sh.AvailableSeats != commit.ExpectedAvailable {
		return domain.ErrStaleSeatState
	}

	taken := domain.NewSeatSet()
	for _, r := range s.reservations[commit.ShowingID] {
		taken.Add(r.SeatNumber)
	}
	if conflict := commit.Seats().Intersect(taken); conflict.Len() > 0 {
		return domain.NewSeatConflict(conflict)
	}
	if commit.NewAvailable < 0 {
		return fmt.Errorf("showing %s: counter would drop to %d", commit.ShowingID, commit.NewAvailable)
	}

	sh.AvailableSeats = commit.NewAvailable
	s.showings[commit.ShowingID] = sh
	s.reservations[commit.ShowingID] = append(s.reservations[commit.ShowingID], commit.Reservations...)
	return nil
}

// ListReservationsByEmail matches email case-insensitively, newest first.
func (s *Store) ListReservationsByEmail(ctx context.Context, email string) ([]domain.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Reservation
	for _, rs := range s.reservations {
		for _, r := range rs {
			if strings.EqualFold(r.CustomerEmail, email) {
				out = append(out, r)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ReservedAt.Equal(out[j].ReservedAt) {
			return out[i].SeatNumber < out[j].SeatNumber
		}
		return out[i].ReservedAt.After(out[j].ReservedAt)
	})
	return out, nil
}

func (s *Store) ListSeatCounters(ctx context.Context) ([]domain.SeatCounter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SeatCounter, 0, len(s.showings))
	for id, sh := range s.showings {
		out = append(out, domain.SeatCounter{
			ShowingID:        id,
			AvailableSeats:   sh.AvailableSeats,
			ReservationCount: len(s.reservations[id]),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ShowingID.String() < out[j].ShowingID.String() })
	return out, nil
}
