package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Kuba27x/Cinema-app/internal/core/domain"
	"github.com/Kuba27x/Cinema-app/internal/core/ports"
	"github.com/google/uuid"
)

const maxClaimAttempts = 3

// ShowingSeatState is the only place seat occupancy changes. Claims for the
// same showing run one at a time; claims for different showings and all
// snapshot reads run concurrently.
type ShowingSeatState struct {
	repo  ports.ReservationRepository
	cache ports.SeatCache
	locks *showingLocks
	log   *slog.Logger
}

func NewShowingSeatState(repo ports.ReservationRepository, cache ports.SeatCache, log *slog.Logger) *ShowingSeatState {
	if log == nil {
		log = slog.Default()
	}
	return &ShowingSeatState{
		repo:  repo,
		cache: cache,
		locks: newShowingLocks(),
		log:   log,
	}
}

// Snapshot returns the reserved seats of a showing for seat map rendering.
// It may be served from cache and can be stale by the time a booking is
// submitted; Claim re-reads the store.
func (s *ShowingSeatState) Snapshot(ctx context.Context, showingID uuid.UUID) (domain.SeatSet, error) {
	if s.cache != nil {
		seats, ok, err := s.cache.Get(ctx, showingID)
		if err != nil {
			s.log.WarnContext(ctx, "seat cache read failed", slog.String("showing_id", showingID.String()), slog.Any("error", err))
		} else if ok {
			return seats, nil
		}
	}

	state, err := s.repo.LoadSeatState(ctx, showingID)
	if err != nil {
		return nil, storeError("load seat state", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, showingID, state.Reserved); err != nil {
			s.log.WarnContext(ctx, "seat cache write failed", slog.String("showing_id", showingID.String()), slog.Any("error", err))
		}
	}
	return state.Reserved, nil
}

// ClaimResult is what a successful claim wrote.
type ClaimResult struct {
	Reservations   []domain.Reservation
	AvailableSeats int
}

// Claim reserves exactly the seats in requested or nothing. build runs
// inside the critical section after the conflict check, so the prices and
// timestamps it stamps are those of the commit. It must return one
// reservation per requested seat.
func (s *ShowingSeatState) Claim(ctx context.Context, showingID uuid.UUID, requested domain.SeatSet, build func() []domain.Reservation) (*ClaimResult, error) {
	release, err := s.locks.acquire(ctx, showingID)
	if err != nil {
		return nil, err
	}
	defer release()

	for attempt := 1; attempt <= maxClaimAttempts; attempt++ {
		state, err := s.repo.LoadSeatState(ctx, showingID)
		if err != nil {
			return nil, storeError("load seat state", err)
		}

		if conflict := requested.Intersect(state.Reserved); conflict.Len() > 0 {
			return nil, domain.NewSeatConflict(conflict)
		}

		newAvailable := state.AvailableSeats - requested.Len()
		if newAvailable < 0 {
			return nil, &domain.PersistenceError{
				Op:  "claim seats",
				Err: fmt.Errorf("showing %s has %d seats left, %d requested", showingID, state.AvailableSeats, requested.Len()),
			}
		}

		reservations := build()
		err = s.repo.CommitReservations(ctx, domain.SeatCommit{
			ShowingID:         showingID,
			Reservations:      reservations,
			ExpectedAvailable: state.AvailableSeats,
			NewAvailable:      newAvailable,
		})
		switch {
		case err == nil:
			s.invalidate(ctx, showingID)
			return &ClaimResult{Reservations: reservations, AvailableSeats: newAvailable}, nil
		case errors.Is(err, domain.ErrStaleSeatState):
			s.log.DebugContext(ctx, "seat state moved during commit, retrying",
				slog.String("showing_id", showingID.String()),
				slog.Int("attempt", attempt),
			)
			continue
		case errors.Is(err, domain.ErrSeatConflict):
			return nil, err
		default:
			return nil, storeError("commit reservations", err)
		}
	}

	return nil, &domain.PersistenceError{
		Op:  "commit reservations",
		Err: fmt.Errorf("seat state kept changing after %d attempts: %w", maxClaimAttempts, domain.ErrStaleSeatState),
	}
}

func (s *ShowingSeatState) invalidate(ctx context.Context, showingID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, showingID); err != nil {
		s.log.WarnContext(ctx, "seat cache invalidation failed", slog.String("showing_id", showingID.String()), slog.Any("error", err))
	}
}

// storeError passes not-found and caller cancellation through and reports
// everything else as a persistence failure.
func storeError(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var perr *domain.PersistenceError
	if errors.As(err, &perr) {
		return err
	}
	return &domain.PersistenceError{Op: op, Err: err}
}

// showingLocks hands out one lock per showing. Entries are removed once no
// goroutine holds or waits for them.
type showingLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*showingLock
}

type showingLock struct {
	sem  chan struct{}
	refs int
}

func newShowingLocks() *showingLocks {
	return &showingLocks{locks: make(map[uuid.UUID]*showingLock)}
}

func (l *showingLocks) acquire(ctx context.Context, id uuid.UUID) (func(), error) {
	l.mu.Lock()
	lk, ok := l.locks[id]
	if !ok {
		lk = &showingLock{sem: make(chan struct{}, 1)}
		l.locks[id] = lk
	}
	lk.refs++
	l.mu.Unlock()

	select {
	case lk.sem <- struct{}{}:
		return func() {
			<-lk.sem
			l.drop(id, lk)
		}, nil
	case <-ctx.Done():
		l.drop(id, lk)
		return nil, ctx.Err()
	}
}

func (l *showingLocks) drop(id uuid.UUID, lk *showingLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, id)
	}
}

func (l *showingLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
