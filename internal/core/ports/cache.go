package ports

import (
	"context"

	"github.com/Kuba27x/Cinema-app/internal/core/domain"
	"github.com/google/uuid"
)

// SeatCache keeps reserved-seat snapshots for seat map readers. A miss is
// reported as (nil, false, nil). The booking path never trusts it.
type SeatCache interface {
	Get(ctx context.Context, showingID uuid.UUID) (domain.SeatSet, bool, error)
	Set(ctx context.Context, showingID uuid.UUID, seats domain.SeatSet) error
	Invalidate(ctx context.Context, showingID uuid.UUID) error
}

type EventPublisher interface {
	PublishReservationsConfirmed(ctx context.Context, event domain.ReservationsConfirmed) error
}
