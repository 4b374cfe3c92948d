package domain_test

import (
	"testing"

	"github.com/Kuba27x/Cinema-app/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestSelectionSession_Tap(t *testing.T) {
	s := domain.NewSelectionSession(domain.DefaultSeatGrid(), domain.NewSeatSet(7))

	s.Tap(3)
	s.Tap(4)
	assert.Equal(t, []int{3, 4}, s.Selected())

	s.Tap(3)
	assert.Equal(t, []int{4}, s.Selected())

	s.Tap(7)
	assert.False(t, s.IsSelected(7), "reserved seats are never selectable")

	s.Tap(0)
	s.Tap(97)
	assert.Equal(t, []int{4}, s.Selected())
}

func TestSelectionSession_DragFromSelectedRemoves(t *testing.T) {
	s := domain.NewSelectionSession(domain.DefaultSeatGrid(), nil)
	s.Tap(10)
	s.Tap(20)

	s.DragStart()
	for _, seat := range []int{10, 11, 12, 13, 14} {
		s.DragMove(seat)
	}
	assert.Equal(t, domain.DragRemoving, s.Mode())
	s.DragEnd()

	for _, seat := range []int{10, 11, 12, 13, 14} {
		assert.False(t, s.IsSelected(seat), "seat %d", seat)
	}
	assert.Equal(t, []int{20}, s.Selected())
	assert.Equal(t, domain.DragUndecided, s.Mode())
}

func TestSelectionSession_DragFromUnselectedAdds(t *testing.T) {
	s := domain.NewSelectionSession(domain.DefaultSeatGrid(), nil)
	s.Tap(14)

	s.DragStart()
	for _, seat := range []int{10, 11, 12, 13, 14} {
		s.DragMove(seat)
	}
	s.DragEnd()

	assert.Equal(t, []int{10, 11, 12, 13, 14}, s.Selected())
}

func TestSelectionSession_DragTouchesSeatOnce(t *testing.T) {
	s := domain.NewSelectionSession(domain.DefaultSeatGrid(), nil)

	s.DragStart()
	s.DragMove(5)
	s.DragMove(6)
	s.DragMove(5)
	s.DragEnd()
	assert.Equal(t, []int{5, 6}, s.Selected())

	// a new drag starting on a selected seat removes
	s.DragStart()
	s.DragMove(5)
	s.DragMove(6)
	s.DragEnd()
	assert.Empty(t, s.Selected())
}

func TestSelectionSession_DragSkipsReserved(t *testing.T) {
	s := domain.NewSelectionSession(domain.DefaultSeatGrid(), domain.NewSeatSet(2))

	s.DragStart()
	s.DragMove(2)
	assert.Equal(t, domain.DragUndecided, s.Mode(), "reserved seat must not fix the mode")
	s.DragMove(1)
	s.DragMove(2)
	s.DragMove(3)
	s.DragEnd()

	assert.Equal(t, []int{1, 3}, s.Selected())
}

func TestSelectionSession_DragMoveAt(t *testing.T) {
	s := domain.NewSelectionSession(domain.DefaultSeatGrid(), nil)
	layout := domain.DefaultPointerLayout()

	s.DragStart()
	s.DragMoveAt(domain.Point{X: 25, Y: 3}, layout)
	s.DragMoveAt(domain.Point{X: 30, Y: 10}, layout)
	s.DragMoveAt(domain.Point{X: 60, Y: 10}, layout)
	s.DragMoveAt(domain.Point{X: 0, Y: 10}, layout)
	s.DragEnd()

	assert.Equal(t, []int{1, 2}, s.Selected())
}

func TestSelectionSession_TicketsAndQuote(t *testing.T) {
	pricing := domain.DefaultPricingTable()
	s := domain.NewSelectionSession(domain.DefaultSeatGrid(), nil)
	s.Tap(9)
	s.Tap(2)

	tickets := s.Tickets(domain.TicketNormal, pricing)
	assert.Equal(t, []domain.TicketSelection{
		{SeatNumber: 2, TicketType: domain.TicketNormal, QuotedPrice: 25},
		{SeatNumber: 9, TicketType: domain.TicketNormal, QuotedPrice: 25},
	}, tickets)

	tickets[1].TicketType = domain.TicketChild
	assert.Equal(t, 37.0, domain.Quote(tickets, pricing))

	s.Clear()
	assert.Empty(t, s.Selected())
}
