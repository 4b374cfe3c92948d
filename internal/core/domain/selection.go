package domain

type DragMode int

const (
	DragUndecided DragMode = iota
	DragAdding
	DragRemoving
)

// SelectionSession tracks the seats one user has picked on the seat map
// before booking. It never touches storage; reserved is a read-only
// snapshot taken when the map was opened.
type SelectionSession struct {
	grid     SeatGrid
	selected SeatSet
	reserved SeatSet

	dragTouched SeatSet
	dragMode    DragMode
}

func NewSelectionSession(grid SeatGrid, reserved SeatSet) *SelectionSession {
	if reserved == nil {
		reserved = NewSeatSet()
	}
	return &SelectionSession{
		grid:        grid,
		selected:    NewSeatSet(),
		reserved:    reserved.Clone(),
		dragTouched: NewSeatSet(),
	}
}

func (s *SelectionSession) Tap(seat int) {
	if s.reserved.Contains(seat) || !s.grid.Contains(seat) {
		return
	}
	if s.selected.Contains(seat) {
		s.selected.Remove(seat)
	} else {
		s.selected.Add(seat)
	}
}

func (s *SelectionSession) DragStart() {
	s.dragTouched = NewSeatSet()
	s.dragMode = DragUndecided
}

// DragMove paints one seat. The first seat a drag touches decides whether
// the whole drag adds or removes: starting on a selected seat removes every
// seat passed over, starting on a free one adds them.
func (s *SelectionSession) DragMove(seat int) {
	if !s.grid.Contains(seat) || s.dragTouched.Contains(seat) || s.reserved.Contains(seat) {
		return
	}
	if s.dragMode == DragUndecided {
		if s.selected.Contains(seat) {
			s.dragMode = DragRemoving
		} else {
			s.dragMode = DragAdding
		}
	}
	if s.dragMode == DragAdding {
		s.selected.Add(seat)
	} else {
		s.selected.Remove(seat)
	}
	s.dragTouched.Add(seat)
}

// DragMoveAt resolves a pointer sample to a seat and paints it. Samples
// outside the grid are ignored.
func (s *SelectionSession) DragMoveAt(p Point, layout PointerLayout) {
	if seat, ok := s.grid.SeatAtPointer(p, layout); ok {
		s.DragMove(seat)
	}
}

func (s *SelectionSession) DragEnd() {
	s.dragTouched = NewSeatSet()
	s.dragMode = DragUndecided
}

func (s *SelectionSession) Mode() DragMode { return s.dragMode }

func (s *SelectionSession) IsSelected(seat int) bool { return s.selected.Contains(seat) }

func (s *SelectionSession) IsReserved(seat int) bool { return s.reserved.Contains(seat) }

func (s *SelectionSession) Selected() []int { return s.selected.Sorted() }

func (s *SelectionSession) SelectedSet() SeatSet { return s.selected.Clone() }

func (s *SelectionSession) Clear() {
	s.selected = NewSeatSet()
	s.DragEnd()
}

// TicketSelection is one selected seat with the ticket type the user
// picked for it. QuotedPrice is for display only.
type TicketSelection struct {
	SeatNumber  int
	TicketType  TicketType
	QuotedPrice float64
}

// Tickets returns one ticket per selected seat in seat order, all of type
// tt, priced from pricing when it is non-nil.
func (s *SelectionSession) Tickets(tt TicketType, pricing *PricingTable) []TicketSelection {
	seats := s.selected.Sorted()
	out := make([]TicketSelection, len(seats))
	for i, n := range seats {
		out[i] = TicketSelection{SeatNumber: n, TicketType: tt}
		if pricing != nil {
			out[i].QuotedPrice = pricing.PriceOf(tt)
		}
	}
	return out
}

// Quote totals the given tickets against pricing.
func Quote(tickets []TicketSelection, pricing *PricingTable) float64 {
	var total float64
	for _, t := range tickets {
		total += pricing.PriceOf(t.TicketType)
	}
	return total
}
