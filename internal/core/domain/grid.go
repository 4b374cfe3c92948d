package domain

import "math"

const (
	DefaultSeatRows    = 8
	DefaultSeatColumns = 12
)

// SeatGrid maps a rows x columns hall layout to seat numbers 1..Rows*Columns,
// numbered row by row starting at the front-left seat.
type SeatGrid struct {
	Rows    int
	Columns int
}

func DefaultSeatGrid() SeatGrid {
	return SeatGrid{Rows: DefaultSeatRows, Columns: DefaultSeatColumns}
}

func (g SeatGrid) Capacity() int {
	return g.Rows * g.Columns
}

func (g SeatGrid) Contains(seat int) bool {
	return seat >= 1 && seat <= g.Capacity()
}

// SeatNumber converts zero-indexed grid coordinates to a seat number.
func (g SeatGrid) SeatNumber(row, col int) (int, error) {
	if row < 0 || row >= g.Rows {
		return 0, &OutOfRangeError{Kind: "row", Value: row, Min: 0, Max: g.Rows - 1}
	}
	if col < 0 || col >= g.Columns {
		return 0, &OutOfRangeError{Kind: "column", Value: col, Min: 0, Max: g.Columns - 1}
	}
	return row*g.Columns + col + 1, nil
}

// Coordinates is the inverse of SeatNumber.
func (g SeatGrid) Coordinates(seat int) (row, col int, err error) {
	if !g.Contains(seat) {
		return 0, 0, &OutOfRangeError{Kind: "seat", Value: seat, Min: 1, Max: g.Capacity()}
	}
	idx := seat - 1
	return idx / g.Columns, idx % g.Columns, nil
}

type Point struct {
	X float64
	Y float64
}

// PointerLayout describes how the grid is drawn: square cells of CellSize
// separated by Spacing, with the first cell's top-left corner at Origin.
type PointerLayout struct {
	CellSize float64
	Spacing  float64
	Origin   Point
}

// DefaultPointerLayout matches the seat map drawn by the booking screen:
// 24pt seats, 8pt gaps and a 15pt row label column before the first seat.
func DefaultPointerLayout() PointerLayout {
	return PointerLayout{
		CellSize: 24,
		Spacing:  8,
		Origin:   Point{X: 15 + 8, Y: 0},
	}
}

// SeatAtPointer resolves a pointer position to the seat under it. The
// second result is false when the position lies outside the grid.
func (g SeatGrid) SeatAtPointer(p Point, layout PointerLayout) (int, bool) {
	pitch := layout.CellSize + layout.Spacing
	if pitch <= 0 {
		return 0, false
	}
	col := int(math.Floor((p.X - layout.Origin.X) / pitch))
	row := int(math.Floor((p.Y - layout.Origin.Y) / pitch))
	seat, err := g.SeatNumber(row, col)
	if err != nil {
		return 0, false
	}
	return seat, true
}
