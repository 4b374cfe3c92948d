package domain

import (
	"sort"
	"sync"
)

type TicketType string

const (
	TicketNormal  TicketType = "Normal"
	TicketReduced TicketType = "Reduced"
	TicketSenior  TicketType = "Senior"
	TicketStudent TicketType = "Student"
	TicketChild   TicketType = "Child"
)

// PricingTable holds the unit price of every ticket type. Unknown types are
// charged the Normal price instead of being rejected; clients built against
// older type lists keep working.
type PricingTable struct {
	mu     sync.RWMutex
	prices map[TicketType]float64
}

func NewPricingTable(prices map[TicketType]float64) *PricingTable {
	t := &PricingTable{prices: make(map[TicketType]float64, len(prices)+1)}
	for k, v := range prices {
		t.prices[k] = v
	}
	if _, ok := t.prices[TicketNormal]; !ok {
		t.prices[TicketNormal] = 25.0
	}
	return t
}

func DefaultPricingTable() *PricingTable {
	return NewPricingTable(map[TicketType]float64{
		TicketNormal:  25.0,
		TicketReduced: 18.0,
		TicketSenior:  15.0,
		TicketStudent: 20.0,
		TicketChild:   12.0,
	})
}

func (t *PricingTable) PriceOf(tt TicketType) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if p, ok := t.prices[tt]; ok {
		return p
	}
	return t.prices[TicketNormal]
}

func (t *PricingTable) Known(tt TicketType) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.prices[tt]
	return ok
}

// SetPrice changes the price for future commits. Reservations already made
// keep the price they were sold at.
func (t *PricingTable) SetPrice(tt TicketType, price float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.prices[tt] = price
}

func (t *PricingTable) Types() []TicketType {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]TicketType, 0, len(t.prices))
	for k := range t.prices {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
