// Package inventory provides the player's item ledger.
package inventory

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInsufficientQuantity is returned by Remove when the ledger holds fewer
// units than requested.
var ErrInsufficientQuantity = errors.New("insufficient quantity")

// Entry is one item stack in a ledger snapshot.
type Entry struct {
	ItemID   string
	Quantity int
}

// Ledger is a multiset of item IDs to quantities.
//
// Invariant: every stored quantity is > 0; zero-quantity entries are deleted.
type Ledger struct {
	items map[string]int
}

// NewLedger returns an empty Ledger.
func NewLedger() *Ledger {
	return &Ledger{items: make(map[string]int)}
}

// Add increments itemID by quantity, creating the entry if absent.
//
// Precondition: quantity > 0; non-positive quantities are ignored.
// Postcondition: Quantity(itemID) grows by quantity.
func (l *Ledger) Add(itemID string, quantity int) {
	if quantity <= 0 || itemID == "" {
		return
	}
	l.items[itemID] += quantity
}

// Remove decrements itemID by quantity. It is all-or-nothing: when the ledger
// holds fewer than quantity units nothing changes.
//
// Precondition: quantity > 0.
// Postcondition: on success the entry is reduced and deleted at zero; on
// ErrInsufficientQuantity the ledger is unchanged.
func (l *Ledger) Remove(itemID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("inventory: remove quantity must be > 0, got %d", quantity)
	}
	have := l.items[itemID]
	if have < quantity {
		return fmt.Errorf("inventory: removing %d of %q (have %d): %w", quantity, itemID, have, ErrInsufficientQuantity)
	}
	if have == quantity {
		delete(l.items, itemID)
		return nil
	}
	l.items[itemID] = have - quantity
	return nil
}

// Quantity returns the held quantity of itemID, 0 when absent.
func (l *Ledger) Quantity(itemID string) int {
	return l.items[itemID]
}

// Has reports whether at least quantity units of itemID are held.
func (l *Ledger) Has(itemID string, quantity int) bool {
	return l.items[itemID] >= quantity
}

// Len returns the number of distinct items held.
func (l *Ledger) Len() int {
	return len(l.items)
}

// Items returns all entries sorted by item ID.
//
// Postcondition: the returned slice is a copy.
func (l *Ledger) Items() []Entry {
	out := make([]Entry, 0, len(l.items))
	for id, qty := range l.items {
		out = append(out, Entry{ItemID: id, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out
}

// Snapshot returns a copy of the ledger as a plain map.
func (l *Ledger) Snapshot() map[string]int {
	out := make(map[string]int, len(l.items))
	for id, qty := range l.items {
		out[id] = qty
	}
	return out
}

// DisplayName turns an item ID such as "raw_shrimps" into "Raw Shrimps".
func DisplayName(itemID string) string {
	words := strings.Fields(strings.ReplaceAll(itemID, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
