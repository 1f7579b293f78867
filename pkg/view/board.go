package view

import (
	"sync"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

// Board is the in-memory rendered board: cards per column and the count
// shown in each column header.
type Board struct {
	mu      sync.RWMutex
	columns map[model.Status][]model.Task
	counts  map[model.Status]int
}

var _ Renderer = (*Board)(nil)

func NewBoard() *Board {
	return &Board{
		columns: make(map[model.Status][]model.Task),
		counts:  make(map[model.Status]int),
	}
}

func (b *Board) Clear(col model.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.columns[col] = nil
}

func (b *Board) Append(col model.Status, t model.Task) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.columns[col] = append(b.columns[col], t)
}

func (b *Board) Remove(col model.Status, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cards := b.columns[col]
	for i, t := range cards {
		if t.ID == id {
			b.columns[col] = append(cards[:i:i], cards[i+1:]...)
			return
		}
	}
}

// Replace swaps the card with the same id in place.
func (b *Board) Replace(col model.Status, t model.Task) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, card := range b.columns[col] {
		if card.ID == t.ID {
			b.columns[col][i] = t
			return
		}
	}
}

func (b *Board) SetCount(col model.Status, n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.counts[col] = n
}

// Column returns a copy of the cards in col, top to bottom.
func (b *Board) Column(col model.Status) []model.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]model.Task(nil), b.columns[col]...)
}

// Count returns the number shown in the header of col.
func (b *Board) Count(col model.Status) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.counts[col]
}
