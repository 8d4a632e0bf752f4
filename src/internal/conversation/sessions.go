package conversation

import (
	"errors"
	"sync"
)

// ErrListenerActive is returned when a second collector tries to wait on a
// conversation that already has a waiter of the same kind. Two interleaved
// collection calls for one conversation is a programming error in the caller.
var ErrListenerActive = errors.New("conversation listener already active")

// Sessions routes inbound turns and selections to whichever collector is
// currently waiting on the conversation. At most one turn waiter and one
// selection waiter may exist per chat; every claim must be released.
type Sessions struct {
	mu               sync.Mutex
	turnWaiters      map[int64]chan Turn
	selectionWaiters map[int64]chan Selection
}

func NewSessions() *Sessions {
	return &Sessions{
		turnWaiters:      make(map[int64]chan Turn),
		selectionWaiters: make(map[int64]chan Selection),
	}
}

// OfferTurn hands an inbound message to the waiting collector, if any.
// It reports whether the turn was consumed.
func (s *Sessions) OfferTurn(turn Turn) bool {
	s.mu.Lock()
	ch, ok := s.turnWaiters[turn.ChatID]
	if ok {
		delete(s.turnWaiters, turn.ChatID)
	}
	s.mu.Unlock()

	if !ok {
		return false
	}

	ch <- turn
	return true
}

// OfferSelection hands an inbound button press to the waiting collector, if
// any. It reports whether the selection was consumed.
func (s *Sessions) OfferSelection(sel Selection) bool {
	s.mu.Lock()
	ch, ok := s.selectionWaiters[sel.ChatID]
	if ok {
		delete(s.selectionWaiters, sel.ChatID)
	}
	s.mu.Unlock()

	if !ok {
		return false
	}

	ch <- sel
	return true
}

func (s *Sessions) claimTurn(chatID int64) (chan Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.turnWaiters[chatID]; exists {
		return nil, ErrListenerActive
	}

	ch := make(chan Turn, 1)
	s.turnWaiters[chatID] = ch
	return ch, nil
}

func (s *Sessions) releaseTurn(chatID int64, ch chan Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, exists := s.turnWaiters[chatID]; exists && current == ch {
		delete(s.turnWaiters, chatID)
	}
}

func (s *Sessions) claimSelection(chatID int64) (chan Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.selectionWaiters[chatID]; exists {
		return nil, ErrListenerActive
	}

	ch := make(chan Selection, 1)
	s.selectionWaiters[chatID] = ch
	return ch, nil
}

func (s *Sessions) releaseSelection(chatID int64, ch chan Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, exists := s.selectionWaiters[chatID]; exists && current == ch {
		delete(s.selectionWaiters, chatID)
	}
}
