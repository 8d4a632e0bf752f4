package conversation

import (
	"errors"
	"testing"
)

func TestOfferTurnWithoutWaiter(t *testing.T) {
	sessions := NewSessions()

	if consumed := sessions.OfferTurn(Turn{ChatID: 1, Text: "50"}); consumed {
		t.Fatal("expected turn to be dropped when no waiter exists")
	}
}

func TestOfferTurnDeliversToWaiter(t *testing.T) {
	sessions := NewSessions()

	ch, err := sessions.claimTurn(7)
	if err != nil {
		t.Fatalf("claim turn: %v", err)
	}

	if consumed := sessions.OfferTurn(Turn{ChatID: 7, Text: "100"}); !consumed {
		t.Fatal("expected turn to be consumed by the waiter")
	}

	turn := <-ch
	if turn.Text != "100" {
		t.Fatalf("expected delivered text %q, got %q", "100", turn.Text)
	}
}

func TestClaimTurnTwiceFails(t *testing.T) {
	sessions := NewSessions()

	if _, err := sessions.claimTurn(7); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if _, err := sessions.claimTurn(7); !errors.Is(err, ErrListenerActive) {
		t.Fatalf("expected ErrListenerActive, got %v", err)
	}
}

func TestReleaseTurnIgnoresStaleChannel(t *testing.T) {
	sessions := NewSessions()

	stale, err := sessions.claimTurn(7)
	if err != nil {
		t.Fatalf("claim turn: %v", err)
	}

	// The offer consumes the waiter; a new claim then installs a fresh one.
	sessions.OfferTurn(Turn{ChatID: 7, Text: "ok"})
	fresh, err := sessions.claimTurn(7)
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}

	sessions.releaseTurn(7, stale)

	if consumed := sessions.OfferTurn(Turn{ChatID: 7, Text: "later"}); !consumed {
		t.Fatal("stale release must not evict the fresh waiter")
	}
	turn := <-fresh
	if turn.Text != "later" {
		t.Fatalf("expected fresh waiter to receive %q, got %q", "later", turn.Text)
	}
}

func TestTurnAndSelectionWaitersIndependent(t *testing.T) {
	sessions := NewSessions()

	if _, err := sessions.claimTurn(7); err != nil {
		t.Fatalf("claim turn: %v", err)
	}
	if _, err := sessions.claimSelection(7); err != nil {
		t.Fatalf("claim selection alongside turn: %v", err)
	}
}

func TestOfferSelectionDeliversToWaiter(t *testing.T) {
	sessions := NewSessions()

	ch, err := sessions.claimSelection(9)
	if err != nil {
		t.Fatalf("claim selection: %v", err)
	}

	if consumed := sessions.OfferSelection(Selection{ChatID: 9, Data: "855"}); !consumed {
		t.Fatal("expected selection to be consumed by the waiter")
	}

	sel := <-ch
	if sel.Data != "855" {
		t.Fatalf("expected delivered data %q, got %q", "855", sel.Data)
	}
}

func TestSecondSelectionDroppedAfterConsume(t *testing.T) {
	sessions := NewSessions()

	if _, err := sessions.claimSelection(9); err != nil {
		t.Fatalf("claim selection: %v", err)
	}

	if consumed := sessions.OfferSelection(Selection{ChatID: 9, Data: "855"}); !consumed {
		t.Fatal("first selection should be consumed")
	}
	if consumed := sessions.OfferSelection(Selection{ChatID: 9, Data: "656"}); consumed {
		t.Fatal("second selection should be dropped once the waiter is gone")
	}
}
