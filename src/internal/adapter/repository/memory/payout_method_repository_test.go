package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/joker-bingo/payment-bot/src/internal/domain"
)

func TestGetAllReturnsEveryMethod(t *testing.T) {
	repo := NewPayoutMethodRepository()

	methods, err := repo.GetAll(context.Background())
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(methods) == 0 {
		t.Fatal("expected at least one payout method")
	}

	seen := make(map[string]bool, len(methods))
	for _, method := range methods {
		if method.ID == "" || method.Name == "" {
			t.Fatalf("method with empty field: %+v", method)
		}
		if seen[method.ID] {
			t.Fatalf("duplicate method id %q", method.ID)
		}
		seen[method.ID] = true
	}
}

func TestGetByID(t *testing.T) {
	repo := NewPayoutMethodRepository()

	method, err := repo.GetByID(context.Background(), "855")
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if method.Name != "Telebirr" {
		t.Fatalf("expected Telebirr for id 855, got %q", method.Name)
	}
}

func TestGetByIDUnknown(t *testing.T) {
	repo := NewPayoutMethodRepository()

	_, err := repo.GetByID(context.Background(), "999")
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}
