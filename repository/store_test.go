package repository

import (
	"context"
	"errors"
	"testing"
)

func TestDisabledStoreFailsGracefully(t *testing.T) {
	store := NewDisabledStore()

	var out struct{}
	if err := store.Get(context.Background(), "players", "a", &out); !errors.Is(err, ErrNoDatabase) {
		t.Fatalf("Get error = %v, want ErrNoDatabase", err)
	}
	if err := store.Set(context.Background(), "players", "a", out); !errors.Is(err, ErrNoDatabase) {
		t.Fatalf("Set error = %v, want ErrNoDatabase", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}
}

func TestComposeKey(t *testing.T) {
	if got := composeKey("players", "anon/7"); got != "players/anon/7" {
		t.Fatalf("composeKey = %q", got)
	}
}
