package shortid

import (
	"context"
	"strings"
	"testing"
)

func TestNext_FirstCandidateFree(t *testing.T) {
	g := New(6, 8)
	id, err := g.Next(context.Background(), func(ctx context.Context, id string) (bool, error) {
		return false, nil
	})
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if len(id) != 6 {
		t.Errorf("length: got %d, want 6", len(id))
	}
	for _, r := range id {
		if r < 'a' || r > 'z' {
			t.Errorf("id %q contains non-lowercase-letter %q", id, r)
		}
	}
}

func TestNext_WidensAfterMaxAttempts(t *testing.T) {
	g := New(6, 3)

	calls := 0
	id, err := g.Next(context.Background(), func(ctx context.Context, id string) (bool, error) {
		calls++
		// Everything at the starting length collides.
		return len(id) == 6, nil
	})
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if len(id) != 7 {
		t.Errorf("expected widened id of length 7, got %q", id)
	}
	if calls != 4 {
		t.Errorf("expected 3 collisions + 1 success, got %d calls", calls)
	}
}

func TestNext_TakenFuncErrorPropagates(t *testing.T) {
	g := New(6, 8)
	_, err := g.Next(context.Background(), func(ctx context.Context, id string) (bool, error) {
		return false, context.DeadlineExceeded
	})
	if err == nil {
		t.Fatal("expected error from taken func")
	}
	if !strings.Contains(err.Error(), "check short id") {
		t.Errorf("error %q missing context", err)
	}
}

func TestNew_Defaults(t *testing.T) {
	g := New(0, 0)
	if g.length != DefaultLength {
		t.Errorf("length: got %d, want %d", g.length, DefaultLength)
	}
	if g.maxAttempts != DefaultMaxAttempts {
		t.Errorf("maxAttempts: got %d, want %d", g.maxAttempts, DefaultMaxAttempts)
	}
}
