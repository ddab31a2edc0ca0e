package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/xptrack/internal/domain/model"
)

func day(n int) time.Time {
	return time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func snap(n int, miningXp int64) model.RawSnapshot {
	return model.RawSnapshot{Date: day(n), Fields: map[string]int64{"mining_xp": miningXp}}
}

func TestHistoryStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore(ctx)
	defer func() { _ = store.Close() }()

	if count := store.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}

	replaced, err := store.Append(ctx, "Zezima", snap(0, 100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if replaced {
		t.Error("first append should not replace")
	}

	if count := store.Count(ctx); count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}
	if n := store.Len(ctx); n != 1 {
		t.Errorf("expected len 1, got %d", n)
	}

	got, err := store.Window(ctx, "zezima", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Fields["mining_xp"] != 100 {
		t.Errorf("unexpected window %+v", got)
	}
}

func TestHistoryStore_KeepsDateOrder(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore(ctx)
	defer func() { _ = store.Close() }()

	for _, n := range []int{5, 1, 3, 0, 4, 2} {
		if _, err := store.Append(ctx, "a", snap(n, int64(n*10))); err != nil {
			t.Fatalf("append day %d: %v", n, err)
		}
	}

	got, err := store.Window(ctx, "a", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 6 {
		t.Fatalf("expected 6 snapshots, got %d", len(got))
	}
	for i, s := range got {
		if !s.Date.Equal(day(i)) {
			t.Errorf("position %d: expected %s, got %s", i, day(i), s.Date)
		}
	}
}

func TestHistoryStore_SameDateReplaces(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore(ctx)
	defer func() { _ = store.Close() }()

	if _, err := store.Append(ctx, "a", snap(1, 100)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	replaced, err := store.Append(ctx, "a", snap(1, 250))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !replaced {
		t.Error("expected replace on same date")
	}
	if n := store.Len(ctx); n != 1 {
		t.Errorf("expected len 1 after replace, got %d", n)
	}

	got, _ := store.Window(ctx, "a", time.Time{}, time.Time{})
	if got[0].Fields["mining_xp"] != 250 {
		t.Errorf("expected replaced value 250, got %d", got[0].Fields["mining_xp"])
	}
}

func TestHistoryStore_WindowBounds(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore(ctx)
	defer func() { _ = store.Close() }()

	for n := 0; n < 10; n++ {
		if _, err := store.Append(ctx, "a", snap(n, int64(n))); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	tests := []struct {
		name     string
		from, to time.Time
		want     []int
	}{
		{"inclusive both ends", day(2), day(4), []int{2, 3, 4}},
		{"open start", time.Time{}, day(1), []int{0, 1}},
		{"open end", day(8), time.Time{}, []int{8, 9}},
		{"between snapshots", day(3).Add(time.Hour), day(4).Add(-time.Hour), nil},
		{"after history", day(20), day(30), nil},
		{"reversed", day(6), day(2), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Window(ctx, "a", tt.from, tt.to)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got == nil {
				t.Fatal("expected non-nil slice")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d snapshots, got %d", len(tt.want), len(got))
			}
			for i, n := range tt.want {
				if !got[i].Date.Equal(day(n)) {
					t.Errorf("position %d: expected day %d, got %s", i, n, got[i].Date)
				}
			}
		})
	}
}

func TestHistoryStore_WindowReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore(ctx)
	defer func() { _ = store.Close() }()

	in := snap(0, 100)
	if _, err := store.Append(ctx, "a", in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in.Fields["mining_xp"] = 1

	got, _ := store.Window(ctx, "a", time.Time{}, time.Time{})
	got[0].Fields["mining_xp"] = 2

	again, _ := store.Window(ctx, "a", time.Time{}, time.Time{})
	if v := again[0].Fields["mining_xp"]; v != 100 {
		t.Errorf("stored snapshot was mutated: got %d", v)
	}
}

func TestHistoryStore_Errors(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore(ctx)
	defer func() { _ = store.Close() }()

	if _, err := store.Window(ctx, "nobody", time.Time{}, time.Time{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	for _, bad := range []string{"", "   ", "a/b", strings.Repeat("x", maxAccountLength+1)} {
		if _, err := store.Append(ctx, bad, snap(0, 1)); !errors.Is(err, ErrInvalidAccount) {
			t.Errorf("account %q: expected ErrInvalidAccount, got %v", bad, err)
		}
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := store.Append(cancelled, "a", snap(0, 1)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if _, err := store.Window(cancelled, "a", time.Time{}, time.Time{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestHistoryStore_MaxSnapshots(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore(ctx, WithMaxSnapshots(3))
	defer func() { _ = store.Close() }()

	for n := 0; n < 5; n++ {
		if _, err := store.Append(ctx, "a", snap(n, int64(n))); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	got, _ := store.Window(ctx, "a", time.Time{}, time.Time{})
	if len(got) != 3 {
		t.Fatalf("expected 3 snapshots retained, got %d", len(got))
	}
	if !got[0].Date.Equal(day(2)) {
		t.Errorf("expected oldest retained day 2, got %s", got[0].Date)
	}
	if n := store.Len(ctx); n != 3 {
		t.Errorf("expected len 3, got %d", n)
	}
}

func TestHistoryStore_Accounts(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore(ctx)
	defer func() { _ = store.Close() }()

	for _, a := range []string{"Lynx Titan", "b0aty", "zezima", "ZEZIMA"} {
		if _, err := store.Append(ctx, a, snap(0, 1)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	got := store.Accounts(ctx)
	want := []string{"b0aty", "lynx titan", "zezima"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestHistoryStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore(ctx, WithMetricsUpdateInterval(time.Millisecond))
	defer func() { _ = store.Close() }()

	const writers, perWriter = 8, 50
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			account := fmt.Sprintf("acct-%d", w)
			for n := 0; n < perWriter; n++ {
				if _, err := store.Append(ctx, account, snap(n, int64(n))); err != nil {
					t.Errorf("append: %v", err)
					return
				}
				_, _ = store.Window(ctx, account, time.Time{}, time.Time{})
			}
		}(w)
	}
	wg.Wait()

	if count := store.Count(ctx); count != writers {
		t.Errorf("expected %d accounts, got %d", writers, count)
	}
	if n := store.Len(ctx); n != writers*perWriter {
		t.Errorf("expected %d snapshots, got %d", writers*perWriter, n)
	}
}

func TestHistoryStore_CloseIsIdempotent(t *testing.T) {
	store := NewHistoryStore(context.Background())
	if err := store.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("unexpected error on second close: %v", err)
	}
}

func BenchmarkHistoryStore_Append(b *testing.B) {
	ctx := context.Background()
	store := NewHistoryStore(ctx)
	defer func() { _ = store.Close() }()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = store.Append(ctx, fmt.Sprintf("acct-%d", i%100), snap(i/100, int64(i)))
	}
}

func BenchmarkHistoryStore_Window(b *testing.B) {
	ctx := context.Background()
	store := NewHistoryStore(ctx)
	defer func() { _ = store.Close() }()

	for n := 0; n < 365; n++ {
		_, _ = store.Append(ctx, "a", snap(n, int64(n)))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = store.Window(ctx, "a", day(100), day(130))
	}
}
