package numerator

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"agrostock/internal/core/id"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates the sys_sequences upsert: each call bumps the value
// by the increment argument (1 for strict, range size for cached).
type mockQuerier struct {
	mu           sync.Mutex
	currentValue int64
	calls        int
}

func (m *mockQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	var increment int64 = 1
	if len(args) == 3 {
		if val, ok := args[2].(int64); ok {
			increment = val
		}
	}

	m.currentValue += increment
	m.calls++
	return &mockRow{val: m.currentValue}
}

func TestGetNextNumberStrict(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	tenantID := id.New()
	cfg := DefaultConfig("EN")
	period := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	num, err := svc.GetNextNumber(ctx, tenantID, cfg, nil, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "EN-2026-000001" {
		t.Errorf("expected EN-2026-000001, got %s", num)
	}

	num, err = svc.GetNextNumber(ctx, tenantID, cfg, nil, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "EN-2026-000002" {
		t.Errorf("expected EN-2026-000002, got %s", num)
	}
	if q.calls != 2 {
		t.Errorf("strict strategy must hit the database every time, got %d calls", q.calls)
	}
}

func TestGetNextNumberCached(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	tenantID := id.New()
	cfg := DefaultConfig("PR")
	opts := &Options{Strategy: StrategyCached, RangeSize: 10}
	period := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	// First call reserves the range 1..10; DB value jumps to 10.
	num, err := svc.GetNextNumber(ctx, tenantID, cfg, opts, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "PR-2026-000001" {
		t.Errorf("expected PR-2026-000001, got %s", num)
	}
	if q.currentValue != 10 {
		t.Errorf("expected DB value 10, got %d", q.currentValue)
	}

	// Subsequent calls come from memory.
	num, err = svc.GetNextNumber(ctx, tenantID, cfg, opts, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "PR-2026-000002" {
		t.Errorf("expected PR-2026-000002, got %s", num)
	}
	if q.currentValue != 10 {
		t.Errorf("expected DB value to stay 10, got %d", q.currentValue)
	}

	// Exhaust the range; the next call reserves 11..20.
	for i := 0; i < 8; i++ {
		_, _ = svc.GetNextNumber(ctx, tenantID, cfg, opts, period)
	}
	num, err = svc.GetNextNumber(ctx, tenantID, cfg, opts, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "PR-2026-000011" {
		t.Errorf("expected PR-2026-000011, got %s", num)
	}
	if q.currentValue != 20 {
		t.Errorf("expected DB value 20, got %d", q.currentValue)
	}
}

func TestCachedRangesAreTenantScoped(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("PR")
	opts := &Options{Strategy: StrategyCached, RangeSize: 10}

	// Two tenants must not share an in-memory range.
	numA, err := svc.GetNextNumber(ctx, id.New(), cfg, opts, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	numB, err := svc.GetNextNumber(ctx, id.New(), cfg, opts, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.calls != 2 {
		t.Errorf("each tenant reserves its own range, got %d calls", q.calls)
	}
	_, _ = numA, numB
}

func TestNextUsesPrefixDefaults(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)

	num, err := svc.Next(context.Background(), id.New(), "SA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := fmt.Sprintf("SA-%d-000001", time.Now().Year())
	if num != want {
		t.Errorf("expected %s, got %s", want, num)
	}
}

func TestFormatNumberWithYear(t *testing.T) {
	cfg := Config{Prefix: "EN", IncludeYear: true, PadWidth: 5, ResetPeriod: "year"}
	period := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	got := formatNumber(cfg, period, 42)
	if got != "EN-2026-00042" {
		t.Errorf("formatNumber = %s", got)
	}
	if n := ParseNumber(got); n != 42 {
		t.Errorf("ParseNumber = %d, want 42", n)
	}
}
