package spc

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/alert-enrichment/internal/domain"
)

type stubSource struct {
	calls   atomic.Int64
	reports []domain.SPCReport
}

func (s *stubSource) ReportsBetween(_ context.Context, from, to time.Time) ([]domain.SPCReport, error) {
	s.calls.Add(1)
	var out []domain.SPCReport
	for _, r := range s.reports {
		if !r.Time.Before(from) && !r.Time.After(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func TestCachedSource(t *testing.T) {
	day := time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(day.Add(10 * 24 * time.Hour))

	stub := &stubSource{reports: []domain.SPCReport{
		{ID: "r1", Time: day.Add(6 * time.Hour), Hazard: domain.HazardHail, AreaCode: "48201"},
		{ID: "r2", Time: day.Add(30 * time.Hour), Hazard: domain.HazardWind, AreaCode: "40121"},
	}}
	cached := NewCachedSource(stub, 8, clock)
	ctx := context.Background()

	t.Run("window filter and day fan-out", func(t *testing.T) {
		got, err := cached.ReportsBetween(ctx, day.Add(time.Hour), day.Add(31*time.Hour))

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.EqualValues(t, 2, stub.calls.Load(), "one fetch per UTC day")
	})

	t.Run("repeat window hits the cache", func(t *testing.T) {
		got, err := cached.ReportsBetween(ctx, day.Add(time.Hour), day.Add(31*time.Hour))

		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.EqualValues(t, 2, stub.calls.Load(), "no extra fetches")
	})

	t.Run("narrower window filters cached days", func(t *testing.T) {
		got, err := cached.ReportsBetween(ctx, day.Add(time.Hour), day.Add(12*time.Hour))

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "r1", got[0].ID)
	})
}

func TestCachedSource_MidnightReportCountedOnce(t *testing.T) {
	boundary := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(boundary.Add(10 * 24 * time.Hour))

	// A report stamped exactly at a UTC day boundary sits in both adjacent
	// day fetches of an inclusive source; it must still surface once.
	stub := &stubSource{reports: []domain.SPCReport{
		{ID: "midnight", Time: boundary, Hazard: domain.HazardHail, AreaCode: "48201"},
	}}
	cached := NewCachedSource(stub, 8, clock)

	got, err := cached.ReportsBetween(context.Background(), boundary.Add(-6*time.Hour), boundary.Add(6*time.Hour))

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "midnight", got[0].ID)
}

func TestCachedSource_CurrentDayNotCached(t *testing.T) {
	day := time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC)
	// The clock sits inside the queried day: reports may still arrive.
	clock := clockwork.NewFakeClockAt(day.Add(12 * time.Hour))

	stub := &stubSource{}
	cached := NewCachedSource(stub, 8, clock)
	ctx := context.Background()

	_, err := cached.ReportsBetween(ctx, day.Add(time.Hour), day.Add(2*time.Hour))
	require.NoError(t, err)
	_, err = cached.ReportsBetween(ctx, day.Add(time.Hour), day.Add(2*time.Hour))
	require.NoError(t, err)

	assert.EqualValues(t, 2, stub.calls.Load(), "in-progress day is refetched")
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache(2)
	d1 := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.Add(24 * time.Hour)
	d3 := d2.Add(24 * time.Hour)

	c.put(d1, []domain.SPCReport{{ID: "a"}})
	c.put(d2, []domain.SPCReport{{ID: "b"}})

	// Touch d1 so d2 becomes least recently used.
	_, ok := c.get(d1)
	require.True(t, ok)

	c.put(d3, []domain.SPCReport{{ID: "c"}})

	_, ok = c.get(d2)
	assert.False(t, ok, "least recently used day evicted")
	_, ok = c.get(d1)
	assert.True(t, ok)
	_, ok = c.get(d3)
	assert.True(t, ok)
}
