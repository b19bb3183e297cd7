package perf

import (
	"encoding/json"
	"sync"
	"testing"
	"time"
)

// TestCollector_Snapshot tests per-path and per-query aggregation.
func TestCollector_Snapshot(t *testing.T) {
	c := NewCollector(100)
	now := time.Now()

	c.Record(Entry{Kind: KindRequest, Path: "POST /attendance/check-in/{id}", StatusCode: 200, DurationMs: 10, Timestamp: now})
	c.Record(Entry{Kind: KindRequest, Path: "POST /attendance/check-in/{id}", StatusCode: 500, DurationMs: 30, Timestamp: now})
	c.Record(Entry{Kind: KindRequest, Path: "GET /payments", StatusCode: 200, DurationMs: 5, Timestamp: now})
	c.Record(Entry{Kind: KindQuery, Path: "INSERT attendance", DurationMs: 4, Timestamp: now})

	snap := c.Snapshot(now.Add(-time.Minute), 10)
	if snap.TotalRecorded != 4 || snap.Requests != 3 || snap.ServerErrors != 1 {
		t.Errorf("snapshot totals = %+v", snap)
	}
	if len(snap.SlowestPaths) != 2 || snap.SlowestPaths[0].AvgMs != 20 || snap.SlowestPaths[0].MaxMs != 30 {
		t.Fatalf("SlowestPaths = %+v", snap.SlowestPaths)
	}
	if len(snap.SlowestQueries) != 1 || snap.SlowestQueries[0].Path != "INSERT attendance" {
		t.Errorf("SlowestQueries = %+v", snap.SlowestQueries)
	}

	top := c.Snapshot(now.Add(-time.Minute), 1)
	if len(top.SlowestPaths) != 1 || top.SlowestPaths[0].Path != "POST /attendance/check-in/{id}" {
		t.Errorf("top 1 = %+v", top.SlowestPaths)
	}
}

// TestCollector_RingBuffer_Overwrites tests that the oldest entries are dropped.
func TestCollector_RingBuffer_Overwrites(t *testing.T) {
	c := NewCollector(3)
	now := time.Now()
	for i := 0; i < 5; i++ {
		c.Record(Entry{Kind: KindRequest, Path: "GET /members", DurationMs: float64(i), Timestamp: now})
	}

	if c.TotalRecorded() != 5 {
		t.Errorf("TotalRecorded = %d, want 5", c.TotalRecorded())
	}
	snap := c.Snapshot(now.Add(-time.Minute), 10)
	if snap.SlowestPaths[0].Count != 3 || snap.SlowestPaths[0].AvgMs != 3 {
		t.Errorf("stat = %+v, want the last three entries (2,3,4)", snap.SlowestPaths[0])
	}
}

// TestCollector_Percentiles tests interpolated P50/P95/P99.
func TestCollector_Percentiles(t *testing.T) {
	c := NewCollector(200)
	now := time.Now()
	for i := 1; i <= 100; i++ {
		c.Record(Entry{Kind: KindRequest, Path: "GET /attendance/today", DurationMs: float64(i), Timestamp: now})
	}

	snap := c.Snapshot(now.Add(-time.Minute), 10)
	tests := []struct {
		name     string
		got      float64
		lo, high float64
	}{
		{"p50", snap.RequestP50Ms, 49, 51},
		{"p95", snap.RequestP95Ms, 94, 96},
		{"p99", snap.RequestP99Ms, 98, 100},
	}
	for _, tt := range tests {
		if tt.got < tt.lo || tt.got > tt.high {
			t.Errorf("%s = %v, want in [%v, %v]", tt.name, tt.got, tt.lo, tt.high)
		}
	}
}

// TestCollector_Snapshot_FiltersBySince tests that entries before the window are excluded.
func TestCollector_Snapshot_FiltersBySince(t *testing.T) {
	c := NewCollector(100)
	now := time.Now()
	c.Record(Entry{Kind: KindRequest, Path: "GET /old", DurationMs: 100, Timestamp: now.Add(-2 * time.Hour)})
	c.Record(Entry{Kind: KindRequest, Path: "GET /new", DurationMs: 10, Timestamp: now})

	snap := c.Snapshot(now.Add(-time.Hour), 10)
	if len(snap.SlowestPaths) != 1 || snap.SlowestPaths[0].Path != "GET /new" {
		t.Errorf("SlowestPaths = %+v", snap.SlowestPaths)
	}
}

// TestSnapshot_JSON tests the field names served to admins.
func TestSnapshot_JSON(t *testing.T) {
	b, err := json.Marshal(NewCollector(1).Snapshot(time.Time{}, 5))
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"total_recorded", "request_p95_ms", "slowest_paths", "slowest_queries"} {
		if _, ok := m[key]; !ok {
			t.Errorf("missing key %q in %s", key, b)
		}
	}
}

// TestCollector_ConcurrentWrites tests goroutine safety of Record.
func TestCollector_ConcurrentWrites(t *testing.T) {
	c := NewCollector(1000)
	now := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				c.Record(Entry{Kind: KindQuery, Path: "SELECT payment", DurationMs: float64(n), Timestamp: now})
			}
		}(i)
	}
	wg.Wait()
	if c.TotalRecorded() != 1000 {
		t.Errorf("TotalRecorded = %d, want 1000", c.TotalRecorded())
	}
}

// BenchmarkCollectorRecord measures per-call cost of Record.
func BenchmarkCollectorRecord(b *testing.B) {
	c := NewCollector(DefaultRingSize)
	e := Entry{Kind: KindRequest, Path: "GET /bench", StatusCode: 200, DurationMs: 1.5, Timestamp: time.Now()}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		c.Record(e)
	}
}
