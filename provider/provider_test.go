package provider

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/ratijas/slowmode/config"
	"github.com/ratijas/slowmode/counterrec"
	"github.com/ratijas/slowmode/metrics"
)

func TestRangesForInstanceCyclesEveryFourSlots(t *testing.T) {
	r0 := RangesForInstance(0)
	r4 := RangesForInstance(4)
	if r0 != r4 {
		t.Errorf("ranges should repeat every 4 instances: got %+v and %+v", r0, r4)
	}
	r1 := RangesForInstance(1)
	if r0 == r1 {
		t.Errorf("adjacent instances must get distinct ranges")
	}
	if r0.Off.Start != 10 || r0.On.Start != 60 {
		t.Errorf("instance 0 ranges = %+v, want off 10 on 60", r0)
	}
}

func TestMatchesQuery(t *testing.T) {
	cases := []struct {
		query string
		idx   uint32
		want  bool
	}{
		{"", 10, true},
		{"Global", 10, true},
		{"Costly", 10, false},
		{"Foreign", 10, false},
		{"10", 10, true},
		{"11 12", 10, false},
		{"9 10 11", 10, true},
	}
	for _, c := range cases {
		if got := matchesQuery(c.query, c.idx); got != c.want {
			t.Errorf("matchesQuery(%q, %d) = %v, want %v", c.query, c.idx, got, c.want)
		}
	}
}

func TestWorkerThreadJoinWaitsAndReportsPanic(t *testing.T) {
	w := Spawn(func(token *atomic.Bool) {
		for !token.Load() {
			time.Sleep(time.Millisecond)
		}
		panic("boom")
	})
	if err := w.Join(); err == nil {
		t.Fatal("want Join to report the recovered panic")
	}
}

func TestWorkerThreadJoinCleanExit(t *testing.T) {
	w := Spawn(func(token *atomic.Bool) {
		for !token.Load() {
			time.Sleep(time.Millisecond)
		}
	})
	if err := w.Join(); err != nil {
		t.Fatalf("Join: %v", err)
	}
}

func TestRuntimeStartCollectStop(t *testing.T) {
	cfg := config.Default()
	cfg.FirstCounter = 100
	cfg.TickIntervalMillis = 10
	cfg.NumInstances = config.NoInstances

	m := metrics.NewRuntime("provider-test")
	rt := NewRuntime(cfg, "TESTHOST", m)
	rt.Start()
	defer rt.Stop()

	// Give workers a moment to commit at least one tick.
	time.Sleep(50 * time.Millisecond)

	buf := make([]byte, 4096)
	n, numObjectTypes, err := rt.Collect("", buf)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if numObjectTypes != 1 {
		t.Fatalf("numObjectTypes = %d, want 1", numObjectTypes)
	}

	db, err := counterrec.ParseDataBlock(buf[:n])
	if err != nil {
		t.Fatalf("ParseDataBlock: %v", err)
	}
	if db.SystemName != "TESTHOST" {
		t.Errorf("SystemName = %q, want TESTHOST", db.SystemName)
	}
	if len(db.ObjectTypes) != 1 {
		t.Fatalf("want 1 object type, got %d", len(db.ObjectTypes))
	}
	obj := db.ObjectTypes[0]
	if obj.NameIndex != 100 {
		t.Errorf("object NameIndex = %d, want 100", obj.NameIndex)
	}
	if obj.NumInstances != -1 {
		t.Errorf("NumInstances = %d, want -1 (singleton)", obj.NumInstances)
	}
	if len(obj.Counters) != 3 {
		t.Fatalf("want 3 counters, got %d", len(obj.Counters))
	}
	if obj.Data.Singleton == nil || len(obj.Data.Singleton.Payload) != 12 {
		t.Fatalf("want a 12-byte singleton payload, got %+v", obj.Data.Singleton)
	}
}

func TestRuntimeCollectFiltersByQuery(t *testing.T) {
	cfg := config.Default()
	cfg.FirstCounter = 50
	cfg.NumInstances = config.NoInstances
	m := metrics.NewRuntime("provider-test-2")
	rt := NewRuntime(cfg, "HOST", m)
	rt.Start()
	defer rt.Stop()

	buf := make([]byte, 4096)
	_, numObjectTypes, err := rt.Collect("999", buf)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if numObjectTypes != 0 {
		t.Errorf("query for unrelated name_index should match nothing, got %d object types", numObjectTypes)
	}
}
