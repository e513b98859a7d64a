package metrics

import (
	"strings"
	"sync"
	"testing"
)

func TestCounter_IncAndAdd(t *testing.T) {
	c := NewCounter("test_total")
	c.Inc()
	c.Add(4)
	c.Add(-10) // ignored
	if c.Value() != 5 {
		t.Fatalf("expected 5, got %d", c.Value())
	}
	if c.Name() != "test_total" {
		t.Fatalf("unexpected name %q", c.Name())
	}
}

func TestGauge_SetIncDec(t *testing.T) {
	g := NewGauge("test_gauge")
	g.Set(10)
	g.Inc()
	g.Dec()
	g.Dec()
	if g.Value() != 9 {
		t.Fatalf("expected 9, got %d", g.Value())
	}
}

func TestRegistry_GetOrCreate(t *testing.T) {
	r := NewRegistry()
	a := r.Counter("x_total")
	b := r.Counter("x_total")
	if a != b {
		t.Fatal("same name must return the same counter")
	}
	if r.Gauge("g") == nil {
		t.Fatal("gauge should be created on first access")
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Counter("shared_total").Inc()
		}()
	}
	wg.Wait()
	if got := r.Counter("shared_total").Value(); got != 32 {
		t.Fatalf("expected 32, got %d", got)
	}
}

func TestRegistry_WriteTo(t *testing.T) {
	r := NewRegistry()
	r.Counter("b_total").Add(2)
	r.Counter("a_total").Inc()
	r.Gauge("c_gauge").Set(7)

	var sb strings.Builder
	if _, err := r.WriteTo(&sb); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	want := "a_total 1\nb_total 2\nc_gauge 7\n"
	if sb.String() != want {
		t.Fatalf("unexpected output:\n%s", sb.String())
	}
}
