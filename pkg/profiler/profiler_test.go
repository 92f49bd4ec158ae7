package profiler

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/sandrolain/goxmatch/pkg/types"
)

type expr string

func (e expr) String() string { return string(e) }

func TestNop(t *testing.T) {
	if Nop.Enabled() {
		t.Fatal("Nop must be disabled")
	}
	Nop.Start(expr("x"))
	Nop.Message(expr("x"), Optimizations, TitleIndexEvaluation, nil)
	Nop.End(expr("x"), "", types.Empty)
}

func TestSlogProfiler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p := NewSlog(logger)
	if !p.Enabled() {
		t.Fatal("expected enabled at debug level")
	}
	e := expr(`matches(title, "^A")`)
	p.Start(e)
	p.Message(e, Optimizations, TitleGenericEvaluation, "")
	p.End(e, "RESULT", types.Singleton(types.Boolean(true)))

	out := buf.String()
	for _, want := range []string{"eval start", "Generic evaluation", "category=OPTIMIZATIONS", "eval end", "items=1", "elapsed="} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestSlogProfilerDisabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelInfo}))
	if NewSlog(logger).Enabled() {
		t.Fatal("expected disabled below info")
	}
	if !NewSlog(logger).WithLevel(slog.LevelWarn).Enabled() {
		t.Fatal("expected enabled at warn")
	}
}

func TestMetricsProfiler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	e := expr("matches(., 'a')")

	m.Message(e, Optimizations, TitleIndexEvaluation, "")
	m.Message(e, Optimizations, TitleIndexEvaluation, "")
	m.Message(e, Optimizations, TitleGenericEvaluation, "")
	m.Message(e, Optimizations, TitleUsingIndex, "memory")
	m.Message(e, Dependencies, TitleIndexEvaluation, "")

	if got := testutil.ToFloat64(m.strategies.WithLabelValues("index")); got != 2 {
		t.Fatalf("index strategy count = %v", got)
	}
	if got := testutil.ToFloat64(m.strategies.WithLabelValues("generic")); got != 1 {
		t.Fatalf("generic strategy count = %v", got)
	}
	if got := testutil.ToFloat64(m.indexLookups.WithLabelValues("memory")); got != 1 {
		t.Fatalf("index lookups = %v", got)
	}

	m.Start(e)
	m.End(e, "", types.Empty)
	if n := testutil.CollectAndCount(m.duration, "goxmatch_eval_duration_seconds"); n != 1 {
		t.Fatalf("expected one histogram series, got %d", n)
	}
}

func TestMultiAndTimers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	multi := Multi{Nop, m}
	if !multi.Enabled() {
		t.Fatal("Multi must be enabled when a member is")
	}
	if (Multi{Nop}).Enabled() {
		t.Fatal("Multi of Nop must be disabled")
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e := expr("concurrent")
			multi.Start(e)
			multi.Message(e, Optimizations, TitleEmptySubject, nil)
			multi.End(e, "", nil)
		}()
	}
	wg.Wait()
	if got := testutil.ToFloat64(m.strategies.WithLabelValues("empty")); got != 16 {
		t.Fatalf("empty strategy count = %v", got)
	}
	if _, ok := m.timers.stop(expr("concurrent")); ok {
		t.Fatal("all timers should have been stopped")
	}
}
