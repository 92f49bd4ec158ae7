// Package profiler defines the observability hook called around expression
// evaluation, and its slog, prometheus and no-op implementations.
//
// Profilers never influence results: an expression evaluates identically
// with Nop and with any other implementation.
package profiler

import (
	"fmt"
	"sync"
	"time"

	"github.com/sandrolain/goxmatch/pkg/types"
)

// Category classifies a profiler message.
type Category uint8

// Message categories.
const (
	Dependencies Category = iota
	StartSequences
	OptimizationFlags
	Optimizations
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case Dependencies:
		return "DEPENDENCIES"
	case StartSequences:
		return "START_SEQUENCES"
	case OptimizationFlags:
		return "OPTIMIZATION_FLAGS"
	case Optimizations:
		return "OPTIMIZATIONS"
	default:
		return fmt.Sprintf("Category(%d)", uint8(c))
	}
}

// Well-known message titles.
const (
	TitleIndexEvaluation   = "Index evaluation"
	TitleGenericEvaluation = "Generic evaluation"
	TitleEmptySubject      = "Empty subject"
	TitleUsingIndex        = "Using index"
	TitleContextSequence   = "CONTEXT SEQUENCE"
	TitleContextItem       = "CONTEXT ITEM"
	TitleDependencies      = "DEPENDENCIES"
)

// Profiler receives evaluation events. Implementations must be safe for
// concurrent use.
type Profiler interface {
	// Enabled reports whether events are consumed. Callers may skip
	// building expensive message values when it returns false.
	Enabled() bool
	// Start marks the beginning of an evaluation of expr.
	Start(expr fmt.Stringer)
	// Message annotates the current evaluation of expr.
	Message(expr fmt.Stringer, cat Category, title string, value any)
	// End marks the end of the evaluation started last for expr.
	End(expr fmt.Stringer, message string, result types.Sequence)
}

type nop struct{}

// Nop discards every event.
var Nop Profiler = nop{}

func (nop) Enabled() bool                               { return false }
func (nop) Start(fmt.Stringer)                          {}
func (nop) Message(fmt.Stringer, Category, string, any) {}
func (nop) End(fmt.Stringer, string, types.Sequence)    {}

// Multi fans events out to every profiler.
type Multi []Profiler

// Enabled reports whether any member is enabled.
func (m Multi) Enabled() bool {
	for _, p := range m {
		if p.Enabled() {
			return true
		}
	}
	return false
}

// Start implements Profiler.
func (m Multi) Start(expr fmt.Stringer) {
	for _, p := range m {
		p.Start(expr)
	}
}

// Message implements Profiler.
func (m Multi) Message(expr fmt.Stringer, cat Category, title string, value any) {
	for _, p := range m {
		p.Message(expr, cat, title, value)
	}
}

// End implements Profiler.
func (m Multi) End(expr fmt.Stringer, message string, result types.Sequence) {
	for _, p := range m {
		p.End(expr, message, result)
	}
}

// timers tracks start times per expression. Nested and recursive
// evaluations of one expression are stacked.
type timers struct {
	mu     sync.Mutex
	starts map[fmt.Stringer][]time.Time
}

func (t *timers) start(expr fmt.Stringer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.starts == nil {
		t.starts = make(map[fmt.Stringer][]time.Time)
	}
	t.starts[expr] = append(t.starts[expr], time.Now())
}

// stop returns the elapsed time since the matching start, or false if
// there is none.
func (t *timers) stop(expr fmt.Stringer) (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	stack := t.starts[expr]
	if len(stack) == 0 {
		return 0, false
	}
	began := stack[len(stack)-1]
	if len(stack) == 1 {
		delete(t.starts, expr)
	} else {
		t.starts[expr] = stack[:len(stack)-1]
	}
	return time.Since(began), true
}
