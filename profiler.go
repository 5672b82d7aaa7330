package collide

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Scope and counter names recorded by CollisionWorld.Update.
const (
	ScopeSync        = "sync"
	ScopeBroadphase  = "broadphase"
	ScopeNarrowphase = "narrowphase"
	ScopeCallbacks   = "callbacks"
	ScopeDebugDraw   = "debugdraw"

	CountObjects   = "objects"
	CountPairs     = "pairs"
	CountContacts  = "contacts"
	CountCallbacks = "callbacks"
	CountFailures  = "failures"
)

// Profiler times named scopes and holds per-frame counters. Scopes and
// Counts describe the current frame; Totals accumulate across frames.
type Profiler struct {
	Scopes map[string]time.Duration
	Totals map[string]time.Duration
	Counts map[string]int
	Order  []string
	Frames int

	started map[string]time.Time
}

func NewProfiler() *Profiler {
	return &Profiler{
		Scopes:  make(map[string]time.Duration),
		Totals:  make(map[string]time.Duration),
		Counts:  make(map[string]int),
		started: make(map[string]time.Time),
	}
}

func (p *Profiler) BeginScope(name string) {
	if !slices.Contains(p.Order, name) {
		p.Order = append(p.Order, name)
	}
	p.started[name] = time.Now()
}

func (p *Profiler) EndScope(name string) {
	start, ok := p.started[name]
	if !ok {
		return
	}
	delete(p.started, name)
	d := time.Since(start)
	p.Scopes[name] = d
	p.Totals[name] += d
}

func (p *Profiler) SetCount(name string, count int) { p.Counts[name] = count }

func (p *Profiler) AddCount(name string, delta int) { p.Counts[name] += delta }

func (p *Profiler) Count(name string) int { return p.Counts[name] }

// Reset starts a new frame. Totals and the scope order survive.
func (p *Profiler) Reset() {
	clear(p.Scopes)
	clear(p.Counts)
	clear(p.started)
	p.Frames++
}

// Average is the mean time per frame spent in name.
func (p *Profiler) Average(name string) time.Duration {
	if p.Frames == 0 {
		return p.Totals[name]
	}
	return p.Totals[name] / time.Duration(p.Frames)
}

func (p *Profiler) StatsString() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Timings over %d frames (last / avg):\n", p.Frames)
	for _, name := range p.Order {
		fmt.Fprintf(&sb, "  %-12s %8.3f ms %8.3f ms\n", name, ms(p.Scopes[name]), ms(p.Average(name)))
	}

	sb.WriteString("Counts (last frame):\n")
	keys := make([]string, 0, len(p.Counts))
	for k := range p.Counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "  %-12s %d\n", k, p.Counts[k])
	}
	return sb.String()
}

func ms(d time.Duration) float64 { return float64(d.Microseconds()) / 1000 }
