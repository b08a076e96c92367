// Package reference produces human-readable codes of the form PREFIX-digits
// for transfers (order refs) and clients (client codes).
package reference

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Generator produces the next reference for prefix.
type Generator interface {
	Next(prefix string, existing []string) string
	// NeedsHistory reports whether Next inspects existing references.
	NeedsHistory() bool
}

// Strategy names accepted in configuration.
const (
	StrategyRandom     = "random"
	StrategySequential = "sequential"
)

// New returns the generator for strategy with the given digit width.
func New(strategy string, width int) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case StrategyRandom, "":
		return NewRandom(width), nil
	case StrategySequential:
		return NewSequential(width), nil
	default:
		return nil, fmt.Errorf("unknown reference strategy %q", strategy)
	}
}

// Random draws a zero-padded random number. Collisions are not checked.
type Random struct {
	width int
	mu    sync.Mutex
	rng   *rand.Rand
}

func NewRandom(width int) *Random {
	return &Random{
		width: width,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithSource replaces the random source.
func (g *Random) WithSource(src rand.Source) *Random {
	g.mu.Lock()
	g.rng = rand.New(src)
	g.mu.Unlock()
	return g
}

func (g *Random) Next(prefix string, _ []string) string {
	g.mu.Lock()
	n := g.rng.Int63n(pow10(g.width))
	g.mu.Unlock()
	return format(prefix, n, g.width)
}

func (g *Random) NeedsHistory() bool { return false }

// Sequential returns max(existing numeric suffix)+1. It is only unique within
// the reference set it was given. Width is a minimum pad: refs left by the
// random strategy are wider, and the sequence continues above them.
type Sequential struct {
	width int
}

func NewSequential(width int) *Sequential {
	return &Sequential{width: width}
}

func (g *Sequential) Next(prefix string, existing []string) string {
	var highest int64
	for _, ref := range existing {
		n, ok := suffix(prefix, ref)
		if ok && n > highest {
			highest = n
		}
	}
	return format(prefix, highest+1, g.width)
}

func (g *Sequential) NeedsHistory() bool { return true }

func suffix(prefix, ref string) (int64, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(ref), prefix+"-")
	if !ok || rest == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func format(prefix string, n int64, width int) string {
	return fmt.Sprintf("%s-%0*d", prefix, width, n)
}

func pow10(width int) int64 {
	n := int64(1)
	for i := 0; i < width; i++ {
		n *= 10
	}
	return n
}
