package verification

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Roller yields uniform values in [0, 1).
type Roller interface {
	Float64() float64
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRoller returns a goroutine-safe Roller. A zero seed uses the clock.
func NewRoller(seed uint64) Roller {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed>>1|1))}
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// Fixed always yields the same value: 0.99 passes every check, 0 fails them.
type Fixed float64

func (f Fixed) Float64() float64 { return float64(f) }

const (
	AlwaysPass Fixed = 0.99
	AlwaysFail Fixed = 0
)
