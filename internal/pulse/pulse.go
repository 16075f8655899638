// Package pulse provides pulse accumulation from a flow sensor with
// hardware abstraction. The real implementation uses Linux GPIO character
// device edge events. The fake implementation allows testing without hardware.
package pulse

import "sync/atomic"

// Pin definition (BCM numbering)
const DefaultPin = 17 // Flow sensor signal

// Accumulator counts sensor edges. OnEdge is called from the GPIO event
// context; Drain is called from the measurement loop. The atomic exchange
// in Drain guarantees no edge is lost or double counted across a drain.
type Accumulator struct {
	count atomic.Uint64
}

// NewAccumulator creates an Accumulator with a zero count.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// OnEdge records one sensor edge. Increment only: no allocation, no
// blocking, safe to call from the event handler goroutine.
func (a *Accumulator) OnEdge() {
	a.count.Add(1)
}

// Drain atomically reads the current count and resets it to zero.
func (a *Accumulator) Drain() uint64 {
	return a.count.Swap(0)
}

// Source delivers sensor edges to a handler.
type Source interface {
	// Start begins edge delivery. onEdge is invoked once per rising edge.
	Start(onEdge func()) error

	// Close releases source resources.
	Close() error
}
