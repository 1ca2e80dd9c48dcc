// Package bfm provides bus-functional models for exercising a bus retimer:
// a traffic-generating driver, a memory responder, per-channel protocol
// checkers, and a harness that wires them to a retimer on one tick loop.
package bfm

import (
	"fmt"

	"github.com/Yushi-Xing/axi-pipeline/sim"
	"github.com/Yushi-Xing/axi-pipeline/word"
)

// HookPosTransfer marks a completed transfer on the observed channel.
var HookPosTransfer = &sim.HookPos{Name: "Channel Transfer"}

// A Checker watches one valid/ready handshake boundary and panics on
// protocol violations: withdrawing valid before a transfer completes, or
// mutating the payload while valid stays asserted without a transfer. The
// retimer itself leaves such inputs undefined; the checker exists so that
// they never pass silently.
type Checker struct {
	sim.HookableBase

	name string
	tick uint64

	waiting     bool
	heldPayload word.Word

	transfers uint64
}

// NewChecker creates a checker for one channel boundary.
func NewChecker(name string) *Checker {
	sim.NameMustBeValid(name)

	return &Checker{name: name}
}

// Name returns the name of the checker.
func (c *Checker) Name() string {
	return c.name
}

// Transfers returns the number of completed transfers observed.
func (c *Checker) Transfers() uint64 {
	return c.transfers
}

// Observe records the boundary's signals for one tick. Call it once per
// tick, after the tick's ready is known.
func (c *Checker) Observe(valid bool, payload word.Word, ready bool) {
	c.tick++

	if c.waiting {
		if !valid {
			panic(fmt.Sprintf(
				"%s: valid withdrawn at tick %d before a transfer completed",
				c.name, c.tick))
		}

		if !payload.Equal(c.heldPayload) {
			panic(fmt.Sprintf(
				"%s: payload mutated at tick %d while valid was held "+
					"without a transfer (was %s, now %s)",
				c.name, c.tick, c.heldPayload, payload))
		}
	}

	switch {
	case valid && ready:
		c.transfers++
		c.waiting = false

		if c.NumHooks() > 0 {
			c.InvokeHook(sim.HookCtx{
				Domain: c,
				Pos:    HookPosTransfer,
				Item:   payload,
				Detail: c.tick,
			})
		}
	case valid:
		c.waiting = true
		c.heldPayload = payload.Clone()
	default:
		c.waiting = false
	}
}

// Reset clears the checker's handshake state, for use across a bus reset.
func (c *Checker) Reset() {
	c.waiting = false
	c.heldPayload = word.Word{}
}
