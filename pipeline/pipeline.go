// Package pipeline provides an elastic pipeline: a chain of clocked storage
// stages that adds registered latency to a valid/ready handshake channel
// while propagating back-pressure upstream. No admitted item is ever
// dropped, duplicated, or reordered, for any pattern of downstream
// readiness.
package pipeline

import (
	"fmt"

	"github.com/Yushi-Xing/axi-pipeline/sim"
	"github.com/Yushi-Xing/axi-pipeline/word"
)

// HookPosAdmit marks when an item is admitted into the first stage.
var HookPosAdmit = &sim.HookPos{Name: "Pipeline Admit"}

// HookPosExit marks when an item leaves the last stage.
var HookPosExit = &sim.HookPos{Name: "Pipeline Exit"}

type stage struct {
	occupied bool
	payload  word.Word
}

// A Pipeline is an ordered chain of storage stages between one upstream and
// one downstream valid/ready handshake port. Stages advance once per call to
// Step. A stage accepts a new item when it is empty or when everything
// downstream of it makes room in the same tick, so a stalled pipeline still
// drains into any downstream vacancy instead of freezing in lock-step.
type Pipeline struct {
	sim.HookableBase

	name         string
	depth        int
	payloadWidth int
	stages       []stage
	tick         uint64
}

// Name returns the name of the pipeline.
func (p *Pipeline) Name() string {
	return p.name
}

// Depth returns the number of storage stages.
func (p *Pipeline) Depth() int {
	return p.depth
}

// PayloadWidth returns the payload width in bits.
func (p *Pipeline) PayloadWidth() int {
	return p.payloadWidth
}

// Occupancy returns the number of stages currently holding an item.
func (p *Pipeline) Occupancy() int {
	n := 0
	for _, s := range p.stages {
		if s.occupied {
			n++
		}
	}

	return n
}

// Reset empties every stage. Both the occupied flag and the payload are
// cleared: external checkers may sample the payload without consulting the
// occupied flag, so an empty stage must always read as the all-zero word,
// never as a pre-reset residual.
func (p *Pipeline) Reset() {
	for i := range p.stages {
		p.stages[i].occupied = false
		p.stages[i].payload = word.New(p.payloadWidth)
	}
}

// Step advances the pipeline by one clock tick.
//
// upReady is combinational: it reflects the acceptance decision of this very
// tick, so the caller learns after the fact whether the presented item was
// taken (a transfer occurred iff upValid && upReady). downValid and
// downPayload are the register values after this tick's clock edge; the
// downstream observes them during the following tick.
//
// A depth-0 pipeline is a pure combinational pass-through and takes a
// distinct path: the staged recurrence below is never evaluated with no
// stages.
func (p *Pipeline) Step(
	upValid bool,
	upPayload word.Word,
	downReady bool,
) (upReady, downValid bool, downPayload word.Word) {
	p.tick++

	if p.depth == 0 {
		return downReady, upValid, upPayload
	}

	if upValid {
		p.payloadWidthMustMatch(upPayload)
	}

	// Backward acceptance pass, evaluated tail to head against the pre-tick
	// state only. accept[i] means stage i latches a new value this tick.
	accept := make([]bool, p.depth+1)
	accept[p.depth] = downReady
	for i := p.depth - 1; i >= 0; i-- {
		accept[i] = !p.stages[i].occupied || accept[i+1]
	}

	upReady = accept[0]

	last := &p.stages[p.depth-1]
	if last.occupied && downReady {
		p.invokeHook(HookPosExit, last.payload)
	}

	// Forward update pass. Every enabled stage takes its predecessor's
	// pre-tick value; the backward-pass ordering guarantees the predecessor
	// is read before it is overwritten, so no snapshot copy is needed.
	for i := p.depth - 1; i >= 1; i-- {
		if accept[i] {
			p.stages[i] = p.stages[i-1]
		}
	}

	if accept[0] {
		if upValid {
			p.stages[0] = stage{occupied: true, payload: upPayload.Clone()}
			p.invokeHook(HookPosAdmit, upPayload)
		} else {
			// A released-but-unfilled stage keeps reading zero.
			p.stages[0] = stage{payload: word.New(p.payloadWidth)}
		}
	}

	return upReady, last.occupied, last.payload
}

// Tick returns the number of Step calls since construction.
func (p *Pipeline) Tick() uint64 {
	return p.tick
}

func (p *Pipeline) invokeHook(pos *sim.HookPos, payload word.Word) {
	if p.NumHooks() == 0 {
		return
	}

	p.InvokeHook(sim.HookCtx{
		Domain: p,
		Pos:    pos,
		Item:   payload,
		Detail: p.tick,
	})
}

func (p *Pipeline) payloadWidthMustMatch(payload word.Word) {
	if payload.Width() != p.payloadWidth {
		panic(fmt.Sprintf(
			"pipeline %s carries %d-bit payloads, got %d bits",
			p.name, p.payloadWidth, payload.Width()))
	}
}
