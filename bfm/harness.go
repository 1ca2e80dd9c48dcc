package bfm

import (
	"fmt"

	"github.com/Yushi-Xing/axi-pipeline/axi"
	"github.com/Yushi-Xing/axi-pipeline/retimer"
	"github.com/Yushi-Xing/axi-pipeline/sim"
	"github.com/Yushi-Xing/axi-pipeline/word"
)

// Stats summarizes one harness run.
type Stats struct {
	Ticks           uint64
	CompletedWrites int
	CompletedReads  int
	Transfers       map[axi.Channel]uint64
}

// A Harness closes the loop around a bus retimer: a Driver requests, a
// Memory responds, and a pair of Checkers guards every channel, one at the
// subordinate-side boundary and one at the manager-side boundary. All
// components share one tick.
type Harness struct {
	name string

	driver  *Driver
	memory  *Memory
	retimer *retimer.BusRetimer
	codec   axi.Codec

	checkers    map[axi.Channel]*Checker
	mgrCheckers map[axi.Channel]*Checker

	tickLimit uint64
	tick      uint64

	visibleSub retimer.SubordinateOut
	visibleMgr retimer.ManagerOut
}

// Checker returns the checker guarding the given channel at the
// subordinate-side boundary, so that hooks can be attached before a run.
func (h *Harness) Checker(ch axi.Channel) *Checker {
	return h.checkers[ch]
}

// ManagerChecker returns the checker guarding the given channel at the
// manager-side boundary.
func (h *Harness) ManagerChecker(ch axi.Channel) *Checker {
	return h.mgrCheckers[ch]
}

// Retimer returns the device under test.
func (h *Harness) Retimer() *retimer.BusRetimer {
	return h.retimer
}

// Reset synchronously resets the retimer and all models.
func (h *Harness) Reset() {
	h.retimer.Reset()
	h.memory.Reset()

	for _, c := range h.checkers {
		c.Reset()
	}

	for _, c := range h.mgrCheckers {
		c.Reset()
	}

	h.visibleSub = retimer.SubordinateOut{}
	h.visibleMgr = retimer.ManagerOut{}
}

// Run ticks the system until the driver has completed all transactions or
// the tick limit is reached. It panics if the limit is reached first: with a
// correct retimer, traffic always drains.
func (h *Harness) Run() Stats {
	for !h.driver.Done() {
		if h.tick >= h.tickLimit {
			panic(fmt.Sprintf(
				"%s: traffic not drained after %d ticks "+
					"(%d/%d writes, %d/%d reads)",
				h.name, h.tickLimit,
				h.driver.CompletedWrites(), h.driver.targetWrites,
				h.driver.CompletedReads(), h.driver.targetReads))
		}

		h.StepOnce()
	}

	return h.CollectStats()
}

// StepOnce advances the whole system by one tick.
func (h *Harness) StepOnce() {
	h.tick++

	subIn := h.driver.Drive()
	mgrIn := h.memory.React()

	subOut, mgrOut := h.retimer.Step(subIn, mgrIn)

	// Registered retimer outputs computed this tick become visible on the
	// following tick. A depth-0 retimer is a wire: its outputs are
	// combinational and belong to this very tick.
	seenSub, seenMgr := h.visibleSub, h.visibleMgr
	if h.retimer.Depth() == 0 {
		seenSub, seenMgr = subOut, mgrOut
	}

	h.driver.Update(subIn, subOut, seenSub)
	h.memory.Update(mgrIn, mgrOut, seenMgr)

	h.observe(subIn, subOut, mgrIn, mgrOut, seenSub, seenMgr)

	h.visibleSub = subOut
	h.visibleMgr = mgrOut
}

// CollectStats returns the statistics accumulated so far.
func (h *Harness) CollectStats() Stats {
	s := Stats{
		Ticks:           h.tick,
		CompletedWrites: h.driver.CompletedWrites(),
		CompletedReads:  h.driver.CompletedReads(),
		Transfers:       map[axi.Channel]uint64{},
	}

	for ch, c := range h.checkers {
		s.Transfers[ch] = c.Transfers()
	}

	return s
}

// observe feeds both boundaries of every channel to their checkers. On each
// side, the side's own driven signals pair with the opposite side's ready or
// valid as seen during this tick: combinational readies belong to this tick,
// registered valids and beats are the ones in seenSub/seenMgr.
func (h *Harness) observe(
	subIn retimer.SubordinateIn,
	subOut retimer.SubordinateOut,
	mgrIn retimer.ManagerIn,
	mgrOut retimer.ManagerOut,
	seenSub retimer.SubordinateOut,
	seenMgr retimer.ManagerOut,
) {
	cfg := h.codec.Config()

	packIf := func(valid bool, width int, fn func() word.Word) word.Word {
		if valid {
			return fn()
		}

		return word.New(width)
	}

	h.checkers[axi.ChannelAW].Observe(subIn.AWValid,
		packIf(subIn.AWValid, cfg.AWWidth(),
			func() word.Word { return h.codec.PackAW(subIn.AW) }),
		subOut.AWReady)
	h.checkers[axi.ChannelW].Observe(subIn.WValid,
		packIf(subIn.WValid, cfg.WWidth(),
			func() word.Word { return h.codec.PackW(subIn.W) }),
		subOut.WReady)
	h.checkers[axi.ChannelAR].Observe(subIn.ARValid,
		packIf(subIn.ARValid, cfg.ARWidth(),
			func() word.Word { return h.codec.PackAR(subIn.AR) }),
		subOut.ARReady)

	h.checkers[axi.ChannelB].Observe(seenSub.BValid,
		packIf(seenSub.BValid, cfg.BWidth(),
			func() word.Word { return h.codec.PackB(seenSub.B) }),
		subIn.BReady)
	h.checkers[axi.ChannelR].Observe(seenSub.RValid,
		packIf(seenSub.RValid, cfg.RWidth(),
			func() word.Word { return h.codec.PackR(seenSub.R) }),
		subIn.RReady)

	h.mgrCheckers[axi.ChannelAW].Observe(seenMgr.AWValid,
		packIf(seenMgr.AWValid, cfg.AWWidth(),
			func() word.Word { return h.codec.PackAW(seenMgr.AW) }),
		mgrIn.AWReady)
	h.mgrCheckers[axi.ChannelW].Observe(seenMgr.WValid,
		packIf(seenMgr.WValid, cfg.WWidth(),
			func() word.Word { return h.codec.PackW(seenMgr.W) }),
		mgrIn.WReady)
	h.mgrCheckers[axi.ChannelAR].Observe(seenMgr.ARValid,
		packIf(seenMgr.ARValid, cfg.ARWidth(),
			func() word.Word { return h.codec.PackAR(seenMgr.AR) }),
		mgrIn.ARReady)

	h.mgrCheckers[axi.ChannelB].Observe(mgrIn.BValid,
		packIf(mgrIn.BValid, cfg.BWidth(),
			func() word.Word { return h.codec.PackB(mgrIn.B) }),
		mgrOut.BReady)
	h.mgrCheckers[axi.ChannelR].Observe(mgrIn.RValid,
		packIf(mgrIn.RValid, cfg.RWidth(),
			func() word.Word { return h.codec.PackR(mgrIn.R) }),
		mgrOut.RReady)
}

// A HarnessBuilder can build harnesses.
type HarnessBuilder struct {
	depth            int
	cfg              axi.Config
	memorySize       int
	writes, reads    int
	readyPercent     int
	respReadyPercent int
	tickLimit        uint64
	seed             int64
}

// MakeHarnessBuilder creates a builder with a small default traffic profile.
func MakeHarnessBuilder() HarnessBuilder {
	return HarnessBuilder{
		depth:            2,
		cfg:              axi.DefaultConfig(),
		memorySize:       1 << 16,
		writes:           32,
		reads:            32,
		readyPercent:     75,
		respReadyPercent: 75,
		tickLimit:        1_000_000,
		seed:             1,
	}
}

// WithDepth sets the retimer depth.
func (b HarnessBuilder) WithDepth(d int) HarnessBuilder {
	b.depth = d
	return b
}

// WithConfig sets the bus field widths.
func (b HarnessBuilder) WithConfig(cfg axi.Config) HarnessBuilder {
	b.cfg = cfg
	return b
}

// WithMemorySize sets the responder's storage size in bytes.
func (b HarnessBuilder) WithMemorySize(n int) HarnessBuilder {
	b.memorySize = n
	return b
}

// WithTraffic sets the number of write and read transactions to run.
func (b HarnessBuilder) WithTraffic(writes, reads int) HarnessBuilder {
	b.writes = writes
	b.reads = reads
	return b
}

// WithReadyPercent sets the responder's request-channel ready duty cycle.
func (b HarnessBuilder) WithReadyPercent(p int) HarnessBuilder {
	b.readyPercent = p
	return b
}

// WithRespReadyPercent sets the driver's response-channel ready duty cycle.
func (b HarnessBuilder) WithRespReadyPercent(p int) HarnessBuilder {
	b.respReadyPercent = p
	return b
}

// WithTickLimit sets the failsafe tick count.
func (b HarnessBuilder) WithTickLimit(n uint64) HarnessBuilder {
	b.tickLimit = n
	return b
}

// WithSeed seeds the driver and responder randomness.
func (b HarnessBuilder) WithSeed(seed int64) HarnessBuilder {
	b.seed = seed
	return b
}

// Build builds a harness.
func (b HarnessBuilder) Build(name string) *Harness {
	sim.NameMustBeValid(name)

	r := retimer.MakeBuilder().
		WithDepth(b.depth).
		WithConfig(b.cfg).
		Build(sim.BuildName(name, "Retimer"))

	h := &Harness{
		name:    name,
		retimer: r,
		codec:   axi.NewCodec(b.cfg),
		driver: NewDriver(sim.BuildName(name, "Driver"),
			b.cfg, b.memorySize, b.writes, b.reads,
			b.respReadyPercent, b.seed),
		memory: NewMemory(sim.BuildName(name, "Memory"),
			b.cfg, b.memorySize, b.readyPercent, b.seed+1),
		checkers:    map[axi.Channel]*Checker{},
		mgrCheckers: map[axi.Channel]*Checker{},
		tickLimit:   b.tickLimit,
	}

	for _, ch := range []axi.Channel{
		axi.ChannelAW, axi.ChannelW, axi.ChannelB, axi.ChannelAR, axi.ChannelR,
	} {
		h.checkers[ch] = NewChecker(
			sim.BuildName(name, ch.String()+"Checker"))
		h.mgrCheckers[ch] = NewChecker(
			sim.BuildName(name, ch.String()+"MgrChecker"))
	}

	return h
}
