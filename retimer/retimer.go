// Package retimer provides a bus retimer: five independent elastic pipelines
// that add the same registered latency to every channel of an AXI request
// bus while propagating back-pressure per channel.
package retimer

import (
	"github.com/Yushi-Xing/axi-pipeline/axi"
	"github.com/Yushi-Xing/axi-pipeline/pipeline"
	"github.com/Yushi-Xing/axi-pipeline/word"
)

// SubordinateIn carries the signals the upstream requester drives into the
// retimer's subordinate-side port on one tick.
type SubordinateIn struct {
	AWValid bool
	AW      axi.AddrBeat
	WValid  bool
	W       axi.WriteBeat
	ARValid bool
	AR      axi.AddrBeat
	BReady  bool
	RReady  bool
}

// SubordinateOut carries the signals the retimer drives back to the upstream
// requester. The ready signals are combinational for the current tick; the
// valid signals and beats are register values observed on the following
// tick.
type SubordinateOut struct {
	AWReady bool
	WReady  bool
	ARReady bool
	BValid  bool
	B       axi.WriteResp
	RValid  bool
	R       axi.ReadBeat
}

// ManagerIn carries the signals the downstream responder drives into the
// retimer's manager-side port on one tick.
type ManagerIn struct {
	AWReady bool
	WReady  bool
	ARReady bool
	BValid  bool
	B       axi.WriteResp
	RValid  bool
	R       axi.ReadBeat
}

// ManagerOut carries the signals the retimer drives to the downstream
// responder, with the same timing split as SubordinateOut: ready signals are
// combinational, valid signals and beats are registered.
type ManagerOut struct {
	AWValid bool
	AW      axi.AddrBeat
	WValid  bool
	W       axi.WriteBeat
	ARValid bool
	AR      axi.AddrBeat
	BReady  bool
	RReady  bool
}

// A BusRetimer owns one elastic pipeline per channel. The pipelines share a
// configuration-time depth but are otherwise independent: no channel ever
// waits for another. The pipeline primitive itself is direction-agnostic;
// the B and R channels are simply wired with the responder as their
// upstream.
type BusRetimer struct {
	name  string
	codec axi.Codec

	awPipe *pipeline.Pipeline
	wPipe  *pipeline.Pipeline
	bPipe  *pipeline.Pipeline
	arPipe *pipeline.Pipeline
	rPipe  *pipeline.Pipeline
}

// Name returns the name of the retimer.
func (r *BusRetimer) Name() string {
	return r.name
}

// Config returns the bus configuration.
func (r *BusRetimer) Config() axi.Config {
	return r.codec.Config()
}

// Depth returns the shared pipeline depth.
func (r *BusRetimer) Depth() int {
	return r.awPipe.Depth()
}

// Pipelines returns the five channel pipelines, in AW, W, B, AR, R order,
// for registration with tracing or monitoring.
func (r *BusRetimer) Pipelines() []*pipeline.Pipeline {
	return []*pipeline.Pipeline{
		r.awPipe, r.wPipe, r.bPipe, r.arPipe, r.rPipe,
	}
}

// Reset synchronously empties every channel pipeline.
func (r *BusRetimer) Reset() {
	r.awPipe.Reset()
	r.wPipe.Reset()
	r.bPipe.Reset()
	r.arPipe.Reset()
	r.rPipe.Reset()
}

// Step advances all five channel pipelines by one shared clock tick.
func (r *BusRetimer) Step(
	subIn SubordinateIn,
	mgrIn ManagerIn,
) (SubordinateOut, ManagerOut) {
	subOut := SubordinateOut{}
	mgrOut := ManagerOut{}
	cfg := r.codec.Config()

	// Request channels: the requester is upstream. Beats are only packed on
	// valid ticks; an idle channel carries the all-zero word.
	awPayload := word.New(cfg.AWWidth())
	if subIn.AWValid {
		awPayload = r.codec.PackAW(subIn.AW)
	}
	upReady, downValid, downPayload := r.awPipe.Step(
		subIn.AWValid, awPayload, mgrIn.AWReady)
	subOut.AWReady = upReady
	mgrOut.AWValid = downValid
	mgrOut.AW = r.codec.UnpackAW(downPayload)

	wPayload := word.New(cfg.WWidth())
	if subIn.WValid {
		wPayload = r.codec.PackW(subIn.W)
	}
	upReady, downValid, downPayload = r.wPipe.Step(
		subIn.WValid, wPayload, mgrIn.WReady)
	subOut.WReady = upReady
	mgrOut.WValid = downValid
	mgrOut.W = r.codec.UnpackW(downPayload)

	arPayload := word.New(cfg.ARWidth())
	if subIn.ARValid {
		arPayload = r.codec.PackAR(subIn.AR)
	}
	upReady, downValid, downPayload = r.arPipe.Step(
		subIn.ARValid, arPayload, mgrIn.ARReady)
	subOut.ARReady = upReady
	mgrOut.ARValid = downValid
	mgrOut.AR = r.codec.UnpackAR(downPayload)

	// Response channels: the responder is upstream.
	bPayload := word.New(cfg.BWidth())
	if mgrIn.BValid {
		bPayload = r.codec.PackB(mgrIn.B)
	}
	upReady, downValid, downPayload = r.bPipe.Step(
		mgrIn.BValid, bPayload, subIn.BReady)
	mgrOut.BReady = upReady
	subOut.BValid = downValid
	subOut.B = r.codec.UnpackB(downPayload)

	rPayload := word.New(cfg.RWidth())
	if mgrIn.RValid {
		rPayload = r.codec.PackR(mgrIn.R)
	}
	upReady, downValid, downPayload = r.rPipe.Step(
		mgrIn.RValid, rPayload, subIn.RReady)
	mgrOut.RReady = upReady
	subOut.RValid = downValid
	subOut.R = r.codec.UnpackR(downPayload)

	return subOut, mgrOut
}
