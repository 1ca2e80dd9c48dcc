package retimer

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Yushi-Xing/axi-pipeline/axi"
	"github.com/Yushi-Xing/axi-pipeline/word"
)

var _ = Describe("BusRetimer", func() {
	var r *BusRetimer

	allReady := ManagerIn{AWReady: true, WReady: true, ARReady: true}

	BeforeEach(func() {
		r = MakeBuilder().
			WithDepth(2).
			Build("Retimer")
	})

	It("should delay a write-address beat by the configured depth", func() {
		beat := axi.AddrBeat{
			ID:    0x3,
			Addr:  0x4000,
			Len:   7,
			Size:  3,
			Burst: axi.BurstIncr,
		}

		subOut, mgrOut := r.Step(SubordinateIn{AWValid: true, AW: beat}, allReady)
		Expect(subOut.AWReady).To(BeTrue())
		Expect(mgrOut.AWValid).To(BeFalse())

		_, mgrOut = r.Step(SubordinateIn{}, allReady)
		Expect(mgrOut.AWValid).To(BeTrue())
		Expect(mgrOut.AW).To(Equal(beat))
	})

	It("should carry response channels in the reverse direction", func() {
		resp := axi.WriteResp{ID: 0x9, Resp: axi.RespSlvErr}

		subIn := SubordinateIn{BReady: true}
		_, mgrOut := r.Step(subIn, ManagerIn{BValid: true, B: resp})
		Expect(mgrOut.BReady).To(BeTrue())

		subOut, _ := r.Step(subIn, ManagerIn{})
		Expect(subOut.BValid).To(BeTrue())
		Expect(subOut.B).To(Equal(resp))
	})

	It("should keep the five channels independent", func() {
		// The responder stalls AW forever; W keeps flowing.
		stalled := ManagerIn{WReady: true, ARReady: true}

		beat := axi.WriteBeat{
			Data: word.FromUint64(64, 0x1122334455667788),
			Strb: 0xFF,
			Last: true,
		}

		subIn := SubordinateIn{
			AWValid: true,
			AW:      axi.AddrBeat{Addr: 0x100},
			WValid:  true,
			W:       beat,
		}

		subOut, _ := r.Step(subIn, stalled)
		Expect(subOut.AWReady).To(BeTrue())
		Expect(subOut.WReady).To(BeTrue())

		_, mgrOut := r.Step(SubordinateIn{}, stalled)
		Expect(mgrOut.WValid).To(BeTrue())
		Expect(mgrOut.W.Data.Equal(beat.Data)).To(BeTrue())
		Expect(mgrOut.W.Strb).To(Equal(beat.Strb))
		Expect(mgrOut.W.Last).To(BeTrue())

		// AW is still parked inside its own pipeline.
		Expect(mgrOut.AWValid).To(BeTrue())
		Expect(r.Pipelines()[0].Occupancy()).To(Equal(1))
	})

	It("should zero all channels on reset", func() {
		subIn := SubordinateIn{
			AWValid: true, AW: axi.AddrBeat{Addr: 0xFFF},
			ARValid: true, AR: axi.AddrBeat{Addr: 0xEEE},
		}
		r.Step(subIn, ManagerIn{})

		r.Reset()

		for _, p := range r.Pipelines() {
			Expect(p.Occupancy()).To(Equal(0))
		}

		subOut, mgrOut := r.Step(SubordinateIn{}, ManagerIn{})
		Expect(mgrOut.AWValid).To(BeFalse())
		Expect(mgrOut.AW).To(Equal(axi.AddrBeat{}))
		Expect(mgrOut.ARValid).To(BeFalse())
		Expect(subOut.BValid).To(BeFalse())
		Expect(subOut.RValid).To(BeFalse())
	})

	It("should expose five pipelines with per-channel widths", func() {
		pipes := r.Pipelines()
		cfg := r.Config()

		Expect(pipes).To(HaveLen(5))
		Expect(pipes[0].PayloadWidth()).To(Equal(cfg.AWWidth()))
		Expect(pipes[1].PayloadWidth()).To(Equal(cfg.WWidth()))
		Expect(pipes[2].PayloadWidth()).To(Equal(cfg.BWidth()))
		Expect(pipes[3].PayloadWidth()).To(Equal(cfg.ARWidth()))
		Expect(pipes[4].PayloadWidth()).To(Equal(cfg.RWidth()))

		Expect(pipes[0].Name()).To(Equal("Retimer.AWPipeline"))
	})
})

var _ = Describe("BusRetimer with depth 0", func() {
	It("should pass every channel through combinationally", func() {
		r := MakeBuilder().
			WithDepth(0).
			Build("Retimer")

		readBeat := axi.ReadBeat{
			ID:   0x2,
			Data: word.FromUint64(64, 0xCAFE),
			Resp: axi.RespOkay,
			Last: true,
		}

		subIn := SubordinateIn{
			ARValid: true,
			AR:      axi.AddrBeat{Addr: 0x2000, Burst: axi.BurstIncr},
			RReady:  true,
		}
		mgrIn := ManagerIn{ARReady: true, RValid: true, R: readBeat}

		subOut, mgrOut := r.Step(subIn, mgrIn)

		Expect(subOut.ARReady).To(BeTrue())
		Expect(mgrOut.ARValid).To(BeTrue())
		Expect(mgrOut.AR.Addr).To(Equal(uint64(0x2000)))
		Expect(mgrOut.RReady).To(BeTrue())
		Expect(subOut.RValid).To(BeTrue())
		Expect(subOut.R.ID).To(Equal(readBeat.ID))
		Expect(subOut.R.Data.Equal(readBeat.Data)).To(BeTrue())
		Expect(subOut.R.Last).To(BeTrue())
	})
})

var _ = Describe("Builder", func() {
	It("should reject a negative depth", func() {
		Expect(func() {
			MakeBuilder().WithDepth(-1).Build("Retimer")
		}).To(Panic())
	})

	It("should reject an invalid bus configuration", func() {
		cfg := axi.DefaultConfig()
		cfg.AddrWidth = 0

		Expect(func() {
			MakeBuilder().WithConfig(cfg).Build("Retimer")
		}).To(Panic())
	})
})
