package bfm

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Yushi-Xing/axi-pipeline/axi"
	"github.com/Yushi-Xing/axi-pipeline/sim"
	"github.com/Yushi-Xing/axi-pipeline/word"
)

type checkerHookFunc func(ctx sim.HookCtx)

func (h checkerHookFunc) Func(ctx sim.HookCtx) {
	h(ctx)
}

var allChannels = []axi.Channel{
	axi.ChannelAW, axi.ChannelW, axi.ChannelB, axi.ChannelAR, axi.ChannelR,
}

var _ = Describe("Harness", func() {
	DescribeTable("random traffic drains at every depth",
		func(depth int) {
			h := MakeHarnessBuilder().
				WithDepth(depth).
				WithTraffic(24, 24).
				WithTickLimit(200_000).
				WithSeed(int64(depth) + 10).
				Build("TB")

			stats := h.Run()

			Expect(stats.CompletedWrites).To(Equal(24))
			Expect(stats.CompletedReads).To(Equal(24))
			Expect(stats.Transfers[axi.ChannelB]).To(Equal(uint64(24)))
			Expect(stats.Transfers[axi.ChannelAW]).To(Equal(uint64(24)))
			Expect(stats.Transfers[axi.ChannelAR]).To(Equal(uint64(24)))
			// Each burst carries at least one data beat.
			Expect(stats.Transfers[axi.ChannelW]).
				To(BeNumerically(">=", uint64(24)))
			Expect(stats.Transfers[axi.ChannelR]).
				To(BeNumerically(">=", uint64(24)))

			// Every beat crossed both monitored boundaries exactly once.
			for _, ch := range allChannels {
				Expect(h.ManagerChecker(ch).Transfers()).
					To(Equal(h.Checker(ch).Transfers()))
			}
		},
		Entry("depth 0", 0),
		Entry("depth 1", 1),
		Entry("depth 2", 2),
		Entry("depth 4", 4),
	)

	It("should carry unaligned, strobed, and FIXED bursts end to end", func() {
		h := MakeHarnessBuilder().
			WithDepth(2).
			WithTraffic(40, 10).
			WithTickLimit(200_000).
			WithSeed(7).
			Build("TB")

		codec := axi.NewCodec(axi.DefaultConfig())
		var aws []axi.AddrBeat
		var strobes []uint64

		h.Checker(axi.ChannelAW).AcceptHook(
			checkerHookFunc(func(ctx sim.HookCtx) {
				aws = append(aws, codec.UnpackAW(ctx.Item.(word.Word)))
			}))
		h.Checker(axi.ChannelW).AcceptHook(
			checkerHookFunc(func(ctx sim.HookCtx) {
				strobes = append(strobes,
					codec.UnpackW(ctx.Item.(word.Word)).Strb)
			}))

		h.Run()

		bytesPerBeat := uint64(axi.DefaultConfig().DataWidth / 8)
		unaligned, fixed := 0, 0
		for _, aw := range aws {
			if aw.Addr%bytesPerBeat != 0 {
				unaligned++
			}

			if aw.Burst == axi.BurstFixed {
				fixed++
			}
		}

		partial := 0
		for _, strb := range strobes {
			if strb != fullStrobe(int(bytesPerBeat)) {
				partial++
			}
		}

		Expect(aws).To(HaveLen(40))
		Expect(unaligned).To(BeNumerically(">", 0))
		Expect(fixed).To(BeNumerically(">", 0))
		Expect(partial).To(BeNumerically(">", 0))
	})

	It("should survive heavy back-pressure", func() {
		h := MakeHarnessBuilder().
			WithDepth(2).
			WithTraffic(12, 12).
			WithReadyPercent(20).
			WithRespReadyPercent(20).
			WithTickLimit(500_000).
			WithSeed(99).
			Build("TB")

		stats := h.Run()

		Expect(stats.CompletedWrites).To(Equal(12))
		Expect(stats.CompletedReads).To(Equal(12))
	})

	It("should run wide data buses", func() {
		cfg := axi.DefaultConfig()
		cfg.DataWidth = 512

		h := MakeHarnessBuilder().
			WithDepth(2).
			WithConfig(cfg).
			WithTraffic(8, 8).
			WithTickLimit(200_000).
			WithSeed(3).
			Build("TB")

		stats := h.Run()

		Expect(stats.CompletedWrites).To(Equal(8))
		Expect(stats.CompletedReads).To(Equal(8))
	})

	It("should clear all in-flight state on a mid-run reset", func() {
		h := MakeHarnessBuilder().
			WithDepth(4).
			WithTraffic(16, 0).
			WithTickLimit(200_000).
			WithSeed(5).
			Build("TB")

		for i := 0; i < 20; i++ {
			h.StepOnce()
		}

		// A synchronous reset wipes in-flight beats everywhere at once, so
		// no stale payload can leak into post-reset traffic.
		h.Reset()

		for _, p := range h.Retimer().Pipelines() {
			Expect(p.Occupancy()).To(Equal(0))
		}
	})
})
