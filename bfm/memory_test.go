package bfm

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Yushi-Xing/axi-pipeline/axi"
	"github.com/Yushi-Xing/axi-pipeline/retimer"
	"github.com/Yushi-Xing/axi-pipeline/word"
)

var _ = Describe("Memory", func() {
	var m *Memory

	cfg := axi.DefaultConfig()

	writeBeat := func(v uint64, last bool) axi.WriteBeat {
		return axi.WriteBeat{
			Data: word.FromUint64(64, v),
			Strb: 0xFF,
			Last: last,
		}
	}

	// push presents one tick of request beats with no response consumption.
	push := func(seen retimer.ManagerOut) retimer.ManagerIn {
		in := m.React()
		m.Update(in, retimer.ManagerOut{}, seen)

		return in
	}

	BeforeEach(func() {
		m = NewMemory("Memory", cfg, 1<<12, 100, 1)
	})

	It("should execute an INCR write burst and respond once", func() {
		in := push(retimer.ManagerOut{
			AWValid: true,
			AW: axi.AddrBeat{
				ID: 5, Addr: 0x100, Len: 1, Size: 3, Burst: axi.BurstIncr,
			},
		})
		Expect(in.AWReady).To(BeTrue())
		Expect(in.BValid).To(BeFalse())

		in = push(retimer.ManagerOut{
			WValid: true,
			W:      writeBeat(0x1111111111111111, false),
		})
		Expect(in.WReady).To(BeTrue())
		Expect(in.BValid).To(BeFalse())

		in = push(retimer.ManagerOut{
			WValid: true,
			W:      writeBeat(0x2222222222222222, true),
		})
		Expect(in.BValid).To(BeFalse())

		// The response surfaces on the next tick and holds until consumed.
		in = push(retimer.ManagerOut{})
		Expect(in.BValid).To(BeTrue())
		Expect(in.B).To(Equal(axi.WriteResp{ID: 5, Resp: axi.RespOkay}))

		in = m.React()
		Expect(in.BValid).To(BeTrue())
		m.Update(in, retimer.ManagerOut{BReady: true}, retimer.ManagerOut{})

		in = push(retimer.ManagerOut{
			ARValid: true,
			AR: axi.AddrBeat{
				ID: 7, Addr: 0x100, Len: 1, Size: 3, Burst: axi.BurstIncr,
			},
		})
		Expect(in.BValid).To(BeFalse())

		// Read the burst back.
		in = m.React()
		Expect(in.RValid).To(BeTrue())
		Expect(in.R.ID).To(Equal(uint64(7)))
		Expect(in.R.Data.Uint64()).To(Equal(uint64(0x1111111111111111)))
		Expect(in.R.Last).To(BeFalse())
		m.Update(in, retimer.ManagerOut{RReady: true}, retimer.ManagerOut{})

		in = m.React()
		Expect(in.RValid).To(BeTrue())
		Expect(in.R.Data.Uint64()).To(Equal(uint64(0x2222222222222222)))
		Expect(in.R.Last).To(BeTrue())
	})

	It("should keep a FIXED burst at the start address", func() {
		push(retimer.ManagerOut{
			AWValid: true,
			AW: axi.AddrBeat{
				ID: 1, Addr: 0x40, Len: 1, Size: 3, Burst: axi.BurstFixed,
			},
		})
		push(retimer.ManagerOut{
			WValid: true,
			W:      writeBeat(0xAAAAAAAAAAAAAAAA, false),
		})
		push(retimer.ManagerOut{
			WValid: true,
			W:      writeBeat(0xBBBBBBBBBBBBBBBB, true),
		})

		// The second beat overwrote the first.
		push(retimer.ManagerOut{
			ARValid: true,
			AR: axi.AddrBeat{
				ID: 2, Addr: 0x40, Len: 0, Size: 3, Burst: axi.BurstIncr,
			},
		})

		in := m.React()
		Expect(in.RValid).To(BeTrue())
		Expect(in.R.Data.Uint64()).To(Equal(uint64(0xBBBBBBBBBBBBBBBB)))
	})

	It("should honor write strobes", func() {
		push(retimer.ManagerOut{
			AWValid: true,
			AW: axi.AddrBeat{
				ID: 1, Addr: 0x80, Len: 0, Size: 3, Burst: axi.BurstIncr,
			},
		})
		push(retimer.ManagerOut{
			WValid: true,
			W: axi.WriteBeat{
				Data: word.FromUint64(64, 0xFFFFFFFFFFFFFFFF),
				Strb: 0x0F, // lower half only
				Last: true,
			},
		})

		push(retimer.ManagerOut{
			ARValid: true,
			AR: axi.AddrBeat{
				ID: 2, Addr: 0x80, Len: 0, Size: 3, Burst: axi.BurstIncr,
			},
		})

		in := m.React()
		Expect(in.RValid).To(BeTrue())
		Expect(in.R.Data.Uint64()).To(Equal(uint64(0x00000000FFFFFFFF)))
	})

	It("should panic on a malformed burst", func() {
		push(retimer.ManagerOut{
			AWValid: true,
			AW: axi.AddrBeat{
				ID: 1, Addr: 0, Len: 1, Size: 3, Burst: axi.BurstIncr,
			},
		})

		Expect(func() {
			// Last asserted on the first beat of a two-beat burst.
			push(retimer.ManagerOut{
				WValid: true,
				W:      writeBeat(1, true),
			})
		}).To(Panic())
	})

	It("should reject a non-positive size", func() {
		Expect(func() {
			NewMemory("Memory", cfg, 0, 100, 1)
		}).To(Panic())
	})
})
