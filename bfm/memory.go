package bfm

import (
	"fmt"
	"math/rand"

	"github.com/Yushi-Xing/axi-pipeline/axi"
	"github.com/Yushi-Xing/axi-pipeline/retimer"
	"github.com/Yushi-Xing/axi-pipeline/sim"
	"github.com/Yushi-Xing/axi-pipeline/word"
)

const maxBurstBeats = 256

// A Memory is a byte-addressable RAM responder on the manager side of a
// retimer. It accepts write-address and write-data beats, executes INCR and
// FIXED bursts, and answers through the B and R channels. A configurable
// ready duty cycle lets it stall the request channels to exercise
// back-pressure.
type Memory struct {
	name    string
	cfg     axi.Config
	storage []byte
	rng     *rand.Rand

	// Percentage of ticks on which a request channel is ready.
	readyPercent int

	awBuf sim.Buffer
	wBuf  sim.Buffer
	bBuf  sim.Buffer
	rBuf  sim.Buffer

	// In-progress write burst.
	curAW     *axi.AddrBeat
	beatsDone uint64
}

// NewMemory creates a memory responder with the given storage size in
// bytes. readyPercent sets how often the request channels are ready; 100
// never stalls.
func NewMemory(
	name string,
	cfg axi.Config,
	size int,
	readyPercent int,
	seed int64,
) *Memory {
	sim.NameMustBeValid(name)

	if size <= 0 {
		panic(fmt.Sprintf("memory size must be positive, got %d", size))
	}

	return &Memory{
		name:         name,
		cfg:          cfg,
		storage:      make([]byte, size),
		rng:          rand.New(rand.NewSource(seed)),
		readyPercent: readyPercent,
		awBuf:        sim.NewBuffer(sim.BuildName(name, "AWBuf"), 16),
		wBuf:         sim.NewBuffer(sim.BuildName(name, "WBuf"), 16*maxBurstBeats),
		bBuf:         sim.NewBuffer(sim.BuildName(name, "BBuf"), 16),
		rBuf:         sim.NewBuffer(sim.BuildName(name, "RBuf"), 16*maxBurstBeats),
	}
}

// Name returns the name of the memory.
func (m *Memory) Name() string {
	return m.name
}

// React produces the memory's manager-side signals for one tick: this tick's
// request-channel ready rolls and the queued response beats. Request beats
// observed this tick are consumed later, in Update.
func (m *Memory) React() retimer.ManagerIn {
	in := retimer.ManagerIn{}

	in.AWReady = m.roll() && m.awBuf.CanPush()
	in.WReady = m.roll() && m.wBuf.CanPush()
	in.ARReady = m.roll() &&
		m.rBuf.Capacity()-m.rBuf.Size() >= maxBurstBeats

	if b := m.bBuf.Peek(); b != nil {
		in.BValid = true
		in.B = b.(axi.WriteResp)
	}

	if r := m.rBuf.Peek(); r != nil {
		in.RValid = true
		in.R = r.(axi.ReadBeat)
	}

	return in
}

// Update consumes this tick's completed transfers. out holds the retimer
// outputs returned by this tick's Step; seen holds the request valids and
// beats the memory observes during this tick.
func (m *Memory) Update(
	in retimer.ManagerIn,
	out retimer.ManagerOut,
	seen retimer.ManagerOut,
) {
	if in.BValid && out.BReady {
		m.bBuf.Pop()
	}

	if in.RValid && out.RReady {
		m.rBuf.Pop()
	}

	if seen.AWValid && in.AWReady {
		m.awBuf.Push(seen.AW)
	}

	if seen.WValid && in.WReady {
		m.wBuf.Push(seen.W)
	}

	if seen.ARValid && in.ARReady {
		m.executeRead(seen.AR)
	}

	m.executeWrites()
}

// Reset discards all queued and in-flight state. Storage contents are kept.
func (m *Memory) Reset() {
	m.awBuf.Clear()
	m.wBuf.Clear()
	m.bBuf.Clear()
	m.rBuf.Clear()
	m.curAW = nil
	m.beatsDone = 0
}

func (m *Memory) roll() bool {
	return m.rng.Intn(100) < m.readyPercent
}

// executeWrites pairs queued write-address and write-data beats and applies
// strobed bytes to storage. The write response is queued when the last beat
// of the burst lands.
func (m *Memory) executeWrites() {
	for {
		if m.curAW == nil {
			// A burst is only started with a response slot in hand, so the
			// push at the end of the burst cannot overflow.
			if !m.bBuf.CanPush() {
				return
			}

			aw := m.awBuf.Pop()
			if aw == nil {
				return
			}

			beat := aw.(axi.AddrBeat)
			m.curAW = &beat
			m.beatsDone = 0
		}

		for m.beatsDone <= m.curAW.Len {
			w := m.wBuf.Pop()
			if w == nil {
				return
			}

			beat := w.(axi.WriteBeat)
			m.applyWriteBeat(*m.curAW, m.beatsDone, beat)

			if beat.Last != (m.beatsDone == m.curAW.Len) {
				panic(fmt.Sprintf(
					"%s: write burst length mismatch: last=%v on beat %d of %d",
					m.name, beat.Last, m.beatsDone+1, m.curAW.Len+1))
			}

			m.beatsDone++
		}

		if !m.bBuf.CanPush() {
			panic(fmt.Sprintf("%s: write response queue overflow", m.name))
		}

		m.bBuf.Push(axi.WriteResp{ID: m.curAW.ID, Resp: axi.RespOkay})
		m.curAW = nil
	}
}

func (m *Memory) applyWriteBeat(aw axi.AddrBeat, beatNum uint64, w axi.WriteBeat) {
	addr := m.beatAddress(aw, beatNum)
	bytesPerBeat := m.cfg.DataWidth / 8

	for i := 0; i < bytesPerBeat; i++ {
		if w.Strb&(1<<i) == 0 {
			continue
		}

		m.storage[(addr+uint64(i))%uint64(len(m.storage))] =
			byte(w.Data.Slice(i*8, 8))
	}
}

func (m *Memory) executeRead(ar axi.AddrBeat) {
	bytesPerBeat := m.cfg.DataWidth / 8

	for beatNum := uint64(0); beatNum <= ar.Len; beatNum++ {
		addr := m.beatAddress(ar, beatNum)

		data := word.New(m.cfg.DataWidth)
		for i := 0; i < bytesPerBeat; i++ {
			data.SetSlice(i*8, 8,
				uint64(m.storage[(addr+uint64(i))%uint64(len(m.storage))]))
		}

		m.rBuf.Push(axi.ReadBeat{
			ID:   ar.ID,
			Data: data,
			Resp: axi.RespOkay,
			Last: beatNum == ar.Len,
		})
	}
}

// beatAddress returns the address of one beat of a burst. FIXED bursts stay
// at the start address; everything else increments by the beat size.
func (m *Memory) beatAddress(a axi.AddrBeat, beatNum uint64) uint64 {
	if a.Burst == axi.BurstFixed {
		return a.Addr
	}

	return a.Addr + beatNum*uint64(m.cfg.DataWidth/8)
}
