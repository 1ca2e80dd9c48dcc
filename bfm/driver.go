package bfm

import (
	"fmt"
	"math/bits"
	"math/rand"

	"github.com/Yushi-Xing/axi-pipeline/axi"
	"github.com/Yushi-Xing/axi-pipeline/retimer"
	"github.com/Yushi-Xing/axi-pipeline/sim"
	"github.com/Yushi-Xing/axi-pipeline/word"
)

const maxWriteBeats = 8

type writeTxn struct {
	id     uint64
	region int
	addr   uint64
	burst  uint64
	beats  []axi.WriteBeat
}

type readTxn struct {
	id        uint64
	region    int
	expected  []byte
	beatsSeen uint64
}

// A Driver is a traffic-generating requester on the subordinate side of a
// retimer. It issues randomized write and read bursts, keeps a shadow copy
// of what memory must contain, and verifies every response beat against it.
// Reads only target regions whose writes have completed, so the shadow and
// the responder can never disagree on ordering.
//
// The traffic mix covers aligned and unaligned addresses, full and partial
// write strobes, and INCR as well as FIXED bursts.
type Driver struct {
	name string
	cfg  axi.Config
	rng  *rand.Rand

	shadow     []byte
	regionSize int

	regionWritten   []bool
	regionBusyWrite []bool
	regionBusyRead  []int

	targetWrites, targetReads       int
	issuedWrites, issuedReads       int
	completedWrites, completedReads int

	nextID uint64

	awPend *axi.AddrBeat
	arPend *axi.AddrBeat
	wQueue []axi.WriteBeat

	expectedB []writeTxn
	expectedR []readTxn

	// Percentage of ticks on which the response channels are ready.
	respReadyPercent int
}

// NewDriver creates a driver that will issue the given number of write and
// read transactions against a memory of the given size.
func NewDriver(
	name string,
	cfg axi.Config,
	memorySize int,
	writes, reads int,
	respReadyPercent int,
	seed int64,
) *Driver {
	sim.NameMustBeValid(name)

	regionSize := maxWriteBeats * cfg.DataWidth / 8
	numRegions := memorySize / regionSize
	if numRegions == 0 {
		panic(fmt.Sprintf(
			"memory size %d holds no %d-byte region", memorySize, regionSize))
	}

	return &Driver{
		name:             name,
		cfg:              cfg,
		rng:              rand.New(rand.NewSource(seed)),
		shadow:           make([]byte, memorySize),
		regionSize:       regionSize,
		regionWritten:    make([]bool, numRegions),
		regionBusyWrite:  make([]bool, numRegions),
		regionBusyRead:   make([]int, numRegions),
		targetWrites:     writes,
		targetReads:      reads,
		respReadyPercent: respReadyPercent,
	}
}

// Name returns the name of the driver.
func (d *Driver) Name() string {
	return d.name
}

// Done reports whether every issued transaction has completed and no more
// will be issued.
func (d *Driver) Done() bool {
	return d.completedWrites == d.targetWrites &&
		d.completedReads == d.targetReads
}

// CompletedWrites returns the number of write transactions acknowledged.
func (d *Driver) CompletedWrites() int {
	return d.completedWrites
}

// CompletedReads returns the number of read transactions fully returned and
// verified.
func (d *Driver) CompletedReads() int {
	return d.completedReads
}

// Drive produces the driver's subordinate-side signals for one tick: pending
// request beats held stable from previous ticks, newly issued requests, and
// this tick's response-channel ready rolls.
func (d *Driver) Drive() retimer.SubordinateIn {
	in := retimer.SubordinateIn{}

	in.BReady = d.roll()
	in.RReady = d.roll()

	d.maybeIssueWrite()
	d.maybeIssueRead()

	if d.awPend != nil {
		in.AWValid = true
		in.AW = *d.awPend
	}

	if len(d.wQueue) > 0 {
		in.WValid = true
		in.W = d.wQueue[0]
	}

	if d.arPend != nil {
		in.ARValid = true
		in.AR = *d.arPend
	}

	return in
}

// Update consumes this tick's completed transfers. out holds the retimer
// outputs returned by this tick's Step; seen holds the response valids and
// beats the driver observes during this tick.
func (d *Driver) Update(
	in retimer.SubordinateIn,
	out retimer.SubordinateOut,
	seen retimer.SubordinateOut,
) {
	if seen.BValid && in.BReady {
		d.completeWrite(seen.B)
	}

	if seen.RValid && in.RReady {
		d.consumeReadBeat(seen.R)
	}

	if in.AWValid && out.AWReady {
		d.awPend = nil
	}

	if in.WValid && out.WReady {
		d.wQueue = d.wQueue[1:]
	}

	if in.ARValid && out.ARReady {
		d.arPend = nil
	}
}

func (d *Driver) roll() bool {
	return d.rng.Intn(100) < d.respReadyPercent
}

func (d *Driver) maybeIssueWrite() {
	if d.awPend != nil || d.issuedWrites >= d.targetWrites {
		return
	}

	region := d.pickWritableRegion()
	if region < 0 {
		return
	}

	bytesPerBeat := d.cfg.DataWidth / 8
	beats := d.rng.Intn(maxWriteBeats) + 1
	burst := d.pickBurst()
	addr := uint64(region*d.regionSize) +
		d.pickOffset(beats, burst, bytesPerBeat)
	id := d.allocID()

	txn := writeTxn{
		id:     id,
		region: region,
		addr:   addr,
		burst:  burst,
	}

	for beatNum := 0; beatNum < beats; beatNum++ {
		beat := axi.WriteBeat{
			Data: d.randomBeatData(),
			Strb: d.pickStrobe(bytesPerBeat),
			Last: beatNum == beats-1,
		}

		txn.beats = append(txn.beats, beat)
		d.wQueue = append(d.wQueue, beat)
	}

	aw := axi.AddrBeat{
		ID:    id,
		Addr:  addr,
		Len:   uint64(beats - 1),
		Size:  uint64(bits.TrailingZeros(uint(bytesPerBeat))),
		Burst: burst,
		Cache: 0x3,
	}
	d.awPend = &aw

	d.expectedB = append(d.expectedB, txn)
	d.regionBusyWrite[region] = true
	d.issuedWrites++
}

func (d *Driver) maybeIssueRead() {
	if d.arPend != nil || d.issuedReads >= d.targetReads {
		return
	}

	region := d.pickReadableRegion()
	if region < 0 {
		return
	}

	bytesPerBeat := d.cfg.DataWidth / 8
	beats := d.rng.Intn(maxWriteBeats) + 1
	burst := d.pickBurst()
	addr := uint64(region*d.regionSize) +
		d.pickOffset(beats, burst, bytesPerBeat)
	id := d.allocID()

	expected := make([]byte, beats*bytesPerBeat)
	if burst == axi.BurstFixed {
		for beatNum := 0; beatNum < beats; beatNum++ {
			copy(expected[beatNum*bytesPerBeat:], d.shadow[addr:addr+uint64(bytesPerBeat)])
		}
	} else {
		copy(expected, d.shadow[addr:])
	}

	ar := axi.AddrBeat{
		ID:    id,
		Addr:  addr,
		Len:   uint64(beats - 1),
		Size:  uint64(bits.TrailingZeros(uint(bytesPerBeat))),
		Burst: burst,
		Cache: 0x3,
	}
	d.arPend = &ar

	d.expectedR = append(d.expectedR, readTxn{
		id:       id,
		region:   region,
		expected: expected,
	})
	d.regionBusyRead[region]++
	d.issuedReads++
}

// pickBurst returns INCR most of the time and FIXED for a quarter of the
// bursts.
func (d *Driver) pickBurst() uint64 {
	if d.rng.Intn(4) == 0 {
		return axi.BurstFixed
	}

	return axi.BurstIncr
}

// pickOffset returns a random byte offset into a region such that the whole
// burst stays inside it. The offset is not beat-aligned.
func (d *Driver) pickOffset(beats int, burst uint64, bytesPerBeat int) uint64 {
	span := beats * bytesPerBeat
	if burst == axi.BurstFixed {
		span = bytesPerBeat
	}

	return uint64(d.rng.Intn(d.regionSize - span + 1))
}

// pickStrobe returns the full strobe most of the time and a random non-empty
// partial strobe for a quarter of the beats.
func (d *Driver) pickStrobe(bytesPerBeat int) uint64 {
	full := fullStrobe(bytesPerBeat)
	if d.rng.Intn(4) != 0 {
		return full
	}

	strb := d.rng.Uint64() & full
	if strb == 0 {
		strb = 1
	}

	return strb
}

func (d *Driver) randomBeatData() word.Word {
	data := word.New(d.cfg.DataWidth)
	for i := 0; i < d.cfg.DataWidth/8; i++ {
		data.SetSlice(i*8, 8, uint64(d.rng.Intn(256)))
	}

	return data
}

func (d *Driver) completeWrite(b axi.WriteResp) {
	if len(d.expectedB) == 0 {
		panic(fmt.Sprintf("%s: unexpected write response id=%d", d.name, b.ID))
	}

	txn := d.expectedB[0]
	d.expectedB = d.expectedB[1:]

	if b.ID != txn.id {
		panic(fmt.Sprintf("%s: write response id mismatch: want %d, got %d",
			d.name, txn.id, b.ID))
	}

	if b.Resp != axi.RespOkay {
		panic(fmt.Sprintf("%s: write response error: resp=%d", d.name, b.Resp))
	}

	// The responder has committed the write; the shadow follows, beat by
	// beat, honoring strobes and the burst's addressing mode.
	bytesPerBeat := d.cfg.DataWidth / 8
	for beatNum, beat := range txn.beats {
		addr := txn.addr
		if txn.burst != axi.BurstFixed {
			addr += uint64(beatNum * bytesPerBeat)
		}

		for i := 0; i < bytesPerBeat; i++ {
			if beat.Strb&(1<<i) == 0 {
				continue
			}

			d.shadow[addr+uint64(i)] = byte(beat.Data.Slice(i*8, 8))
		}
	}

	d.regionWritten[txn.region] = true
	d.regionBusyWrite[txn.region] = false
	d.completedWrites++
}

func (d *Driver) consumeReadBeat(r axi.ReadBeat) {
	if len(d.expectedR) == 0 {
		panic(fmt.Sprintf("%s: unexpected read beat id=%d", d.name, r.ID))
	}

	txn := &d.expectedR[0]

	if r.ID != txn.id {
		panic(fmt.Sprintf("%s: read beat id mismatch: want %d, got %d",
			d.name, txn.id, r.ID))
	}

	if r.Resp != axi.RespOkay {
		panic(fmt.Sprintf("%s: read beat error: resp=%d", d.name, r.Resp))
	}

	bytesPerBeat := d.cfg.DataWidth / 8
	totalBeats := uint64(len(txn.expected) / bytesPerBeat)

	for i := 0; i < bytesPerBeat; i++ {
		want := txn.expected[txn.beatsSeen*uint64(bytesPerBeat)+uint64(i)]
		got := byte(r.Data.Slice(i*8, 8))
		if want != got {
			panic(fmt.Sprintf(
				"%s: read data mismatch on beat %d byte %d: want %#x, got %#x",
				d.name, txn.beatsSeen, i, want, got))
		}
	}

	if r.Last != (txn.beatsSeen == totalBeats-1) {
		panic(fmt.Sprintf("%s: read burst length mismatch: last=%v on beat %d of %d",
			d.name, r.Last, txn.beatsSeen+1, totalBeats))
	}

	txn.beatsSeen++
	if txn.beatsSeen == totalBeats {
		d.regionBusyRead[txn.region]--
		d.expectedR = d.expectedR[1:]
		d.completedReads++
	}
}

func (d *Driver) pickWritableRegion() int {
	return d.pickRegion(func(i int) bool {
		return !d.regionBusyWrite[i] && d.regionBusyRead[i] == 0
	})
}

func (d *Driver) pickReadableRegion() int {
	return d.pickRegion(func(i int) bool {
		return d.regionWritten[i] && !d.regionBusyWrite[i]
	})
}

func (d *Driver) pickRegion(usable func(int) bool) int {
	start := d.rng.Intn(len(d.regionWritten))
	for i := 0; i < len(d.regionWritten); i++ {
		region := (start + i) % len(d.regionWritten)
		if usable(region) {
			return region
		}
	}

	return -1
}

func (d *Driver) allocID() uint64 {
	id := d.nextID & ((1 << d.cfg.IDWidth) - 1)
	d.nextID++

	return id
}

func fullStrobe(bytesPerBeat int) uint64 {
	if bytesPerBeat >= 64 {
		return ^uint64(0)
	}

	return (uint64(1) << bytesPerBeat) - 1
}
