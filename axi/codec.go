package axi

import (
	"fmt"

	"github.com/Yushi-Xing/axi-pipeline/word"
)

// A Codec packs channel beats into fixed-width payload words and back. The
// concatenation order is part of the external contract: fields occupy the
// word from the least-significant bit upwards, in the order the beat struct
// declares them. Pack and Unpack are inverse for every valid field tuple.
type Codec struct {
	cfg Config
}

// NewCodec creates a codec for the given bus configuration. It panics on an
// invalid configuration.
func NewCodec(cfg Config) Codec {
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("invalid bus configuration: %s", err))
	}

	return Codec{cfg: cfg}
}

// Config returns the bus configuration the codec was built with.
func (c Codec) Config() Config {
	return c.cfg
}

// PackAW packs a write-address beat. Layout, LSB first: ID, Addr, Len, Size,
// Burst, Lock, Cache, Prot.
func (c Codec) PackAW(b AddrBeat) word.Word {
	return c.packAddr(b, c.cfg.AWWidth())
}

// UnpackAW unpacks a write-address beat.
func (c Codec) UnpackAW(w word.Word) AddrBeat {
	return c.unpackAddr(w)
}

// PackAR packs a read-address beat. The layout matches PackAW.
func (c Codec) PackAR(b AddrBeat) word.Word {
	return c.packAddr(b, c.cfg.ARWidth())
}

// UnpackAR unpacks a read-address beat.
func (c Codec) UnpackAR(w word.Word) AddrBeat {
	return c.unpackAddr(w)
}

// PackW packs a write-data beat. Layout, LSB first: Data, Strb, Last.
func (c Codec) PackW(b WriteBeat) word.Word {
	c.dataWidthMustMatch(b.Data)

	w := word.New(c.cfg.WWidth())
	pos := 0

	w.Insert(pos, b.Data)
	pos += c.cfg.DataWidth
	w.SetSlice(pos, c.cfg.StrbWidth(), b.Strb)
	pos += c.cfg.StrbWidth()
	w.SetSlice(pos, 1, boolBit(b.Last))

	return w
}

// UnpackW unpacks a write-data beat.
func (c Codec) UnpackW(w word.Word) WriteBeat {
	pos := 0

	b := WriteBeat{}
	b.Data = w.Extract(pos, c.cfg.DataWidth)
	pos += c.cfg.DataWidth
	b.Strb = w.Slice(pos, c.cfg.StrbWidth())
	pos += c.cfg.StrbWidth()
	b.Last = w.Slice(pos, 1) == 1

	return b
}

// PackB packs a write-response beat. Layout, LSB first: ID, Resp.
func (c Codec) PackB(b WriteResp) word.Word {
	w := word.New(c.cfg.BWidth())

	w.SetSlice(0, c.cfg.IDWidth, b.ID)
	w.SetSlice(c.cfg.IDWidth, c.cfg.RespWidth, b.Resp)

	return w
}

// UnpackB unpacks a write-response beat.
func (c Codec) UnpackB(w word.Word) WriteResp {
	return WriteResp{
		ID:   w.Slice(0, c.cfg.IDWidth),
		Resp: w.Slice(c.cfg.IDWidth, c.cfg.RespWidth),
	}
}

// PackR packs a read-data beat. Layout, LSB first: ID, Data, Resp, Last.
func (c Codec) PackR(b ReadBeat) word.Word {
	c.dataWidthMustMatch(b.Data)

	w := word.New(c.cfg.RWidth())
	pos := 0

	w.SetSlice(pos, c.cfg.IDWidth, b.ID)
	pos += c.cfg.IDWidth
	w.Insert(pos, b.Data)
	pos += c.cfg.DataWidth
	w.SetSlice(pos, c.cfg.RespWidth, b.Resp)
	pos += c.cfg.RespWidth
	w.SetSlice(pos, 1, boolBit(b.Last))

	return w
}

// UnpackR unpacks a read-data beat.
func (c Codec) UnpackR(w word.Word) ReadBeat {
	pos := 0

	b := ReadBeat{}
	b.ID = w.Slice(pos, c.cfg.IDWidth)
	pos += c.cfg.IDWidth
	b.Data = w.Extract(pos, c.cfg.DataWidth)
	pos += c.cfg.DataWidth
	b.Resp = w.Slice(pos, c.cfg.RespWidth)
	pos += c.cfg.RespWidth
	b.Last = w.Slice(pos, 1) == 1

	return b
}

func (c Codec) packAddr(b AddrBeat, width int) word.Word {
	w := word.New(width)
	pos := 0

	for _, f := range []struct {
		width int
		value uint64
	}{
		{c.cfg.IDWidth, b.ID},
		{c.cfg.AddrWidth, b.Addr},
		{c.cfg.LenWidth, b.Len},
		{c.cfg.SizeWidth, b.Size},
		{c.cfg.BurstWidth, b.Burst},
		{c.cfg.LockWidth, b.Lock},
		{c.cfg.CacheWidth, b.Cache},
		{c.cfg.ProtWidth, b.Prot},
	} {
		w.SetSlice(pos, f.width, f.value)
		pos += f.width
	}

	return w
}

func (c Codec) unpackAddr(w word.Word) AddrBeat {
	b := AddrBeat{}
	pos := 0

	for _, f := range []struct {
		width int
		value *uint64
	}{
		{c.cfg.IDWidth, &b.ID},
		{c.cfg.AddrWidth, &b.Addr},
		{c.cfg.LenWidth, &b.Len},
		{c.cfg.SizeWidth, &b.Size},
		{c.cfg.BurstWidth, &b.Burst},
		{c.cfg.LockWidth, &b.Lock},
		{c.cfg.CacheWidth, &b.Cache},
		{c.cfg.ProtWidth, &b.Prot},
	} {
		*f.value = w.Slice(pos, f.width)
		pos += f.width
	}

	return b
}

func (c Codec) dataWidthMustMatch(data word.Word) {
	if data.Width() != c.cfg.DataWidth {
		panic(fmt.Sprintf("data word must be %d bits, got %d",
			c.cfg.DataWidth, data.Width()))
	}
}

func boolBit(b bool) uint64 {
	if b {
		return 1
	}

	return 0
}
