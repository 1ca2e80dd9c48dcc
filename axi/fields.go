package axi

import "github.com/Yushi-Xing/axi-pipeline/word"

// Channel identifies one of the five bus channels.
type Channel int

// The five channels of a split-transaction request bus. AW, W, and AR flow
// from the requester to the responder; B and R flow back.
const (
	ChannelAW Channel = iota
	ChannelW
	ChannelB
	ChannelAR
	ChannelR
)

func (ch Channel) String() string {
	switch ch {
	case ChannelAW:
		return "AW"
	case ChannelW:
		return "W"
	case ChannelB:
		return "B"
	case ChannelAR:
		return "AR"
	case ChannelR:
		return "R"
	}

	return "?"
}

// Burst type encodings.
const (
	BurstFixed = 0x0 // Every beat targets the same address.
	BurstIncr  = 0x1 // The address increments by the beat size.
	BurstWrap  = 0x2 // Incrementing, wrapping at an aligned boundary.
)

// Response code encodings.
const (
	RespOkay   = 0x0 // Normal access success.
	RespExOkay = 0x1 // Exclusive access success.
	RespSlvErr = 0x2 // The responder signals an error.
	RespDecErr = 0x3 // No responder at the decoded address.
)

// An AddrBeat is one beat on an address channel (AW or AR). Field values
// wider than their configured width are truncated when packed.
type AddrBeat struct {
	ID    uint64
	Addr  uint64
	Len   uint64 // burst length minus one, in beats
	Size  uint64 // log2 of the bytes per beat
	Burst uint64
	Lock  uint64
	Cache uint64
	Prot  uint64
}

// A WriteBeat is one beat on the write-data channel.
type WriteBeat struct {
	Data word.Word
	Strb uint64 // per-byte write-enable mask
	Last bool
}

// A WriteResp is one beat on the write-response channel.
type WriteResp struct {
	ID   uint64
	Resp uint64
}

// A ReadBeat is one beat on the read-data channel.
type ReadBeat struct {
	ID   uint64
	Data word.Word
	Resp uint64
	Last bool
}
