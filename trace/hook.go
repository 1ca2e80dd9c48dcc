package trace

import (
	"github.com/Yushi-Xing/axi-pipeline/sim"
	"github.com/Yushi-Xing/axi-pipeline/word"
)

// TransferTable is the table that transfer hooks record into.
const TransferTable = "transfers"

// A TransferEntry is one recorded handshake transfer.
type TransferEntry struct {
	Tick    uint64
	Channel string
	Event   string
	Payload string
}

// CreateTransferTable creates the transfer table on a recorder. Call it once
// before attaching transfer hooks.
func CreateTransferTable(r Recorder) {
	r.CreateTable(TransferTable, TransferEntry{})
}

// A TransferHook records every hook invocation of the object it is attached
// to as a row in the transfer table. Attach it to a channel checker or a
// pipeline to capture its traffic.
type TransferHook struct {
	recorder Recorder
	channel  string
}

// NewTransferHook creates a hook that records under the given channel name.
func NewTransferHook(recorder Recorder, channel string) *TransferHook {
	return &TransferHook{
		recorder: recorder,
		channel:  channel,
	}
}

// Func records the hook invocation.
func (h *TransferHook) Func(ctx sim.HookCtx) {
	entry := TransferEntry{
		Channel: h.channel,
		Event:   ctx.Pos.Name,
	}

	if tick, ok := ctx.Detail.(uint64); ok {
		entry.Tick = tick
	}

	if payload, ok := ctx.Item.(word.Word); ok {
		entry.Payload = payload.String()
	}

	h.recorder.InsertData(TransferTable, entry)
}
