package retimer

import (
	"fmt"

	"github.com/Yushi-Xing/axi-pipeline/axi"
	"github.com/Yushi-Xing/axi-pipeline/pipeline"
	"github.com/Yushi-Xing/axi-pipeline/sim"
)

// A Builder can build bus retimers.
type Builder struct {
	depth int
	cfg   axi.Config
}

// MakeBuilder creates a default builder.
func MakeBuilder() Builder {
	return Builder{
		depth: 1,
		cfg:   axi.DefaultConfig(),
	}
}

// WithDepth sets the shared pipeline depth of all five channels.
func (b Builder) WithDepth(d int) Builder {
	b.depth = d
	return b
}

// WithConfig sets the bus field widths.
func (b Builder) WithConfig(cfg axi.Config) Builder {
	b.cfg = cfg
	return b
}

// Build builds a bus retimer. It panics on a negative depth or an invalid
// bus configuration, before the retimer can ever tick.
func (b Builder) Build(name string) *BusRetimer {
	sim.NameMustBeValid(name)

	if b.depth < 0 {
		panic(fmt.Sprintf("retimer depth must be non-negative, got %d",
			b.depth))
	}

	if err := b.cfg.Validate(); err != nil {
		panic(fmt.Sprintf("invalid bus configuration: %s", err))
	}

	channelPipe := func(channel string, width int) *pipeline.Pipeline {
		return pipeline.MakeBuilder().
			WithDepth(b.depth).
			WithPayloadWidth(width).
			Build(sim.BuildName(name, channel+"Pipeline"))
	}

	return &BusRetimer{
		name:   name,
		codec:  axi.NewCodec(b.cfg),
		awPipe: channelPipe("AW", b.cfg.AWWidth()),
		wPipe:  channelPipe("W", b.cfg.WWidth()),
		bPipe:  channelPipe("B", b.cfg.BWidth()),
		arPipe: channelPipe("AR", b.cfg.ARWidth()),
		rPipe:  channelPipe("R", b.cfg.RWidth()),
	}
}
