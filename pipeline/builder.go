package pipeline

import (
	"fmt"

	"github.com/Yushi-Xing/axi-pipeline/sim"
)

// A Builder can build pipelines.
type Builder struct {
	depth        int
	payloadWidth int
}

// MakeBuilder creates a default builder.
func MakeBuilder() Builder {
	return Builder{
		depth:        1,
		payloadWidth: 32,
	}
}

// WithDepth sets the number of storage stages. Depth 0 builds a pure
// combinational pass-through with no storage.
func (b Builder) WithDepth(d int) Builder {
	b.depth = d
	return b
}

// WithPayloadWidth sets the payload width in bits.
func (b Builder) WithPayloadWidth(w int) Builder {
	b.payloadWidth = w
	return b
}

// Build builds a pipeline. It panics on a negative depth or a non-positive
// payload width, before the pipeline can ever tick.
func (b Builder) Build(name string) *Pipeline {
	sim.NameMustBeValid(name)

	if b.depth < 0 {
		panic(fmt.Sprintf("pipeline depth must be non-negative, got %d",
			b.depth))
	}

	if b.payloadWidth <= 0 {
		panic(fmt.Sprintf("pipeline payload width must be positive, got %d",
			b.payloadWidth))
	}

	p := &Pipeline{
		name:         name,
		depth:        b.depth,
		payloadWidth: b.payloadWidth,
		stages:       make([]stage, b.depth),
	}

	p.Reset()

	return p
}
