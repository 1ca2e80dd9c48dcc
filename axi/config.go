// Package axi models the five channels of an AXI4 request bus: the named
// field bundles that travel on each channel and the codecs that pack them
// into fixed-width payload words.
package axi

import "fmt"

// Config holds the per-field bit widths of a bus instance. It is built once
// at construction time and never mutated afterwards.
type Config struct {
	IDWidth    int
	AddrWidth  int
	DataWidth  int
	LenWidth   int
	SizeWidth  int
	BurstWidth int
	LockWidth  int
	CacheWidth int
	ProtWidth  int
	RespWidth  int
}

// DefaultConfig returns the widths of the reference bus configuration.
func DefaultConfig() Config {
	return Config{
		IDWidth:    4,
		AddrWidth:  64,
		DataWidth:  64,
		LenWidth:   8,
		SizeWidth:  3,
		BurstWidth: 2,
		LockWidth:  1,
		CacheWidth: 4,
		ProtWidth:  3,
		RespWidth:  2,
	}
}

// StrbWidth returns the write-strobe width, one bit per data byte.
func (c Config) StrbWidth() int {
	return c.DataWidth / 8
}

// Validate reports the first configuration error, or nil if every width is
// usable.
func (c Config) Validate() error {
	fields := []struct {
		name  string
		width int
	}{
		{"id", c.IDWidth},
		{"addr", c.AddrWidth},
		{"data", c.DataWidth},
		{"len", c.LenWidth},
		{"size", c.SizeWidth},
		{"burst", c.BurstWidth},
		{"lock", c.LockWidth},
		{"cache", c.CacheWidth},
		{"prot", c.ProtWidth},
		{"resp", c.RespWidth},
	}

	for _, f := range fields {
		if f.width <= 0 {
			return fmt.Errorf("%s width must be positive, got %d",
				f.name, f.width)
		}
	}

	if c.DataWidth%8 != 0 {
		return fmt.Errorf("data width must be a whole number of bytes, got %d",
			c.DataWidth)
	}

	for _, f := range []struct {
		name  string
		width int
	}{
		{"id", c.IDWidth},
		{"addr", c.AddrWidth},
		{"len", c.LenWidth},
		{"size", c.SizeWidth},
		{"burst", c.BurstWidth},
		{"lock", c.LockWidth},
		{"cache", c.CacheWidth},
		{"prot", c.ProtWidth},
		{"resp", c.RespWidth},
		{"strb", c.StrbWidth()},
	} {
		if f.width > 64 {
			return fmt.Errorf("%s width must not exceed 64 bits, got %d",
				f.name, f.width)
		}
	}

	return nil
}

// AWWidth returns the packed width of a write-address beat.
func (c Config) AWWidth() int {
	return c.IDWidth + c.AddrWidth + c.LenWidth + c.SizeWidth +
		c.BurstWidth + c.LockWidth + c.CacheWidth + c.ProtWidth
}

// ARWidth returns the packed width of a read-address beat.
func (c Config) ARWidth() int {
	return c.AWWidth()
}

// WWidth returns the packed width of a write-data beat.
func (c Config) WWidth() int {
	return c.DataWidth + c.StrbWidth() + 1
}

// BWidth returns the packed width of a write-response beat.
func (c Config) BWidth() int {
	return c.IDWidth + c.RespWidth
}

// RWidth returns the packed width of a read-data beat.
func (c Config) RWidth() int {
	return c.IDWidth + c.DataWidth + c.RespWidth + 1
}
