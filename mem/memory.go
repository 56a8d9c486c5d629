// Package mem implements the byte-addressable backing store shared by every
// datapath backend: a fixed-size byte array with little-endian 32-bit word
// access and contiguous block reads.
package mem

import (
	"errors"
	"fmt"
)

// ErrOutOfBounds is returned when an access falls outside the memory's
// capacity and cyclic wraparound was not requested.
var ErrOutOfBounds = errors.New("mem: out of bounds")

// Memory is a mutable byte array of fixed size. Size must be a power of two.
type Memory struct {
	data []byte
}

// New allocates a zeroed Memory of the given size in bytes. size must be a
// power of two and non-zero.
func New(size uint32) *Memory {
	if size == 0 || size&(size-1) != 0 {
		panic("mem: size must be a non-zero power of two")
	}
	return &Memory{data: make([]byte, size)}
}

// Size returns the memory's capacity in bytes.
func (m *Memory) Size() uint32 { return uint32(len(m.data)) }

func (m *Memory) wrap(addr uint32, cyclic bool) (uint32, error) {
	size := uint32(len(m.data))
	if cyclic {
		return addr % size, nil
	}
	if addr >= size {
		return 0, fmt.Errorf("%w: address 0x%08x exceeds size 0x%08x", ErrOutOfBounds, addr, size)
	}
	return addr, nil
}

// ReadByte reads a single byte at addr.
func (m *Memory) ReadByte(addr uint32, cyclic bool) (byte, error) {
	a, err := m.wrap(addr, cyclic)
	if err != nil {
		return 0, err
	}
	return m.data[a], nil
}

// WriteByte writes a single byte at addr.
func (m *Memory) WriteByte(addr uint32, v byte, cyclic bool) error {
	a, err := m.wrap(addr, cyclic)
	if err != nil {
		return err
	}
	m.data[a] = v
	return nil
}

// ReadWord assembles four bytes little-endian starting at addr. If cyclic,
// addr is reduced modulo the memory size (each of the four byte addresses is
// wrapped independently); otherwise a straddling access fails with
// ErrOutOfBounds.
func (m *Memory) ReadWord(addr uint32, cyclic bool) (uint32, error) {
	var word uint32
	for i := uint32(0); i < 4; i++ {
		b, err := m.ReadByte(addr+i, cyclic)
		if err != nil {
			return 0, err
		}
		word |= uint32(b) << (8 * i)
	}
	return word, nil
}

// WriteWord splits v into four little-endian bytes starting at addr.
func (m *Memory) WriteWord(addr uint32, v uint32, cyclic bool) error {
	for i := uint32(0); i < 4; i++ {
		if err := m.WriteByte(addr+i, byte(v>>(8*i)), cyclic); err != nil {
			return err
		}
	}
	return nil
}

// ReadBlock returns a copy of n contiguous bytes starting at base. Block
// reads never wrap; a block that would run past the end fails with
// ErrOutOfBounds.
func (m *Memory) ReadBlock(base uint32, n uint32) ([]byte, error) {
	if uint64(base)+uint64(n) > uint64(len(m.data)) {
		return nil, fmt.Errorf("%w: block [0x%08x,0x%08x) exceeds size 0x%08x", ErrOutOfBounds, base, base+n, len(m.data))
	}
	out := make([]byte, n)
	copy(out, m.data[base:base+n])
	return out, nil
}

// Clear zeroes every byte.
func (m *Memory) Clear() {
	for i := range m.data {
		m.data[i] = 0
	}
}

// LoadProgram copies program into memory starting at base. It fails with
// ErrOutOfBounds if base+len(program) exceeds capacity.
func (m *Memory) LoadProgram(program []byte, base uint32) error {
	if uint64(base)+uint64(len(program)) > uint64(len(m.data)) {
		return fmt.Errorf("%w: program of %d bytes at 0x%08x exceeds size 0x%08x", ErrOutOfBounds, len(program), base, len(m.data))
	}
	copy(m.data[base:], program)
	return nil
}

// Bytes returns the live backing slice. Callers that need an isolated copy
// (e.g. for a history snapshot) must clone it themselves.
func (m *Memory) Bytes() []byte { return m.data }

// Clone returns an independent copy of m.
func (m *Memory) Clone() *Memory {
	out := &Memory{data: make([]byte, len(m.data))}
	copy(out.data, m.data)
	return out
}
