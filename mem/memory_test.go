package mem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWordRoundTrip(t *testing.T) {
	m := New(64)
	assert.NoError(t, m.WriteWord(0, 0xdeadbeef, false))
	w, err := m.ReadWord(0, false)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), w)

	b, _ := m.ReadByte(0, false)
	assert.Equal(t, byte(0xef), b) // little-endian: low byte first
}

func TestBoundaryAtSizeMinus4(t *testing.T) {
	m := New(64)
	_, err := m.ReadWord(60, false) // size-4, last valid word
	assert.NoError(t, err)

	_, err = m.ReadWord(61, false) // would straddle the end
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestCyclicWraparound(t *testing.T) {
	m := New(64)
	assert.NoError(t, m.WriteByte(0, 0x42, false))
	b, err := m.ReadByte(64, true) // wraps to 0
	assert.NoError(t, err)
	assert.Equal(t, byte(0x42), b)
}

func TestReadBlock(t *testing.T) {
	m := New(64)
	assert.NoError(t, m.WriteWord(8, 0x01020304, false))
	block, err := m.ReadBlock(8, 4)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, block)

	_, err = m.ReadBlock(60, 8)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestLoadProgramAndClear(t *testing.T) {
	m := New(64)
	assert.NoError(t, m.LoadProgram([]byte{1, 2, 3, 4}, 4))
	w, _ := m.ReadWord(4, false)
	assert.Equal(t, uint32(0x04030201), w)

	assert.ErrorIs(t, m.LoadProgram([]byte{1, 2, 3, 4}, 62), ErrOutOfBounds)

	m.Clear()
	w, _ = m.ReadWord(4, false)
	assert.Equal(t, uint32(0), w)
}

func TestClone(t *testing.T) {
	m := New(16)
	m.WriteByte(0, 0x7, false)
	c := m.Clone()
	c.WriteByte(0, 0x9, false)
	orig, _ := m.ReadByte(0, false)
	assert.Equal(t, byte(0x7), orig)
}
