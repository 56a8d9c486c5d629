package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"riscvsim/mem"
)

func TestReadMissThenHit(t *testing.T) {
	m := mem.New(256)
	assert.NoError(t, m.WriteWord(16, 0xcafebabe, false))

	c, err := New(RoleData, 64, 16, m)
	assert.NoError(t, err)

	w, err := c.ReadWord(16)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0xcafebabe), w)

	// mutate backing memory directly; a cache hit should still return
	// the stale cached value.
	m.WriteWord(16, 0x11111111, false)
	w, _ = c.ReadWord(16)
	assert.Equal(t, uint32(0xcafebabe), w)
}

func TestWriteThroughAndHitPatch(t *testing.T) {
	m := mem.New(256)
	c, _ := New(RoleData, 64, 16, m)

	_, _ = c.ReadWord(0) // install the line (miss)
	assert.NoError(t, c.WriteWord(0, 0xdeadbeef))

	// write-through: backing memory always reflects the write.
	backingWord, _ := m.ReadWord(0, false)
	assert.Equal(t, uint32(0xdeadbeef), backingWord)

	// write hit: the cached line is also patched.
	cached, _ := c.ReadWord(0)
	assert.Equal(t, uint32(0xdeadbeef), cached)
}

func TestWriteMissNoAllocate(t *testing.T) {
	m := mem.New(256)
	c, _ := New(RoleData, 64, 16, m)

	// write without a prior read: write miss, no-write-allocate.
	assert.NoError(t, c.WriteWord(32, 0x42424242))
	backingWord, _ := m.ReadWord(32, false)
	assert.Equal(t, uint32(0x42424242), backingWord)
}

func TestInvalidSizes(t *testing.T) {
	m := mem.New(256)
	_, err := New(RoleInstruction, 10, 16, m) // not a multiple
	assert.Error(t, err)

	_, err = New(RoleInstruction, 48, 16, m) // 3 lines, not a power of 2
	assert.Error(t, err)
}
