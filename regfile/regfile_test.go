package regfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestX0AlwaysZero(t *testing.T) {
	var r RegisterFile
	r.Write(0, 42)
	assert.Equal(t, uint32(0), r.ReadA(0))
	assert.Equal(t, uint32(0), r.ReadB(0))
}

func TestReadAReadBIdentical(t *testing.T) {
	var r RegisterFile
	r.Write(5, 0xabc)
	assert.Equal(t, r.ReadA(5), r.ReadB(5))
}

func TestResetAndSnapshot(t *testing.T) {
	var r RegisterFile
	r.Write(1, 5)
	r.Write(2, 12)
	snap := r.Snapshot()

	r.Write(1, 99)
	r.Restore(snap)
	assert.Equal(t, uint32(5), r.ReadA(1))

	r.Reset()
	assert.Equal(t, uint32(0), r.ReadA(1))
	assert.Equal(t, uint32(0), r.ReadA(2))
}
