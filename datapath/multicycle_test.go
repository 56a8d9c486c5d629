package datapath_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riscvsim/datapath"
	"riscvsim/mem"
	"riscvsim/regfile"
	"riscvsim/signal"
)

// TestMultiCycleAddiChain re-runs Scenario A against the multi-cycle
// backend: one Step still executes a full instruction, only the bus
// timestamps differ from single-cycle.
func TestMultiCycleAddiChain(t *testing.T) {
	program := assembleOrFail(t, `
		addi x1, x0, 5
		addi x2, x1, 7
	`)
	imem, dmem := mem.New(256), mem.New(256)
	require.NoError(t, imem.LoadProgram(program, 0))

	var regs regfile.RegisterFile
	var st signal.DatapathState
	var cpu datapath.MultiCycle
	logger := testLogger()

	pc := uint32(0)
	var err error
	for i := 0; i < 2; i++ {
		pc, err = cpu.Step(pc, &regs, imem, dmem, &st, logger)
		require.NoError(t, err)
	}

	assert.Equal(t, uint32(8), pc)
	assert.Equal(t, uint32(5), regs.ReadA(1))
	assert.Equal(t, uint32(12), regs.ReadA(2))
}

// TestMultiCycleLoadReachesWriteBackMicroCycle confirms a load's write-back
// is timestamped to the final micro-cycle (index 4), while a register-only
// instruction's write-back completes by the memory micro-cycle (index 3).
func TestMultiCycleLoadReachesWriteBackMicroCycle(t *testing.T) {
	program := assembleOrFail(t, `
		addi x1, x0, 9
		sw   x1, 0(x0)
		lw   x2, 0(x0)
	`)
	imem, dmem := mem.New(256), mem.New(256)
	require.NoError(t, imem.LoadProgram(program, 0))

	var regs regfile.RegisterFile
	var st signal.DatapathState
	var cpu datapath.MultiCycle
	logger := testLogger()

	pc := uint32(0)
	var err error
	pc, err = cpu.Step(pc, &regs, imem, dmem, &st, logger) // addi
	require.NoError(t, err)
	assert.Equal(t, uint32(3), st.C.ReadyAt)

	pc, err = cpu.Step(pc, &regs, imem, dmem, &st, logger) // sw
	require.NoError(t, err)

	_, err = cpu.Step(pc, &regs, imem, dmem, &st, logger) // lw
	require.NoError(t, err)
	assert.Equal(t, uint32(4), st.C.ReadyAt)
	assert.Equal(t, uint32(9), regs.ReadA(2))
}
