package emulator_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/ropevo-go/internal/testutil"
	"github.com/XiaoConstantine/ropevo-go/pkg/emulator"
)

func TestBlockString(t *testing.T) {
	assert.Equal(t, "[BLOCK 0x00000001 - 0x00000003]", emulator.Block{Entry: 1, Size: 2}.String())
	assert.Equal(t, "[BLOCK 0xdeadbeef - 0xdeadbf0f]", emulator.Block{Entry: 0xdeadbeef, Size: 0x20}.String())
}

func TestExecErrorStrings(t *testing.T) {
	tests := []struct {
		err  emulator.ExecError
		want string
	}{
		{emulator.ExecReadUnmapped, "read from unmapped memory"},
		{emulator.ExecWriteUnmapped, "write to unmapped memory"},
		{emulator.ExecFetchUnmapped, "fetch from unmapped memory"},
		{emulator.ExecInvalidInstruction, "invalid instruction"},
		{emulator.ExecTimeout, "emulation timed out"},
		{emulator.ExecError(99), "unknown execution error (99)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
	}
}

func TestReadRegisters(t *testing.T) {
	cpu := testutil.NewStubCPU(map[testutil.Reg]uint64{
		testutil.EAX: 0xdead,
		testutil.EBX: 0xbeef,
	})

	// A register listed twice keeps its first position.
	p := emulator.NewProfiler([]testutil.Reg{testutil.EAX, testutil.EBX, testutil.EAX})
	p.ReadRegisters(cpu)

	val, ok := p.Register(testutil.EAX)
	require.True(t, ok)
	assert.Equal(t, uint64(0xdead), val)

	val, ok = p.Register(testutil.EBX)
	require.True(t, ok)
	assert.Equal(t, uint64(0xbeef), val)

	_, ok = p.Register(testutil.ECX)
	assert.False(t, ok)

	assert.Equal(t, []string{"eax", "ebx"}, p.Pattern().Names())
}

func TestReadRegistersReadsEachWatchedRegister(t *testing.T) {
	cpu := new(testutil.MockCPU)
	cpu.OnRead(testutil.EAX, 7)
	cpu.OnRead(testutil.EDX, 9)

	p := emulator.NewProfiler([]testutil.Reg{testutil.EAX, testutil.EDX})
	p.ReadRegisters(cpu)

	cpu.AssertExpectations(t)
	val, ok := p.Register(testutil.EDX)
	require.True(t, ok)
	assert.Equal(t, uint64(9), val)
}

func TestReadRegistersPanicsOnFailure(t *testing.T) {
	cpu := testutil.NewStubCPU(nil)
	cpu.FailReads(testutil.EBX, fmt.Errorf("register ebx is not available"))
	p := emulator.NewProfiler([]testutil.Reg{testutil.EAX, testutil.EBX})

	assert.Panics(t, func() { p.ReadRegisters(cpu) })
}

func TestProfilerConcurrentBlockLogging(t *testing.T) {
	p := emulator.NewProfiler[testutil.Reg](nil)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				p.LogBlock(emulator.Block{Entry: uint64(i), Size: 4})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 800, p.BlockCount())
	assert.Equal(t, 800, len(p.Blocks()))
}

func TestProfilerString(t *testing.T) {
	p := emulator.NewProfiler([]testutil.Reg{testutil.EAX})
	p.ReadRegisters(testutil.NewStubCPU(map[testutil.Reg]uint64{testutil.EAX: 0xff}))
	p.LogBlock(emulator.Block{Entry: 0x1000, Size: 8})
	p.SetComputationTime(3 * time.Millisecond)
	p.SetError(emulator.ExecTimeout)

	s := p.String()
	assert.Contains(t, s, "eax: 0xff")
	assert.Contains(t, s, "emulation timed out")
	assert.Contains(t, s, "3000 μs")
	assert.Contains(t, s, "1 blocks")
}

func TestCollate(t *testing.T) {
	p1 := emulator.NewProfiler[testutil.Reg](nil)
	p1.LogBlock(emulator.Block{Entry: 1, Size: 2})
	p1.LogBlock(emulator.Block{Entry: 3, Size: 4})

	p2 := emulator.NewProfiler[testutil.Reg](nil)
	p2.LogBlock(emulator.Block{Entry: 1, Size: 2})
	p2.LogBlock(emulator.Block{Entry: 6, Size: 6})

	profile := emulator.Collate([]*emulator.Profiler[testutil.Reg]{p1, p2})

	assert.Equal(t, 2, profile.Paths.Len())
	assert.True(t, profile.Paths.Contains([]emulator.Block{{Entry: 1, Size: 2}, {Entry: 3, Size: 4}}))
	assert.True(t, profile.Paths.Contains([]emulator.Block{{Entry: 1, Size: 2}, {Entry: 6, Size: 6}}))
	assert.False(t, profile.Paths.Contains([]emulator.Block{{Entry: 1, Size: 2}}))
	assert.True(t, profile.Paths.ContainsPrefix([]emulator.Block{{Entry: 1, Size: 2}}))

	assert.Empty(t, profile.CPUErrors)
	assert.Len(t, profile.ComputationTimes, 2)
	assert.Len(t, profile.Registers, 2)
}

func TestCollateSharedPathsCollapse(t *testing.T) {
	var profilers []*emulator.Profiler[testutil.Reg]
	for i := 0; i < 5; i++ {
		p := emulator.NewProfiler[testutil.Reg](nil)
		p.LogBlock(emulator.Block{Entry: 0x400000, Size: 16})
		p.LogBlock(emulator.Block{Entry: 0x400040, Size: 16})
		profilers = append(profilers, p)
	}

	profile := emulator.Collate(profilers)
	assert.Equal(t, 1, profile.Paths.Len())
	assert.Len(t, profile.ComputationTimes, 5)
}

func TestCollateCountsErrors(t *testing.T) {
	mk := func(err emulator.ExecError) *emulator.Profiler[testutil.Reg] {
		p := emulator.NewProfiler[testutil.Reg](nil)
		if err != 0 {
			p.SetError(err)
		}
		return p
	}

	profile := emulator.Collate([]*emulator.Profiler[testutil.Reg]{
		mk(emulator.ExecReadUnmapped),
		mk(emulator.ExecReadUnmapped),
		mk(emulator.ExecTimeout),
		mk(0),
	})

	assert.Equal(t, map[emulator.ExecError]int{
		emulator.ExecReadUnmapped: 2,
		emulator.ExecTimeout:      1,
	}, profile.CPUErrors)
}

func TestCollateRegisterSnapshots(t *testing.T) {
	cpu := testutil.NewStubCPU(map[testutil.Reg]uint64{
		testutil.EAX: 1,
		testutil.EBX: 2,
	})

	p1 := emulator.NewProfiler([]testutil.Reg{testutil.EAX, testutil.EBX})
	p1.ReadRegisters(cpu)
	p2 := emulator.NewProfiler([]testutil.Reg{testutil.EAX})
	p2.ReadRegisters(cpu)

	profile := emulator.Collate([]*emulator.Profiler[testutil.Reg]{p1, p2})

	require.Len(t, profile.Registers, 2)
	assert.Equal(t, []string{"eax", "ebx"}, profile.Registers[0].Names())
	assert.Equal(t, []uint64{1, 2}, profile.Registers[0].Values())
	assert.Equal(t, []string{"eax"}, profile.Registers[1].Names())
}
