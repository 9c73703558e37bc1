package emulator

import (
	"fmt"
	"sync"
	"time"
)

// Block identifies one basic block visited during an emulation.
type Block struct {
	Entry uint64
	Size  int
}

func (b Block) String() string {
	return fmt.Sprintf("[BLOCK 0x%08x - 0x%08x]", b.Entry, b.Entry+uint64(b.Size))
}

// Profiler accumulates the observable effects of a single emulation. The
// block log is written from emulator hooks, which may fire on a different
// goroutine than the driver, so it sits behind a mutex. The remaining fields
// are written once, after the emulation has finished.
type Profiler[R Register] struct {
	mu       sync.Mutex
	blockLog []Block

	cpuErr          ExecError
	computationTime time.Duration
	registers       map[R]uint64
	readOrder       []R
	registersToRead []R
}

// NewProfiler returns a profiler that will snapshot the given registers when
// ReadRegisters is called.
func NewProfiler[R Register](outputRegisters []R) *Profiler[R] {
	return &Profiler[R]{
		registers:       make(map[R]uint64),
		registersToRead: append([]R(nil), outputRegisters...),
	}
}

// LogBlock appends a visited block to the trace. Safe to call from emulator
// hooks.
func (p *Profiler[R]) LogBlock(b Block) {
	p.mu.Lock()
	p.blockLog = append(p.blockLog, b)
	p.mu.Unlock()
}

// BlockCount reports the number of blocks logged so far.
func (p *Profiler[R]) BlockCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.blockLog)
}

// Blocks returns a copy of the block trace in visit order.
func (p *Profiler[R]) Blocks() []Block {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Block(nil), p.blockLog...)
}

// ReadRegisters snapshots the watched registers from the CPU. A read failure
// means the emulator was set up wrong, and panics.
func (p *Profiler[R]) ReadRegisters(cpu CPU[R]) {
	for _, r := range p.registersToRead {
		val, err := cpu.ReadRegister(r)
		if err != nil {
			panic(fmt.Sprintf("failed to read register %s: %v", r, err))
		}
		if _, seen := p.registers[r]; !seen {
			p.readOrder = append(p.readOrder, r)
		}
		p.registers[r] = val
	}
}

// Register returns the snapshotted value of r, if it has been read.
func (p *Profiler[R]) Register(r R) (uint64, bool) {
	val, ok := p.registers[r]
	return val, ok
}

// SetError records the fault that ended the emulation.
func (p *Profiler[R]) SetError(e ExecError) {
	p.cpuErr = e
}

// Err returns the recorded fault, if any.
func (p *Profiler[R]) Err() (ExecError, bool) {
	return p.cpuErr, p.cpuErr != 0
}

// SetComputationTime records how long the emulation ran.
func (p *Profiler[R]) SetComputationTime(d time.Duration) {
	p.computationTime = d
}

// ComputationTime reports how long the emulation ran.
func (p *Profiler[R]) ComputationTime() time.Duration {
	return p.computationTime
}

// Pattern converts the register snapshot to its serializable form, register
// names in read order.
func (p *Profiler[R]) Pattern() *RegisterPattern {
	pattern := NewRegisterPattern()
	for _, r := range p.readOrder {
		pattern.Set(r.String(), p.registers[r])
	}
	return pattern
}

func (p *Profiler[R]) String() string {
	cpuErr := "none"
	if err, ok := p.Err(); ok {
		cpuErr = err.Error()
	}
	return fmt.Sprintf("registers: %s; cpu_error: %s; computation_time: %d μs; %d blocks",
		p.Pattern(), cpuErr, p.computationTime.Microseconds(), p.BlockCount())
}

// Profile is the collated outcome of a batch of emulations of the same
// candidate, one Profiler per run.
type Profile struct {
	// Paths holds each run's block trace; runs that took the same path
	// collapse into one sequence.
	Paths *PrefixSet[Block]
	// CPUErrors counts how often each fault class ended a run. Clean runs
	// contribute nothing.
	CPUErrors map[ExecError]int
	// ComputationTimes holds each run's duration, in input order.
	ComputationTimes []time.Duration
	// Registers holds each run's register snapshot, in input order.
	Registers []*RegisterPattern
}

// Collate folds a batch of profilers into a Profile.
func Collate[R Register](profilers []*Profiler[R]) *Profile {
	profile := &Profile{
		Paths:     NewPrefixSet[Block](),
		CPUErrors: make(map[ExecError]int),
	}
	for _, p := range profilers {
		profile.Paths.Insert(p.Blocks())
		if err, ok := p.Err(); ok {
			profile.CPUErrors[err]++
		}
		profile.ComputationTimes = append(profile.ComputationTimes, p.ComputationTime())
		profile.Registers = append(profile.Registers, p.Pattern())
	}
	return profile
}
