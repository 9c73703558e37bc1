// Package testutil provides CPU test doubles for packages that exercise the
// emulator boundary.
package testutil

import (
	"fmt"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/XiaoConstantine/ropevo-go/pkg/emulator"
)

// Reg is a small x86-flavored register set for tests. Names match the
// lowercase spelling used in register pattern files.
type Reg int

const (
	EAX Reg = iota
	EBX
	ECX
	EDX
	ESI
	EDI
	EBP
	ESP
)

func (r Reg) String() string {
	switch r {
	case EAX:
		return "eax"
	case EBX:
		return "ebx"
	case ECX:
		return "ecx"
	case EDX:
		return "edx"
	case ESI:
		return "esi"
	case EDI:
		return "edi"
	case EBP:
		return "ebp"
	case ESP:
		return "esp"
	default:
		return fmt.Sprintf("reg%d", int(r))
	}
}

// StubCPU is a deterministic register-map CPU. Reads of unset registers
// return zero, like a freshly reset machine; FailReads injects per-register
// read failures.
type StubCPU struct {
	mu      sync.RWMutex
	values  map[Reg]uint64
	failing map[Reg]error
}

var _ emulator.CPU[Reg] = (*StubCPU)(nil)

// NewStubCPU creates a stub preloaded with the given register values.
func NewStubCPU(values map[Reg]uint64) *StubCPU {
	c := &StubCPU{
		values:  make(map[Reg]uint64, len(values)),
		failing: make(map[Reg]error),
	}
	for r, v := range values {
		c.values[r] = v
	}
	return c
}

func (c *StubCPU) ReadRegister(r Reg) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.failing[r]; err != nil {
		return 0, err
	}
	return c.values[r], nil
}

func (c *StubCPU) WriteRegister(r Reg, value uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[r] = value
	return nil
}

// FailReads makes every subsequent read of r return err.
func (c *StubCPU) FailReads(r Reg, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failing[r] = err
}

// MockCPU is a testify mock implementation of emulator.CPU for
// expectation-driven tests.
type MockCPU struct {
	mock.Mock
}

var _ emulator.CPU[Reg] = (*MockCPU)(nil)

func (m *MockCPU) ReadRegister(r Reg) (uint64, error) {
	args := m.Called(r)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockCPU) WriteRegister(r Reg, value uint64) error {
	args := m.Called(r, value)
	return args.Error(0)
}

// OnRead registers an expectation that r will be read, returning value.
func (m *MockCPU) OnRead(r Reg, value uint64) *mock.Call {
	return m.On("ReadRegister", r).Return(value, nil)
}

// OnReadError registers an expectation that reading r fails with err.
func (m *MockCPU) OnReadError(r Reg, err error) *mock.Call {
	return m.On("ReadRegister", r).Return(uint64(0), err)
}
