// Package emulator defines the boundary between the evolutionary core and
// whatever CPU emulator executes candidate payloads, along with the profiling
// structures that record what an execution did. The core never links an
// emulator backend directly; adapters implement the CPU interface and feed a
// Profiler from their execution hooks.
package emulator

import "fmt"

// Register constrains the native register identifier type of an emulator
// backend. Identifiers must be usable as map keys and carry a stable textual
// name for serialization.
type Register interface {
	comparable
	fmt.Stringer
}

// CPU is the minimal surface the core needs from an emulator backend.
type CPU[R Register] interface {
	ReadRegister(r R) (uint64, error)
	WriteRegister(r R, value uint64) error
}

// ExecError identifies the way an emulation ended abnormally. The zero value
// means the emulation completed without a fault.
type ExecError int

const (
	ExecReadUnmapped ExecError = iota + 1
	ExecWriteUnmapped
	ExecFetchUnmapped
	ExecReadProtected
	ExecWriteProtected
	ExecFetchProtected
	ExecInvalidInstruction
	ExecTimeout
	ExecOutOfMemory
	ExecException
)

func (e ExecError) Error() string {
	switch e {
	case ExecReadUnmapped:
		return "read from unmapped memory"
	case ExecWriteUnmapped:
		return "write to unmapped memory"
	case ExecFetchUnmapped:
		return "fetch from unmapped memory"
	case ExecReadProtected:
		return "read from protected memory"
	case ExecWriteProtected:
		return "write to protected memory"
	case ExecFetchProtected:
		return "fetch from protected memory"
	case ExecInvalidInstruction:
		return "invalid instruction"
	case ExecTimeout:
		return "emulation timed out"
	case ExecOutOfMemory:
		return "emulator out of memory"
	case ExecException:
		return "unhandled cpu exception"
	default:
		return fmt.Sprintf("unknown execution error (%d)", int(e))
	}
}
