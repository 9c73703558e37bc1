package emulator

import "fmt"

// testReg is a minimal Register implementation for TypedRegisters tests.
type testReg int

const (
	regRAX testReg = iota
	regRBX
)

func (r testReg) String() string {
	switch r {
	case regRAX:
		return "RAX"
	case regRBX:
		return "RBX"
	default:
		return fmt.Sprintf("testReg(%d)", int(r))
	}
}
