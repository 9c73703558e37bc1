package emulator

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/XiaoConstantine/ropevo-go/pkg/errors"
	"github.com/XiaoConstantine/ropevo-go/pkg/utils"
)

const wordSize = 8

// RegisterPattern maps register names to target values, in a stable order.
// Patterns describe both the goal state a candidate should reach and the
// state a run actually reached, so the serialization order must agree
// between the two; first insertion fixes a name's position. Patterns are
// treated as immutable once built, and consumers clone rather than mutate.
type RegisterPattern struct {
	names  []string
	values map[string]uint64
}

// NewRegisterPattern returns an empty pattern.
func NewRegisterPattern() *RegisterPattern {
	return &RegisterPattern{values: make(map[string]uint64)}
}

// Set records a value for the named register. The first Set of a name fixes
// its position; later calls only update the value.
func (p *RegisterPattern) Set(name string, value uint64) {
	if _, seen := p.values[name]; !seen {
		p.names = append(p.names, name)
	}
	p.values[name] = value
}

// Get returns the value recorded for the named register.
func (p *RegisterPattern) Get(name string) (uint64, bool) {
	val, ok := p.values[name]
	return val, ok
}

// Len reports the number of registers in the pattern.
func (p *RegisterPattern) Len() int {
	return len(p.names)
}

// Names returns the register names in pattern order.
func (p *RegisterPattern) Names() []string {
	return append([]string(nil), p.names...)
}

// Values returns the register values in pattern order.
func (p *RegisterPattern) Values() []uint64 {
	out := make([]uint64, len(p.names))
	for i, name := range p.names {
		out[i] = p.values[name]
	}
	return out
}

// Clone returns an independent copy with the same order.
func (p *RegisterPattern) Clone() *RegisterPattern {
	clone := NewRegisterPattern()
	for _, name := range p.names {
		clone.Set(name, p.values[name])
	}
	return clone
}

// Equal reports whether both patterns assign the same values to the same
// names. Order does not participate in equality.
func (p *RegisterPattern) Equal(other *RegisterPattern) bool {
	if len(p.names) != len(other.names) {
		return false
	}
	for name, val := range p.values {
		if otherVal, ok := other.values[name]; !ok || otherVal != val {
			return false
		}
	}
	return true
}

// Bytes serializes the pattern as 8 little-endian bytes per value, in
// pattern order. Names are not serialized; two patterns are only comparable
// through Jaccard when their orders agree.
func (p *RegisterPattern) Bytes() []byte {
	buf := make([]byte, len(p.names)*wordSize)
	offset := 0
	for _, name := range p.names {
		binary.LittleEndian.PutUint64(buf[offset:], p.values[name])
		offset += wordSize
	}
	return buf
}

func (p *RegisterPattern) String() string {
	var sb strings.Builder
	sb.WriteString("RegisterPattern {")
	for i, name := range p.names {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, " %s: 0x%x", name, p.values[name])
	}
	sb.WriteString(" }")
	return sb.String()
}

// Jaccard estimates the Jaccard similarity of two patterns with a MinHash
// sketch over (byte, position) pairs; see
// https://en.wikipedia.org/wiki/MinHash. grain controls how coarsely byte
// positions are bucketed before sketching, so nearby positions can count as
// the same feature; numHashes trades precision for time. grain must be
// positive and smaller than the serialized pattern.
func (p *RegisterPattern) Jaccard(other *RegisterPattern, grain int, numHashes uint64) float64 {
	selfPositions := bytePositions(p.Bytes(), grain)
	otherPositions := bytePositions(other.Bytes(), grain)

	agreements := uint64(0)
	for seed := uint64(0); seed < numHashes; seed++ {
		if minHash(selfPositions, seed) == minHash(otherPositions, seed) {
			agreements++
		}
	}
	return float64(agreements) / float64(numHashes)
}

func bytePositions(data []byte, grain int) [][4]byte {
	if grain < 1 || grain >= len(data) {
		panic("grain must be positive and smaller than the serialized pattern")
	}
	chunk := len(data) / grain
	out := make([][4]byte, len(data))
	for i, b := range data {
		pos := i / chunk
		out[i] = [4]byte{b, byte(pos & 0xFF), byte((pos >> 8) & 0xFF), byte((pos >> 16) & 0xFF)}
	}
	return out
}

func minHash(positions [][4]byte, seed uint64) uint64 {
	min := uint64(math.MaxUint64)
	for _, buf := range positions {
		if h := utils.HashSeed(seed, buf[:]); h < min {
			min = h
		}
	}
	return min
}

// RegisterValue pairs a typed register with the value a pattern assigns it.
type RegisterValue[R Register] struct {
	Register R
	Value    uint64
}

// TypedRegisters resolves a pattern's names into native registers through
// parse, preserving pattern order. Names the backend does not know surface
// as Parsing errors.
func TypedRegisters[R Register](p *RegisterPattern, parse func(string) (R, error)) ([]RegisterValue[R], error) {
	out := make([]RegisterValue[R], 0, len(p.names))
	for _, name := range p.names {
		reg, err := parse(name)
		if err != nil {
			return nil, errors.WithFields(
				errors.Wrap(err, errors.Parsing, "failed to parse register string"),
				errors.Fields{"register": name})
		}
		out = append(out, RegisterValue[R]{Register: reg, Value: p.values[name]})
	}
	return out, nil
}
