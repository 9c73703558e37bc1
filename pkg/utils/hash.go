package utils

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"
)

// Hash64 returns a 64-bit digest of data.
func Hash64(data []byte) uint64 {
	return xxh3.Hash(data)
}

// HashString returns a 64-bit digest of s.
func HashString(s string) uint64 {
	return xxh3.HashString(s)
}

// HashSeed returns a 64-bit digest of data under the given seed. Each seed
// selects an independent hash function, which is what the minhash sketch and
// the deme canonicalization rely on.
func HashSeed(seed uint64, data []byte) uint64 {
	return xxh3.HashSeed(data, seed)
}

// HashU64 digests a single 64-bit value under a seed.
func HashU64(seed, v uint64) uint64 {
	return xxh3.HashSeed(U64LE(v), seed)
}

// U64LE packs v as 8 little-endian bytes.
func U64LE(v uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	return buf
}
