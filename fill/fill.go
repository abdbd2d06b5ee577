// Package fill generates the reproducible filler written into unused flash
// when a region is programmed in fullfill mode.
//
// The same seed always yields the same byte stream, so an image written with
// a given seed can be verified later by replaying that seed:
//
//	g := fill.New(42)
//	pad := make([]byte, 16)
//	g.Read(pad)
package fill

import (
	"encoding/binary"
	"math/rand/v2"
)

// Generator is a deterministic pseudorandom byte source.
// It is not safe for concurrent use.
type Generator struct {
	seed   uint64
	stream *rand.ChaCha8
}

// New returns a generator positioned at the start of the stream for seed.
func New(seed uint64) *Generator {
	g := &Generator{seed: seed}
	g.Reset()
	return g
}

// Seed returns the seed the generator was created with.
func (g *Generator) Seed() uint64 {
	return g.seed
}

// Reset rewinds the generator to the start of its stream.
func (g *Generator) Reset() {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], g.seed)
	g.stream = rand.NewChaCha8(key)
}

// Read fills p with the next len(p) bytes of the stream. It never fails.
func (g *Generator) Read(p []byte) (int, error) {
	return g.stream.Read(p)
}

// RandomSeed draws a fresh seed for sessions that were not given one.
func RandomSeed() uint64 {
	return rand.Uint64()
}
