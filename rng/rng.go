// Package rng provides small per-pixel random streams.
//
// A Stream is a SplitMix64 generator whose entire state is one word, so a
// camera can keep one stream per pixel and hand each pixel task a private
// *rand.Rand built over it.  Streams are derived from a base seed and the
// pixel index, which makes a render bit-reproducible for a fixed seed.
package rng

import "math/rand"

const golden = 0x9e3779b97f4a7c15

// Stream implements rand.Source64.
type Stream uint64

var _ rand.Source64 = (*Stream)(nil)

func mix(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Derive returns the stream for the given index under seed.
func Derive(seed, index uint64) Stream {
	return Stream(mix(seed^mix(index*golden+golden)) + index)
}

// Fill seeds streams[i] with Derive(seed, i).
func Fill(streams []Stream, seed uint64) {
	for i := range streams {
		streams[i] = Derive(seed, uint64(i))
	}
}

func (s *Stream) Uint64() uint64 {
	*s += golden
	return mix(uint64(*s))
}

func (s *Stream) Int63() int64 {
	return int64(s.Uint64() >> 1)
}

func (s *Stream) Seed(seed int64) {
	*s = Stream(seed)
}

// New wraps the stream in a *rand.Rand.  The returned Rand advances s in
// place.
func New(s *Stream) *rand.Rand {
	return rand.New(s)
}
