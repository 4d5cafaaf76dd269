package nocroute

// rng.go supplies the pseudorandom source used to break ties between equally good
// output links.  Each routing unit holds its own stream so a simulation replays
// identically given the same seed and the same order of queries.

import (
	"fmt"
	"hash/fnv"

	"github.com/iti/rngstream"
)

// RandSource is the draw the tie-break needs: a uniform variate on (0,1)
type RandSource interface {
	RandU01() float64
}

// NewTieBreakStream creates the named random stream for a routing unit.  Its initial
// state is a function of name and seed alone, so the stream replays whatever other
// streams the process has created.
func NewTieBreakStream(name string, seed int) *rngstream.RngStream {
	rngstrm := rngstream.New(name)
	if !rngstrm.SetSeed(tieBreakSeed(name, seed)) {
		panic(fmt.Errorf("invalid seed vector for stream %s", name))
	}
	return rngstrm
}

// seedModulus is below both moduli of the generator's component recurrences
const seedModulus = 4294944442

// tieBreakSeed expands (name, seed) into the six-component seed vector of a stream.
// Every component lies in [1, seedModulus].
func tieBreakSeed(name string, seed int) []uint64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	state := h.Sum64() ^ (uint64(seed) * 0x9e3779b97f4a7c15)

	vec := make([]uint64, 6)
	for i := range vec {
		// splitmix64 step
		state += 0x9e3779b97f4a7c15
		z := state
		z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
		z = (z ^ (z >> 27)) * 0x94d049bb133111eb
		z ^= z >> 31
		vec[i] = z%seedModulus + 1
	}
	return vec
}

// RandStreamFactory makes the random source for each router of a network
type RandStreamFactory func(rtr int) RandSource

// SeededStreams returns a factory giving router rtr the stream "<network>.r<rtr>" under seed
func SeededStreams(network string, seed int) RandStreamFactory {
	return func(rtr int) RandSource {
		return NewTieBreakStream(fmt.Sprintf("%s.r%d", network, rtr), seed)
	}
}

// pickIndex maps one draw from rng onto [0, n)
func pickIndex(rng RandSource, n int) int {
	idx := int(rng.RandU01() * float64(n))
	if idx >= n {
		idx = n - 1
	}
	return idx
}
