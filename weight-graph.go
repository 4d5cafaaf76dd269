package nocroute

// weight-graph.go builds, from a completed link registry, the dense per-virtual-network
// weight matrices the shortest-path engines consume.

import (
	"fmt"
	"math"

	"go.uber.org/multierr"
)

// Infinity marks a missing edge in a weight matrix and an unreachable pair in a distance
// matrix.  As a per-channel weight it marks a channel with no priority bound, which is what
// the final hop into an egress pseudo-node carries.
const Infinity = math.MaxInt32

// NoPriority marks a channel that declares no priority weight
const NoPriority = -1

// NoLatency is the latency recorded for a pair with no edge
const NoLatency = -1

// WeightGraph holds the matrices built from the registry. Every matrix is indexed
// [vnet][src][dst].
type WeightGraph struct {
	Space    NodeSpace
	NumVNets int

	// Size is the number of nodes covered, the largest registered id + 1
	Size int

	Weight   [][][]int
	VCWeight [][][][]int
	Latency  [][][]int
	Hops     [][][]int

	// MaxWeight is the largest finite scalar or per-channel weight registered. It bounds
	// the priority thresholds of the tiered engine.
	MaxWeight int
}

func makeMatrix(v, n, fill int) [][][]int {
	mat := make([][][]int, v)
	for vnet := range mat {
		mat[vnet] = make([][]int, n)
		for i := range mat[vnet] {
			row := make([]int, n)
			for j := range row {
				row[j] = fill
			}
			mat[vnet][i] = row
		}
	}
	return mat
}

func cloneMatrix(mat [][][]int) [][][]int {
	cp := make([][][]int, len(mat))
	for v := range mat {
		cp[v] = make([][]int, len(mat[v]))
		for i := range mat[v] {
			cp[v][i] = append([]int(nil), mat[v][i]...)
		}
	}
	return cp
}

// BuildWeightGraph fills the weight, per-channel weight, latency and hop matrices for
// numVNets virtual networks.  Every configuration error found is reported, joined with
// multierr, and no graph is returned if there is one.
func BuildWeightGraph(lr *LinkRegistry, numVNets int) (*WeightGraph, error) {
	if numVNets < 1 {
		return nil, fmt.Errorf("%w: need at least one virtual network, have %d", ErrVNetRange, numVNets)
	}
	space := lr.Space()
	n := int(lr.MaxNodeID()) + 1

	wg := new(WeightGraph)
	wg.Space = space
	wg.NumVNets = numVNets
	wg.Size = n
	wg.Weight = makeMatrix(numVNets, n, Infinity)
	wg.Latency = makeMatrix(numVNets, n, NoLatency)
	wg.Hops = makeMatrix(numVNets, n, 0)
	wg.VCWeight = make([][][][]int, numVNets)
	for v := 0; v < numVNets; v++ {
		wg.VCWeight[v] = make([][][]int, n)
		for i := 0; i < n; i++ {
			wg.VCWeight[v][i] = make([][]int, n)
			wg.Weight[v][i][i] = 0
			wg.Latency[v][i][i] = 0
		}
	}

	var errs error
	for _, pair := range lr.Pairs() {
		vnetDone := make([]bool, numVNets)
		for _, le := range lr.Links(pair.Src, pair.Dst) {
			vnets := le.VNets
			if len(vnets) == 0 {
				vnets = make([]int, numVNets)
				for v := range vnets {
					vnets[v] = v
				}
			}
			for _, vnet := range vnets {
				if vnet < 0 || vnet >= numVNets {
					errs = multierr.Append(errs, fmt.Errorf("%w: link %s sets latency and weight for vnet %d",
						ErrVNetRange, le.Name, vnet))
					continue
				}
				if vnetDone[vnet] {
					errs = multierr.Append(errs, fmt.Errorf("%w: %s -> %s vnet %d (%s)",
						ErrVNetConflict, space.Name(pair.Src), space.Name(pair.Dst), vnet, le.Name))
					continue
				}
				vnetDone[vnet] = true
				wg.setEdge(vnet, le)
			}
		}
	}
	if errs != nil {
		return nil, errs
	}
	return wg, nil
}

// setEdge records le as the edge serving vnet for its pair
func (wg *WeightGraph) setEdge(vnet int, le *LinkEntry) {
	src, dst := int(le.Src), int(le.Dst)
	wg.Weight[vnet][src][dst] = le.Weight
	wg.Latency[vnet][src][dst] = le.Latency
	wg.Hops[vnet][src][dst] = 1
	if le.Weight != Infinity {
		wg.MaxWeight = max(wg.MaxWeight, le.Weight)
	}

	vcw := effectiveVCWeights(wg.Space, le)
	for _, w := range vcw {
		if w != Infinity {
			wg.MaxWeight = max(wg.MaxWeight, w)
		}
	}
	wg.VCWeight[vnet][src][dst] = vcw
}

// effectiveVCWeights returns the channel weights of le, supplying the endpoint defaults
// when none were configured: priority 1 leaving an ingress, no bound entering an egress.
// Router-to-router edges must declare their own channel weights; without them the edge
// takes no part in tiered routing.
func effectiveVCWeights(space NodeSpace, le *LinkEntry) []int {
	if len(le.VCWeights) > 0 {
		return append([]int(nil), le.VCWeights...)
	}
	switch {
	case space.Kind(le.Src) == IngressNode:
		return []int{1}
	case space.Kind(le.Dst) == EgressNode:
		return []int{Infinity}
	}
	return nil
}

// HasEdge tells whether a configured edge serves vnet from src to dst
func (wg *WeightGraph) HasEdge(vnet int, src, dst NodeID) bool {
	w := wg.Weight[vnet][src][dst]
	return src != dst && w != Infinity
}
