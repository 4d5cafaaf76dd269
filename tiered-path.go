package nocroute

// tiered-path.go computes the virtual-channel-tiered distances used for deadlock-free
// priority routing.  Dist[v][w][i][j] is the least number of hops from i to j in vnet v
// when the first hop must use a channel of priority at least w and every later hop a
// channel of priority at least the one used before it: priorities never decrease along
// a forwarded path.  A channel whose weight is Infinity completes a path in one hop.

// TieredDistances is indexed [vnet][threshold][src][dst]; thresholds run 1..MaxWeight and
// index 0 is left nil.
type TieredDistances struct {
	MaxWeight int
	Dist      [][][][]int
}

// tieredEdge is one (edge, channel weight) combination of a vnet
type tieredEdge struct {
	src, dst int
	weight   int
}

// tieredEdges lists every (edge, channel weight) pair of vnet v
func (wg *WeightGraph) tieredEdges(v int) []tieredEdge {
	edges := []tieredEdge{}
	for i := 0; i < wg.Size; i++ {
		for j := 0; j < wg.Size; j++ {
			for _, w := range wg.VCWeight[v][i][j] {
				edges = append(edges, tieredEdge{src: i, dst: j, weight: w})
			}
		}
	}
	return edges
}

// TieredShortestPaths runs the tiered engine for thresholds MaxWeight down to 1.
// Each threshold starts from the converged matrix of the threshold above it, so a looser
// threshold never has a larger distance, and is then relaxed for at most Size-1 rounds,
// stopping after a round with no change.
func (wg *WeightGraph) TieredShortestPaths() *TieredDistances {
	td := &TieredDistances{MaxWeight: wg.MaxWeight, Dist: make([][][][]int, wg.NumVNets)}
	n := wg.Size
	for v := 0; v < wg.NumVNets; v++ {
		td.Dist[v] = make([][][]int, wg.MaxWeight+1)
		if wg.MaxWeight < 1 {
			continue
		}
		edges := wg.tieredEdges(v)

		top := make([][]int, n)
		for i := range top {
			top[i] = make([]int, n)
			for j := range top[i] {
				top[i][j] = Infinity
			}
			top[i][i] = 0
		}
		td.Dist[v][wg.MaxWeight] = top

		for w := wg.MaxWeight; w >= 1; w-- {
			if w != wg.MaxWeight {
				cp := make([][]int, n)
				for i := range cp {
					cp[i] = append([]int(nil), td.Dist[v][w+1][i]...)
				}
				td.Dist[v][w] = cp
			}
			for round := 0; round < n-1; round++ {
				if !td.relax(v, w, edges) {
					break
				}
			}
		}
	}
	return td
}

// relax makes one pass over the edges usable at threshold w
func (td *TieredDistances) relax(v, w int, edges []tieredEdge) bool {
	dist := td.Dist[v][w]
	changed := false
	for _, e := range edges {
		if e.weight == Infinity {
			if dist[e.src][e.dst] > 1 {
				dist[e.src][e.dst] = 1
				changed = true
			}
			continue
		}
		if e.weight < w {
			continue
		}
		// the far end continues at the tier of the channel just used
		next := td.Dist[v][e.weight][e.dst]
		row := dist[e.src]
		for k, dk := range next {
			if dk == Infinity {
				continue
			}
			if 1+dk < row[k] {
				row[k] = 1 + dk
				changed = true
			}
		}
	}
	return changed
}

// At returns the tiered distance from src to dst at threshold w in vnet v
func (td *TieredDistances) At(v, w int, src, dst NodeID) int {
	if w < 1 || w > td.MaxWeight {
		return Infinity
	}
	return td.Dist[v][w][src][dst]
}
