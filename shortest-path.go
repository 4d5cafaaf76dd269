package nocroute

// shortest-path.go computes all-pairs weighted shortest paths, independently for each
// virtual network, by repeated relaxation through every intermediate node until a full
// pass over all pairs changes nothing.

// Distances holds the result of the plain shortest-path engine, indexed [vnet][src][dst].
// Latency and Hops describe the same decomposition that produced Dist.
type Distances struct {
	Dist    [][][]int
	Latency [][][]int
	Hops    [][][]int
}

// ShortestPaths runs the plain engine over wg. The graph itself is left unchanged.
func (wg *WeightGraph) ShortestPaths() *Distances {
	d := &Distances{
		Dist:    cloneMatrix(wg.Weight),
		Latency: cloneMatrix(wg.Latency),
		Hops:    cloneMatrix(wg.Hops),
	}
	for v := range d.Dist {
		for d.relax(v) {
		}
	}
	return d
}

// relax makes one pass over all pairs of vnet, replacing dist[i][j] by the best
// dist[i][k] + dist[k][j] found.  It reports whether any pair improved.
func (d *Distances) relax(v int) bool {
	dist, lat, hops := d.Dist[v], d.Latency[v], d.Hops[v]
	nodes := len(dist)
	changed := false
	for i := 0; i < nodes; i++ {
		for j := 0; j < nodes; j++ {
			minimum := dist[i][j]
			via := -1
			for k := 0; k < nodes; k++ {
				if dist[i][k] == Infinity || dist[k][j] == Infinity {
					continue
				}
				if sum := dist[i][k] + dist[k][j]; sum < minimum {
					minimum = sum
					via = k
				}
			}
			if via == -1 {
				continue
			}
			changed = true
			dist[i][j] = minimum
			hops[i][j] = hops[i][via] + hops[via][j]
			lat[i][j] = lat[i][via] + lat[via][j]
		}
	}
	return changed
}

// Reachable tells whether dst can be reached from src in vnet
func (d *Distances) Reachable(v int, src, dst NodeID) bool {
	return d.Dist[v][src][dst] != Infinity
}
