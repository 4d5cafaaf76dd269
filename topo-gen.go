package nocroute

// topo-gen.go builds descriptions of the regular interconnects routing is usually studied
// on: the 2-D mesh, the ring, the 3-D cube, and the mesh augmented with express links.
// Link weights steer table routing toward dimension order: East/West links weigh 1,
// North/South 2, Up/Down 3 and express links 3.

import (
	"fmt"
)

// link weights of the generated topologies
const (
	HorizontalWeight = 1
	VerticalWeight   = 2
	DepthWeight      = 3
	LongLinkWeight   = 3
)

// CubeHiRyVCWeights is a per-direction channel priority assignment for two vcs per vnet
// on a cube, for use with HiRy routing
var CubeHiRyVCWeights map[Direction][]int = map[Direction][]int{
	East: {1, 2}, West: {7, 8}, North: {7, 8}, South: {5, 4}, Up: {7, 8}, Down: {3, 6},
}

// GenOption adjusts a generated description
type GenOption func(*genConfig)

type genConfig struct {
	numVNets     int
	vcsPerVNet   int
	orderedVNets []int
	algorithm    RoutingAlgorithm
	latency      int
	vcWeights    map[Direction][]int
}

// WithVNets sets the number of virtual networks
func WithVNets(n int) GenOption {
	return func(gc *genConfig) { gc.numVNets = n }
}

// WithVCsPerVNet sets the number of virtual channels in each virtual network
func WithVCsPerVNet(n int) GenOption {
	return func(gc *genConfig) { gc.vcsPerVNet = n }
}

// WithOrderedVNets declares virtual networks whose packets must keep their order
func WithOrderedVNets(vnets ...int) GenOption {
	return func(gc *genConfig) { gc.orderedVNets = append([]int(nil), vnets...) }
}

// WithAlgorithm selects the routing algorithm named in the description
func WithAlgorithm(alg RoutingAlgorithm) GenOption {
	return func(gc *genConfig) { gc.algorithm = alg }
}

// WithLinkLatency sets the latency, in cycles, of every router-to-router link
func WithLinkLatency(latency int) GenOption {
	return func(gc *genConfig) { gc.latency = latency }
}

// WithVCWeights gives every router-to-router link leaving through a direction the
// channel priorities listed for it
func WithVCWeights(weights map[Direction][]int) GenOption {
	return func(gc *genConfig) { gc.vcWeights = weights }
}

func applyGenOptions(opts []GenOption) genConfig {
	gc := genConfig{numVNets: 1, vcsPerVNet: 1, algorithm: TableRouting, latency: 1}
	for _, opt := range opts {
		opt(&gc)
	}
	return gc
}

// newGeneratedDesc starts a description with numEndpoints endpoints dealt round-robin
// over numRouters routers
func newGeneratedDesc(name string, numEndpoints, numRouters int, gc genConfig) (*NetworkDesc, error) {
	if numRouters < 1 {
		return nil, fmt.Errorf("network %s needs at least one router", name)
	}
	if numEndpoints < numRouters {
		return nil, fmt.Errorf("network %s has %d endpoints for %d routers, every router needs one",
			name, numEndpoints, numRouters)
	}
	nd := CreateNetworkDesc(name, numEndpoints, numRouters, gc.numVNets)
	nd.VCsPerVNet = gc.vcsPerVNet
	nd.OrderedVNets = gc.orderedVNets
	nd.RoutingAlgorithm = gc.algorithm.String()
	nd.CycleSeconds = 1e-9
	for rtr := 0; rtr < numRouters; rtr++ {
		nd.Routers = append(nd.Routers, RouterDesc{ID: rtr, LongLinkID: -1})
	}
	for ep := 0; ep < numEndpoints; ep++ {
		nd.AddExtLink(ep, ep%numRouters, 1, 1)
	}
	return nd, nil
}

// addLinkPair adds the links a -> b leaving through dir and b -> a leaving through rev
func addLinkPair(nd *NetworkDesc, gc genConfig, a, b int, dir, rev Direction, weight int) {
	fwd := nd.AddIntLink(a, b, dir, rev, weight, gc.latency)
	fwd.VCWeights = append([]int(nil), gc.vcWeights[dir]...)
	bwd := nd.AddIntLink(b, a, rev, dir, weight, gc.latency)
	bwd.VCWeights = append([]int(nil), gc.vcWeights[rev]...)
}

// GenerateMesh describes a rows x cols mesh. Router x + y*cols sits in column x of row y,
// and North leads to row y+1.
func GenerateMesh(name string, rows, cols, numEndpoints int, opts ...GenOption) (*NetworkDesc, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("mesh %s cannot have %d rows and %d columns", name, rows, cols)
	}
	gc := applyGenOptions(opts)
	nd, err := newGeneratedDesc(name, numEndpoints, rows*cols, gc)
	if err != nil {
		return nil, err
	}
	nd.Rows, nd.Cols = rows, cols
	addMeshLinks(nd, gc, rows, cols)
	return nd, nil
}

func addMeshLinks(nd *NetworkDesc, gc genConfig, rows, cols int) {
	for y := 0; y < rows; y++ {
		for x := 0; x+1 < cols; x++ {
			addLinkPair(nd, gc, x+y*cols, x+1+y*cols, East, West, HorizontalWeight)
		}
	}
	for x := 0; x < cols; x++ {
		for y := 0; y+1 < rows; y++ {
			addLinkPair(nd, gc, x+y*cols, x+(y+1)*cols, North, South, VerticalWeight)
		}
	}
}

// GenerateRing describes a bidirectional ring of numRouters routers, the last joined
// back to the first
func GenerateRing(name string, numRouters, numEndpoints int, opts ...GenOption) (*NetworkDesc, error) {
	if numRouters < 3 {
		return nil, fmt.Errorf("ring %s needs at least 3 routers, has %d", name, numRouters)
	}
	gc := applyGenOptions(opts)
	nd, err := newGeneratedDesc(name, numEndpoints, numRouters, gc)
	if err != nil {
		return nil, err
	}
	nd.Rows, nd.Cols = 1, numRouters
	for rtr := 0; rtr < numRouters; rtr++ {
		addLinkPair(nd, gc, rtr, (rtr+1)%numRouters, East, West, HorizontalWeight)
	}
	return nd, nil
}

// GenerateCubeXYZ describes a side x side x side cube. Router x + y*side + z*side*side
// is at (x, y, z); Up leads to layer z+1.
func GenerateCubeXYZ(name string, side, numEndpoints int, opts ...GenOption) (*NetworkDesc, error) {
	if side < 1 {
		return nil, fmt.Errorf("cube %s cannot have side %d", name, side)
	}
	gc := applyGenOptions(opts)
	nd, err := newGeneratedDesc(name, numEndpoints, side*side*side, gc)
	if err != nil {
		return nil, err
	}
	nd.Rows, nd.Cols, nd.Depth = side, side, side
	layer := side * side
	for z := 0; z < side; z++ {
		for y := 0; y < side; y++ {
			for x := 0; x < side; x++ {
				id := x + y*side + z*layer
				if x+1 < side {
					addLinkPair(nd, gc, id, id+1, East, West, HorizontalWeight)
				}
				if y+1 < side {
					addLinkPair(nd, gc, id, id+side, North, South, VerticalWeight)
				}
				if z+1 < side {
					addLinkPair(nd, gc, id, id+layer, Up, Down, DepthWeight)
				}
			}
		}
	}
	return nd, nil
}

// longLinkDirections names the express link i -> j by its row part then its column
// part, and returns the name of the reverse link too
func longLinkDirections(i, j, cols int) (Direction, Direction, error) {
	ix, iy := meshCoords(i, cols)
	jx, jy := meshCoords(j, cols)
	var dirn, rev string
	switch {
	case iy < jy:
		dirn, rev = "North", "South"
	case iy > jy:
		dirn, rev = "South", "North"
	default:
		dirn, rev = "Same", "Same"
	}
	switch {
	case ix < jx:
		dirn, rev = dirn+"East", rev+"West"
	case ix > jx:
		dirn, rev = dirn+"West", rev+"East"
	default:
		dirn, rev = dirn+"Same", rev+"Same"
	}
	fwd, err := ParseDirection(dirn)
	if err != nil {
		return DirUnknown, DirUnknown, err
	}
	bwd, err := ParseDirection(rev)
	if err != nil {
		return DirUnknown, DirUnknown, err
	}
	return fwd, bwd, nil
}

// GenerateMeshLongRange describes a rows x cols mesh plus one bidirectional express link
// for every pair in longLinks.  A router takes part in at most one express link, and an
// express link may not join mesh neighbours.
func GenerateMeshLongRange(name string, rows, cols, numEndpoints int, longLinks [][2]int,
	opts ...GenOption) (*NetworkDesc, error) {

	nd, err := GenerateMesh(name, rows, cols, numEndpoints, opts...)
	if err != nil {
		return nil, err
	}
	gc := applyGenOptions(opts)
	for _, ll := range longLinks {
		i, j := ll[0], ll[1]
		if i < 0 || j < 0 || i >= nd.NumRouters || j >= nd.NumRouters {
			return nil, fmt.Errorf("%w: express link r%d - r%d in %s", ErrNodeRange, i, j, name)
		}
		if meshDistance(i, j, cols) < 2 {
			return nil, fmt.Errorf("express link r%d - r%d in %s joins mesh neighbours", i, j, name)
		}
		if nd.Routers[i].LongLinkID != -1 || nd.Routers[j].LongLinkID != -1 {
			return nil, fmt.Errorf("express link r%d - r%d in %s reuses a router", i, j, name)
		}
		fwd, bwd, err := longLinkDirections(i, j, cols)
		if err != nil {
			return nil, err
		}
		addLinkPair(nd, gc, i, j, fwd, bwd, LongLinkWeight)
		nd.Routers[i].LongLinkID = j
		nd.Routers[j].LongLinkID = i
	}
	return nd, nil
}

// meshDistance is the Manhattan distance between routers i and j of a mesh cols wide
func meshDistance(i, j, cols int) int {
	ix, iy := meshCoords(i, cols)
	jx, jy := meshCoords(j, cols)
	return absInt(ix-jx) + absInt(iy-jy)
}
