package nocroute

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// ringOf4 is a 2x2 grid whose routers are joined by a one-way cycle
// r0 -East-> r1 -North-> r3 -West-> r2 -South-> r0, endpoint i on router i
func ringOf4() *NetworkDesc {
	nd := CreateNetworkDesc("ring4", 4, 4, 1)
	nd.Rows, nd.Cols = 2, 2
	for ep := 0; ep < 4; ep++ {
		nd.AddExtLink(ep, ep, 1, 1)
	}
	nd.AddIntLink(0, 1, East, West, 1, 1)
	nd.AddIntLink(1, 3, North, South, 1, 1)
	nd.AddIntLink(3, 2, West, East, 1, 1)
	nd.AddIntLink(2, 0, South, North, 1, 1)
	return nd
}

// uniformMesh2x2 is a 2x2 bidirectional mesh with every link of weight 1
func uniformMesh2x2() *NetworkDesc {
	nd := CreateNetworkDesc("mesh2x2", 4, 4, 1)
	nd.Rows, nd.Cols = 2, 2
	for ep := 0; ep < 4; ep++ {
		nd.AddExtLink(ep, ep, 1, 1)
	}
	for _, pr := range [][2]int{{0, 1}, {2, 3}} {
		nd.AddIntLink(pr[0], pr[1], East, West, 1, 1)
		nd.AddIntLink(pr[1], pr[0], West, East, 1, 1)
	}
	for _, pr := range [][2]int{{0, 2}, {1, 3}} {
		nd.AddIntLink(pr[0], pr[1], North, South, 1, 1)
		nd.AddIntLink(pr[1], pr[0], South, North, 1, 1)
	}
	return nd
}

// hiRyLine is three routers in a row; eastbound channels have priority 2 and
// westbound channels priority 3
func hiRyLine() *NetworkDesc {
	nd := CreateNetworkDesc("line3", 3, 3, 1)
	nd.Rows, nd.Cols = 1, 3
	nd.RoutingAlgorithm = HiRyRouting.String()
	for ep := 0; ep < 3; ep++ {
		nd.AddExtLink(ep, ep, 1, 1)
	}
	for rtr := 0; rtr+1 < 3; rtr++ {
		east := nd.AddIntLink(rtr, rtr+1, East, West, 1, 1)
		east.VCWeights = []int{2}
		west := nd.AddIntLink(rtr+1, rtr, West, East, 1, 1)
		west.VCWeights = []int{3}
	}
	return nd
}

func compileDesc(t *testing.T, nd *NetworkDesc) *Topology {
	t.Helper()
	nd.Normalize()
	topo, err := CompileDesc(nd)
	require.NoError(t, err)
	return topo
}

func buildNet(t *testing.T, nd *NetworkDesc) *Network {
	t.Helper()
	nw, err := BuildNetwork(nd, 0)
	require.NoError(t, err)
	return nw
}

func meshNet(t *testing.T, rows, cols int, opts ...GenOption) *Network {
	t.Helper()
	nd, err := GenerateMesh("mesh", rows, cols, rows*cols, opts...)
	require.NoError(t, err)
	return buildNet(t, nd)
}

// outportTo returns the output port of ru whose link leads to node dst
func outportTo(t *testing.T, ru *RoutingUnit, dst NodeID) int {
	t.Helper()
	for outport := 0; outport < ru.NumOutports(); outport++ {
		if ru.OutLink(outport).Dst == dst {
			return outport
		}
	}
	t.Fatalf("r%d has no port toward node %d", ru.ID(), dst)
	return -1
}

// inportAt returns the input port of ru labeled dir
func inportAt(t *testing.T, ru *RoutingUnit, dir Direction) int {
	t.Helper()
	inport, present := ru.Inports().Index(dir)
	require.True(t, present, "r%d has no %s inport", ru.ID(), dir)
	return inport
}
