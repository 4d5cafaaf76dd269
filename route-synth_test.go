package nocroute

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// entryFor returns the entry of the link src -> dst
func entryFor(t *testing.T, topo *Topology, src, dst NodeID) *RouteEntry {
	t.Helper()
	for _, re := range topo.Entries {
		if re.Src() == src && re.Dst() == dst {
			return re
		}
	}
	t.Fatalf("no entry for %s -> %s", topo.Space.Name(src), topo.Space.Name(dst))
	return nil
}

func TestOneWayRingEntries(t *testing.T) {
	topo := compileDesc(t, ringOf4())
	space := topo.Space

	east := entryFor(t, topo, space.Router(0), space.Router(1))
	if diff := cmp.Diff([]int{1, 2, 3}, east.Routes[0].Members()); diff != "" {
		t.Errorf("r0 -> r1 destinations (-want +got):\n%s", diff)
	}
	local := entryFor(t, topo, space.Router(3), space.Egress(3))
	if diff := cmp.Diff([]int{3}, local.Routes[0].Members()); diff != "" {
		t.Errorf("r3 -> ep3.out destinations (-want +got):\n%s", diff)
	}
	ingress := entryFor(t, topo, space.Ingress(2), space.Router(2))
	assert.Equal(t, 4, ingress.Routes[0].Len())

	// r0 has its delivery port first, then East
	entries := topo.RouterEntries(0)
	require.Len(t, entries, 2)
	assert.Equal(t, space.Egress(0), entries[0].Dst())
	assert.Equal(t, space.Router(1), entries[1].Dst())
}

func TestEntriesCoverReachableEndpoints(t *testing.T) {
	for name, topo := range sampleTopologies(t) {
		t.Run(name, func(t *testing.T) {
			space := topo.Space
			for v := 0; v < topo.NumVNets; v++ {
				for rtr := 0; rtr < space.NumRouters; rtr++ {
					reachable := DestSet{}
					for ep := 0; ep < space.NumEndpoints; ep++ {
						if topo.Dist.Reachable(v, space.Router(rtr), space.Egress(ep)) {
							reachable.Add(ep)
						}
					}
					covered := DestSet{}
					for _, re := range topo.RouterEntries(rtr) {
						assert.True(t, re.Routes[v].IsSubsetOf(reachable), "r%d -> %s", rtr, space.Name(re.Dst()))
						covered = covered.Union(re.Routes[v])
					}
					assert.True(t, covered.Equal(reachable), "r%d covers %s, reaches %s", rtr, covered, reachable)
				}
			}
		})
	}
}

func TestUnusedLinkDropped(t *testing.T) {
	// the direct r0 -> r2 link is longer than the detour through r1
	nd := CreateNetworkDesc("detour", 3, 3, 1)
	for ep := 0; ep < 3; ep++ {
		nd.AddExtLink(ep, ep, 1, 1)
	}
	nd.AddIntLink(0, 1, East, West, 1, 1)
	nd.AddIntLink(1, 2, East, West, 1, 1)
	nd.AddIntLink(0, 2, SameEast, SameWest, 5, 1)
	nd.AddIntLink(2, 0, SameWest, SameEast, 1, 1)
	topo := compileDesc(t, nd)
	space := topo.Space

	for _, re := range topo.Entries {
		assert.False(t, re.Src() == space.Router(0) && re.Dst() == space.Router(2), "unused link kept")
	}
	assert.Len(t, topo.RouterEntries(0), 2)
	assert.Len(t, topo.Registry.Links(space.Router(0), space.Router(2)), 1)
}

func TestTieredEntries(t *testing.T) {
	topo := compileDesc(t, hiRyLine())
	space := topo.Space

	east := entryFor(t, topo, space.Router(0), space.Router(1))
	require.Len(t, east.Tiered[0], topo.Tiered.MaxWeight+1)
	assert.True(t, east.Tiered[0][2].Has(2))
	assert.True(t, east.Tiered[0][2].Has(1))
	assert.True(t, east.Tiered[0][3].Empty())

	west := entryFor(t, topo, space.Router(1), space.Router(0))
	assert.True(t, west.Tiered[0][3].Has(0))
	assert.False(t, west.Tiered[0][3].Has(2))
}

// Two 2x2 grids of uniform weight 1, four endpoint links each: with four directed router
// links (the one-way cycle) r0 has one way toward the endpoint of r3, with four
// bidirectional ones it has two tied ways.  Either way r3 is two router hops from r0 and
// only r3's egress link carries ep3 alone.
func TestTwoByTwoScenario(t *testing.T) {
	tests := []struct {
		name     string
		desc     *NetworkDesc
		wantDirs []Direction
	}{
		{"one-way cycle", ringOf4(), []Direction{East}},
		{"bidirectional mesh", uniformMesh2x2(), []Direction{East, North}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			nw := buildNet(t, tc.desc)
			space, dist := nw.Topo.Space, nw.Topo.Dist.Dist[0]
			assert.Equal(t, 2, dist[space.Router(0)][space.Router(3)])
			assert.Equal(t, 3, dist[space.Router(0)][space.Egress(3)])

			ru := nw.Units[0]
			dirs := []Direction{}
			for _, outport := range ru.tableCandidates(0, NewDestSet(3)) {
				dirs = append(dirs, ru.Outports().Direction(outport))
				assert.Equal(t, 1, ru.OutLink(outport).Weight)
			}
			assert.Equal(t, tc.wantDirs, dirs)

			egress := entryFor(t, nw.Topo, space.Router(3), space.Egress(3))
			assert.Equal(t, []int{3}, egress.Routes[0].Members())
			route, err := nw.RouteTo(0, 0, 3)
			require.NoError(t, err)
			assert.Equal(t, []int{3}, route.Dest.Members())
			assert.Equal(t, 3, route.DestRouter)
		})
	}
}

func TestEndpointLookups(t *testing.T) {
	topo := compileDesc(t, ringOf4())
	assert.Equal(t, 2, topo.EndpointRouter(2))
	assert.Equal(t, -1, topo.EndpointRouter(7))
	le := topo.IngressLink(1)
	require.NotNil(t, le)
	assert.Equal(t, topo.Space.Router(1), le.Dst)
	assert.Nil(t, topo.IngressLink(9))

	in := topo.RouterInLinks(0)
	require.Len(t, in, 2)
	assert.Equal(t, topo.Space.Ingress(0), in[0].Src)
	assert.Equal(t, topo.Space.Router(2), in[1].Src)
}

func TestCompileErrors(t *testing.T) {
	_, err := Compile(LinkList{}, 1, 1, 1)
	assert.ErrorIs(t, err, ErrNodeRange)

	nd := ringOf4()
	nd.IntLinks[0].Dst = 9
	_, err = CompileDesc(nd)
	assert.ErrorIs(t, err, ErrNodeRange)
}
