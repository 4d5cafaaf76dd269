package nocroute

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupSingleCandidate(t *testing.T) {
	nw := buildNet(t, ringOf4())
	ru := nw.Units[0]
	require.Equal(t, 2, ru.NumOutports())
	assert.Equal(t, Local, ru.Outports().Direction(0))
	assert.Equal(t, East, ru.Outports().Direction(1))

	for ep := 1; ep < 4; ep++ {
		outport, err := ru.LookupRoutingTable(0, NewDestSet(ep))
		require.NoError(t, err)
		assert.Equal(t, 1, outport, "ep%d", ep)
	}
	outport, err := ru.LookupRoutingTable(0, NewDestSet(0))
	require.NoError(t, err)
	assert.Equal(t, 0, outport)
}

func TestLookupPrefersLighterLinks(t *testing.T) {
	// East and North both start a shortest path from r0 to r5; East weighs less
	nw := meshNet(t, 4, 4)
	ru := nw.Units[0]
	east := outportTo(t, ru, nw.Topo.Space.Router(1))
	for i := 0; i < 100; i++ {
		outport, err := ru.LookupRoutingTable(0, NewDestSet(5))
		require.NoError(t, err)
		require.Equal(t, east, outport)
	}
}

func TestOrderedVNetIsDeterministic(t *testing.T) {
	nd := uniformMesh2x2()
	nd.OrderedVNets = []int{0}
	nw := buildNet(t, nd)
	ru := nw.Units[0]
	require.Len(t, ru.tableCandidates(0, NewDestSet(3)), 2)

	for i := 0; i < 1000; i++ {
		outport, err := ru.LookupRoutingTable(0, NewDestSet(3))
		require.NoError(t, err)
		require.Equal(t, 1, outport)
	}
}

func TestUnorderedVNetSpreadsAndReplays(t *testing.T) {
	nw := buildNet(t, uniformMesh2x2())
	ru := nw.Units[0]
	stream := NewTieBreakStream("replay", 0)
	ru.SetRandSource(stream)

	draw := func(n int) []int {
		picks := make([]int, n)
		for i := range picks {
			outport, err := ru.LookupRoutingTable(0, NewDestSet(3))
			require.NoError(t, err)
			picks[i] = outport
		}
		return picks
	}

	first := draw(10000)
	counts := map[int]int{}
	for _, outport := range first {
		counts[outport] += 1
	}
	assert.Len(t, counts, 2)
	assert.Greater(t, counts[1], 4000)
	assert.Greater(t, counts[2], 4000)

	stream.ResetStartStream()
	if diff := cmp.Diff(first[:200], draw(200)); diff != "" {
		t.Errorf("replayed tie-breaks differ (-first +replay):\n%s", diff)
	}
}

func TestSeedFixesTieBreaks(t *testing.T) {
	lookups := func(seed int) []int {
		nw, err := BuildNetwork(uniformMesh2x2(), seed)
		require.NoError(t, err)
		picks := make([]int, 200)
		for i := range picks {
			outport, err := nw.Units[0].LookupRoutingTable(0, NewDestSet(3))
			require.NoError(t, err)
			picks[i] = outport
		}
		return picks
	}

	first := lookups(7)
	if diff := cmp.Diff(first, lookups(7)); diff != "" {
		t.Errorf("same seed, different tie-breaks (-first +second):\n%s", diff)
	}
	assert.NotEqual(t, first, lookups(8))
}

func TestTieBreakSeedIsValid(t *testing.T) {
	for _, name := range []string{"", "mesh2x2.r0", "mesh2x2.r1"} {
		for _, seed := range []int{-1, 0, 7, 1 << 40} {
			vec := tieBreakSeed(name, seed)
			require.Len(t, vec, 6)
			for _, c := range vec {
				assert.GreaterOrEqual(t, c, uint64(1))
				assert.LessOrEqual(t, c, uint64(seedModulus))
			}
		}
	}
	assert.NotEqual(t, tieBreakSeed("mesh2x2.r0", 7), tieBreakSeed("mesh2x2.r1", 7))
}

func TestLookupNoRoute(t *testing.T) {
	nw := buildNet(t, ringOf4())
	ru := nw.Units[0]

	_, err := ru.LookupRoutingTable(0, DestSet{})
	assert.ErrorIs(t, err, ErrNoRoute)
	_, err = ru.LookupRoutingTable(3, NewDestSet(1))
	assert.ErrorIs(t, err, ErrNoRoute)
	_, err = ru.LookupRoutingTable(0, NewDestSet(12))
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestModeMismatch(t *testing.T) {
	table := buildNet(t, ringOf4())
	route, err := table.RouteTo(0, 0, 3)
	require.NoError(t, err)
	_, err = table.Units[0].SelectOutports(route, 0, Local, 0)
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)

	hiry := buildNet(t, hiRyLine())
	route, err = hiry.RouteTo(0, 0, 2)
	require.NoError(t, err)
	_, err = hiry.Units[0].SelectOutport(route, 0, Local)
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestDeliveryAtDestinationRouter(t *testing.T) {
	nw := meshNet(t, 2, 2, WithVNets(2), WithVCsPerVNet(2), WithAlgorithm(SouthLastRouting))
	ru := nw.Units[0]
	route, err := nw.RouteTo(1, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, route.DestRouter)

	candidates, err := ru.SelectOutports(route, inportAt(t, ru, Local), Local, 2)
	require.NoError(t, err)
	if diff := cmp.Diff([]Candidate{{Outport: 0, VC: 2}, {Outport: 0, VC: 3}}, candidates); diff != "" {
		t.Errorf("candidates (-want +got):\n%s", diff)
	}

	outport, err := ru.SelectOutport(route, inportAt(t, ru, Local), Local)
	require.NoError(t, err)
	assert.Equal(t, 0, outport)
}

func TestChannelWeightsInstalled(t *testing.T) {
	nw := buildNet(t, hiRyLine())
	ru := nw.Units[1]

	assert.Equal(t, [][]int{{Infinity}, {3}, {2}}, ru.outVCWeight)
	assert.Equal(t, [][]int{{1}, {2}, {3}}, ru.inVCWeight)
	assert.Equal(t, []int{1, 1, 1}, ru.weightTable)
	assert.Equal(t, 1, inportAt(t, ru, West))
	assert.Equal(t, 2, inportAt(t, ru, East))
	assert.Equal(t, 3, ru.Inports().Len())
}

func TestExtendVCWeights(t *testing.T) {
	assert.Equal(t, []int{1, 2, 1, 2, 1}, extendVCWeights([]int{1, 2}, 5))
	assert.Equal(t, []int{7}, extendVCWeights([]int{7, 8}, 1))
	assert.Equal(t, []int{NoPriority, NoPriority, NoPriority}, extendVCWeights(nil, 3))
}

func TestInstallRoutesErrors(t *testing.T) {
	nw := buildNet(t, ringOf4())
	_, err := InstallRoutes(nw.Topo, 4, nw.Params, nil)
	assert.ErrorIs(t, err, ErrNodeRange)

	params := *nw.Params
	params.VCsPerVNet = 0
	_, err = InstallRoutes(nw.Topo, 0, &params, nil)
	assert.Error(t, err)
}

func TestInstallRoutesWithoutRandSource(t *testing.T) {
	nw := buildNet(t, uniformMesh2x2())
	ru, err := InstallRoutes(nw.Topo, 0, nw.Params, nil)
	require.NoError(t, err)
	require.Len(t, ru.tableCandidates(0, NewDestSet(3)), 2)
	for i := 0; i < 100; i++ {
		outport, err := ru.LookupRoutingTable(0, NewDestSet(3))
		require.NoError(t, err)
		assert.Contains(t, []int{1, 2}, outport)
	}
}

func TestUnservedVNetHasEmptyTables(t *testing.T) {
	nd := ringOf4()
	nd.NumVNets = 2
	for idx := range nd.ExtLinks {
		nd.ExtLinks[idx].VNets = []int{0}
	}
	for idx := range nd.IntLinks {
		nd.IntLinks[idx].VNets = []int{0}
	}
	nw := buildNet(t, nd)
	ru := nw.Units[2]
	require.Len(t, ru.routingTable, 2)
	_, err := ru.LookupRoutingTable(1, NewDestSet(0))
	assert.ErrorIs(t, err, ErrNoRoute)
	outport, err := ru.LookupRoutingTable(0, NewDestSet(0))
	require.NoError(t, err)
	assert.Equal(t, South, ru.Outports().Direction(outport))
}

func TestNetworkParams(t *testing.T) {
	nd, err := GenerateMeshLongRange("lr", 4, 4, 16, [][2]int{{0, 15}}, WithOrderedVNets(1), WithVNets(2),
		WithAlgorithm(LongRangeRouting))
	require.NoError(t, err)
	np, err := NetworkParamsFromDesc(nd)
	require.NoError(t, err)

	assert.Equal(t, LongRangeRouting, np.Algorithm)
	assert.True(t, np.IsVNetOrdered(1))
	assert.False(t, np.IsVNetOrdered(0))
	assert.Equal(t, 15, np.longLinkOf(0))
	assert.Equal(t, 0, np.longLinkOf(15))
	assert.Equal(t, -1, np.longLinkOf(5))

	nd.RoutingAlgorithm = "westfirst"
	_, err = NetworkParamsFromDesc(nd)
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}
