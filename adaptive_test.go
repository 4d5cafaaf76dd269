package nocroute

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// candidatesTo lists the single-vc candidates of ru toward the given routers, in order
func candidatesTo(t *testing.T, nw *Network, ru *RoutingUnit, rtrs ...int) []Candidate {
	t.Helper()
	cands := []Candidate{}
	for _, rtr := range rtrs {
		cands = append(cands, Candidate{Outport: outportTo(t, ru, nw.Topo.Space.Router(rtr)), VC: 0})
	}
	return cands
}

func TestSouthLast(t *testing.T) {
	nw := meshNet(t, 3, 3, WithAlgorithm(SouthLastRouting))
	r4 := nw.Units[4]

	tests := []struct {
		name  string
		dest  int
		inDir Direction
		want  []int
	}{
		{"northeast", 8, Local, []int{5, 7}},
		{"southeast keeps x first", 2, Local, []int{5}},
		{"south", 1, Local, []int{1}},
		{"west", 3, Local, []int{3}},
		{"north", 7, East, []int{7}},
		{"arrived from north", 0, North, []int{1}},
		{"arrived from north, east offset", 2, North, []int{1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			route, err := nw.RouteTo(0, 4, tc.dest)
			require.NoError(t, err)
			got, err := r4.SelectOutports(route, inportAt(t, r4, tc.inDir), tc.inDir, 0)
			require.NoError(t, err)
			if diff := cmp.Diff(candidatesTo(t, nw, r4, tc.want...), got); diff != "" {
				t.Errorf("candidates (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSouthLastNeverLeavesSouth(t *testing.T) {
	// walk every pair, always taking the last candidate, and check no turn out of South
	nw := meshNet(t, 3, 3, WithAlgorithm(SouthLastRouting))
	space := nw.Topo.Space
	for src := 0; src < 9; src++ {
		for dst := 0; dst < 9; dst++ {
			route, err := nw.RouteTo(0, src, dst)
			require.NoError(t, err)
			ru, inDir := nw.Units[src], Local
			inport := inportAt(t, ru, Local)
			southbound := false
			for hops := 0; ru.ID() != dst; hops++ {
				require.Less(t, hops, 9)
				cands, err := ru.SelectOutports(route, inport, inDir, 0)
				require.NoError(t, err)
				link := ru.OutLink(cands[len(cands)-1].Outport)
				if southbound {
					require.Equal(t, South, link.SrcOutport, "r%d -> r%d turned out of South", src, dst)
				}
				southbound = link.SrcOutport == South
				ru = nw.Units[space.RouterOf(link.Dst)]
				inport, inDir = ru.InportOf(link), link.DstInport
			}
		}
	}
}

func TestSendAllowedLongRange(t *testing.T) {
	tests := []struct {
		in, out Direction
		allowed bool
	}{
		{NorthEast, South, true},
		{NorthEast, East, false},
		{NorthWest, SouthWest, false},
		{North, South, true},
		{North, SouthWest, true},
		{North, East, false},
		{NorthSame, SouthEast, true},
		{NorthSame, North, false},
		{South, North, true},
		{SouthSame, West, true},
		{Local, NorthEast, true},
		{East, North, true},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.allowed, sendAllowedLongRange(tc.in, tc.out), "%s -> %s", tc.in, tc.out)
	}
}

func TestLongRange(t *testing.T) {
	nd, err := GenerateMeshLongRange("lr", 4, 4, 16, [][2]int{{0, 15}}, WithAlgorithm(LongRangeRouting))
	require.NoError(t, err)
	nw := buildNet(t, nd)
	space := nw.Topo.Space
	r0, r5 := nw.Units[0], nw.Units[5]

	express := outportTo(t, r0, space.Router(15))
	assert.Equal(t, NorthEast, r0.Outports().Direction(express))

	route, err := nw.RouteTo(0, 0, 15)
	require.NoError(t, err)
	got, err := r0.SelectOutports(route, inportAt(t, r0, Local), Local, 0)
	require.NoError(t, err)
	if diff := cmp.Diff(candidatesTo(t, nw, r0, 1, 4, 15), got); diff != "" {
		t.Errorf("candidates toward r15 (-want +got):\n%s", diff)
	}

	// the express link lands too far from r1 to help
	route, err = nw.RouteTo(0, 0, 1)
	require.NoError(t, err)
	got, err = r0.SelectOutports(route, inportAt(t, r0, Local), Local, 0)
	require.NoError(t, err)
	if diff := cmp.Diff(candidatesTo(t, nw, r0, 1), got); diff != "" {
		t.Errorf("candidates toward r1 (-want +got):\n%s", diff)
	}

	// a northbound packet at r5 may turn west toward r0, a southbound one may not
	route, err = nw.RouteTo(0, 5, 0)
	require.NoError(t, err)
	got, err = r5.SelectOutports(route, inportAt(t, r5, South), South, 0)
	require.NoError(t, err)
	if diff := cmp.Diff(candidatesTo(t, nw, r5, 4), got); diff != "" {
		t.Errorf("northbound candidates toward r0 (-want +got):\n%s", diff)
	}
	_, err = r5.SelectOutports(route, inportAt(t, r5, North), North, 0)
	assert.ErrorIs(t, err, ErrNoRoute)

	// a destination in the same row is offered West alone
	route, err = nw.RouteTo(0, 5, 4)
	require.NoError(t, err)
	got, err = r5.SelectOutports(route, inportAt(t, r5, Local), Local, 0)
	require.NoError(t, err)
	if diff := cmp.Diff(candidatesTo(t, nw, r5, 4), got); diff != "" {
		t.Errorf("candidates toward r4 (-want +got):\n%s", diff)
	}
}

func TestHiRy(t *testing.T) {
	nw := buildNet(t, hiRyLine())
	r0, r1, r2 := nw.Units[0], nw.Units[1], nw.Units[2]

	toEp2, err := nw.RouteTo(0, 0, 2)
	require.NoError(t, err)
	toEp0, err := nw.RouteTo(0, 2, 0)
	require.NoError(t, err)

	tests := []struct {
		name   string
		ru     *RoutingUnit
		route  RouteInfo
		inDir  Direction
		wantTo int
	}{
		{"r0 injects east", r0, toEp2, Local, 1},
		{"r1 continues east", r1, toEp2, West, 2},
		{"r1 continues west", r1, toEp0, East, 0},
		{"r2 injects west", r2, toEp0, Local, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.ru.SelectOutports(tc.route, inportAt(t, tc.ru, tc.inDir), tc.inDir, 0)
			require.NoError(t, err)
			if diff := cmp.Diff(candidatesTo(t, nw, tc.ru, tc.wantTo), got); diff != "" {
				t.Errorf("candidates (-want +got):\n%s", diff)
			}
		})
	}

	// arriving on a priority-3 channel, the priority-2 eastbound channel is out of reach
	_, err = r1.SelectOutports(toEp2, inportAt(t, r1, East), East, 0)
	assert.ErrorIs(t, err, ErrNoRoute)

	_, err = r1.SelectOutports(toEp2, 7, Local, 0)
	assert.ErrorIs(t, err, ErrNodeRange)
	bad := toEp2
	bad.VNet = 4
	_, err = r1.SelectOutports(bad, 0, Local, 0)
	assert.ErrorIs(t, err, ErrVNetRange)
	for _, invc := range []int{-1, 1, 5} {
		_, err = r0.SelectOutports(toEp2, inportAt(t, r0, Local), Local, invc)
		assert.ErrorIs(t, err, ErrNodeRange, "invc %d", invc)
	}
}

func TestHiRyCubeDelivers(t *testing.T) {
	nd, err := GenerateCubeXYZ("cube", 2, 8, WithVCsPerVNet(2), WithVCWeights(CubeHiRyVCWeights),
		WithAlgorithm(HiRyRouting))
	require.NoError(t, err)
	nw := buildNet(t, nd)
	space := nw.Topo.Space

	for src := 0; src < 8; src++ {
		for dst := 0; dst < 8; dst++ {
			route, err := nw.RouteTo(0, src, dst)
			require.NoError(t, err)
			ru := nw.Units[src]
			inport, inDir, invc := inportAt(t, ru, Local), Local, 0
			for hops := 0; ru.ID() != dst; hops++ {
				require.Less(t, hops, 16, "r%d -> r%d", src, dst)
				cands, err := ru.SelectOutports(route, inport, inDir, invc)
				require.NoError(t, err, "r%d -> r%d at r%d", src, dst, ru.ID())
				for _, c := range cands {
					require.GreaterOrEqual(t, ru.outVCWeight[c.Outport][c.VC], ru.inVCWeight[inport][invc%2])
				}
				link := ru.OutLink(cands[0].Outport)
				invc = cands[0].VC
				ru = nw.Units[space.RouterOf(link.Dst)]
				inport, inDir = ru.InportOf(link), link.DstInport
			}
		}
	}
}
