package nocroute

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightGraphMatrices(t *testing.T) {
	nd := CreateNetworkDesc("wg", 2, 2, 1)
	nd.AddExtLink(0, 0, 1, 3)
	nd.AddExtLink(1, 1, 1, 3)
	east := nd.AddIntLink(0, 1, East, West, 2, 5)
	east.VCWeights = []int{4, 6}
	nd.Normalize()

	space, err := NewNodeSpace(2, 2)
	require.NoError(t, err)
	lr, err := buildLinkRegistry(space, nd.ExtLinks, nd.IntLinks)
	require.NoError(t, err)
	wg, err := BuildWeightGraph(lr, 1)
	require.NoError(t, err)

	r0, r1 := int(space.Router(0)), int(space.Router(1))
	assert.Equal(t, space.Size(), wg.Size)
	assert.Equal(t, 2, wg.Weight[0][r0][r1])
	assert.Equal(t, 5, wg.Latency[0][r0][r1])
	assert.Equal(t, 1, wg.Hops[0][r0][r1])
	assert.Equal(t, Infinity, wg.Weight[0][r1][r0])
	assert.Equal(t, NoLatency, wg.Latency[0][r1][r0])
	assert.Equal(t, 0, wg.Weight[0][r0][r0])
	assert.True(t, wg.HasEdge(0, space.Router(0), space.Router(1)))
	assert.False(t, wg.HasEdge(0, space.Router(1), space.Router(0)))

	// endpoint defaults: priority 1 into the network, unbounded out of it
	if diff := cmp.Diff([]int{1}, wg.VCWeight[0][int(space.Ingress(0))][r0]); diff != "" {
		t.Errorf("ingress channel weights (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{Infinity}, wg.VCWeight[0][r1][int(space.Egress(1))]); diff != "" {
		t.Errorf("egress channel weights (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{4, 6}, wg.VCWeight[0][r0][r1]); diff != "" {
		t.Errorf("configured channel weights (-want +got):\n%s", diff)
	}
	assert.Equal(t, 6, wg.MaxWeight)
}

func TestWeightGraphNeedsAVNet(t *testing.T) {
	space, err := NewNodeSpace(2, 1)
	require.NoError(t, err)
	_, err = BuildWeightGraph(CreateLinkRegistry(space), 0)
	assert.ErrorIs(t, err, ErrVNetRange)
}

func TestWeightGraphReportsEveryConflict(t *testing.T) {
	nd := pairWithParallel([]int{0, 1}, []int{0, 1})
	nd.Normalize()
	_, err := CompileDesc(nd)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVNetConflict)
	assert.Contains(t, err.Error(), "vnet 0")
	assert.Contains(t, err.Error(), "vnet 1")
}
