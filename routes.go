package nocroute

// routes.go converts the compiled weight graph of a virtual network into the data
// structures of the gonum graph package, whose path algorithms give us an independent
// view of the topology: the connectivity audit run at compile time, and readable
// node-by-node paths for diagnostics.

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// vnetGraph returns a graph.Graph holding every node and every configured edge of vnet v,
// each edge weighted by its configured weight
func (wg *WeightGraph) vnetGraph(v int) *simple.WeightedDirectedGraph {
	connGraph := simple.NewWeightedDirectedGraph(0, float64(Infinity))
	for i := 0; i < wg.Size; i++ {
		connGraph.AddNode(simple.Node(i))
	}
	for i := 0; i < wg.Size; i++ {
		for j := 0; j < wg.Size; j++ {
			if !wg.HasEdge(v, NodeID(i), NodeID(j)) {
				continue
			}
			weightedEdge := simple.WeightedEdge{F: simple.Node(i), T: simple.Node(j), W: float64(wg.Weight[v][i][j])}
			connGraph.SetWeightedEdge(weightedEdge)
		}
	}
	return connGraph
}

// CheckConnectivity verifies that in every virtual network each attached endpoint's
// ingress reaches every other attached endpoint's egress.  All missing pairs are reported.
func (topo *Topology) CheckConnectivity() error {
	wg := topo.Graph
	attached := []int{}
	for ep := 0; ep < topo.Space.NumEndpoints; ep++ {
		if int(topo.Space.Egress(ep)) < wg.Size && topo.EndpointRouter(ep) >= 0 {
			attached = append(attached, ep)
		}
	}

	var errs error
	for v := 0; v < wg.NumVNets; v++ {
		connGraph := wg.vnetGraph(v)
		for _, srcEp := range attached {
			spTree := path.DijkstraFrom(simple.Node(topo.Space.Ingress(srcEp)), connGraph)
			missed := []string{}
			for _, dstEp := range attached {
				if srcEp == dstEp {
					continue
				}
				nodeSeq, _ := spTree.To(int64(topo.Space.Egress(dstEp)))
				if len(nodeSeq) == 0 {
					missed = append(missed, topo.Space.Name(topo.Space.Egress(dstEp)))
				}
			}
			if len(missed) > 0 {
				topo.logger.Warn("missing paths", "vnet", v, "src", topo.Space.Name(topo.Space.Ingress(srcEp)),
					"dst", strings.Join(missed, ","))
				errs = multierr.Append(errs, fmt.Errorf("%w: vnet %d from %s to %s", ErrDisconnected, v,
					topo.Space.Name(topo.Space.Ingress(srcEp)), strings.Join(missed, ",")))
			}
		}
	}
	return errs
}

// convertNodeSeq extracts the node ids from a sequence of graph nodes
func convertNodeSeq(nsQ []graph.Node) []NodeID {
	rtn := []NodeID{}
	for _, node := range nsQ {
		rtn = append(rtn, NodeID(node.ID()))
	}
	return rtn
}

// ShortestNodePath returns one minimum-weight node sequence from src to dst in vnet v,
// together with its weight. The sequence is empty when dst is unreachable.
func (topo *Topology) ShortestNodePath(v int, src, dst NodeID) ([]NodeID, int) {
	connGraph := topo.Graph.vnetGraph(v)
	spTree := path.DijkstraFrom(simple.Node(src), connGraph)
	nodeSeq, weight := spTree.To(int64(dst))
	if len(nodeSeq) == 0 {
		return []NodeID{}, Infinity
	}
	return convertNodeSeq(nodeSeq), int(weight)
}

// ShowPath returns a string that lists the names of all the nodes on a shortest path
// from endpoint srcEp to endpoint dstEp in vnet v
func (topo *Topology) ShowPath(v, srcEp, dstEp int) string {
	route, _ := topo.ShortestNodePath(v, topo.Space.Ingress(srcEp), topo.Space.Egress(dstEp))
	pathString := make([]string, 0, len(route))
	for _, id := range route {
		pathString = append(pathString, topo.Space.Name(id))
	}
	return strings.Join(pathString, ",")
}
