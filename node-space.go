package nocroute

// node-space.go defines the identifier space shared by endpoints and routers.
// The first NumEndpoints ids are the ingress sides of the endpoints (traffic entering
// the network), the next NumEndpoints ids are their egress sides (traffic leaving the
// network), and the remaining ids are the routers.  The ingress and egress ids are
// pseudo-nodes: no router object exists for them.

import "fmt"

// NodeID identifies a node of the compiled topology graph
type NodeID int

// NodeKind tells which of the three ranges of the identifier space a NodeID falls in
type NodeKind int

const (
	InvalidNode NodeKind = iota
	IngressNode
	EgressNode
	RouterNode
)

var nodeKindToStr map[NodeKind]string = map[NodeKind]string{
	InvalidNode: "invalid", IngressNode: "ingress", EgressNode: "egress", RouterNode: "router"}

func (nk NodeKind) String() string {
	return nodeKindToStr[nk]
}

// NodeSpace describes the partition of the identifier space
type NodeSpace struct {
	NumEndpoints int
	NumRouters   int
}

// NewNodeSpace is a constructor. A network needs at least two endpoints and one router.
func NewNodeSpace(numEndpoints, numRouters int) (NodeSpace, error) {
	if numEndpoints < 2 {
		return NodeSpace{}, fmt.Errorf("%w: network needs at least two endpoints, has %d", ErrNodeRange, numEndpoints)
	}
	if numRouters < 1 {
		return NodeSpace{}, fmt.Errorf("%w: network needs at least one router, has %d", ErrNodeRange, numRouters)
	}
	return NodeSpace{NumEndpoints: numEndpoints, NumRouters: numRouters}, nil
}

// Size is the number of identifiers in the space
func (ns NodeSpace) Size() int {
	return 2*ns.NumEndpoints + ns.NumRouters
}

// HasEndpoint is true when ep names an endpoint of the space
func (ns NodeSpace) HasEndpoint(ep int) bool {
	return ep >= 0 && ep < ns.NumEndpoints
}

// Ingress returns the id of the ingress pseudo-node of endpoint ep
func (ns NodeSpace) Ingress(ep int) NodeID {
	return NodeID(ep)
}

// Egress returns the id of the egress pseudo-node of endpoint ep
func (ns NodeSpace) Egress(ep int) NodeID {
	return NodeID(ns.NumEndpoints + ep)
}

// Router returns the id of router r
func (ns NodeSpace) Router(r int) NodeID {
	return NodeID(2*ns.NumEndpoints + r)
}

// Kind classifies id
func (ns NodeSpace) Kind(id NodeID) NodeKind {
	switch {
	case id < 0:
		return InvalidNode
	case int(id) < ns.NumEndpoints:
		return IngressNode
	case int(id) < 2*ns.NumEndpoints:
		return EgressNode
	case int(id) < ns.Size():
		return RouterNode
	default:
		return InvalidNode
	}
}

// EndpointOf returns the endpoint an ingress or egress pseudo-node belongs to, -1 for a router
func (ns NodeSpace) EndpointOf(id NodeID) int {
	switch ns.Kind(id) {
	case IngressNode:
		return int(id)
	case EgressNode:
		return int(id) - ns.NumEndpoints
	}
	return -1
}

// RouterOf returns the router index of a router node, -1 otherwise
func (ns NodeSpace) RouterOf(id NodeID) int {
	if ns.Kind(id) != RouterNode {
		return -1
	}
	return int(id) - 2*ns.NumEndpoints
}

// Name gives a readable label for id, used in diagnostics and traces
func (ns NodeSpace) Name(id NodeID) string {
	switch ns.Kind(id) {
	case IngressNode:
		return fmt.Sprintf("ep%d.in", ns.EndpointOf(id))
	case EgressNode:
		return fmt.Sprintf("ep%d.out", ns.EndpointOf(id))
	case RouterNode:
		return fmt.Sprintf("r%d", ns.RouterOf(id))
	}
	return fmt.Sprintf("invalid(%d)", int(id))
}

// checkEdge enforces the rules on a directed single-hop edge: both ends in range,
// never two pseudo-nodes joined directly, ingress only as a source, egress only as
// a destination
func (ns NodeSpace) checkEdge(src, dst NodeID) error {
	srcKind, dstKind := ns.Kind(src), ns.Kind(dst)
	if srcKind == InvalidNode || dstKind == InvalidNode {
		return fmt.Errorf("%w: edge %d -> %d in space of %d nodes", ErrNodeRange, src, dst, ns.Size())
	}
	if srcKind != RouterNode && dstKind != RouterNode {
		return fmt.Errorf("%w: %s -> %s", ErrPseudoLink, ns.Name(src), ns.Name(dst))
	}
	if srcKind == EgressNode {
		return fmt.Errorf("%w: egress node %s used as link source", ErrPseudoLink, ns.Name(src))
	}
	if dstKind == IngressNode {
		return fmt.Errorf("%w: ingress node %s used as link destination", ErrPseudoLink, ns.Name(dst))
	}
	if src == dst {
		return fmt.Errorf("%w: self link on %s", ErrNodeRange, ns.Name(src))
	}
	return nil
}
