package nocroute

// link-registry.go turns the link descriptions into directed single-hop edges and
// groups the parallel edges joining the same ordered pair of nodes.

import (
	"fmt"
	"sort"
)

// A LinkEntry is one directed single-hop edge of the topology graph
type LinkEntry struct {
	Src, Dst NodeID
	Weight   int
	Latency  int

	// VNets served by the edge, empty means every virtual network
	VNets []int

	// VCWeights is the per-virtual-channel priority list as configured (possibly empty)
	VCWeights []int

	SrcOutport Direction
	DstInport  Direction

	// Name identifies the description the edge came from, for diagnostics
	Name string
}

// servesVNet tells whether the edge carries virtual network vnet
func (le *LinkEntry) servesVNet(vnet int) bool {
	if len(le.VNets) == 0 {
		return true
	}
	for _, v := range le.VNets {
		if v == vnet {
			return true
		}
	}
	return false
}

// A NodePair keys the registry: an ordered (source, destination) pair
type NodePair struct {
	Src, Dst NodeID
}

// LinkRegistry maps each ordered node pair to the edges joining it, in registration order
type LinkRegistry struct {
	space NodeSpace
	links map[NodePair][]*LinkEntry
}

// CreateLinkRegistry is a constructor
func CreateLinkRegistry(space NodeSpace) *LinkRegistry {
	lr := new(LinkRegistry)
	lr.space = space
	lr.links = make(map[NodePair][]*LinkEntry)
	return lr
}

// Space returns the node identifier space the registry validates against
func (lr *LinkRegistry) Space() NodeSpace {
	return lr.space
}

// Register appends le to the list kept for (src, dst).  The pair must be a legal edge
// of the node space: no pseudo-node to pseudo-node edges, ingress only as a source,
// egress only as a destination.
func (lr *LinkRegistry) Register(src, dst NodeID, le LinkEntry) error {
	if err := lr.space.checkEdge(src, dst); err != nil {
		return err
	}
	if le.Weight < 0 {
		return fmt.Errorf("link %s has negative weight %d", le.Name, le.Weight)
	}
	le.Src, le.Dst = src, dst
	pair := NodePair{Src: src, Dst: dst}
	_, present := lr.links[pair]
	if !present {
		lr.links[pair] = make([]*LinkEntry, 0, 1)
	}
	lr.links[pair] = append(lr.links[pair], &le)
	return nil
}

// AddExtLink registers an endpoint link twice: ingress -> router and router -> egress
func (lr *LinkRegistry) AddExtLink(el ExtLinkDesc) error {
	if el.Endpoint < 0 || el.Endpoint >= lr.space.NumEndpoints {
		return fmt.Errorf("%w: endpoint %d", ErrNodeRange, el.Endpoint)
	}
	if el.Router < 0 || el.Router >= lr.space.NumRouters {
		return fmt.Errorf("%w: router %d", ErrNodeRange, el.Router)
	}
	name := fmt.Sprintf("ext(ep%d,r%d)", el.Endpoint, el.Router)
	rtr := lr.space.Router(el.Router)

	in := LinkEntry{Weight: el.Weight, Latency: el.Latency, VNets: el.VNets, VCWeights: el.VCWeights,
		SrcOutport: Local, DstInport: Local, Name: name}
	if err := lr.Register(lr.space.Ingress(el.Endpoint), rtr, in); err != nil {
		return err
	}
	out := in
	return lr.Register(rtr, lr.space.Egress(el.Endpoint), out)
}

// AddIntLink registers the directed router-to-router link.  Direction labels are
// checked here so a bad label is reported against the link that carries it.
func (lr *LinkRegistry) AddIntLink(il IntLinkDesc) error {
	if il.Src < 0 || il.Src >= lr.space.NumRouters || il.Dst < 0 || il.Dst >= lr.space.NumRouters {
		return fmt.Errorf("%w: internal link r%d -> r%d", ErrNodeRange, il.Src, il.Dst)
	}
	name := fmt.Sprintf("int(r%d,r%d)", il.Src, il.Dst)
	srcOut, err := ParseDirection(il.SrcOutport)
	if err != nil {
		return fmt.Errorf("link %s: %w", name, err)
	}
	dstIn, err := ParseDirection(il.DstInport)
	if err != nil {
		return fmt.Errorf("link %s: %w", name, err)
	}
	le := LinkEntry{Weight: il.Weight, Latency: il.Latency, VNets: il.VNets, VCWeights: il.VCWeights,
		SrcOutport: srcOut, DstInport: dstIn, Name: name}
	return lr.Register(lr.space.Router(il.Src), lr.space.Router(il.Dst), le)
}

// Links returns the edges registered for (src, dst)
func (lr *LinkRegistry) Links(src, dst NodeID) []*LinkEntry {
	return lr.links[NodePair{Src: src, Dst: dst}]
}

// Pairs lists the registered node pairs ordered by source, then destination
func (lr *LinkRegistry) Pairs() []NodePair {
	pairs := make([]NodePair, 0, len(lr.links))
	for pair := range lr.links {
		pairs = append(pairs, pair)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Src != pairs[j].Src {
			return pairs[i].Src < pairs[j].Src
		}
		return pairs[i].Dst < pairs[j].Dst
	})
	return pairs
}

// MaxNodeID is the largest identifier appearing in any registered pair
func (lr *LinkRegistry) MaxNodeID() NodeID {
	var maxID NodeID
	for pair := range lr.links {
		maxID = max(maxID, pair.Src, pair.Dst)
	}
	return maxID
}

// buildLinkRegistry registers every link of a description
func buildLinkRegistry(space NodeSpace, extLinks []ExtLinkDesc, intLinks []IntLinkDesc) (*LinkRegistry, error) {
	lr := CreateLinkRegistry(space)
	for _, el := range extLinks {
		if err := lr.AddExtLink(el); err != nil {
			return nil, err
		}
	}
	for _, il := range intLinks {
		if err := lr.AddIntLink(il); err != nil {
			return nil, err
		}
	}
	return lr, nil
}
