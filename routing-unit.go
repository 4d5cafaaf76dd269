package nocroute

// routing-unit.go holds the per-router runtime routing state: the synthesized tables
// indexed by virtual network and local output-port index, the port direction maps, and
// the per-virtual-channel priority vectors.  It answers the per-packet queries.

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// NetworkParams are the network-wide attributes the routing units consult
type NetworkParams struct {
	Name         string
	Rows, Cols   int
	Depth        int
	VCsPerVNet   int
	OrderedVNets []int
	Algorithm    RoutingAlgorithm

	// LongLinks maps a router to the far end of its express link
	LongLinks map[int]int
}

// NetworkParamsFromDesc extracts the routing parameters of a description
func NetworkParamsFromDesc(nd *NetworkDesc) (*NetworkParams, error) {
	alg, err := ParseRoutingAlgorithm(nd.RoutingAlgorithm)
	if err != nil {
		return nil, err
	}
	np := &NetworkParams{Name: nd.Name, Rows: nd.Rows, Cols: nd.Cols, Depth: nd.Depth,
		VCsPerVNet: nd.VCsPerVNet, OrderedVNets: nd.OrderedVNets, Algorithm: alg,
		LongLinks: make(map[int]int)}
	for _, rd := range nd.Routers {
		if rd.LongLinkID >= 0 {
			np.LongLinks[rd.ID] = rd.LongLinkID
		}
	}
	return np, nil
}

// IsVNetOrdered tells whether packets of vnet must all follow one route
func (np *NetworkParams) IsVNetOrdered(vnet int) bool {
	return slices.Contains(np.OrderedVNets, vnet)
}

func (np *NetworkParams) longLinkOf(rtr int) int {
	partner, present := np.LongLinks[rtr]
	if !present {
		return -1
	}
	return partner
}

// RouteInfo describes the packet being routed
type RouteInfo struct {
	VNet       int
	Dest       DestSet
	SrcRouter  int
	DestRouter int
}

// A Candidate is one (output port, output virtual channel) choice offered to flow control
type Candidate struct {
	Outport int
	VC      int
}

// CustomFunc is a user-supplied single-candidate routing algorithm
type CustomFunc func(ru *RoutingUnit, route RouteInfo, inport int, inDir Direction) (int, error)

// RoutingUnit is the routing engine of one router
type RoutingUnit struct {
	id         int
	net        *NetworkParams
	longLinkID int

	// routingTable[vnet][outport], orderedTable[vnet][outport][threshold]
	routingTable [][]DestSet
	orderedTable [][][]DestSet

	// weightTable[outport] is the configured weight of the link behind the port
	weightTable []int

	// per-VC priority weights, [port][vc], NoPriority when undeclared
	inVCWeight  [][]int
	outVCWeight [][]int

	inports  PortDirMap
	outports PortDirMap
	outLinks []*LinkEntry
	inLinks  []*LinkEntry

	rng    RandSource
	custom CustomFunc
}

// CreateRoutingUnit is a constructor for an empty unit of router id
func CreateRoutingUnit(id int, net *NetworkParams, rng RandSource) *RoutingUnit {
	ru := new(RoutingUnit)
	ru.id = id
	ru.net = net
	ru.longLinkID = net.longLinkOf(id)
	ru.inports = createPortDirMap()
	ru.outports = createPortDirMap()
	ru.rng = rng
	return ru
}

// ID returns the router id
func (ru *RoutingUnit) ID() int {
	return ru.id
}

// NumOutports is the number of installed output ports
func (ru *RoutingUnit) NumOutports() int {
	return len(ru.weightTable)
}

// OutLink returns the link behind output port outport
func (ru *RoutingUnit) OutLink(outport int) *LinkEntry {
	return ru.outLinks[outport]
}

// InportOf returns the input port fed by link le, -1 if le does not enter the router
func (ru *RoutingUnit) InportOf(le *LinkEntry) int {
	for inport, in := range ru.inLinks {
		if in == le {
			return inport
		}
	}
	return -1
}

// Inports and Outports expose the direction maps
func (ru *RoutingUnit) Inports() PortDirMap  { return ru.inports }
func (ru *RoutingUnit) Outports() PortDirMap { return ru.outports }

// SetRandSource replaces the tie-break stream, e.g. to replay a run
func (ru *RoutingUnit) SetRandSource(rng RandSource) {
	ru.rng = rng
}

// SetCustomAlgorithm fills the custom routing slot
func (ru *RoutingUnit) SetCustomAlgorithm(fn CustomFunc) {
	ru.custom = fn
}

// addRoute appends the destination sets of a new output port
func (ru *RoutingUnit) addRoute(routes []DestSet, ordered [][]DestSet) {
	if len(routes) > len(ru.routingTable) {
		grown := make([][]DestSet, len(routes))
		copy(grown, ru.routingTable)
		ru.routingTable = grown
		grownOrd := make([][][]DestSet, len(routes))
		copy(grownOrd, ru.orderedTable)
		ru.orderedTable = grownOrd
	}
	for v := range routes {
		ru.routingTable[v] = append(ru.routingTable[v], routes[v])
		ru.orderedTable[v] = append(ru.orderedTable[v], ordered[v])
	}
}

// extendVCWeights repeats the configured channel weights across the vcs of a vnet;
// with none configured every channel gets NoPriority
func extendVCWeights(weights []int, vcs int) []int {
	extended := make([]int, vcs)
	for i := range extended {
		if len(weights) == 0 {
			extended[i] = NoPriority
		} else {
			extended[i] = weights[i%len(weights)]
		}
	}
	return extended
}

// addOutport installs the entry of a link leaving the router
func (ru *RoutingUnit) addOutport(re *RouteEntry, vcWeights []int) error {
	outport := len(ru.weightTable)
	dir := re.Link.SrcOutport
	if dir == DirUnknown {
		return fmt.Errorf("%w: link %s leaves r%d without an output direction", ErrUnknownDirection, re.Link.Name, ru.id)
	}
	if err := ru.outports.add(dir, outport); err != nil {
		return fmt.Errorf("router r%d: %w", ru.id, err)
	}
	ru.addRoute(re.Routes, re.Tiered)
	ru.weightTable = append(ru.weightTable, re.Link.Weight)
	ru.outVCWeight = append(ru.outVCWeight, extendVCWeights(vcWeights, ru.net.VCsPerVNet))
	ru.outLinks = append(ru.outLinks, re.Link)
	return nil
}

// addInport installs a link entering the router
func (ru *RoutingUnit) addInport(le *LinkEntry, vcWeights []int) error {
	inport := len(ru.inVCWeight)
	dir := le.DstInport
	if dir == DirUnknown {
		return fmt.Errorf("%w: link %s enters r%d without an input direction", ErrUnknownDirection, le.Name, ru.id)
	}
	if err := ru.inports.add(dir, inport); err != nil {
		return fmt.Errorf("router r%d: %w", ru.id, err)
	}
	ru.inVCWeight = append(ru.inVCWeight, extendVCWeights(vcWeights, ru.net.VCsPerVNet))
	ru.inLinks = append(ru.inLinks, le)
	return nil
}

// InstallRoutes populates a routing unit for router rtr from the compiled topology.
// A nil rng gets the router's stream under seed 0.
func InstallRoutes(topo *Topology, rtr int, net *NetworkParams, rng RandSource) (*RoutingUnit, error) {
	if rtr < 0 || rtr >= topo.Space.NumRouters {
		return nil, fmt.Errorf("%w: router %d", ErrNodeRange, rtr)
	}
	if net.VCsPerVNet < 1 {
		return nil, fmt.Errorf("network %s needs at least one vc per vnet", net.Name)
	}
	if rng == nil {
		rng = NewTieBreakStream(fmt.Sprintf("%s.r%d", net.Name, rtr), 0)
	}
	ru := CreateRoutingUnit(rtr, net, rng)
	for _, re := range topo.RouterEntries(rtr) {
		if err := ru.addOutport(re, effectiveVCWeights(topo.Space, re.Link)); err != nil {
			return nil, err
		}
	}
	for _, le := range topo.RouterInLinks(rtr) {
		if err := ru.addInport(le, effectiveVCWeights(topo.Space, le)); err != nil {
			return nil, err
		}
	}
	// vnets no link serves still get (empty) rows so lookups index safely
	for len(ru.routingTable) < topo.NumVNets {
		ru.routingTable = append(ru.routingTable, make([]DestSet, ru.NumOutports()))
		ru.orderedTable = append(ru.orderedTable, make([][]DestSet, ru.NumOutports()))
	}
	return ru, nil
}

// BuildRoutingUnits installs a routing unit for every router of the topology
func (topo *Topology) BuildRoutingUnits(net *NetworkParams, streams RandStreamFactory) ([]*RoutingUnit, error) {
	units := make([]*RoutingUnit, topo.Space.NumRouters)
	for rtr := range units {
		ru, err := InstallRoutes(topo, rtr, net, streams(rtr))
		if err != nil {
			return nil, err
		}
		units[rtr] = ru
	}
	topo.logger.Debug("routing units installed", "network", net.Name, "routers", len(units))
	return units, nil
}

// tableCandidates lists the output ports tied at the minimum weight among those whose
// destination set for vnet meets dest
func (ru *RoutingUnit) tableCandidates(vnet int, dest DestSet) []int {
	if vnet < 0 || vnet >= len(ru.routingTable) {
		return nil
	}
	minWeight := Infinity
	for link, ds := range ru.routingTable[vnet] {
		if dest.Intersects(ds) && ru.weightTable[link] < minWeight {
			minWeight = ru.weightTable[link]
		}
	}

	candidates := []int{}
	for link, ds := range ru.routingTable[vnet] {
		if dest.Intersects(ds) && ru.weightTable[link] == minWeight {
			candidates = append(candidates, link)
		}
	}
	return candidates
}

// LookupRoutingTable selects the output port for a packet of vnet headed for dest.
// Ordered vnets always take the first of the tied candidates; others draw one at random.
func (ru *RoutingUnit) LookupRoutingTable(vnet int, dest DestSet) (int, error) {
	candidates := ru.tableCandidates(vnet, dest)
	if len(candidates) == 0 {
		return -1, fmt.Errorf("%w: r%d vnet %d dest %s", ErrNoRoute, ru.id, vnet, dest)
	}
	candidate := 0
	if !ru.net.IsVNetOrdered(vnet) && len(candidates) > 1 {
		candidate = pickIndex(ru.rng, len(candidates))
	}
	return candidates[candidate], nil
}

// SelectOutport returns the single output port chosen by the network's routing algorithm.
// A packet at its destination router is always delivered through the table.
func (ru *RoutingUnit) SelectOutport(route RouteInfo, inport int, inDir Direction) (int, error) {
	if route.DestRouter == ru.id {
		return ru.LookupRoutingTable(route.VNet, route.Dest)
	}
	strategy, present := outportStrategies[ru.net.Algorithm]
	if !present {
		return -1, fmt.Errorf("%w: %s is not a single-candidate algorithm", ErrUnknownAlgorithm, ru.net.Algorithm)
	}
	return strategy.ComputeOutport(ru, route, inport, inDir)
}

// SelectOutports returns every (output port, output vc) the adaptive routing algorithm allows.
// At the destination router the table port is offered on every vc of the vnet.
func (ru *RoutingUnit) SelectOutports(route RouteInfo, inport int, inDir Direction, invc int) ([]Candidate, error) {
	if route.DestRouter == ru.id {
		outport, err := ru.LookupRoutingTable(route.VNet, route.Dest)
		if err != nil {
			return nil, err
		}
		return ru.withVNetVCs(route.VNet, []int{outport}), nil
	}
	strategy, present := adaptiveStrategies[ru.net.Algorithm]
	if !present {
		return nil, fmt.Errorf("%w: %s is not an adaptive algorithm", ErrUnknownAlgorithm, ru.net.Algorithm)
	}
	return strategy.ComputeOutports(ru, route, inport, inDir, invc)
}

// withVNetVCs pairs each outport with every vc of vnet, vcs numbered globally
func (ru *RoutingUnit) withVNetVCs(vnet int, outports []int) []Candidate {
	vcs := ru.net.VCsPerVNet
	pairs := make([]Candidate, 0, len(outports)*vcs)
	for _, outport := range outports {
		for vc := 0; vc < vcs; vc++ {
			pairs = append(pairs, Candidate{Outport: outport, VC: vc + vnet*vcs})
		}
	}
	return pairs
}

// outportFor returns the port facing dir
func (ru *RoutingUnit) outportFor(dir Direction) (int, error) {
	outport, present := ru.outports.Index(dir)
	if !present {
		return -1, fmt.Errorf("%w: r%d has no %s output port", ErrNoRoute, ru.id, dir)
	}
	return outport, nil
}
