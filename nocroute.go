package nocroute

// nocroute.go assembles a whole network from its description: it compiles the topology,
// builds one routing unit per router, and hands out probe walkers over the result.

import (
	"fmt"
	"log/slog"
)

// Network is a compiled interconnect with its routing units installed
type Network struct {
	Desc   *NetworkDesc
	Params *NetworkParams
	Topo   *Topology
	Units  []*RoutingUnit

	logger *slog.Logger
}

// BuildNetwork compiles nd and installs its routing units, each router drawing its
// tie-breaks from the stream named after the network and router, advanced by seed
func BuildNetwork(nd *NetworkDesc, seed int, opts ...CompileOption) (*Network, error) {
	cc := compileConfig{logger: discardLogger()}
	for _, opt := range opts {
		opt(&cc)
	}

	nd.Normalize()
	params, err := NetworkParamsFromDesc(nd)
	if err != nil {
		return nil, fmt.Errorf("network %s: %w", nd.Name, err)
	}
	topo, err := CompileDesc(nd, opts...)
	if err != nil {
		return nil, err
	}
	units, err := topo.BuildRoutingUnits(params, SeededStreams(nd.Name, seed))
	if err != nil {
		return nil, fmt.Errorf("network %s: %w", nd.Name, err)
	}
	cc.logger.Info("network built", "network", nd.Name, "routers", nd.NumRouters, "endpoints", nd.NumEndpoints,
		"vnets", nd.NumVNets, "algorithm", params.Algorithm.String(), "entries", len(topo.Entries))
	return &Network{Desc: nd, Params: params, Topo: topo, Units: units, logger: cc.logger}, nil
}

// BuildNetworkFromFile reads the description in filename (yaml or json by extension)
// and builds it
func BuildNetworkFromFile(filename string, seed int, opts ...CompileOption) (*Network, error) {
	nd, err := ReadNetworkDesc(filename, IsYAMLFile(filename), []byte{})
	if err != nil {
		return nil, err
	}
	return BuildNetwork(nd, seed, opts...)
}

// SetCustomAlgorithm fills the custom routing slot of every router
func (nw *Network) SetCustomAlgorithm(fn CustomFunc) {
	for _, ru := range nw.Units {
		ru.SetCustomAlgorithm(fn)
	}
}

// Unit returns the routing unit of router rtr
func (nw *Network) Unit(rtr int) (*RoutingUnit, error) {
	if rtr < 0 || rtr >= len(nw.Units) {
		return nil, fmt.Errorf("%w: router %d", ErrNodeRange, rtr)
	}
	return nw.Units[rtr], nil
}

// RouteTo builds the RouteInfo of a packet in vnet for endpoint ep, which originated at
// router src
func (nw *Network) RouteTo(vnet, src, ep int) (RouteInfo, error) {
	if !nw.Topo.Space.HasEndpoint(ep) {
		return RouteInfo{}, fmt.Errorf("%w: endpoint %d", ErrNodeRange, ep)
	}
	if src < 0 || src >= nw.Topo.Space.NumRouters {
		return RouteInfo{}, fmt.Errorf("%w: router %d", ErrNodeRange, src)
	}
	destRouter := nw.Topo.EndpointRouter(ep)
	if destRouter < 0 {
		return RouteInfo{}, fmt.Errorf("%w: endpoint %d is not attached", ErrNoRoute, ep)
	}
	return RouteInfo{VNet: vnet, Dest: NewDestSet(ep), SrcRouter: src, DestRouter: destRouter}, nil
}

// Walker returns a probe walker over the network.  rng picks among adaptive candidates.
func (nw *Network) Walker(tm *TraceManager, rng RandSource) *ProbeWalker {
	return CreateProbeWalker(nw.Topo, nw.Units, nw.Params, nw.Desc.CycleSeconds, tm, rng, nw.logger)
}
