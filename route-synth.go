package nocroute

// route-synth.go walks every configured edge and finds the final destinations for which
// the edge lies on a shortest path, producing one routing-table entry per link.  The
// Compile function chains registry, weight graph, both engines and the synthesizer.

import (
	"fmt"
	"io"
	"log/slog"
)

// A RouteEntry is the routing-table information of one link
type RouteEntry struct {
	Link *LinkEntry

	// Routes[v] is the set of endpoints reached through the link on a shortest path of
	// vnet v.  It is empty for vnets the link does not serve.
	Routes []DestSet

	// Tiered[v][w] is the same set for threshold w of the tiered engine (w in 1..MaxWeight),
	// nil for vnets the link does not serve
	Tiered [][]DestSet
}

// Src and Dst are the ends of the entry's link
func (re *RouteEntry) Src() NodeID { return re.Link.Src }
func (re *RouteEntry) Dst() NodeID { return re.Link.Dst }

// hasRoutes is true when some destination set of the entry is nonempty
func (re *RouteEntry) hasRoutes() bool {
	for v := range re.Routes {
		if !re.Routes[v].Empty() {
			return true
		}
		for _, ds := range re.Tiered[v] {
			if !ds.Empty() {
				return true
			}
		}
	}
	return false
}

// linkOnShortestPath: the edge src->next lies on a shortest path toward final in vnet v
func linkOnShortestPath(wg *WeightGraph, d *Distances, v int, src, next, final NodeID) bool {
	if d.Dist[v][next][final] == Infinity || d.Dist[v][src][final] == Infinity {
		return false
	}
	return wg.Weight[v][src][next]+d.Dist[v][next][final] == d.Dist[v][src][final]
}

// linkOnTieredPath: using channel priority w on src->next is the first hop of a shortest
// tiered path toward final at threshold w
func linkOnTieredPath(wg *WeightGraph, td *TieredDistances, v, w int, src, next, final NodeID) bool {
	for _, vcw := range wg.VCWeight[v][src][next] {
		if vcw != w {
			continue
		}
		far, here := td.At(v, w, next, final), td.At(v, w, src, final)
		return far != Infinity && 1+far == here
	}
	return false
}

// shortestPathDests collects the endpoints whose egress is reached from src via next on a
// shortest path of vnet v
func shortestPathDests(wg *WeightGraph, d *Distances, v int, src, next NodeID) DestSet {
	ds := DestSet{}
	for ep := 0; ep < wg.Space.NumEndpoints; ep++ {
		final := wg.Space.Egress(ep)
		if int(final) >= wg.Size {
			continue
		}
		if linkOnShortestPath(wg, d, v, src, next, final) {
			ds.Add(ep)
		}
	}
	return ds
}

// tieredPathDests is shortestPathDests for the tiered engine at threshold w
func tieredPathDests(wg *WeightGraph, td *TieredDistances, v, w int, src, next NodeID) DestSet {
	ds := DestSet{}
	for ep := 0; ep < wg.Space.NumEndpoints; ep++ {
		final := wg.Space.Egress(ep)
		if int(final) >= wg.Size {
			continue
		}
		if linkOnTieredPath(wg, td, v, w, src, next, final) {
			ds.Add(ep)
		}
	}
	return ds
}

// SynthesizeRoutes emits one RouteEntry per registered link that lies on at least one
// shortest path.  Entries come out ordered by (src, dst) and then registration order.
func SynthesizeRoutes(lr *LinkRegistry, wg *WeightGraph, d *Distances, td *TieredDistances) []*RouteEntry {
	entries := make([]*RouteEntry, 0)
	for _, pair := range lr.Pairs() {
		src, dst := pair.Src, pair.Dst

		routing := make([]DestSet, wg.NumVNets)
		tiered := make([][]DestSet, wg.NumVNets)
		realLink := false
		for v := 0; v < wg.NumVNets; v++ {
			weight := wg.Weight[v][src][dst]
			if weight <= 0 || weight == Infinity {
				continue
			}
			realLink = true
			routing[v] = shortestPathDests(wg, d, v, src, dst)
			tiered[v] = make([]DestSet, td.MaxWeight+1)
			for w := 1; w <= td.MaxWeight; w++ {
				tiered[v][w] = tieredPathDests(wg, td, v, w, src, dst)
			}
		}
		if !realLink {
			continue
		}

		// one entry per link, carrying either every vnet or only those it declared
		for _, le := range lr.Links(src, dst) {
			re := &RouteEntry{Link: le, Routes: make([]DestSet, wg.NumVNets), Tiered: make([][]DestSet, wg.NumVNets)}
			for v := 0; v < wg.NumVNets; v++ {
				if !le.servesVNet(v) {
					continue
				}
				re.Routes[v] = routing[v]
				re.Tiered[v] = tiered[v]
			}
			if re.hasRoutes() {
				entries = append(entries, re)
			}
		}
	}
	return entries
}

// Topology is the compiled form of a link list
type Topology struct {
	Space    NodeSpace
	NumVNets int
	Registry *LinkRegistry
	Graph    *WeightGraph
	Dist     *Distances
	Tiered   *TieredDistances
	Entries  []*RouteEntry

	logger *slog.Logger
}

// LinkList is the link collection handed to Compile
type LinkList struct {
	Ext []ExtLinkDesc
	Int []IntLinkDesc
}

// CompileOption adjusts compilation
type CompileOption func(*compileConfig)

type compileConfig struct {
	logger            *slog.Logger
	checkConnectivity bool
}

// WithLogger directs compile-time diagnostics to logger
func WithLogger(logger *slog.Logger) CompileOption {
	return func(cc *compileConfig) {
		cc.logger = logger
	}
}

// WithConnectivityCheck makes compilation fail when some endpoint cannot reach another
func WithConnectivityCheck() CompileOption {
	return func(cc *compileConfig) {
		cc.checkConnectivity = true
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Compile builds the routing tables of a network with numEndpoints endpoints,
// numRouters routers and numVNets virtual networks from its link list
func Compile(links LinkList, numEndpoints, numRouters, numVNets int, opts ...CompileOption) (*Topology, error) {
	cc := compileConfig{logger: discardLogger()}
	for _, opt := range opts {
		opt(&cc)
	}

	space, err := NewNodeSpace(numEndpoints, numRouters)
	if err != nil {
		return nil, err
	}
	lr, err := buildLinkRegistry(space, links.Ext, links.Int)
	if err != nil {
		return nil, err
	}
	wg, err := BuildWeightGraph(lr, numVNets)
	if err != nil {
		return nil, err
	}
	cc.logger.Debug("weight graph built", "nodes", wg.Size, "vnets", numVNets, "maxweight", wg.MaxWeight)

	topo := &Topology{Space: space, NumVNets: numVNets, Registry: lr, Graph: wg, logger: cc.logger}
	topo.Dist = wg.ShortestPaths()
	topo.Tiered = wg.TieredShortestPaths()

	if cc.checkConnectivity {
		if err := topo.CheckConnectivity(); err != nil {
			return nil, err
		}
	}

	topo.Entries = SynthesizeRoutes(lr, wg, topo.Dist, topo.Tiered)
	cc.logger.Debug("routes synthesized", "entries", len(topo.Entries))
	return topo, nil
}

// CompileDesc compiles the links of a network description
func CompileDesc(nd *NetworkDesc, opts ...CompileOption) (*Topology, error) {
	topo, err := Compile(LinkList{Ext: nd.ExtLinks, Int: nd.IntLinks}, nd.NumEndpoints, nd.NumRouters, nd.NumVNets, opts...)
	if err != nil {
		return nil, fmt.Errorf("network %s: %w", nd.Name, err)
	}
	return topo, nil
}

// RouterEntries returns, in port order, the entries whose link leaves router rtr
func (topo *Topology) RouterEntries(rtr int) []*RouteEntry {
	node := topo.Space.Router(rtr)
	entries := []*RouteEntry{}
	for _, re := range topo.Entries {
		if re.Src() == node {
			entries = append(entries, re)
		}
	}
	return entries
}

// RouterInLinks returns, in port order, the links entering router rtr
func (topo *Topology) RouterInLinks(rtr int) []*LinkEntry {
	node := topo.Space.Router(rtr)
	links := []*LinkEntry{}
	for _, pair := range topo.Registry.Pairs() {
		if pair.Dst == node {
			links = append(links, topo.Registry.Links(pair.Src, pair.Dst)...)
		}
	}
	return links
}

// IngressLink is the first link registered out of endpoint ep's ingress, nil if none
func (topo *Topology) IngressLink(ep int) *LinkEntry {
	if !topo.Space.HasEndpoint(ep) {
		return nil
	}
	ingress := topo.Space.Ingress(ep)
	for _, pair := range topo.Registry.Pairs() {
		if pair.Src == ingress {
			return topo.Registry.Links(pair.Src, pair.Dst)[0]
		}
	}
	return nil
}

// EndpointRouter is the router whose egress link delivers to endpoint ep, -1 if none
func (topo *Topology) EndpointRouter(ep int) int {
	if !topo.Space.HasEndpoint(ep) {
		return -1
	}
	egress := topo.Space.Egress(ep)
	for _, pair := range topo.Registry.Pairs() {
		if pair.Dst == egress {
			return topo.Space.RouterOf(pair.Src)
		}
	}
	return -1
}
