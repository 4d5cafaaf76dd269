package nocroute

// walk-sim.go moves probe packets through a compiled network on the discrete-event
// scheduler.  At every router the probe asks that router's routing unit for an output
// port, crosses the chosen link after its latency, and so on until it reaches the egress
// of its destination endpoint.  Every decision is recorded in the TraceManager.

import (
	"fmt"
	"log/slog"

	"github.com/iti/evt/evtm"
	"github.com/iti/evt/vrtime"
)

// probe is the message carried by the scheduled events of a walk
type probe struct {
	id     int
	vnet   int
	srcEp  int
	dstEp  int
	route  RouteInfo
	launch float64

	// state on arrival at a router
	link *LinkEntry
	invc int

	path []NodeID
}

// WalkResult reports how one probe fared
type WalkResult struct {
	ProbeID   int
	SrcEp     int
	DstEp     int
	VNet      int
	Path      []NodeID
	Hops      int
	Latency   float64
	Delivered bool
	Err       error
}

// ProbeWalker routes probes through a network
type ProbeWalker struct {
	topo         *Topology
	units        []*RoutingUnit
	net          *NetworkParams
	cycleSeconds float64
	maxHops      int

	evtMgr  *evtm.EventManager
	tm      *TraceManager
	rng     RandSource
	logger  *slog.Logger
	nxtID   int
	results map[int]*WalkResult
}

// CreateProbeWalker is a constructor.  rng chooses among the candidates an adaptive
// algorithm offers; tm may be nil.
func CreateProbeWalker(topo *Topology, units []*RoutingUnit, net *NetworkParams, cycleSeconds float64,
	tm *TraceManager, rng RandSource, logger *slog.Logger) *ProbeWalker {

	pw := new(ProbeWalker)
	pw.topo = topo
	pw.units = units
	pw.net = net
	pw.cycleSeconds = cycleSeconds
	pw.maxHops = 2 * topo.Graph.Size
	pw.evtMgr = evtm.New()
	if tm == nil {
		tm = CreateTraceManager(net.Name, false)
	}
	pw.tm = tm
	pw.rng = rng
	if logger == nil {
		logger = discardLogger()
	}
	pw.logger = logger
	pw.results = make(map[int]*WalkResult)
	return pw
}

// Launch schedules a probe from endpoint srcEp to endpoint dstEp in vnet, entering the
// network at seconds after the current simulation time.  It returns the probe id.
func (pw *ProbeWalker) Launch(srcEp, dstEp, vnet int, at float64) (int, error) {
	for _, ep := range []int{srcEp, dstEp} {
		if !pw.topo.Space.HasEndpoint(ep) {
			return -1, fmt.Errorf("%w: endpoint %d", ErrNodeRange, ep)
		}
	}
	ingress := pw.topo.IngressLink(srcEp)
	if ingress == nil {
		return -1, fmt.Errorf("%w: endpoint %d has no ingress link", ErrNoRoute, srcEp)
	}
	destRouter := pw.topo.EndpointRouter(dstEp)
	if destRouter < 0 {
		return -1, fmt.Errorf("%w: endpoint %d has no egress link", ErrNoRoute, dstEp)
	}
	if vnet < 0 || vnet >= pw.topo.NumVNets {
		return -1, fmt.Errorf("%w: vnet %d", ErrVNetRange, vnet)
	}

	pb := new(probe)
	pb.id = pw.nxtID
	pw.nxtID += 1
	pb.vnet = vnet
	pb.srcEp, pb.dstEp = srcEp, dstEp
	pb.route = RouteInfo{VNet: vnet, Dest: NewDestSet(dstEp),
		SrcRouter: pw.topo.Space.RouterOf(ingress.Dst), DestRouter: destRouter}
	pb.launch = pw.evtMgr.CurrentSeconds() + at
	pb.link = ingress
	pb.invc = vnet * pw.net.VCsPerVNet
	pb.path = []NodeID{ingress.Src}

	pw.results[pb.id] = &WalkResult{ProbeID: pb.id, SrcEp: srcEp, DstEp: dstEp, VNet: vnet}
	pw.evtMgr.Schedule(pw, pb, enterRouter, vrtime.SecondsToTime(at+pw.linkDelay(ingress)))
	return pb.id, nil
}

// Run executes the scheduled walks until none remain or simulation time passes limit seconds
func (pw *ProbeWalker) Run(limit float64) map[int]*WalkResult {
	pw.evtMgr.Run(limit)
	return pw.results
}

// Result returns the outcome of probe id
func (pw *ProbeWalker) Result(id int) (*WalkResult, bool) {
	wr, present := pw.results[id]
	return wr, present
}

func (pw *ProbeWalker) linkDelay(le *LinkEntry) float64 {
	return float64(le.Latency) * pw.cycleSeconds
}

// fail closes the walk of a probe with err
func (pw *ProbeWalker) fail(pb *probe, err error) {
	wr := pw.results[pb.id]
	wr.Path = pb.path
	wr.Hops = len(pb.path) - 1
	wr.Err = err
	pw.logger.Warn("probe walk failed", "probe", pb.id, "src", pb.srcEp, "dst", pb.dstEp, "error", err)
}

// choose asks the routing unit for the next output port and vc of pb
func (pw *ProbeWalker) choose(ru *RoutingUnit, pb *probe, inport int, inDir Direction) (Candidate, int, error) {
	if !pw.net.Algorithm.Adaptive() {
		outport, err := ru.SelectOutport(pb.route, inport, inDir)
		if err != nil {
			return Candidate{}, 0, err
		}
		return Candidate{Outport: outport, VC: pb.vnet * pw.net.VCsPerVNet}, 1, nil
	}
	candidates, err := ru.SelectOutports(pb.route, inport, inDir, pb.invc)
	if err != nil {
		return Candidate{}, 0, err
	}
	if len(candidates) == 0 {
		return Candidate{}, 0, fmt.Errorf("%w: r%d offered no candidates", ErrNoRoute, ru.ID())
	}
	pick := 0
	if pw.rng != nil && len(candidates) > 1 {
		pick = pickIndex(pw.rng, len(candidates))
	}
	return candidates[pick], len(candidates), nil
}

// enterRouter is the event handler for a probe arriving at a router over pb.link
func enterRouter(evtMgr *evtm.EventManager, context any, data any) any {
	pw := context.(*ProbeWalker)
	pb := data.(*probe)

	here := pb.link.Dst
	pb.path = append(pb.path, here)
	if len(pb.path) > pw.maxHops {
		pw.fail(pb, fmt.Errorf("%w: probe %d exceeded %d hops", ErrNoRoute, pb.id, pw.maxHops))
		return nil
	}
	ru := pw.units[pw.topo.Space.RouterOf(here)]
	inport := ru.InportOf(pb.link)
	inDir := pb.link.DstInport

	var choice Candidate
	var choices int
	var err error
	func() {
		// geometry preconditions broken by a bad configuration end this walk, not the run
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: r%d: %v", ErrNoRoute, ru.ID(), r)
			}
		}()
		choice, choices, err = pw.choose(ru, pb, inport, inDir)
	}()
	if err != nil {
		pw.fail(pb, err)
		return nil
	}

	out := ru.OutLink(choice.Outport)
	htr := &HopTrace{ProbeID: pb.id, Router: ru.ID(), VNet: pb.vnet, InDir: inDir, InVC: pb.invc,
		OutDir: out.SrcOutport, Outport: choice.Outport, OutVC: choice.VC, Choices: choices}
	AddHopTrace(pw.tm, evtMgr.CurrentTime(), htr)

	pb.link = out
	pb.invc = choice.VC
	if pw.topo.Space.Kind(out.Dst) == EgressNode {
		evtMgr.Schedule(pw, pb, exitNetwork, vrtime.SecondsToTime(pw.linkDelay(out)))
		return nil
	}
	evtMgr.Schedule(pw, pb, enterRouter, vrtime.SecondsToTime(pw.linkDelay(out)))
	return nil
}

// exitNetwork is the event handler for a probe reaching an egress pseudo-node
func exitNetwork(evtMgr *evtm.EventManager, context any, data any) any {
	pw := context.(*ProbeWalker)
	pb := data.(*probe)
	pb.path = append(pb.path, pb.link.Dst)

	wr := pw.results[pb.id]
	wr.Path = pb.path
	wr.Hops = len(pb.path) - 1
	wr.Latency = evtMgr.CurrentSeconds() - pb.launch
	wr.Delivered = pb.link.Dst == pw.topo.Space.Egress(pb.dstEp)
	if !wr.Delivered {
		wr.Err = fmt.Errorf("%w: probe %d for ep%d left at %s", ErrNoRoute, pb.id, pb.dstEp,
			pw.topo.Space.Name(pb.link.Dst))
	}
	pw.logger.Debug("probe delivered", "probe", pb.id, "src", pb.srcEp, "dst", pb.dstEp, "hops", wr.Hops,
		"latency", wr.Latency)
	return nil
}
