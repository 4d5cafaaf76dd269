package nocroute

// adaptive.go holds the multi-candidate routing strategies.  Each returns every legal
// (output port, output vc) pair and leaves the final choice to flow control.

import (
	"fmt"
)

type southLastStrategy struct{}

// ComputeOutports offers the productive directions, never turning out of South: a packet
// that arrived from North keeps going South, and South itself is offered only once the
// column offset is gone
func (southLastStrategy) ComputeOutports(ru *RoutingUnit, route RouteInfo, inport int, inDir Direction,
	invc int) ([]Candidate, error) {

	cols := ru.net.Cols
	if ru.net.Rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: south-last routing on a %dx%d mesh", ErrUnknownAlgorithm, ru.net.Rows, cols)
	}
	myX, myY := meshCoords(ru.id, cols)
	destX, destY := meshCoords(route.DestRouter, cols)

	dirs := []Direction{}
	if inDir == North {
		dirs = append(dirs, South)
	} else {
		if destX > myX {
			dirs = append(dirs, East)
		} else if destX < myX {
			dirs = append(dirs, West)
		}
		if destY > myY {
			dirs = append(dirs, North)
		} else if destY < myY && destX == myX {
			dirs = append(dirs, South)
		}
	}
	if len(dirs) == 0 {
		panic(fmt.Errorf("south-last routing at r%d with no offset to r%d", ru.id, route.DestRouter))
	}

	outports := make([]int, 0, len(dirs))
	for _, dir := range dirs {
		outport, err := ru.outportFor(dir)
		if err != nil {
			return nil, err
		}
		outports = append(outports, outport)
	}
	return ru.withVNetVCs(route.VNet, outports), nil
}

// southFamily are the directions with a southbound component, after which a packet may
// only continue south
func southFamily(dir Direction) bool {
	return dir == South || dir == SouthWest || dir == SouthEast || dir == SouthSame
}

// sendAllowedLongRange applies the turn restrictions of the long-range model to a packet
// that arrived on inDir and would leave on outDir.  Only southbound packets are
// restricted, and those arrive through the north side of the router: off a diagonal
// express link they continue South, otherwise they stay in the south family.
func sendAllowedLongRange(inDir, outDir Direction) bool {
	switch inDir {
	case NorthWest, NorthEast:
		return outDir == South
	case NorthSame, North:
		return southFamily(outDir)
	}
	return true
}

type longRangeStrategy struct{}

// ComputeOutports offers the cardinal moves that reduce the remaining offset and, when the
// router's express link lands strictly closer to the destination, the express direction
func (longRangeStrategy) ComputeOutports(ru *RoutingUnit, route RouteInfo, inport int, inDir Direction,
	invc int) ([]Candidate, error) {

	cols := ru.net.Cols
	if ru.net.Rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: long-range routing on a %dx%d mesh", ErrUnknownAlgorithm, ru.net.Rows, cols)
	}
	myX, myY := meshCoords(ru.id, cols)
	destX, destY := meshCoords(route.DestRouter, cols)
	xHops, yHops := absInt(destX-myX), absInt(destY-myY)

	expressHelps := false
	if ru.longLinkID >= 0 {
		kX, kY := meshCoords(ru.longLinkID, cols)
		expressHelps = absInt(destX-kX)+absInt(destY-kY)+1 < xHops+yHops
	}

	outports := []int{}
	for outport := 0; outport < ru.NumOutports(); outport++ {
		dir := ru.outports.Direction(outport)
		ok := sendAllowedLongRange(inDir, dir)
		switch dir {
		case Local, Up, Down, DirUnknown:
			ok = false
		case East:
			ok = ok && destX > myX
		case West:
			ok = ok && destX < myX
		case North:
			ok = ok && destY > myY
		case South:
			ok = ok && destY < myY
		}
		if dir.IsLongRange() {
			ok = ok && expressHelps
		}
		if southFamily(dir) {
			ok = ok && xHops == 0 && destY < myY
		}
		if ok {
			outports = append(outports, outport)
		}
	}
	if len(outports) == 0 {
		return nil, fmt.Errorf("%w: long-range routing at r%d from %s toward r%d", ErrNoRoute, ru.id, inDir,
			route.DestRouter)
	}
	return ru.withVNetVCs(route.VNet, outports), nil
}

type hiRyStrategy struct{}

// ComputeOutports offers every output channel whose priority is at least that of the
// input channel and whose tiered table, at the channel's own priority, reaches the
// destination
func (hiRyStrategy) ComputeOutports(ru *RoutingUnit, route RouteInfo, inport int, inDir Direction,
	invc int) ([]Candidate, error) {

	if inport < 0 || inport >= len(ru.inVCWeight) {
		return nil, fmt.Errorf("%w: r%d inport %d", ErrNodeRange, ru.id, inport)
	}
	if route.VNet < 0 || route.VNet >= len(ru.orderedTable) {
		return nil, fmt.Errorf("%w: r%d vnet %d", ErrVNetRange, ru.id, route.VNet)
	}
	vcs := ru.net.VCsPerVNet
	if invc < 0 || invc >= len(ru.orderedTable)*vcs {
		return nil, fmt.Errorf("%w: r%d input vc %d", ErrNodeRange, ru.id, invc)
	}
	curWeight := ru.inVCWeight[inport][invc%vcs]

	candidates := []Candidate{}
	tiers := ru.orderedTable[route.VNet]
	for outport := 0; outport < ru.NumOutports(); outport++ {
		for outvc := 0; outvc < vcs; outvc++ {
			w := ru.outVCWeight[outport][outvc]
			if w < curWeight || w == NoPriority || w == Infinity {
				continue
			}
			if w >= len(tiers[outport]) || !route.Dest.Intersects(tiers[outport][w]) {
				continue
			}
			candidates = append(candidates, Candidate{Outport: outport, VC: outvc + route.VNet*vcs})
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no channel of priority %d or more at r%d reaches %s", ErrNoRoute, curWeight,
			ru.id, route.Dest)
	}
	return candidates, nil
}
