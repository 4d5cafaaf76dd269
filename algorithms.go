package nocroute

// algorithms.go names the routing modes a network can be configured with and holds the
// single-candidate strategies: table lookup, dimension-order routing on a 2-D mesh and on
// a 3-D cube, and the custom slot.  The adaptive strategies live in adaptive.go.

import (
	"fmt"
	"strings"
)

// RoutingAlgorithm selects the routing mode of a network
type RoutingAlgorithm int

const (
	TableRouting RoutingAlgorithm = iota
	XYRouting
	XYZRouting
	CustomRouting
	SouthLastRouting
	LongRangeRouting
	HiRyRouting
)

var algToStr map[RoutingAlgorithm]string = map[RoutingAlgorithm]string{
	TableRouting: "table", XYRouting: "xy", XYZRouting: "xyz", CustomRouting: "custom",
	SouthLastRouting: "southlast", LongRangeRouting: "longrange", HiRyRouting: "hiry",
}

func (alg RoutingAlgorithm) String() string {
	str, present := algToStr[alg]
	if !present {
		return fmt.Sprintf("RoutingAlgorithm(%d)", int(alg))
	}
	return str
}

// ParseRoutingAlgorithm returns the RoutingAlgorithm named by str (case-insensitive)
func ParseRoutingAlgorithm(str string) (RoutingAlgorithm, error) {
	lower := strings.ToLower(strings.TrimSpace(str))
	for alg, name := range algToStr {
		if name == lower {
			return alg, nil
		}
	}
	return TableRouting, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, str)
}

// Adaptive is true for modes answering multi-candidate requests
func (alg RoutingAlgorithm) Adaptive() bool {
	_, present := adaptiveStrategies[alg]
	return present
}

// OutportStrategy computes the single output port of a packet at a router that is not
// its destination
type OutportStrategy interface {
	ComputeOutport(ru *RoutingUnit, route RouteInfo, inport int, inDir Direction) (int, error)
}

// AdaptiveStrategy computes every (output port, output vc) a packet may take
type AdaptiveStrategy interface {
	ComputeOutports(ru *RoutingUnit, route RouteInfo, inport int, inDir Direction, invc int) ([]Candidate, error)
}

var outportStrategies map[RoutingAlgorithm]OutportStrategy = map[RoutingAlgorithm]OutportStrategy{
	TableRouting:  tableStrategy{},
	XYRouting:     xyStrategy{},
	XYZRouting:    xyzStrategy{},
	CustomRouting: customStrategy{},
}

var adaptiveStrategies map[RoutingAlgorithm]AdaptiveStrategy = map[RoutingAlgorithm]AdaptiveStrategy{
	SouthLastRouting: southLastStrategy{},
	LongRangeRouting: longRangeStrategy{},
	HiRyRouting:      hiRyStrategy{},
}

type tableStrategy struct{}

func (tableStrategy) ComputeOutport(ru *RoutingUnit, route RouteInfo, inport int, inDir Direction) (int, error) {
	return ru.LookupRoutingTable(route.VNet, route.Dest)
}

// meshCoords places router id on a grid cols wide
func meshCoords(id, cols int) (x, y int) {
	return id % cols, id / cols
}

// cubeCoords places router id in a cube of cols x rows layers
func cubeCoords(id, cols, rows int) (x, y, z int) {
	return id % cols, (id / cols) % rows, id / (cols * rows)
}

func absInt(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

// horizontalStep returns the East/West move toward destX, panicking if the packet would
// leave through the side it came in on
func horizontalStep(myX, destX int, inDir Direction) Direction {
	if destX >= myX {
		if inDir != Local && inDir != West {
			panic(fmt.Errorf("eastbound packet arrived from %s", inDir))
		}
		return East
	}
	if inDir != Local && inDir != East {
		panic(fmt.Errorf("westbound packet arrived from %s", inDir))
	}
	return West
}

// verticalStep returns the North/South move toward destY
func verticalStep(myY, destY int, inDir Direction) Direction {
	if destY >= myY {
		if inDir == North {
			panic(fmt.Errorf("northbound packet arrived from North"))
		}
		return North
	}
	if inDir == South {
		panic(fmt.Errorf("southbound packet arrived from South"))
	}
	return South
}

type xyStrategy struct{}

// ComputeOutport routes along the row to the destination column, then along the column
func (xyStrategy) ComputeOutport(ru *RoutingUnit, route RouteInfo, inport int, inDir Direction) (int, error) {
	cols := ru.net.Cols
	if ru.net.Rows <= 0 || cols <= 0 {
		return -1, fmt.Errorf("%w: xy routing on a %dx%d mesh", ErrUnknownAlgorithm, ru.net.Rows, cols)
	}
	myX, myY := meshCoords(ru.id, cols)
	destX, destY := meshCoords(route.DestRouter, cols)

	var dir Direction
	switch {
	case destX != myX:
		dir = horizontalStep(myX, destX, inDir)
	case destY != myY:
		dir = verticalStep(myY, destY, inDir)
	default:
		panic(fmt.Errorf("xy routing at r%d with no offset to r%d", ru.id, route.DestRouter))
	}
	return ru.outportFor(dir)
}

type xyzStrategy struct{}

// ComputeOutport resolves the column offset first, then the row, then the layer
func (xyzStrategy) ComputeOutport(ru *RoutingUnit, route RouteInfo, inport int, inDir Direction) (int, error) {
	cols, rows := ru.net.Cols, ru.net.Rows
	if rows <= 0 || cols <= 0 {
		return -1, fmt.Errorf("%w: xyz routing on a %dx%d grid", ErrUnknownAlgorithm, rows, cols)
	}
	myX, myY, myZ := cubeCoords(ru.id, cols, rows)
	destX, destY, destZ := cubeCoords(route.DestRouter, cols, rows)

	var dir Direction
	switch {
	case destX != myX:
		dir = horizontalStep(myX, destX, inDir)
	case destY != myY:
		dir = verticalStep(myY, destY, inDir)
	case destZ > myZ:
		if inDir == Up {
			panic(fmt.Errorf("upbound packet arrived from Up"))
		}
		dir = Up
	case destZ < myZ:
		if inDir == Down {
			panic(fmt.Errorf("downbound packet arrived from Down"))
		}
		dir = Down
	default:
		panic(fmt.Errorf("xyz routing at r%d with no offset to r%d", ru.id, route.DestRouter))
	}
	return ru.outportFor(dir)
}

type customStrategy struct{}

func (customStrategy) ComputeOutport(ru *RoutingUnit, route RouteInfo, inport int, inDir Direction) (int, error) {
	if ru.custom == nil {
		return -1, fmt.Errorf("%w: custom routing at r%d", ErrNotImplemented, ru.id)
	}
	return ru.custom(ru, route, inport, inDir)
}
