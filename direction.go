package nocroute

// direction.go holds the closed set of symbolic port directions and the
// per-router maps between directions and local port indices.

import (
	"fmt"
	"strings"
)

// Direction labels a router port by the way it faces in the topology
type Direction int

const (
	DirUnknown Direction = iota
	Local
	North
	South
	East
	West
	Up
	Down

	// long-range (express) link directions, named by the row part then the column part
	NorthEast
	NorthWest
	NorthSame
	SouthEast
	SouthWest
	SouthSame
	SameEast
	SameWest
)

var dirToStr map[Direction]string = map[Direction]string{
	DirUnknown: "Unknown", Local: "Local",
	North: "North", South: "South", East: "East", West: "West", Up: "Up", Down: "Down",
	NorthEast: "NorthEast", NorthWest: "NorthWest", NorthSame: "NorthSame",
	SouthEast: "SouthEast", SouthWest: "SouthWest", SouthSame: "SouthSame",
	SameEast: "SameEast", SameWest: "SameWest",
}

var strToDir map[string]Direction = func() map[string]Direction {
	m := make(map[string]Direction)
	for dir, str := range dirToStr {
		if dir == DirUnknown {
			continue
		}
		m[strings.ToLower(str)] = dir
	}
	// the vertical express links are also written column part first
	m["samenorth"] = NorthSame
	m["samesouth"] = SouthSame
	return m
}()

func (d Direction) String() string {
	str, present := dirToStr[d]
	if !present {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return str
}

// ParseDirection converts a label (case-insensitive) into a Direction. An empty label is
// accepted as DirUnknown, for links that carry no direction (endpoint links are Local).
func ParseDirection(label string) (Direction, error) {
	if label == "" {
		return DirUnknown, nil
	}
	dir, present := strToDir[strings.ToLower(label)]
	if !present {
		return DirUnknown, fmt.Errorf("%w: %q", ErrUnknownDirection, label)
	}
	return dir, nil
}

// IsLongRange is true for the composite directions used by express links
func (d Direction) IsLongRange() bool {
	return d >= NorthEast && d <= SameWest
}

// MarshalText lets Direction appear as its label in yaml and json descriptions
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText rejects unknown labels when a description is read
func (d *Direction) UnmarshalText(text []byte) error {
	dir, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = dir
	return nil
}

// PortDirMap relates the directions of a router's ports (one map for inports, one for
// outports) and their local indices.  Several ports may face the same way, e.g. one Local
// port per attached endpoint, or parallel links serving disjoint virtual networks;
// dirToIdx then remembers the first of them.
type PortDirMap struct {
	dirToIdx map[Direction]int
	idxToDir map[int]Direction
}

func createPortDirMap() PortDirMap {
	return PortDirMap{dirToIdx: make(map[Direction]int), idxToDir: make(map[int]Direction)}
}

func (pm *PortDirMap) add(dir Direction, idx int) error {
	if dir == DirUnknown {
		return fmt.Errorf("%w: port %d has no direction", ErrUnknownDirection, idx)
	}
	if _, present := pm.idxToDir[idx]; present {
		return fmt.Errorf("port %d already has a direction", idx)
	}
	if _, present := pm.dirToIdx[dir]; !present {
		pm.dirToIdx[dir] = idx
	}
	pm.idxToDir[idx] = dir
	return nil
}

// Index returns the port bound to dir
func (pm PortDirMap) Index(dir Direction) (int, bool) {
	idx, present := pm.dirToIdx[dir]
	return idx, present
}

// Direction returns the direction of port idx
func (pm PortDirMap) Direction(idx int) Direction {
	return pm.idxToDir[idx]
}

// Len is the number of ports in the map
func (pm PortDirMap) Len() int {
	return len(pm.idxToDir)
}
