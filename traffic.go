package nocroute

// traffic.go has the synthetic traffic patterns used to evaluate a mesh, the greedy
// placement of express links that shortens the traffic-weighted distance most, and the
// arrival process that spaces the probes a walk injects.

import (
	"fmt"
	"math"
	"strings"
)

// TrafficMatrix[i][j] is the fraction of all traffic sent by router i to router j
type TrafficMatrix [][]float64

// TrafficPatterns lists the names SyntheticTraffic accepts
var TrafficPatterns []string = []string{"uniform_random", "tornado", "bit_complement", "bit_reverse",
	"neighbor", "shuffle", "transpose"}

// SyntheticTraffic builds the normalized traffic matrix of a pattern on a rows x cols
// mesh.  Router x + y*cols is at column x, row y.
func SyntheticTraffic(pattern string, rows, cols int) (TrafficMatrix, error) {
	n := rows * cols
	if n < 2 {
		return nil, fmt.Errorf("traffic needs at least two routers, mesh is %dx%d", rows, cols)
	}
	tm := make(TrafficMatrix, n)
	for i := range tm {
		tm[i] = make([]float64, n)
	}

	// set marks traffic from the router at (x,y) to the one at (dx,dy)
	set := func(x, y, dx, dy int) error {
		if dx < 0 || dx >= cols || dy < 0 || dy >= rows {
			return fmt.Errorf("pattern %s maps (%d,%d) off a %dx%d mesh", pattern, x, y, rows, cols)
		}
		tm[x+y*cols][dx+dy*cols] = 1
		return nil
	}

	var err error
	switch strings.ToLower(pattern) {
	case "uniform_random":
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i != j {
					tm[i][j] = 1
				}
			}
		}
	case "tornado":
		err = eachRouter(rows, cols, func(x, y int) error { return set(x, y, (x+cols/2)%cols, y) })
	case "bit_complement":
		err = eachRouter(rows, cols, func(x, y int) error { return set(x, y, cols-1-x, rows-1-y) })
	case "bit_reverse":
		err = eachRouter(rows, cols, func(x, y int) error { return set(x, y, x^(cols-1), y^(rows-1)) })
	case "neighbor":
		err = eachRouter(rows, cols, func(x, y int) error { return set(x, y, (x+1)%cols, y) })
	case "shuffle":
		for i := 0; i < n; i++ {
			if 2*i < n {
				tm[i][2*i] = 1
			} else {
				tm[i][2*i-n+1] = 1
			}
		}
	case "transpose":
		if rows != cols {
			return nil, fmt.Errorf("transpose traffic needs a square mesh, have %dx%d", rows, cols)
		}
		err = eachRouter(rows, cols, func(x, y int) error { return set(x, y, y, x) })
	default:
		return nil, fmt.Errorf("unknown traffic pattern %q", pattern)
	}
	if err != nil {
		return nil, err
	}
	if err := tm.normalize(); err != nil {
		return nil, fmt.Errorf("pattern %s: %w", pattern, err)
	}
	return tm, nil
}

func eachRouter(rows, cols int, fn func(x, y int) error) error {
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if err := fn(x, y); err != nil {
				return err
			}
		}
	}
	return nil
}

// SingleDestTraffic has every router send only to dest
func SingleDestTraffic(numRouters, dest int) (TrafficMatrix, error) {
	if dest < 0 || dest >= numRouters {
		return nil, fmt.Errorf("%w: destination router %d", ErrNodeRange, dest)
	}
	tm := make(TrafficMatrix, numRouters)
	for i := range tm {
		tm[i] = make([]float64, numRouters)
		tm[i][dest] = 1
	}
	return tm, tm.normalize()
}

// normalize scales the matrix to sum 1
func (tm TrafficMatrix) normalize() error {
	sum := 0.0
	for i := range tm {
		for j := range tm[i] {
			sum += tm[i][j]
		}
	}
	if !(sum > 0) {
		return fmt.Errorf("traffic matrix carries no traffic")
	}
	for i := range tm {
		for j := range tm[i] {
			tm[i][j] /= sum
		}
	}
	return nil
}

// Draw maps a uniform variate u01 onto a (source, destination) router pair with the
// probability the matrix gives it
func (tm TrafficMatrix) Draw(u01 float64) (int, int) {
	acc := 0.0
	lastI, lastJ := -1, -1
	for i := range tm {
		for j, frac := range tm[i] {
			if frac == 0 {
				continue
			}
			acc += frac
			lastI, lastJ = i, j
			if u01 < acc {
				return i, j
			}
		}
	}
	return lastI, lastJ
}

// PlanLongLinks chooses express links for a rows x cols mesh: repeatedly, among router
// pairs that both lack an express link and whose Euclidean length fits the remaining
// budget, it takes the pair whose link saves the most traffic-weighted hops per unit of
// length, until nothing fits or nothing saves.
func PlanLongLinks(traffic TrafficMatrix, rows, cols int, budget float64) [][2]int {
	n := rows * cols
	partner := make([]int, n)
	for i := range partner {
		partner[i] = -1
	}

	links := [][2]int{}
	for budget > 0 {
		bestI, bestJ, bestGain := -1, -1, 0.0
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				length := wireLength(i, j, cols)
				if partner[i] != -1 || partner[j] != -1 || budget < length {
					continue
				}
				saved := 0.0
				for k := 0; k < n; k++ {
					saved += traffic[j][k] * float64(max(0, meshDistance(j, k, cols)-meshDistance(i, k, cols)-1))
					saved += traffic[i][k] * float64(max(0, meshDistance(i, k, cols)-meshDistance(j, k, cols)-1))
				}
				if saved/length > bestGain {
					bestI, bestJ, bestGain = i, j, saved/length
				}
			}
		}
		if bestI == -1 {
			break
		}
		links = append(links, [2]int{bestI, bestJ})
		partner[bestI], partner[bestJ] = bestJ, bestI
		budget -= wireLength(bestI, bestJ, cols)
	}
	return links
}

// wireLength is the Euclidean distance between routers i and j of a mesh cols wide
func wireLength(i, j, cols int) float64 {
	ix, iy := meshCoords(i, cols)
	jx, jy := meshCoords(j, cols)
	return math.Hypot(float64(ix-jx), float64(iy-jy))
}

// ExpectedHops returns the traffic-weighted mean Manhattan distance of a mesh, and the
// same mean when a source may first take its express link
func ExpectedHops(traffic TrafficMatrix, cols int, longLinks [][2]int) (float64, float64) {
	partner := make(map[int]int)
	for _, ll := range longLinks {
		partner[ll[0]], partner[ll[1]] = ll[1], ll[0]
	}
	base, reduced := 0.0, 0.0
	for i := range traffic {
		for j, frac := range traffic[i] {
			d := meshDistance(i, j, cols)
			base += frac * float64(d)
			if k, present := partner[i]; present {
				d = min(d, 1+meshDistance(k, j, cols))
			}
			reduced += frac * float64(d)
		}
	}
	return roundFloat(base, rdigits), roundFloat(reduced, rdigits)
}

var rdigits uint = 12

// roundFloat rounds val to precision decimal digits, hiding summation noise
func roundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// expRV returns a sample of an exponentially distributed random number
func expRV(u01, rate float64) float64 {
	return -math.Log(1.0-u01) / rate
}

// ArrivalProcess spaces successive probe injections
type ArrivalProcess struct {
	rate   float64
	sample func(u01 float64, rate float64) float64
	rng    RandSource
}

// CreateArrivalProcess is a constructor. dist names the inter-arrival distribution,
// "exponential" (the default) or "constant".
func CreateArrivalProcess(dist string, rate float64, rng RandSource) (*ArrivalProcess, error) {
	if !(rate > 0) {
		return nil, fmt.Errorf("arrival rate must be positive, is %g", rate)
	}
	ap := &ArrivalProcess{rate: rate, rng: rng}
	switch dist {
	case "", "exponential", "exp", "expon":
		ap.sample = expRV
	case "constant", "const":
		ap.sample = func(u01, rate float64) float64 { return 1.0 / rate }
	default:
		return nil, fmt.Errorf("unknown inter-arrival distribution %q", dist)
	}
	return ap, nil
}

// Next returns the time to the next arrival
func (ap *ArrivalProcess) Next() float64 {
	return roundFloat(ap.sample(ap.rng.RandU01(), ap.rate), 15)
}
